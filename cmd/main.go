package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"oficinago/config"
	"oficinago/internal/api/customerapi"
	"oficinago/internal/api/orderapi"
	"oficinago/internal/api/partapi"
	"oficinago/internal/api/quoteapi"
	"oficinago/internal/api/router"
	"oficinago/internal/api/userapi"
	"oficinago/internal/api/vehicleapi"
	"oficinago/internal/pkg/cache"
	"oficinago/internal/pkg/database"
	"oficinago/internal/pkg/logger"
	"oficinago/internal/pkg/middleware"
	"oficinago/internal/pkg/token"
	"oficinago/internal/repository/customerrepo"
	"oficinago/internal/repository/orderrepo"
	"oficinago/internal/repository/partrepo"
	"oficinago/internal/repository/quoterepo"
	"oficinago/internal/repository/userrepo"
	"oficinago/internal/repository/vehiclerepo"
	"oficinago/internal/service/customerservice"
	"oficinago/internal/service/orderservice"
	"oficinago/internal/service/partservice"
	"oficinago/internal/service/quoteservice"
	"oficinago/internal/service/userservice"
	"oficinago/internal/service/vehicleservice"
)

// @title           Oficinago API
// @version         1.0
// @description     API de gestão de oficina mecânica: clientes, veículos, peças, orçamentos e ordens de serviço.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Configuração
	godotenv.Load()
	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)

	// 2. Infraestrutura (Postgres e Redis)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Error("Falha ao conectar ao banco de dados.", err)
		os.Exit(1)
	}
	defer db.Close()

	cacheClient := cache.NewRedisClient(cfg.RedisAddr)

	// 3. Serviço de token
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// 4. Repositórios
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	customerRepo := customerrepo.NewCustomerRepository(db, cfg.DBTimeout, log)
	vehicleRepo := vehiclerepo.NewVehicleRepository(db, cfg.DBTimeout, log)
	partRepo := partrepo.NewPartRepository(db, cacheClient, cfg.DBTimeout, log)
	quoteRepo := quoterepo.NewQuoteRepository(db, cfg.DBTimeout, log)
	orderRepo := orderrepo.NewOrderRepository(db, cacheClient, cfg.DBTimeout, log)

	// 5. Serviços
	userSvc := userservice.NewUserService(userRepo, tokenSvc, log)
	customerSvc := customerservice.NewCustomerService(customerRepo, log)
	vehicleSvc := vehicleservice.NewVehicleService(vehicleRepo, log)
	partSvc := partservice.NewPartService(partRepo, log)
	quoteSvc := quoteservice.NewQuoteService(quoteRepo, log)
	orderSvc := orderservice.NewOrderService(orderRepo, quoteRepo, partRepo, log)

	// 6. Handlers e rotas
	handlers := router.Handlers{
		Users:     userapi.NewHandler(userSvc, log),
		Customers: customerapi.NewHandler(customerSvc, log),
		Vehicles:  vehicleapi.NewHandler(vehicleSvc, log),
		Parts:     partapi.NewHandler(partSvc, log),
		Quotes:    quoteapi.NewHandler(quoteSvc, log),
		Orders:    orderapi.NewHandler(orderSvc, log),
	}

	mux := router.New(handlers, tokenSvc)
	handler := middleware.RateLimiter(cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)(mux)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 7. Subir o servidor e aguardar sinal de desligamento
	go func() {
		log.Info("Servidor iniciado.", map[string]interface{}{"port": cfg.Port, "env": cfg.Environment})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Falha no servidor HTTP.", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Desligando o servidor...", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento forçado.", err)
	}
	log.Info("Servidor finalizado.", nil)
}
