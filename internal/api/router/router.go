package router

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"oficinago/internal/api/customerapi"
	"oficinago/internal/api/orderapi"
	"oficinago/internal/api/partapi"
	"oficinago/internal/api/quoteapi"
	"oficinago/internal/api/userapi"
	"oficinago/internal/api/vehicleapi"
	"oficinago/internal/pkg/middleware"
	"oficinago/internal/pkg/token"
)

// Handlers agrupa todos os handlers da API para a montagem das rotas.
type Handlers struct {
	Users     *userapi.Handler
	Customers *customerapi.Handler
	Vehicles  *vehicleapi.Handler
	Parts     *partapi.Handler
	Quotes    *quoteapi.Handler
	Orders    *orderapi.Handler
}

// New monta o roteador da API. Rotas de registro e login são públicas;
// todo o restante exige token. O escopo fino (papel e propriedade) é
// decidido na camada de serviço via tabela de políticas.
func New(h Handlers, tokenSvc token.TokenService) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.NewAuthMiddleware(tokenSvc)

	// Saúde e documentação
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// Usuários (públicas)
	mux.HandleFunc("POST /v1/users/register", h.Users.Register)
	mux.HandleFunc("POST /v1/users/login", h.Users.Login)

	// Clientes
	mux.HandleFunc("POST /v1/customers", auth(h.Customers.Create))
	mux.HandleFunc("GET /v1/customers", auth(h.Customers.List))
	mux.HandleFunc("GET /v1/customers/{id}", auth(h.Customers.GetByID))
	mux.HandleFunc("PUT /v1/customers/{id}", auth(h.Customers.Update))
	mux.HandleFunc("DELETE /v1/customers/{id}", auth(h.Customers.Delete))

	// Veículos
	mux.HandleFunc("POST /v1/vehicles", auth(h.Vehicles.Create))
	mux.HandleFunc("GET /v1/vehicles", auth(h.Vehicles.List))
	mux.HandleFunc("GET /v1/vehicles/{id}", auth(h.Vehicles.GetByID))
	mux.HandleFunc("PUT /v1/vehicles/{id}", auth(h.Vehicles.Update))
	mux.HandleFunc("DELETE /v1/vehicles/{id}", auth(h.Vehicles.Delete))

	// Peças e estoque
	mux.HandleFunc("POST /v1/parts", auth(h.Parts.Create))
	mux.HandleFunc("GET /v1/parts", auth(h.Parts.List))
	mux.HandleFunc("GET /v1/parts/{id}", auth(h.Parts.GetByID))
	mux.HandleFunc("PUT /v1/parts/{id}", auth(h.Parts.Update))
	mux.HandleFunc("DELETE /v1/parts/{id}", auth(h.Parts.Delete))
	mux.HandleFunc("GET /v1/parts/{id}/availability", auth(h.Parts.CheckAvailability))
	mux.HandleFunc("POST /v1/parts/{id}/stock-adjustment", auth(h.Parts.AdjustStock))

	// Orçamentos
	mux.HandleFunc("POST /v1/quotes", auth(h.Quotes.Create))
	mux.HandleFunc("GET /v1/quotes", auth(h.Quotes.List))
	mux.HandleFunc("GET /v1/quotes/{id}", auth(h.Quotes.GetByID))
	mux.HandleFunc("POST /v1/quotes/{id}/approve", auth(h.Quotes.Approve))
	mux.HandleFunc("POST /v1/quotes/{id}/reject", auth(h.Quotes.Reject))

	// Ordens de serviço
	mux.HandleFunc("POST /v1/orders", auth(h.Orders.Create))
	mux.HandleFunc("GET /v1/orders", auth(h.Orders.List))
	mux.HandleFunc("GET /v1/orders/{id}", auth(h.Orders.GetByID))
	mux.HandleFunc("PATCH /v1/orders/{id}/status", auth(h.Orders.UpdateStatus))
	mux.HandleFunc("POST /v1/orders/{id}/items", auth(h.Orders.AddItem))
	mux.HandleFunc("DELETE /v1/orders/{id}/items/{itemID}", auth(h.Orders.RemoveItem))
	mux.HandleFunc("POST /v1/orders/{id}/conclude", auth(h.Orders.Conclude))
	mux.HandleFunc("POST /v1/orders/{id}/cancel", auth(h.Orders.Cancel))

	return mux
}
