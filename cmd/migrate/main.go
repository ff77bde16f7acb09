package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"oficinago/internal/pkg/database"
)

// Aplica (ou reverte) as migrações SQL do diretório ./sql via goose.
func main() {
	godotenv.Load()

	dir := flag.String("dir", "./sql", "diretório das migrações")
	command := flag.String("command", "up", "comando goose (up, down, status)")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL deve ser definida.")
	}

	db, err := database.NewPostgresDB(dsn)
	if err != nil {
		log.Fatalf("Falha ao conectar ao banco: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Falha ao configurar dialeto: %v", err)
	}

	switch *command {
	case "up":
		err = goose.Up(db, *dir)
	case "down":
		err = goose.Down(db, *dir)
	case "status":
		err = goose.Status(db, *dir)
	default:
		log.Fatalf("Comando desconhecido: %s", *command)
	}
	if err != nil {
		log.Fatalf("Falha na migração (%s): %v", *command, err)
	}

	log.Printf("Migração concluída: %s", *command)
}
