package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	sqlstore "github.com/hetulpatel/polykalshi/internal/storage/sqlite"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	store, err := sqlstore.Open(os.Getenv("SQLITE_PATH"))
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	if len(os.Args) > 1 && os.Args[1] == "--drop" {
		if err := store.DropTables(ctx); err != nil {
			log.Fatalf("drop tables: %v", err)
		}
		log.Printf("dropped tables in %s", store.Path())
	}

	if err := store.CreateTables(ctx); err != nil {
		log.Fatalf("create tables: %v", err)
	}
	log.Printf("schema ready in %s", store.Path())
}
