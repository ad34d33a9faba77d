package main

import (
	"context"
	"log"
	"os"
	"time"

	"reactorviz/adapters/postgres"
	"reactorviz/internal/migration"

	"github.com/joho/godotenv"
)

// migrate creates the publication schema without publishing a run.
// Usage: migrate [database_url]; defaults to DATABASE_URL.
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if len(os.Args) > 1 {
		databaseURL = os.Args[1]
	}
	if databaseURL == "" {
		log.Fatal("Usage: migrate <database_url> (or set DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.NewReactorRepository(db).Migrate(ctx); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	driver, _ := postgres.DriverFor(databaseURL)
	log.Printf("Schema %s ready (%s)", migration.NewRunner().Version(), driver)
}
