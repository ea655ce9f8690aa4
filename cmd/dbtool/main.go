package main

import (
	"context"
	"database/sql"
	"earthwork-route-service/internal/adapters/repositories"
	"earthwork-route-service/internal/config"
	"earthwork-route-service/internal/platform/db"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/field.txt"), "field file to store (empty to skip seeding)")
	flag.Parse()

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(context.Background(), databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initAndSeed(context.Background(), conn, *seedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")

	if seedPath == "" {
		return nil
	}

	log.Printf("Seeding field from %s...", seedPath)
	id, err := repositories.SeedFieldFromFile(ctx, repositories.NewPostgresFieldRepository(conn), seedPath)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Printf("Seeding complete. field_id=%d", id)

	return nil
}
