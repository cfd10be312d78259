package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"fleet-route-optimizer/internal/adapters/cache"
	"fleet-route-optimizer/internal/platform/db"
)

// dbtool prepares the Postgres matrix cache schema so the optimizer can run
// against a fresh database.
func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment variables")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	sqlDB, err := db.Open(ctx, databaseURL)
	if err != nil {
		log.Error("open database", "err", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	log.Info("initializing matrix cache schema")
	if err := cache.InitSchema(ctx, sqlDB); err != nil {
		log.Error("schema initialization failed", "err", err)
		os.Exit(1)
	}
	log.Info("schema ready")
}
