package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/fulfillment-api/internal/app/api"
	"github.com/Apurer/fulfillment-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/fulfillment-api/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.StoreDriver == api.StoreMemory {
		log.Fatal("STORE_DRIVER is memory; nothing to migrate")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectWith(ctx, cfg.StoreDriver, cfg.StoreDSN(), logger)
	defer cleanup()
	if db == nil {
		log.Fatalf("%s DSN not set or connection failed; cannot migrate", cfg.StoreDriver)
	}
	if err := migrations.Run(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	logger.Info("orders schema migrated", slog.String("driver", cfg.StoreDriver))
}
