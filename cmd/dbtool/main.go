package main

import (
	"context"
	"fmt"
	"mandi-profit-service/internal/adapters/cache"
	"mandi-profit-service/internal/config"
	"mandi-profit-service/internal/platform/db"
	"mandi-profit-service/internal/platform/obs"
	"os"
	"time"

	"go.uber.org/zap"
)

// dbtool creates the cache tables in DATABASE_URL without starting the server.
func main() {
	config.LoadDotEnv()

	log, err := obs.NewLogger(config.Get("APP_ENV", "development"), "dbtool")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	driver := config.Get("DB_DRIVER", db.DriverSQLite)
	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(driver, databaseURL)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Info("initializing cache schema", zap.String("driver", driver))
	if err := cache.InitSchema(ctx, conn); err != nil {
		log.Fatal("schema initialization failed", zap.Error(err))
	}
	log.Info("schema ready")
}
