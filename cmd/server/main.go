package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mandi-profit-service/internal/adapters/cache"
	"mandi-profit-service/internal/adapters/geocode"
	"mandi-profit-service/internal/adapters/prices"
	"mandi-profit-service/internal/adapters/routing"
	"mandi-profit-service/internal/api"
	"mandi-profit-service/internal/api/dto"
	"mandi-profit-service/internal/config"
	"mandi-profit-service/internal/platform/db"
	"mandi-profit-service/internal/platform/httpx"
	"mandi-profit-service/internal/platform/obs"
	"mandi-profit-service/internal/ports"
	"mandi-profit-service/internal/reference"
	"mandi-profit-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (data.gov.in, OSRM, Nominatim, SQL and Redis
// caches) behind ports and starts the HTTP server.
func main() {
	dotenv := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := obs.NewLogger(cfg.AppEnv, "mandi-profit-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if !dotenv {
		log.Info("no .env file found (using environment variables)")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
	log.Info("mandi-profit-service stopped")
}

func run(cfg *config.Config, log *zap.Logger) error {
	tables, err := reference.Load(cfg.ReferencePath)
	if err != nil {
		return err
	}
	log.Info("reference data loaded",
		zap.Int("vehicles", len(tables.Fleet.Vehicles())),
		zap.Int("markets", tables.Locations.MarketCount()),
		zap.Int("districts", tables.Locations.DistrictCount()),
	)

	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := context.Background()
	if err := cache.InitSchema(ctx, conn); err != nil {
		return err
	}

	client := httpx.New(cfg.HTTPTimeout, cfg.UserAgent, cfg.HTTPRetries)

	priceSource, closeRedis, err := buildPriceSource(ctx, cfg, client, log)
	if err != nil {
		return err
	}
	defer closeRedis()

	routes, geocoder, err := buildGeoAdapters(cfg, conn, client, log)
	if err != nil {
		return err
	}

	finder, err := services.NewMarketFinder(services.MarketFinderConfig{
		Prices:    priceSource,
		Routes:    routes,
		Geocoder:  geocoder,
		Locations: tables.Locations,
		Fleet:     tables.Fleet,
		State:     cfg.PriceState,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	commodities := make([]dto.CommodityResponse, 0, len(tables.Commodities))
	for _, c := range tables.Commodities {
		commodities = append(commodities, dto.CommodityResponse{ID: c.ID, Name: c.Name})
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Deps{
		Finder:      finder,
		Board:       services.NewResultBoard(cfg.SessionTTL),
		Fleet:       tables.Fleet,
		Commodities: commodities,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
	})

	// Write timeout covers a cold request: geocode, prices and routing in sequence.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      4*cfg.HTTPTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
	}

	log.Info("shutting down mandi-profit-service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}
	return nil
}

// buildPriceSource returns the data.gov.in source, wrapped in the Redis cache
// when REDIS_URL is set.
func buildPriceSource(
	ctx context.Context,
	cfg *config.Config,
	client *httpx.Client,
	log *zap.Logger,
) (ports.PriceSource, func(), error) {
	upstream, err := prices.NewDataGovSource(client, prices.DataGovConfig{
		BaseURL: cfg.PriceAPIURL,
		APIKey:  cfg.PriceAPIKey,
		Limit:   cfg.PriceLimit,
	}, log)
	if err != nil {
		return nil, nil, err
	}

	if cfg.RedisURL == "" {
		log.Info("price cache disabled (REDIS_URL not set)")
		return upstream, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable at startup; cache calls will degrade to direct fetches", zap.Error(err))
	}

	priceCache, err := prices.NewRedisPriceCache(rdb, cfg.PriceCacheTTL)
	if err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	cached, err := prices.NewCachedSource(upstream, priceCache, log)
	if err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return cached, func() { _ = rdb.Close() }, nil
}

// buildGeoAdapters wires OSRM and Nominatim behind their SQL caches.
func buildGeoAdapters(
	cfg *config.Config,
	conn *sql.DB,
	client *httpx.Client,
	log *zap.Logger,
) (ports.RouteMatrixProvider, ports.ReverseGeocoder, error) {
	dialect, err := cache.DialectFor(cfg.DBDriver)
	if err != nil {
		return nil, nil, err
	}

	osrm, err := routing.NewOSRMMatrix(client, cfg.OSRMURL, log)
	if err != nil {
		return nil, nil, err
	}
	routes, err := routing.NewCachedMatrix(osrm, cache.NewSQLRouteCache(conn, dialect, log), log)
	if err != nil {
		return nil, nil, err
	}

	nominatim, err := geocode.NewNominatim(client, cfg.NominatimURL, log)
	if err != nil {
		return nil, nil, err
	}
	geocoder, err := geocode.NewCachedGeocoder(nominatim, cache.NewSQLLabelCache(conn, dialect, log), log)
	if err != nil {
		return nil, nil, err
	}

	return routes, geocoder, nil
}
