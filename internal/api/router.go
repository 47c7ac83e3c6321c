package api

import (
	"mandi-profit-service/internal/api/dto"
	"mandi-profit-service/internal/api/handlers"
	"mandi-profit-service/internal/domain"
	"mandi-profit-service/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Deps struct {
	Finder      services.MarketSearcher
	Board       *services.ResultBoard
	Fleet       domain.Fleet
	Commodities []dto.CommodityResponse
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "http"))

	board := d.Board
	if board == nil {
		board = services.NewResultBoard(services.DefaultSessionTTL)
	}

	known := map[string]struct{}{}
	for _, c := range d.Commodities {
		known[c.ID] = struct{}{}
	}

	vehicleHandler := &handlers.VehicleHandler{Fleet: d.Fleet}
	commodityHandler := &handlers.CommodityHandler{Commodities: d.Commodities}
	marketHandler := &handlers.MarketHandler{
		Finder:   d.Finder,
		Sessions: &services.SessionCalculator{Finder: d.Finder, Board: board},
		KnownCommodity: func(id string) bool {
			_, ok := known[id]
			return ok
		},
		Logger: logger,
	}

	r := gin.New()
	r.Use(recovery(logger), requestID(), accessLog(logger))

	r.GET("/health", handlers.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/vehicles", vehicleHandler.List)
		v1.GET("/vehicles/select", vehicleHandler.Select)
		v1.GET("/commodities", commodityHandler.List)
		v1.POST("/markets/rank", marketHandler.Rank)
		v1.POST("/sessions", marketHandler.NewSession)
		v1.POST("/sessions/:session/calculations", marketHandler.Calculate)
		v1.GET("/sessions/:session/result", marketHandler.Result)
	}

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	}).Handler(r)
}
