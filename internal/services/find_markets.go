package services

import (
	"context"
	"errors"
	"fmt"
	"mandi-profit-service/internal/domain"
	"mandi-profit-service/internal/ports"
	"math"
	"strings"

	"go.uber.org/zap"
)

type FindMarketsRequest struct {
	Origin    *domain.Coordinate
	Commodity string
	Quantity  float64
	// VehicleID overrides automatic selection when non-empty.
	VehicleID string
	RoundTrip bool
	Role      domain.Role
	Tagging   bool
}

// MarketReport is the result of one ranking request.
type MarketReport struct {
	Origin                domain.Coordinate
	OriginLabel           string
	Commodity             string
	Quantity              float64
	Vehicle               domain.Vehicle
	RoundTrip             bool
	Role                  domain.Role
	MultipleTripsRequired bool
	Trips                 int
	Markets               []domain.RankedMarket
}

// TopPick returns the best ranked market, or nil when there is none.
func (r *MarketReport) TopPick() *domain.RankedMarket {
	if r == nil || len(r.Markets) == 0 {
		return nil
	}
	return &r.Markets[0]
}

// MarketFinder runs the ranking pipeline: locate, fetch prices, resolve
// coordinates, fetch routes, rank. Steps run strictly in sequence and no step
// is retried. It holds no per-request state and is safe for concurrent use.
type MarketFinder struct {
	prices    ports.PriceSource
	routes    ports.RouteMatrixProvider
	geocoder  ports.ReverseGeocoder
	locations *domain.LocationTable
	fleet     domain.Fleet
	state     string
	logger    *zap.Logger
}

type MarketFinderConfig struct {
	Prices    ports.PriceSource
	Routes    ports.RouteMatrixProvider
	Geocoder  ports.ReverseGeocoder // optional
	Locations *domain.LocationTable
	Fleet     domain.Fleet
	State     string
	Logger    *zap.Logger
}

func NewMarketFinder(cfg MarketFinderConfig) (*MarketFinder, error) {
	if cfg.Prices == nil {
		return nil, errors.New("new market finder: price source is required")
	}
	if cfg.Routes == nil {
		return nil, errors.New("new market finder: route provider is required")
	}
	if cfg.Locations == nil {
		return nil, errors.New("new market finder: location table is required")
	}
	if len(cfg.Fleet.Vehicles()) == 0 {
		return nil, errors.New("new market finder: fleet is empty")
	}
	if strings.TrimSpace(cfg.State) == "" {
		return nil, errors.New("new market finder: state is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MarketFinder{
		prices:    cfg.Prices,
		routes:    cfg.Routes,
		geocoder:  cfg.Geocoder,
		locations: cfg.Locations,
		fleet:     cfg.Fleet,
		state:     cfg.State,
		logger:    logger.With(zap.String("component", "market_finder")),
	}, nil
}

func (f *MarketFinder) Fleet() domain.Fleet { return f.fleet }

// FindBestMarkets ranks the markets buying req.Commodity by net result for
// req.Quantity quintals carried from req.Origin. Any failure aborts the whole
// request; partial rankings are never returned.
func (f *MarketFinder) FindBestMarkets(ctx context.Context, req FindMarketsRequest) (*MarketReport, error) {
	log := f.logger.With(zap.String("commodity", req.Commodity))
	stage := domain.StageIdle
	enter := func(s domain.Stage) {
		stage = s
		log.Debug("stage", zap.String("stage", string(s)))
	}
	fail := func(err error) error {
		log.Warn("find best markets failed",
			zap.String("stage", string(stage)),
			zap.String("code", domain.FailureCode(err)),
			zap.Error(err),
		)
		return fmt.Errorf("find best markets: %w", err)
	}

	if req.Origin == nil {
		return nil, fail(domain.Fail(domain.ErrMissingLocation, stage, "please set your location first", nil))
	}
	if math.IsNaN(req.Quantity) || math.IsInf(req.Quantity, 0) || req.Quantity <= 0 {
		return nil, fail(domain.Fail(domain.ErrInvalidQuantity, stage, "please enter a valid quantity", nil))
	}

	vehicle := f.fleet.SelectVehicle(req.Quantity)
	if req.VehicleID != "" {
		v, ok := f.fleet.ByID(req.VehicleID)
		if !ok {
			return nil, fail(domain.Fail(domain.ErrUnknownVehicle, stage, fmt.Sprintf("unknown vehicle %q", req.VehicleID), nil))
		}
		vehicle = v
	}

	role := req.Role
	if role == "" {
		role = domain.RoleSeller
	}
	origin := *req.Origin

	report := &MarketReport{
		Origin:                origin,
		OriginLabel:           origin.Label(),
		Commodity:             req.Commodity,
		Quantity:              req.Quantity,
		Vehicle:               vehicle,
		RoundTrip:             req.RoundTrip,
		Role:                  role,
		MultipleTripsRequired: req.Quantity > vehicle.Capacity,
		Trips:                 domain.TripsRequired(req.Quantity, vehicle),
	}

	if f.geocoder != nil {
		enter(domain.StageLocating)
		report.OriginLabel = f.locate(ctx, log, origin)
	}

	enter(domain.StageFetchingPrices)
	records, err := f.prices.FetchPrices(ctx, f.state, req.Commodity)
	if err != nil {
		return nil, fail(domain.Fail(domain.ErrNetwork, stage, "could not fetch market prices", err))
	}

	enter(domain.StageResolvingCoordinates)
	candidates, err := BuildCandidates(req.Commodity, records, f.locations)
	if err != nil {
		return nil, fail(err)
	}
	log.Debug("candidates resolved", zap.Int("records", len(records)), zap.Int("candidates", len(candidates)))

	enter(domain.StageFetchingRoutes)
	durations, err := f.fetchDurations(ctx, origin, candidates)
	if err != nil {
		return nil, fail(err)
	}

	enter(domain.StageRanking)
	evaluated := Evaluate(candidates, origin, durations, vehicle, req.Quantity, req.RoundTrip, role)
	report.Markets = Rank(evaluated, RankOptions{Role: role, Tagging: req.Tagging})

	enter(domain.StageDone)
	return report, nil
}

// locate never fails the request; the coordinate label is the fallback.
func (f *MarketFinder) locate(ctx context.Context, log *zap.Logger, origin domain.Coordinate) string {
	name, err := f.geocoder.PlaceName(ctx, origin)
	if err != nil || strings.TrimSpace(name) == "" {
		if err != nil {
			log.Info("reverse geocode failed, using coordinates", zap.Error(err))
		}
		return origin.Label()
	}
	return name
}

// fetchDurations issues one batched routing call for all candidates.
func (f *MarketFinder) fetchDurations(
	ctx context.Context,
	origin domain.Coordinate,
	candidates []domain.RankedMarket,
) ([]float64, error) {
	destinations := make([]domain.Coordinate, 0, len(candidates))
	for _, c := range candidates {
		destinations = append(destinations, c.Location)
	}

	durations, err := f.routes.Durations(ctx, origin, destinations)
	if err != nil {
		if errors.Is(err, domain.ErrRouteCalculationFailed) {
			return nil, domain.Fail(domain.ErrRouteCalculationFailed, domain.StageFetchingRoutes, "route calculation failed", err)
		}
		return nil, domain.Fail(domain.ErrNetwork, domain.StageFetchingRoutes, "could not reach the routing service", err)
	}

	if len(durations) != len(destinations) {
		return nil, domain.Fail(
			domain.ErrRouteCalculationFailed,
			domain.StageFetchingRoutes,
			"route calculation failed",
			fmt.Errorf("got %d durations for %d markets", len(durations), len(destinations)),
		)
	}
	for i, d := range durations {
		if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			return nil, domain.Fail(
				domain.ErrRouteCalculationFailed,
				domain.StageFetchingRoutes,
				"route calculation failed",
				fmt.Errorf("no route to %q", candidates[i].Market),
			)
		}
	}

	return durations, nil
}
