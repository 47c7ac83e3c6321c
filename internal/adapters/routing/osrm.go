package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mandi-profit-service/internal/domain"
	"mandi-profit-service/internal/platform/httpx"
	"mandi-profit-service/internal/platform/obs"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const DefaultOSRMURL = "https://router.project-osrm.org"

type tableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Durations [][]*float64 `json:"durations"`
}

// OSRMMatrix implements ports.RouteMatrixProvider with the OSRM table service.
// One call covers all destinations: the origin is source 0 and the
// destinations follow in input order.
//
// The provider is safe for concurrent use.
type OSRMMatrix struct {
	client  *httpx.Client
	baseURL string
	profile string
	logger  *zap.Logger
}

func NewOSRMMatrix(client *httpx.Client, baseURL string, logger *zap.Logger) (*OSRMMatrix, error) {
	if client == nil {
		return nil, errors.New("new osrm matrix: http client is nil")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OSRMMatrix{
		client:  client,
		baseURL: baseURL,
		profile: "driving",
		logger:  logger,
	}, nil
}

func (o *OSRMMatrix) Durations(
	ctx context.Context,
	origin domain.Coordinate,
	destinations []domain.Coordinate,
) (_ []float64, err error) {
	defer obs.Time(ctx, o.logger, "osrm.Durations")(&err)

	if len(destinations) == 0 {
		return []float64{}, nil
	}

	endpoint := o.tableURL(origin, destinations)

	resp, err := o.client.Get(ctx, endpoint)
	if err != nil {
		// A rejected query is a routing failure; 429, 5xx and transport errors
		// are left unwrapped and surface as network failures.
		var se *httpx.StatusError
		if errors.As(err, &se) && se.Code < 500 && se.Code != 429 {
			return nil, fmt.Errorf("osrm table: rejected (%v): %w", err, domain.ErrRouteCalculationFailed)
		}
		return nil, fmt.Errorf("osrm table request failed: %w", err)
	}
	defer resp.Body.Close()

	var tr tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode osrm table response: %w", err)
	}

	if tr.Code != "Ok" {
		return nil, fmt.Errorf("osrm table: code %q %s: %w", tr.Code, tr.Message, domain.ErrRouteCalculationFailed)
	}

	if len(tr.Durations) != 1 {
		return nil, fmt.Errorf("osrm table: expected 1 source row, got %d: %w", len(tr.Durations), domain.ErrRouteCalculationFailed)
	}

	// Column 0 is the origin itself.
	row := tr.Durations[0]
	if len(row) != 1+len(destinations) {
		return nil, fmt.Errorf(
			"osrm table: row length %d for %d destinations: %w",
			len(row), len(destinations), domain.ErrRouteCalculationFailed,
		)
	}

	out := make([]float64, 0, len(destinations))
	for i, seconds := range row[1:] {
		if seconds == nil {
			return nil, fmt.Errorf("osrm table: no route to %s: %w", destinations[i].Key(), domain.ErrRouteCalculationFailed)
		}
		out = append(out, *seconds)
	}

	return out, nil
}

// tableURL builds {base}/table/v1/{profile}/{lon,lat;...}?sources=0.
func (o *OSRMMatrix) tableURL(origin domain.Coordinate, destinations []domain.Coordinate) string {
	parts := make([]string, 0, 1+len(destinations))
	parts = append(parts, lonLat(origin))
	for _, d := range destinations {
		parts = append(parts, lonLat(d))
	}

	return fmt.Sprintf("%s/table/v1/%s/%s?sources=0", o.baseURL, o.profile, strings.Join(parts, ";"))
}

func lonLat(c domain.Coordinate) string {
	ll := c.CoordsToList()
	return strconv.FormatFloat(ll[0], 'f', -1, 64) + "," + strconv.FormatFloat(ll[1], 'f', -1, 64)
}
