package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mandi-profit-service/internal/domain"
	"mandi-profit-service/internal/platform/httpx"
	"mandi-profit-service/internal/platform/obs"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

// ErrNoPlace means the geocoder knows no place at the coordinate.
var ErrNoPlace = errors.New("no place name for coordinate")

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// Nominatim implements ports.ReverseGeocoder with the OpenStreetMap
// Nominatim reverse endpoint.
type Nominatim struct {
	client  *httpx.Client
	baseURL string
	logger  *zap.Logger
}

func NewNominatim(client *httpx.Client, baseURL string, logger *zap.Logger) (*Nominatim, error) {
	if client == nil {
		return nil, errors.New("new nominatim: http client is nil")
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Nominatim{client: client, baseURL: baseURL, logger: logger}, nil
}

func (n *Nominatim) PlaceName(ctx context.Context, c domain.Coordinate) (_ string, err error) {
	defer obs.Time(ctx, n.logger, "nominatim.PlaceName")(&err)

	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	endpoint := n.baseURL + "/reverse?" + q.Encode()

	resp, err := n.client.Get(ctx, endpoint)
	if err != nil {
		return "", fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	var decoded reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode reverse geocode response: %w", err)
	}

	name := strings.TrimSpace(decoded.DisplayName)
	if name == "" {
		return "", fmt.Errorf("reverse geocode %s: %s: %w", c.Key(), decoded.Error, ErrNoPlace)
	}

	return name, nil
}
