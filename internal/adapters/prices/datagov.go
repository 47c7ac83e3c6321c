package prices

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mandi-profit-service/internal/domain"
	"mandi-profit-service/internal/platform/httpx"
	"mandi-profit-service/internal/platform/obs"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultURL   = "https://api.data.gov.in/resource/9ef84268-d588-465a-a308-a864a43d0070"
	DefaultLimit = 200

	arrivalDateLayout = "02/01/2006"
)

// ErrMalformedRecord marks a price record that cannot be used as returned.
var ErrMalformedRecord = errors.New("malformed price record")

// number accepts a JSON string or number; the upstream sends both.
type number struct {
	raw string
	set bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n.raw, n.set = strings.TrimSpace(s), true
		return nil
	}
	n.raw, n.set = string(b), true
	return nil
}

// parse returns the value as a finite, non-negative float.
func (n number) parse() (float64, error) {
	if !n.set || n.raw == "" {
		return 0, errors.New("missing value")
	}
	v, err := strconv.ParseFloat(n.raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", n.raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("value %q out of range", n.raw)
	}
	return v, nil
}

type priceRecord struct {
	State       string `json:"state"`
	District    string `json:"district"`
	Market      string `json:"market"`
	Commodity   string `json:"commodity"`
	ArrivalDate string `json:"arrival_date"`
	MinPrice    number `json:"min_price"`
	MaxPrice    number `json:"max_price"`
	ModalPrice  number `json:"modal_price"`
}

type priceResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Records []priceRecord `json:"records"`
}

// DataGovSource implements ports.PriceSource with the data.gov.in daily mandi
// price resource.
type DataGovSource struct {
	client  *httpx.Client
	baseURL string
	apiKey  string
	limit   int
	logger  *zap.Logger
}

type DataGovConfig struct {
	BaseURL string
	APIKey  string
	Limit   int
}

func NewDataGovSource(client *httpx.Client, cfg DataGovConfig, logger *zap.Logger) (*DataGovSource, error) {
	if client == nil {
		return nil, errors.New("new data.gov.in source: http client is nil")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("new data.gov.in source: api key is empty")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultURL
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DataGovSource{
		client:  client,
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		limit:   limit,
		logger:  logger,
	}, nil
}

func (s *DataGovSource) FetchPrices(
	ctx context.Context,
	state string,
	commodity string,
) (_ []domain.MarketPriceRecord, err error) {
	defer obs.Time(ctx, s.logger, "datagov.FetchPrices")(&err)

	endpoint, err := s.queryURL(state, commodity)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	var pr priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode price response: %w", err)
	}
	if strings.EqualFold(pr.Status, "error") {
		return nil, fmt.Errorf("price source error: %s", pr.Message)
	}

	out := make([]domain.MarketPriceRecord, 0, len(pr.Records))
	for i, r := range pr.Records {
		rec, ok, err := convert(r)
		if err != nil {
			return nil, fmt.Errorf("price record #%d (%q): %w", i+1, r.Market, err)
		}
		if !ok {
			s.logger.Debug("skipping price record without market name", zap.Int("index", i))
			continue
		}
		out = append(out, rec)
	}

	return out, nil
}

func (s *DataGovSource) queryURL(state, commodity string) (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse price url: %w", err)
	}

	q := u.Query()
	q.Set("api-key", s.apiKey)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(s.limit))
	q.Set("filters[state.keyword]", state)
	q.Set("filters[commodity]", commodity)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// convert validates one upstream record. ok is false for records that carry
// no market name. A modal price that is not a finite non-negative number is
// an ErrMalformedRecord; min and max are informational and default to zero.
func convert(r priceRecord) (domain.MarketPriceRecord, bool, error) {
	market := strings.TrimSpace(r.Market)
	if market == "" {
		return domain.MarketPriceRecord{}, false, nil
	}

	modal, err := r.ModalPrice.parse()
	if err != nil {
		return domain.MarketPriceRecord{}, false, fmt.Errorf("modal_price: %v: %w", err, ErrMalformedRecord)
	}
	minPrice, _ := r.MinPrice.parse()
	maxPrice, _ := r.MaxPrice.parse()

	rec := domain.MarketPriceRecord{
		Market:     market,
		District:   strings.TrimSpace(r.District),
		State:      strings.TrimSpace(r.State),
		Commodity:  strings.TrimSpace(r.Commodity),
		ModalPrice: modal,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
	}
	if d, err := time.Parse(arrivalDateLayout, strings.TrimSpace(r.ArrivalDate)); err == nil {
		rec.ArrivalDate = &d
	}

	return rec, true, nil
}
