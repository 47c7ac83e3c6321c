package prices

import (
	"context"
	"io"
	"mandi-profit-service/internal/domain"
	"mandi-profit-service/internal/platform/httpx"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSource(t *testing.T, handler http.HandlerFunc) *DataGovSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewDataGovSource(httpx.New(time.Second, "", 0), DataGovConfig{
		BaseURL: srv.URL + "/resource/abc",
		APIKey:  "secret",
		Limit:   50,
	}, nil)
	require.NoError(t, err)
	return s
}

func TestFetchPricesQueryAndParsing(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/resource/abc", r.URL.Path)
		assert.Equal(t, "secret", q.Get("api-key"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.Equal(t, "Kerala", q.Get("filters[state.keyword]"))
		assert.Equal(t, "Black pepper", q.Get("filters[commodity]"))

		_, _ = io.WriteString(w, `{"status":"ok","records":[
			{"state":"Kerala","district":"Kottayam","market":"Kottayam","commodity":"Black pepper",
			 "arrival_date":"14/10/2026","min_price":"48000","max_price":"52000","modal_price":"50000"},
			{"state":"Kerala","district":"Ernakulam","market":" Ernakulam ","commodity":"Black pepper",
			 "arrival_date":"yesterday","min_price":"","max_price":51000,"modal_price":49500.5},
			{"state":"Kerala","district":"Idukki","market":"","modal_price":"1"}
		]}`)
	})

	got, err := s.FetchPrices(context.Background(), "Kerala", "Black pepper")
	require.NoError(t, err)
	require.Len(t, got, 2, "records without a market name are skipped")

	assert.Equal(t, "Kottayam", got[0].Market)
	assert.Equal(t, "Kottayam", got[0].District)
	assert.Equal(t, 50000.0, got[0].ModalPrice)
	assert.Equal(t, 48000.0, got[0].MinPrice)
	assert.Equal(t, 52000.0, got[0].MaxPrice)
	require.NotNil(t, got[0].ArrivalDate)
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), *got[0].ArrivalDate)

	assert.Equal(t, "Ernakulam", got[1].Market)
	assert.Equal(t, 49500.5, got[1].ModalPrice)
	assert.Equal(t, 0.0, got[1].MinPrice)
	assert.Equal(t, 51000.0, got[1].MaxPrice)
	assert.Nil(t, got[1].ArrivalDate)
}

func TestFetchPricesEmpty(t *testing.T) {
	s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"ok","records":[]}`)
	})

	got, err := s.FetchPrices(context.Background(), "Kerala", "Cardamom")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchPricesMalformedModalPrice(t *testing.T) {
	for _, modal := range []string{`"abc"`, `"-5"`, `""`, `null`, `"NaN"`, `"Inf"`} {
		t.Run(modal, func(t *testing.T) {
			s := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"records":[{"market":"Kollam","modal_price":`+modal+`}]}`)
			})

			_, err := s.FetchPrices(context.Background(), "Kerala", "Banana")
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestFetchPricesUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"status error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"records":`)
		}},
		{"error status in body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"status":"error","message":"invalid api key"}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestSource(t, tt.handler).FetchPrices(context.Background(), "Kerala", "Banana")
			require.Error(t, err)
			assert.NotErrorIs(t, err, domain.ErrNoMarketsFound)
		})
	}
}

func TestNewDataGovSourceValidation(t *testing.T) {
	_, err := NewDataGovSource(httpx.New(time.Second, "", 0), DataGovConfig{}, nil)
	assert.ErrorContains(t, err, "api key is empty")

	_, err = NewDataGovSource(nil, DataGovConfig{APIKey: "k"}, nil)
	assert.Error(t, err)

	s, err := NewDataGovSource(httpx.New(time.Second, "", 0), DataGovConfig{APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultURL, s.baseURL)
	assert.Equal(t, DefaultLimit, s.limit)
}
