package services

import (
	"context"
	"mandi-profit-service/internal/domain"
	"sync"
)

type fakePrices struct {
	records []domain.MarketPriceRecord
	err     error

	mu    sync.Mutex
	calls []string
}

func (f *fakePrices) FetchPrices(ctx context.Context, state, commodity string) ([]domain.MarketPriceRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, state+"|"+commodity)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

// fakeRoutes answers with resp verbatim when set, otherwise looks each
// destination up in byKey.
type fakeRoutes struct {
	byKey map[string]float64
	resp  []float64
	err   error

	mu    sync.Mutex
	calls [][]domain.Coordinate
}

func (f *fakeRoutes) Durations(ctx context.Context, origin domain.Coordinate, destinations []domain.Coordinate) ([]float64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]domain.Coordinate(nil), destinations...))
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	out := make([]float64, 0, len(destinations))
	for _, d := range destinations {
		out = append(out, f.byKey[d.Key()])
	}
	return out, nil
}

type fakeGeocoder struct {
	name string
	err  error
}

func (f *fakeGeocoder) PlaceName(ctx context.Context, c domain.Coordinate) (string, error) {
	return f.name, f.err
}

var (
	kottayam   = domain.Coordinate{Lat: 9.5916, Lon: 76.5222}
	ernakulam  = domain.Coordinate{Lat: 9.9816, Lon: 76.2999}
	nedumangad = domain.Coordinate{Lat: 8.6024, Lon: 76.9968}
	kollam     = domain.Coordinate{Lat: 8.8932, Lon: 76.6141}
	idukki     = domain.Coordinate{Lat: 9.85, Lon: 76.9667}
	trivandrum = domain.Coordinate{Lat: 8.5241, Lon: 76.9366}
)

func testLocations() *domain.LocationTable {
	return domain.NewLocationTable(
		map[string]domain.Coordinate{
			"Kottayam":        kottayam,
			"Ernakulam":       ernakulam,
			"Nedumangad APMC": nedumangad,
			"Kollam":          kollam,
		},
		map[string]domain.Coordinate{
			"Idukki":             idukki,
			"Thiruvananthapuram": trivandrum,
		},
	)
}

func testFleet() domain.Fleet {
	f, err := domain.NewFleet([]domain.Vehicle{
		{ID: "ace", Name: "Small Pickup", Rate: 20, Capacity: 10},
		{ID: "407", Name: "Medium Truck", Rate: 35, Capacity: 30},
		{ID: "lorry", Name: "Heavy Truck", Rate: 55, Capacity: 100},
	})
	if err != nil {
		panic(err)
	}
	return f
}

func record(market, district string, price float64) domain.MarketPriceRecord {
	return domain.MarketPriceRecord{Market: market, District: district, Commodity: "Banana", ModalPrice: price}
}
