package reference

import (
	_ "embed"
	"errors"
	"fmt"
	"mandi-profit-service/internal/domain"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Data is the on-disk reference data shape (YAML).
type Data struct {
	Vehicles    []VehicleConfig       `yaml:"vehicles"`
	Commodities []Commodity           `yaml:"commodities"`
	Markets     map[string]Coordinate `yaml:"markets"`
	Districts   map[string]Coordinate `yaml:"districts"`
}

type VehicleConfig struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Rate     float64 `yaml:"rate"`
	Capacity float64 `yaml:"capacity"`
}

// Commodity ID is the exact spelling the price source expects; Name is for
// display.
type Commodity struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

type Coordinate struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// Tables is validated, immutable reference data ready for injection.
type Tables struct {
	Fleet       domain.Fleet
	Locations   *domain.LocationTable
	Commodities []Commodity
}

// HasCommodity reports whether id is in the commodity vocabulary.
func (t *Tables) HasCommodity(id string) bool {
	for _, c := range t.Commodities {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Load reads path, or the embedded default when path is empty, and validates it.
func Load(path string) (*Tables, error) {
	raw := defaultYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load reference data: %w", err)
		}
		raw = b
	}

	d, err := Parse(raw)
	if err != nil {
		if path == "" {
			path = "embedded default"
		}
		return nil, fmt.Errorf("load reference data %s: %w", path, err)
	}
	return d.Build()
}

// Parse decodes YAML without validating it.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Data) Validate() error {
	if d == nil {
		return errors.New("reference data is nil")
	}
	if len(d.Vehicles) == 0 {
		return errors.New("vehicles: at least one vehicle is required")
	}

	seen := map[string]struct{}{}
	for i, c := range d.Commodities {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("commodities[%d]: id is required", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("commodities[%d]: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	if len(d.Markets) == 0 && len(d.Districts) == 0 {
		return errors.New("markets: no market or district coordinates")
	}
	for name, c := range d.Markets {
		if !c.domain().Valid() {
			return fmt.Errorf("markets[%q]: coordinate out of range", name)
		}
	}
	for name, c := range d.Districts {
		if !c.domain().Valid() {
			return fmt.Errorf("districts[%q]: coordinate out of range", name)
		}
	}
	return nil
}

// Build validates d and converts it into domain tables.
func (d *Data) Build() (*Tables, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	vehicles := make([]domain.Vehicle, 0, len(d.Vehicles))
	for _, v := range d.Vehicles {
		vehicles = append(vehicles, domain.Vehicle{ID: v.ID, Name: v.Name, Rate: v.Rate, Capacity: v.Capacity})
	}
	fleet, err := domain.NewFleet(vehicles)
	if err != nil {
		return nil, fmt.Errorf("vehicles: %w", err)
	}

	markets := make(map[string]domain.Coordinate, len(d.Markets))
	for name, c := range d.Markets {
		markets[name] = c.domain()
	}
	districts := make(map[string]domain.Coordinate, len(d.Districts))
	for name, c := range d.Districts {
		districts[name] = c.domain()
	}

	return &Tables{
		Fleet:       fleet,
		Locations:   domain.NewLocationTable(markets, districts),
		Commodities: append([]Commodity(nil), d.Commodities...),
	}, nil
}

func (c Coordinate) domain() domain.Coordinate {
	return domain.Coordinate{Lat: c.Lat, Lon: c.Lon}
}
