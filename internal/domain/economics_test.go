package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeEconomics(t *testing.T) {
	pickup := Vehicle{ID: "ace", Rate: 20, Capacity: 10}

	tests := []struct {
		name      string
		price     float64
		quantity  float64
		distance  float64
		roundTrip bool
		want      Economics
	}{
		{"round trip", 1000, 10, 50, true, Economics{Revenue: 10000, TransportCost: 2000, NetProfit: 8000}},
		{"one way", 1000, 10, 50, false, Economics{Revenue: 10000, TransportCost: 1000, NetProfit: 9000}},
		{"loss is kept", 1000, 1, 50, true, Economics{Revenue: 1000, TransportCost: 2000, NetProfit: -1000}},
		{"cost is rounded", 100, 1, 12.3, false, Economics{Revenue: 100, TransportCost: 246, NetProfit: -146}},
		{"half rounds up", 100, 1, 0.025, true, Economics{Revenue: 100, TransportCost: 1, NetProfit: 99}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeEconomics(tt.price, tt.distance, pickup, tt.quantity, tt.roundTrip)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreFor(t *testing.T) {
	e := Economics{Revenue: 10000, TransportCost: 2000, NetProfit: 8000}

	assert.Equal(t, 8000.0, ScoreFor(RoleSeller, e))
	assert.Equal(t, -12000.0, ScoreFor(RoleBuyer, e))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("")
	assert.True(t, ok)
	assert.Equal(t, RoleSeller, r)

	r, ok = ParseRole("buyer")
	assert.True(t, ok)
	assert.Equal(t, RoleBuyer, r)

	_, ok = ParseRole("broker")
	assert.False(t, ok)
}
