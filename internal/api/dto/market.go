package dto

import (
	"mandi-profit-service/internal/domain"
	"mandi-profit-service/internal/services"
)

const (
	arrivalDateLayout   = "2006-01-02"
	ApproximateLocation = "Location estimated: the top market was placed at its district centre"
)

type Location struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// Coordinate returns nil unless both fields are present.
func (l *Location) Coordinate() *domain.Coordinate {
	if l == nil || l.Lat == nil || l.Lng == nil {
		return nil
	}
	return &domain.Coordinate{Lat: *l.Lat, Lon: *l.Lng}
}

type RankRequest struct {
	Origin    *Location `json:"origin"`
	Commodity string    `json:"commodity"`
	Quantity  float64   `json:"quantity"`
	VehicleID string    `json:"vehicle_id"`
	// RoundTrip defaults to true when omitted.
	RoundTrip *bool  `json:"round_trip"`
	Role      string `json:"role"`
	Tagging   bool   `json:"tagging"`
}

type LocationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type MarketResponse struct {
	Market          string           `json:"market"`
	District        string           `json:"district"`
	State           string           `json:"state"`
	Commodity       string           `json:"commodity"`
	ModalPrice      float64          `json:"modal_price"`
	MinPrice        float64          `json:"min_price"`
	MaxPrice        float64          `json:"max_price"`
	ArrivalDate     string           `json:"arrival_date,omitempty"`
	Location        LocationResponse `json:"location"`
	IsApproximate   bool             `json:"is_approximate"`
	DistanceKm      float64          `json:"distance_km"`
	DurationMinutes int              `json:"duration_minutes"`
	Revenue         float64          `json:"revenue"`
	TransportCost   float64          `json:"transport_cost"`
	NetProfit       float64          `json:"net_profit"`
	Score           float64          `json:"score"`
	Tags            []string         `json:"tags,omitempty"`
}

type ReportResponse struct {
	Origin                LocationResponse `json:"origin"`
	OriginLabel           string           `json:"origin_label"`
	Commodity             string           `json:"commodity"`
	Quantity              float64          `json:"quantity"`
	Vehicle               VehicleResponse  `json:"vehicle"`
	RoundTrip             bool             `json:"round_trip"`
	MultipleTripsRequired bool             `json:"multiple_trips_required"`
	Trips                 int              `json:"trips"`
	Role                  string           `json:"role"`
	Markets               []MarketResponse `json:"markets"`
	TopPick               *MarketResponse  `json:"top_pick"`
	Warning               string           `json:"warning,omitempty"`
	Generation            uint64           `json:"generation,omitempty"`
}

func NewMarketResponse(m domain.RankedMarket) MarketResponse {
	res := MarketResponse{
		Market:          m.Market,
		District:        m.District,
		State:           m.State,
		Commodity:       m.Commodity,
		ModalPrice:      m.ModalPrice,
		MinPrice:        m.MinPrice,
		MaxPrice:        m.MaxPrice,
		Location:        LocationResponse{Lat: m.Location.Lat, Lng: m.Location.Lon},
		IsApproximate:   m.IsApproximate,
		DistanceKm:      m.DistanceKm,
		DurationMinutes: m.DurationMinutes,
		Revenue:         m.Revenue,
		TransportCost:   m.TransportCost,
		NetProfit:       m.NetProfit,
		Score:           m.Score,
	}
	if m.ArrivalDate != nil {
		res.ArrivalDate = m.ArrivalDate.Format(arrivalDateLayout)
	}
	for _, t := range m.Tags {
		res.Tags = append(res.Tags, string(t))
	}
	return res
}

func NewReportResponse(r *services.MarketReport, generation uint64) ReportResponse {
	res := ReportResponse{
		Origin:                LocationResponse{Lat: r.Origin.Lat, Lng: r.Origin.Lon},
		OriginLabel:           r.OriginLabel,
		Commodity:             r.Commodity,
		Quantity:              r.Quantity,
		Vehicle:               NewVehicleResponse(r.Vehicle),
		RoundTrip:             r.RoundTrip,
		MultipleTripsRequired: r.MultipleTripsRequired,
		Trips:                 r.Trips,
		Role:                  string(r.Role),
		Markets:               make([]MarketResponse, 0, len(r.Markets)),
		Generation:            generation,
	}
	for _, m := range r.Markets {
		res.Markets = append(res.Markets, NewMarketResponse(m))
	}

	if top := r.TopPick(); top != nil {
		pick := res.Markets[0]
		res.TopPick = &pick
		if top.IsApproximate {
			res.Warning = ApproximateLocation
		}
	}
	return res
}
