package dto

import "mandi-profit-service/internal/domain"

type VehicleResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Rate     float64 `json:"rate"`
	Capacity float64 `json:"capacity"`
}

type ListVehicleResponse struct {
	Vehicles []VehicleResponse `json:"vehicles"`
}

type VehicleSelectionResponse struct {
	Quantity              float64         `json:"quantity"`
	Vehicle               VehicleResponse `json:"vehicle"`
	MultipleTripsRequired bool            `json:"multiple_trips_required"`
	Trips                 int             `json:"trips"`
}

type CommodityResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ListCommodityResponse struct {
	Commodities []CommodityResponse `json:"commodities"`
}

func NewVehicleResponse(v domain.Vehicle) VehicleResponse {
	return VehicleResponse{ID: v.ID, Name: v.Name, Rate: v.Rate, Capacity: v.Capacity}
}
