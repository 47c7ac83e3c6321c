package handlers

import (
	"mandi-profit-service/internal/api/dto"
	"mandi-profit-service/internal/domain"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// VehicleHandler exposes the fleet and the capacity-based vehicle suggestion.
type VehicleHandler struct {
	Fleet domain.Fleet
}

func (h *VehicleHandler) List(c *gin.Context) {
	vehicles := h.Fleet.Vehicles()
	res := dto.ListVehicleResponse{Vehicles: make([]dto.VehicleResponse, 0, len(vehicles))}
	for _, v := range vehicles {
		res.Vehicles = append(res.Vehicles, dto.NewVehicleResponse(v))
	}
	c.JSON(http.StatusOK, res)
}

// Select suggests the smallest vehicle that carries ?quantity= in one trip.
func (h *VehicleHandler) Select(c *gin.Context) {
	q, err := strconv.ParseFloat(c.Query("quantity"), 64)
	if err != nil || math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		writeError(c, http.StatusBadRequest, domain.FailureCode(domain.ErrInvalidQuantity), "please enter a valid quantity")
		return
	}

	v := h.Fleet.SelectVehicle(q)
	c.JSON(http.StatusOK, dto.VehicleSelectionResponse{
		Quantity:              q,
		Vehicle:               dto.NewVehicleResponse(v),
		MultipleTripsRequired: q > v.Capacity,
		Trips:                 domain.TripsRequired(q, v),
	})
}
