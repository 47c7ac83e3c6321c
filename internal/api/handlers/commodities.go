package handlers

import (
	"mandi-profit-service/internal/api/dto"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CommodityHandler struct {
	Commodities []dto.CommodityResponse
}

func (h *CommodityHandler) List(c *gin.Context) {
	res := dto.ListCommodityResponse{Commodities: h.Commodities}
	if res.Commodities == nil {
		res.Commodities = []dto.CommodityResponse{}
	}
	c.JSON(http.StatusOK, res)
}
