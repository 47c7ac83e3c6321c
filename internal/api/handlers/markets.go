package handlers

import (
	"mandi-profit-service/internal/api/dto"
	"mandi-profit-service/internal/domain"
	"mandi-profit-service/internal/services"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxSessionKeyLen = 128

// MarketHandler serves market rankings, one-shot or per session.
type MarketHandler struct {
	Finder   services.MarketSearcher
	Sessions *services.SessionCalculator
	// KnownCommodity reports whether a commodity is in the vocabulary. Unknown
	// commodities are still sent to the price source.
	KnownCommodity func(string) bool
	Logger         *zap.Logger
}

// Rank handles POST /api/v1/markets/rank.
func (h *MarketHandler) Rank(c *gin.Context) {
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	report, err := h.Finder.FindBestMarkets(c.Request.Context(), req)
	if err != nil {
		writeFailure(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewReportResponse(report, 0))
}

// Calculate handles POST /api/v1/sessions/:session/calculations. A response
// for a calculation overtaken by a newer one of the same session is 409.
func (h *MarketHandler) Calculate(c *gin.Context) {
	session, ok := sessionKey(c)
	if !ok {
		return
	}
	req, ok := h.bindRequest(c)
	if !ok {
		return
	}

	out, accepted := h.Sessions.Calculate(c.Request.Context(), session, req)
	if !accepted {
		h.logger().Info("calculation superseded",
			zap.String("session", session),
			zap.Uint64("generation", out.Generation),
		)
		writeError(c, http.StatusConflict, CodeSuperseded, "a newer calculation for this session has started")
		return
	}

	writeOutcome(c, out)
}

// Result handles GET /api/v1/sessions/:session/result.
func (h *MarketHandler) Result(c *gin.Context) {
	session, ok := sessionKey(c)
	if !ok {
		return
	}

	out, ok := h.Sessions.Board.Latest(session)
	if !ok {
		writeError(c, http.StatusNotFound, CodeNotFound, "no result for this session yet")
		return
	}

	writeOutcome(c, out)
}

func writeOutcome(c *gin.Context, out services.Outcome) {
	if out.Err != nil {
		writeFailure(c, out.Err)
		return
	}
	c.JSON(http.StatusOK, dto.NewReportResponse(out.Report, out.Generation))
}

func (h *MarketHandler) bindRequest(c *gin.Context) (services.FindMarketsRequest, bool) {
	var body dto.RankRequest
	if !decodeJSON(c, &body) {
		return services.FindMarketsRequest{}, false
	}

	// Matched exactly by the price source; never trimmed.
	commodity := body.Commodity
	if strings.TrimSpace(commodity) == "" {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "commodity is required")
		return services.FindMarketsRequest{}, false
	}
	if commodity != strings.TrimSpace(commodity) {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "commodity must not have leading or trailing spaces")
		return services.FindMarketsRequest{}, false
	}
	if h.KnownCommodity != nil && !h.KnownCommodity(commodity) {
		h.logger().Info("commodity not in vocabulary", zap.String("commodity", commodity))
	}

	role, ok := domain.ParseRole(strings.TrimSpace(body.Role))
	if !ok {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "role must be seller or buyer")
		return services.FindMarketsRequest{}, false
	}

	origin := body.Origin.Coordinate()
	if origin != nil && !origin.Valid() {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "origin coordinates are out of range")
		return services.FindMarketsRequest{}, false
	}

	roundTrip := true
	if body.RoundTrip != nil {
		roundTrip = *body.RoundTrip
	}

	return services.FindMarketsRequest{
		Origin:    origin,
		Commodity: commodity,
		Quantity:  body.Quantity,
		VehicleID: strings.TrimSpace(body.VehicleID),
		RoundTrip: roundTrip,
		Role:      role,
		Tagging:   body.Tagging,
	}, true
}

func sessionKey(c *gin.Context) (string, bool) {
	s := strings.TrimSpace(c.Param("session"))
	if s == "" || len(s) > maxSessionKeyLen {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "session key must be 1 to 128 characters")
		return "", false
	}
	return s, true
}

func (h *MarketHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// NewSession handles POST /api/v1/sessions and hands out a fresh session key.
func (h *MarketHandler) NewSession(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"session": uuid.NewString()})
}
