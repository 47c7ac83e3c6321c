package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mandi-profit-service/internal/api/dto"
	"mandi-profit-service/internal/domain"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeSuperseded     = "SUPERSEDED"
	CodeNotFound       = "NOT_FOUND"
)

func writeError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: dto.ErrorBody{Code: code, Message: msg}})
}

// writeFailure maps a pipeline failure onto its HTTP status and stable code.
func writeFailure(c *gin.Context, err error) {
	writeError(c, failureStatus(err), domain.FailureCode(err), domain.FailureMessage(err))
}

func failureStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingLocation),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrUnknownVehicle):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoMarketsFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRouteCalculationFailed),
		errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// decodeJSON reads exactly one JSON object with no unknown fields.
func decodeJSON(c *gin.Context, v any) bool {
	dec := json.NewDecoder(c.Request.Body)
	defer c.Request.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(c, http.StatusBadRequest, CodeInvalidRequest, "body must contain only one JSON object")
		return false
	}
	return true
}
