package domain

import (
	"errors"
	"fmt"
)

// Failure kinds of a ranking request. Each one is terminal for the request.
var (
	ErrMissingLocation        = errors.New("missing location")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrUnknownVehicle         = errors.New("unknown vehicle")
	ErrNoMarketsFound         = errors.New("no markets found")
	ErrRouteCalculationFailed = errors.New("route calculation failed")
	ErrNetwork                = errors.New("network error")
)

// Stage of the ranking pipeline.
type Stage string

const (
	StageIdle                 Stage = "idle"
	StageLocating             Stage = "locating"
	StageFetchingPrices       Stage = "fetching_prices"
	StageResolvingCoordinates Stage = "resolving_coordinates"
	StageFetchingRoutes       Stage = "fetching_routes"
	StageRanking              Stage = "ranking"
	StageDone                 Stage = "done"
	StageFailed               Stage = "failed"
)

// FailureError is a terminal pipeline failure. errors.Is matches both the Kind
// sentinel and the underlying cause.
type FailureError struct {
	Kind    error
	Stage   Stage
	Message string
	Err     error
}

func Fail(kind error, stage Stage, msg string, cause error) *FailureError {
	return &FailureError{Kind: kind, Stage: stage, Message: msg, Err: cause}
}

func (e *FailureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *FailureError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// FailureCode is the stable machine-readable code for err's kind.
func FailureCode(err error) string {
	switch {
	case errors.Is(err, ErrMissingLocation):
		return "MISSING_LOCATION"
	case errors.Is(err, ErrInvalidQuantity):
		return "INVALID_QUANTITY"
	case errors.Is(err, ErrUnknownVehicle):
		return "UNKNOWN_VEHICLE"
	case errors.Is(err, ErrNoMarketsFound):
		return "NO_MARKETS_FOUND"
	case errors.Is(err, ErrRouteCalculationFailed):
		return "ROUTE_CALCULATION_FAILED"
	case errors.Is(err, ErrNetwork):
		return "NETWORK_ERROR"
	}
	return "INTERNAL_ERROR"
}

// FailureMessage returns the human-readable message carried by err, or a
// generic one.
func FailureMessage(err error) string {
	var fe *FailureError
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return "an unexpected error occurred"
}
