package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/salao-caixa/caixa-backend/internal/domain"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation = "https://caixa.app/errors/validation"
	ErrorTypeNotFound   = "https://caixa.app/errors/not-found"
	ErrorTypeConflict   = "https://caixa.app/errors/conflict"
	ErrorTypeStorage    = "https://caixa.app/errors/storage"
	ErrorTypeInternal   = "https://caixa.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewStorageError creates a response for a persistence failure that survived the retry
func NewStorageError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeStorage,
		Title:    "Storage Unavailable",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// handleError maps a service error to its problem details response.
// action completes "Failed to ..." in the log and the response detail.
func handleError(c echo.Context, err error, action string) error {
	var verr *domain.ValidationError
	var perr *domain.PersistenceError
	switch {
	case errors.As(err, &verr):
		return NewValidationError(c, "Validation failed", toValidationErrors(verr))
	case errors.Is(err, domain.ErrMovementNotFound):
		return NewNotFoundError(c, "Movement not found")
	case errors.Is(err, domain.ErrServiceNotFound):
		return NewNotFoundError(c, "Service not found")
	case errors.Is(err, domain.ErrServiceExists):
		return NewConflictError(c, "A service with this id already exists")
	case errors.As(err, &perr):
		log.Error().Err(err).Str("op", perr.Op).Msg("Failed to " + action)
		return NewStorageError(c, "Failed to "+action+", please try again")
	default:
		log.Error().Err(err).Msg("Failed to " + action)
		return NewInternalError(c, "Failed to "+action)
	}
}

func toValidationErrors(verr *domain.ValidationError) []ValidationError {
	out := make([]ValidationError, len(verr.Fields))
	for i, f := range verr.Fields {
		out[i] = ValidationError{Field: f.Field, Message: f.Message}
	}
	return out
}
