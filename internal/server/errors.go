package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/skill-matcher/internal/db"
)

// ErrPostingNotFound indicates the posting id is not in the loaded dataset
type ErrPostingNotFound struct {
	ID string
}

func (e *ErrPostingNotFound) Error() string {
	return fmt.Sprintf("posting not found: %s", e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates an endpoint whose backing service is not configured
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured", e.Feature)
}

// ErrBusy indicates a conflicting operation is already running
type ErrBusy struct {
	Operation string
}

func (e *ErrBusy) Error() string {
	return fmt.Sprintf("%s already in progress", e.Operation)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound    *ErrPostingNotFound
		validation  *ErrValidation
		unavailable *ErrUnavailable
		busy        *ErrBusy
	)
	switch {
	case errors.As(err, &notFound), errors.Is(err, db.ErrRunNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &busy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
