package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/maharani/glowbrief/internal/intake"
	"github.com/maharani/glowbrief/internal/validation"
)

// ErrSubmissionNotFound indicates the requested submission does not exist
type ErrSubmissionNotFound struct {
	ID uuid.UUID
}

func (e *ErrSubmissionNotFound) Error() string {
	return fmt.Sprintf("submission not found: %s", e.ID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *validation.ValidationError
	var notFoundErr *ErrSubmissionNotFound

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.Is(err, intake.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
