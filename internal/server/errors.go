// Package server provides the HTTP API for the resume generator.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/smart-resume/internal/enrich"
	"github.com/jonathan/smart-resume/internal/ingestion"
	"github.com/jonathan/smart-resume/internal/rendering"
	"github.com/jonathan/smart-resume/internal/schemas"
	"github.com/jonathan/smart-resume/internal/types"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUnavailable indicates a collaborator the route needs was not configured
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured on this server", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		requestErr    *types.ValidationError
		schemaErr     *schemas.ValidationError
		taskErr       *enrich.InvalidTaskError
		qrErr         *rendering.QRError
		unavailable   *ErrUnavailable
		tooLarge      *http.MaxBytesError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr), errors.As(err, &requestErr), errors.As(err, &schemaErr):
		return http.StatusBadRequest
	case errors.As(err, &taskErr):
		return http.StatusNotFound
	case errors.As(err, &qrErr):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ingestion.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, ingestion.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ingestion.ErrEmptyContent), errors.Is(err, ingestion.ErrContentExtractionFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ingestion.ErrHTTPRequestFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the text shown to API clients for err.
func errorMessage(err error) string {
	var requestErr *types.ValidationError
	if errors.As(err, &requestErr) {
		return requestErr.Message()
	}
	return err.Error()
}
