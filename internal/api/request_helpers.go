package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/docqa-api/internal/domain"
)

// Pagination bounds for list endpoints.
const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// getPathID extracts a positive integer ID from the URL path parameters.
//
// Returns a domain.ValidationError if the parameter is missing or not a
// positive base-10 integer.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "must be a positive integer", domain.ErrInvalidID)
	}

	return id, nil
}

// getPagination reads the limit and offset query parameters.
// A missing limit defaults to DefaultListLimit; larger values are capped at MaxListLimit.
func getPagination(r *http.Request) (limit, offset int, err error) {
	limit, err = queryInt(r, "limit", DefaultListLimit)
	if err != nil {
		return 0, 0, err
	}
	if limit <= 0 {
		return 0, 0, domain.NewValidationError("limit", "must be a positive integer", domain.ErrValidation)
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	offset, err = queryInt(r, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	if offset < 0 {
		return 0, 0, domain.NewValidationError("offset", "cannot be negative", domain.ErrValidation)
	}

	return limit, offset, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, "must be an integer", domain.ErrValidation)
	}
	return v, nil
}
