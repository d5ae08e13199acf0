// ABOUTME: Error normalization for remote failures from the sweet shop service.
// ABOUTME: Maps HTTP error responses into APIError with classification helpers.

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the service. Detail is the
// human-readable message from the error body, empty if the body carried none.
type APIError struct {
	StatusCode int
	Detail     string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// IsAuth reports whether err is a 401/403 response: a missing, invalid, or
// expired credential, or insufficient role.
func IsAuth(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// IsNotFound reports whether err is a 404 response, e.g. an operation against
// a sweet deleted by another session.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsConflict reports whether err is a 400/409 business rejection, e.g. a
// purchase against zero stock.
func IsConflict(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusConflict
}

// errorBody is the JSON shape of service error responses.
type errorBody struct {
	Detail string `json:"detail"`
}
