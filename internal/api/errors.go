package api

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse marks a 2xx response whose body lacks required fields.
var ErrInvalidResponse = errors.New("invalid response format")

// APIError is returned for non-2xx responses.
type APIError struct {
	Status  int
	Path    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
}

// Message extracts the user-facing text from err: the server's error string
// for an *APIError, otherwise err's own text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
