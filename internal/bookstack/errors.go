package bookstack

import (
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the BookStack API. 429 and 5xx
// responses are retried before one of these surfaces; other 4xx responses
// fail immediately with the response body attached.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s failed [%d]: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Transient reports whether the response is worth retrying.
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || (e.StatusCode >= 500 && e.StatusCode <= 599)
}

// NotFoundError reports a named remote entity that must already exist, such
// as the target book.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found (exact name required)", e.Kind, e.Name)
}
