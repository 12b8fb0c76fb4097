package remote

import (
	"errors"
	"fmt"
	"sort"
)

// APIError is a non-2xx answer from the API, normalized to one message plus
// optional per-field messages.
type APIError struct {
	Status      int
	Message     string
	FieldErrors map[string]string

	reported bool
}

func (e *APIError) Error() string { return e.Message }

// Fields returns the per-field messages so forms can show them inline.
func (e *APIError) Fields() map[string]string { return e.FieldErrors }

// Detail renders the field errors as "field: message" lines sorted by field.
func (e *APIError) Detail() []string {
	if len(e.FieldErrors) == 0 {
		return nil
	}
	keys := make([]string, 0, len(e.FieldErrors))
	for k := range e.FieldErrors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+e.FieldErrors[k])
	}
	return lines
}

// TransportError is any failure that did not produce an API answer:
// connection errors, timeouts, unreadable or undecodable bodies.
type TransportError struct {
	Op  string
	Err error

	reported bool
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Reported tells whether err was already shown to the user by the client.
// Callers use it to avoid notifying the same failure a second time.
func Reported(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.reported
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return tErr.reported
	}
	return false
}
