package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrBackendUnreachable is returned when the backend cannot be reached,
	// or its health endpoint answers with a non-2xx status.
	ErrBackendUnreachable = errors.New("cannot reach backend")

	// ErrNoActiveConnection is returned when the backend is up but has no
	// live database session.
	ErrNoActiveConnection = errors.New("please connect to a database first")
)

// RequestFailedError is a non-2xx response from a backend endpoint.
type RequestFailedError struct {
	StatusCode int
	// Status is the full status line, e.g. "500 Internal Server Error".
	Status string
	// Detail is the backend's "detail" or "message" field, if any.
	Detail string
}

func (e *RequestFailedError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d", e.StatusCode)
	}
	return "API error: " + status
}

func newRequestFailed(resp *resty.Response) *RequestFailedError {
	e := &RequestFailedError{
		StatusCode: resp.StatusCode(),
		Status:     strings.TrimSpace(resp.Status()),
	}
	if obj, err := decodeObject(resp.Body()); err == nil {
		e.Detail = firstString(obj, errorDetailFields)
	}
	return e
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var rf *RequestFailedError
	if errors.As(err, &rf) {
		return rf.StatusCode
	}
	return 0
}
