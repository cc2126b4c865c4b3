// Package common holds helpers shared by the UI feature handlers.
package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/leapstack-labs/sqlpilot/internal/backend"
	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/session"
	"github.com/leapstack-labs/sqlpilot/pkg/connstr"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an ErrorBody with a status derived from it.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusFor(err), ErrorBody{Error: engine.Message(err)})
}

// StatusFor maps an engine error to an HTTP status code.
func StatusFor(err error) int {
	var (
		rf *backend.RequestFailedError
		ce *engine.ConnectError
	)
	switch {
	case errors.Is(err, engine.ErrEmptyQuery),
		errors.Is(err, engine.ErrNothingToExplain),
		errors.Is(err, session.ErrEmptyName),
		errors.Is(err, session.ErrNothingToSave),
		errors.Is(err, connstr.ErrParseFailure),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrSubmitInProgress):
		return http.StatusConflict
	case errors.Is(err, backend.ErrNoActiveConnection),
		errors.Is(err, backend.ErrBackendUnreachable):
		return http.StatusServiceUnavailable
	case errors.As(err, &ce), errors.As(err, &rf):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

// DecodeJSON reads a JSON request body into v. An empty body leaves v
// untouched.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}

// BadRequest builds an error that maps to 400.
func BadRequest(msg string) error {
	return fmt.Errorf("%w: %s", errBadRequest, msg)
}
