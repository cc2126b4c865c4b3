package engine

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/sqlpilot/internal/backend"
)

var (
	// ErrSubmitInProgress rejects a submission while another is running.
	ErrSubmitInProgress = errors.New("a query is already running")

	// ErrEmptyQuery rejects a blank natural-language query.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrNothingToExplain is returned when no SQL is displayed.
	ErrNothingToExplain = errors.New("no SQL to explain")
)

// ExplainFallback is shown when the backend cannot explain a statement.
const ExplainFallback = "Could not generate explanation. Make sure your backend supports the /api/explain endpoint."

// Message renders err the way the session displays it.
func Message(err error) string {
	var rf *backend.RequestFailedError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, backend.ErrNoActiveConnection):
		return "Please connect to a database first"
	case errors.Is(err, backend.ErrBackendUnreachable):
		return "Cannot reach backend"
	case errors.As(err, &rf):
		return rf.Error()
	default:
		return err.Error()
	}
}

// ConnectError is a rejected connect request.
type ConnectError struct {
	Message string
	Err     error
}

func (e *ConnectError) Error() string {
	return e.Message
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

func newConnectError(err error) error {
	var rf *backend.RequestFailedError
	if !errors.As(err, &rf) {
		return err
	}
	msg := rf.Detail
	if msg == "" {
		msg = fmt.Sprintf("Connection failed (%d)", rf.StatusCode)
	}
	return &ConnectError{Message: msg, Err: err}
}
