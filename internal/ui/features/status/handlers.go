package status

import (
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/sqlpilot/internal/backend"
	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/monitor"
	"github.com/leapstack-labs/sqlpilot/internal/ui/features/common"
	"github.com/leapstack-labs/sqlpilot/pkg/connstr"
)

// Handlers provides HTTP handlers for the status feature.
type Handlers struct {
	engine *engine.Engine
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine) *Handlers {
	return &Handlers{engine: eng}
}

// Signals is the datastar signal payload pushed by Stream.
type Signals struct {
	Status monitor.Status `json:"status"`
}

// Status returns the last probe result without probing.
func (h *Handlers) Status(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.engine.Status())
}

// Probe checks the backend now.
func (h *Handlers) Probe(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.engine.Probe(r.Context()))
}

// Stream is the long-lived SSE endpoint pushing connectivity changes. The
// current status is sent first, then every change.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	updates := h.engine.Subscribe()
	defer h.engine.Unsubscribe(updates)

	sse := datastar.NewSSE(w, r)
	if err := sse.MarshalAndPatchSignals(Signals{Status: h.engine.Status()}); err != nil {
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := sse.MarshalAndPatchSignals(Signals{Status: st}); err != nil {
				return
			}
		}
	}
}

// Config returns the backend location.
func (h *Handlers) Config(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.engine.APIConfig())
}

// Reconfigure points the engine at a new backend location.
func (h *Handlers) Reconfigure(w http.ResponseWriter, r *http.Request) {
	api := h.engine.APIConfig()
	if err := common.DecodeJSON(r, &api); err != nil {
		common.WriteError(w, err)
		return
	}
	h.engine.Reconfigure(api)
	common.WriteJSON(w, http.StatusOK, h.engine.APIConfig())
}

type connectRequest struct {
	ConnectionString string `json:"connection_string"`
	connstr.Descriptor
}

type connectResponse struct {
	Message string         `json:"message"`
	Status  monitor.Status `json:"status"`
}

// Connect opens a database session from a URI or descriptor fields.
func (h *Handlers) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	creq, err := req.toBackend()
	if err != nil {
		common.WriteError(w, err)
		return
	}

	msg, err := h.engine.Connect(r.Context(), creq)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, connectResponse{Message: msg, Status: h.engine.Status()})
}

func (c connectRequest) toBackend() (backend.ConnectRequest, error) {
	if c.ConnectionString != "" {
		if _, err := connstr.Parse(c.ConnectionString); err != nil {
			return backend.ConnectRequest{}, err
		}
		return backend.ConnectRequest{ConnectionString: c.ConnectionString}, nil
	}
	if c.Dialect == "" || c.Database == "" {
		return backend.ConnectRequest{}, common.BadRequest("connection_string or db_type and database are required")
	}

	d := c.Descriptor
	d.Dialect = ""
	d = d.WithDialect(c.Dialect)
	if c.Port != 0 {
		d.Port = c.Port
	}
	if d.Host == "" {
		d.Host = connstr.DefaultHost
	}
	return backend.ConnectRequest{Descriptor: d}, nil
}

// Disconnect closes the database session. Backend failures are ignored.
func (h *Handlers) Disconnect(w http.ResponseWriter, r *http.Request) {
	h.engine.Disconnect(r.Context())
	common.WriteJSON(w, http.StatusOK, h.engine.Status())
}
