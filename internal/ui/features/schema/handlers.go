package schema

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/session"
	"github.com/leapstack-labs/sqlpilot/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the schema feature.
type Handlers struct {
	engine *engine.Engine
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine) *Handlers {
	return &Handlers{engine: eng}
}

// Response is the schema payload.
type Response struct {
	Tables  []session.TableInfo `json:"tables"`
	Loading bool                `json:"loading"`
}

// Schema returns the cached table list.
func (h *Handlers) Schema(w http.ResponseWriter, _ *http.Request) {
	tables, loading := h.engine.Schema()
	common.WriteJSON(w, http.StatusOK, Response{Tables: tables, Loading: loading})
}

// Refresh refetches the table list from the backend.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	tables := h.engine.RefreshSchema(r.Context())
	common.WriteJSON(w, http.StatusOK, Response{Tables: tables})
}

// Browse submits a query listing every record of a table.
func (h *Handlers) Browse(w http.ResponseWriter, r *http.Request) {
	item, err := h.engine.BrowseTable(r.Context(), chi.URLParam(r, "table"))
	if err != nil && item.ID == "" {
		common.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if err != nil {
		status = common.StatusFor(err)
	}
	common.WriteJSON(w, status, h.engine.Output())
}
