package bookmarks

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/session"
	"github.com/leapstack-labs/sqlpilot/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the bookmarks feature.
type Handlers struct {
	engine *engine.Engine
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine) *Handlers {
	return &Handlers{engine: eng}
}

type saveRequest struct {
	Name string `json:"name"`
}

// SaveResponse carries the saved bookmark and any persistence warning.
type SaveResponse struct {
	Bookmark session.SavedQuery `json:"bookmark"`
	Warning  string             `json:"warning,omitempty"`
}

// List returns saved queries, newest first.
func (h *Handlers) List(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.engine.Bookmarks())
}

// Save bookmarks the displayed query under the posted name. A persistence
// failure still answers 201 with a warning, since the bookmark is kept.
func (h *Handlers) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	b, err := h.engine.SaveBookmark(r.Context(), req.Name)
	resp := SaveResponse{Bookmark: b}
	switch {
	case errors.Is(err, session.ErrPersistenceWriteFailed):
		resp.Warning = err.Error()
	case err != nil:
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, resp)
}

// Delete removes a bookmark. Unknown ids are not an error.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.engine.DeleteBookmark(r.Context(), chi.URLParam(r, "id"))
	if err != nil && !errors.Is(err, session.ErrPersistenceWriteFailed) {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Run resubmits a bookmark's question.
func (h *Handlers) Run(w http.ResponseWriter, r *http.Request) {
	item, err := h.engine.RunBookmark(r.Context(), chi.URLParam(r, "id"))
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
