package query

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/session"
	"github.com/leapstack-labs/sqlpilot/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the query feature.
type Handlers struct {
	engine *engine.Engine
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine) *Handlers {
	return &Handlers{engine: eng}
}

type askRequest struct {
	Query string `json:"query"`
}

// AskResponse is returned by Ask on success and failure alike.
type AskResponse struct {
	Item   session.HistoryItem `json:"item"`
	Output session.Display     `json:"output"`
	Error  string              `json:"error,omitempty"`
}

// Ask submits a natural-language question.
func (h *Handlers) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	item, err := h.engine.Submit(r.Context(), req.Query)
	if err != nil && item.ID == "" {
		// Rejected before anything was recorded.
		common.WriteError(w, err)
		return
	}

	resp := AskResponse{Item: item, Output: h.engine.Output()}
	if err != nil {
		resp.Error = engine.Message(err)
		common.WriteJSON(w, common.StatusFor(err), resp)
		return
	}
	common.WriteJSON(w, http.StatusOK, resp)
}

// Output returns what is currently displayed.
func (h *Handlers) Output(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.engine.Output())
}

type sqlRequest struct {
	SQL string `json:"sql"`
}

type explainResponse struct {
	SQL         string `json:"sql"`
	Explanation string `json:"explanation"`
}

// Explain explains the posted SQL, or the displayed SQL when none is posted.
func (h *Handlers) Explain(w http.ResponseWriter, r *http.Request) {
	var req sqlRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	if sql := strings.TrimSpace(req.SQL); sql != "" {
		common.WriteJSON(w, http.StatusOK, explainResponse{SQL: sql, Explanation: h.engine.ExplainSQL(r.Context(), sql)})
		return
	}

	text, err := h.engine.Explain(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, explainResponse{SQL: h.engine.Output().SQL, Explanation: text})
}

// Validate checks the posted SQL.
func (h *Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	var req sqlRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	v, err := h.engine.Validate(r.Context(), req.SQL)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, v)
}

// History lists this session's submissions, newest first.
func (h *Handlers) History(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.engine.History())
}

// SelectHistory redisplays a past submission.
func (h *Handlers) SelectHistory(w http.ResponseWriter, r *http.Request) {
	if _, err := h.engine.SelectHistory(chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, h.engine.Output())
}

// Stats summarizes the history.
func (h *Handlers) Stats(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.engine.Stats())
}
