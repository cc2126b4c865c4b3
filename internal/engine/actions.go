package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/sqlpilot/internal/backend"
	"github.com/leapstack-labs/sqlpilot/internal/session"
)

// RefreshSchema fetches the schema and replaces the cached snapshot. A failed
// fetch leaves an empty schema.
func (e *Engine) RefreshSchema(ctx context.Context) []session.TableInfo {
	e.session.BeginSchemaLoad()

	tables, err := e.backendClient().Schema(ctx)
	if err != nil {
		e.logger.Warn("schema fetch failed", slog.String("error", err.Error()))
		e.session.FailSchemaLoad()
		return []session.TableInfo{}
	}

	e.session.ReplaceSchema(tables)
	e.logger.Debug("schema refreshed", slog.Int("tables", len(tables)))
	return tables
}

// Explain returns a plain-language explanation of the displayed SQL. The
// answer is cached until the displayed SQL changes; a backend failure yields
// ExplainFallback.
func (e *Engine) Explain(ctx context.Context) (string, error) {
	d := e.session.Display()
	if d.SQL == "" {
		return "", ErrNothingToExplain
	}
	if d.Explanation != "" {
		return d.Explanation, nil
	}

	text := e.ExplainSQL(ctx, d.SQL)
	e.session.SetExplanation(d.SQL, text)
	return text, nil
}

// ExplainSQL explains arbitrary SQL without touching the session.
func (e *Engine) ExplainSQL(ctx context.Context, sql string) string {
	text, err := e.backendClient().Explain(ctx, sql)
	if err != nil {
		e.logger.Warn("explain failed", slog.String("error", err.Error()))
		return ExplainFallback
	}
	return text
}

// Validate asks the backend whether sql is well formed.
func (e *Engine) Validate(ctx context.Context, sql string) (backend.Validation, error) {
	if strings.TrimSpace(sql) == "" {
		return backend.Validation{}, ErrEmptyQuery
	}
	return e.backendClient().Validate(ctx, sql)
}

// Connect asks the backend to open a database session. On success the
// connectivity is re-probed and the schema refreshed.
func (e *Engine) Connect(ctx context.Context, req backend.ConnectRequest) (string, error) {
	msg, err := e.backendClient().Connect(ctx, req)
	if err != nil {
		return "", newConnectError(err)
	}

	e.logger.Info("database connected", slog.String("message", msg))
	if e.Probe(ctx).Connected {
		e.RefreshSchema(ctx)
	}
	return msg, nil
}

// Disconnect closes the backend's database session. Failures are logged and
// otherwise ignored.
func (e *Engine) Disconnect(ctx context.Context) {
	if err := e.backendClient().Disconnect(ctx); err != nil {
		e.logger.Warn("disconnect failed", slog.String("error", err.Error()))
	}
	e.session.ReplaceSchema(nil)
	e.Probe(ctx)
}

// SaveBookmark saves the displayed query under name. A persistence failure
// is returned, but the bookmark is kept for this session.
func (e *Engine) SaveBookmark(ctx context.Context, name string) (session.SavedQuery, error) {
	d := e.session.Display()
	return e.session.SaveBookmark(ctx, name, d.NaturalQuery, d.SQL)
}

// DeleteBookmark removes a bookmark. Unknown ids are ignored.
func (e *Engine) DeleteBookmark(ctx context.Context, id string) error {
	return e.session.DeleteBookmark(ctx, id)
}

// SelectHistory redisplays a past submission.
func (e *Engine) SelectHistory(id string) (session.HistoryItem, error) {
	item, ok := e.session.HistoryItem(id)
	if !ok {
		return session.HistoryItem{}, fmt.Errorf("history item %q: %w", id, session.ErrNotFound)
	}
	e.session.ShowHistoryItem(item)
	return item, nil
}
