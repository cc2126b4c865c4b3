package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/sqlpilot/internal/backend"
	"github.com/leapstack-labs/sqlpilot/internal/session"
)

// BrowseTablePrefix starts the query submitted for a table.
const BrowseTablePrefix = "Show all records from "

// Submit runs one natural-language query through the backend.
//
// The backend's health is re-probed first and the query is only sent when it
// reports a live database session. The outcome, success or failure, is
// displayed and recorded as the newest history item, which is returned along
// with the classified error. A call made while another is running returns
// ErrSubmitInProgress and changes nothing.
func (e *Engine) Submit(ctx context.Context, naturalQuery string) (session.HistoryItem, error) {
	if strings.TrimSpace(naturalQuery) == "" {
		return session.HistoryItem{}, ErrEmptyQuery
	}
	if !e.submitGate.TryAcquire(1) {
		return session.HistoryItem{}, ErrSubmitInProgress
	}
	defer e.submitGate.Release(1)

	e.session.BeginQuery(naturalQuery)

	start := time.Now()
	res, err := e.generate(ctx, naturalQuery)
	if err != nil {
		msg := Message(err)
		e.session.ShowError(msg)

		item := session.NewHistoryItem(naturalQuery, session.StatusError)
		item.Error = msg
		e.session.AppendHistory(item)

		e.logger.Info("query failed",
			slog.String("query", naturalQuery),
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return item, err
	}

	e.session.ShowResult(res.SQL, res.Rows, res.HasRows, res.ExecutionTime, res.Warning)

	item := session.NewHistoryItem(naturalQuery, session.StatusSuccess)
	item.SQL = res.SQL
	item.Rows = res.Rows
	item.ExecutionTime = res.ExecutionTime
	e.session.AppendHistory(item)

	e.logger.Info("query succeeded",
		slog.String("query", naturalQuery),
		slog.Int("rows", len(res.Rows)),
		slog.Duration("elapsed", time.Since(start)))
	return item, nil
}

// generate checks connectivity, then requests generation.
func (e *Engine) generate(ctx context.Context, naturalQuery string) (backend.Result, error) {
	api := e.APIConfig()
	client := e.backendClient()

	st := e.monitor.ProbeStatus(ctx, api.BaseURL)
	if err := ctx.Err(); err != nil {
		return backend.Result{}, err
	}
	if !st.Reachable {
		return backend.Result{}, fmt.Errorf("%w: %s", backend.ErrBackendUnreachable, st.Error)
	}
	if !st.Connected {
		return backend.Result{}, backend.ErrNoActiveConnection
	}

	return client.Generate(ctx, naturalQuery)
}

// RunBookmark resubmits a saved query's natural-language text.
func (e *Engine) RunBookmark(ctx context.Context, id string) (session.HistoryItem, error) {
	b, ok := e.session.Bookmark(id)
	if !ok {
		return session.HistoryItem{}, fmt.Errorf("bookmark %q: %w", id, session.ErrNotFound)
	}
	return e.Submit(ctx, b.NaturalQuery)
}

// BrowseTable submits a query listing every record of the named table.
func (e *Engine) BrowseTable(ctx context.Context, name string) (session.HistoryItem, error) {
	return e.Submit(ctx, BrowseTablePrefix+name)
}
