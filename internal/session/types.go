// Package session holds the state of one interactive session: query history,
// bookmarks, the schema snapshot and the explanation of the displayed SQL.
package session

import (
	"encoding/json"
	"time"
)

// Row is one result row keyed by column name.
type Row = map[string]any

// Status of a history item.
type Status string

// History item statuses.
const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// HistoryItem records one submission. Items are never modified once appended.
type HistoryItem struct {
	ID           string    `json:"id"`
	NaturalQuery string    `json:"naturalQuery"`
	SQL          string    `json:"sql"`
	Timestamp    time.Time `json:"timestamp"`
	Status       Status    `json:"status"`
	// ExecutionTime is nil when the backend did not report one.
	ExecutionTime *float64 `json:"executionTime,omitempty"`
	Rows          []Row    `json:"results,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// Succeeded reports whether the item has success status.
func (h HistoryItem) Succeeded() bool {
	return h.Status == StatusSuccess
}

// SavedQuery is a named bookmark of a natural-language query and its SQL.
type SavedQuery struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	NaturalQuery string    `json:"naturalQuery"`
	SQL          string    `json:"sql"`
	SavedAt      time.Time `json:"savedAt"`
}

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Name      string `json:"name" mapstructure:"name"`
	Type      string `json:"type" mapstructure:"type"`
	Nullable  bool   `json:"nullable" mapstructure:"nullable"`
	IsPrimary bool   `json:"isPrimary" mapstructure:"isPrimary"`
}

// TableInfo describes one table of the connected database.
type TableInfo struct {
	Name     string       `json:"name" mapstructure:"name"`
	Columns  []ColumnInfo `json:"columns" mapstructure:"columns"`
	RowCount *int64       `json:"rowCount,omitempty" mapstructure:"rowCount"`
}

// savedQueryRecord is the persisted form of a bookmark. SavedAt is kept as a
// string so one malformed entry does not poison the whole collection.
type savedQueryRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	NaturalQuery string `json:"naturalQuery"`
	SQL          string `json:"sql"`
	SavedAt      string `json:"savedAt"`
}

// EncodeBookmarks renders bookmarks in their persisted JSON form.
func EncodeBookmarks(items []SavedQuery) ([]byte, error) {
	records := make([]savedQueryRecord, 0, len(items))
	for _, q := range items {
		records = append(records, savedQueryRecord{
			ID:           q.ID,
			Name:         q.Name,
			NaturalQuery: q.NaturalQuery,
			SQL:          q.SQL,
			SavedAt:      q.SavedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	return json.Marshal(records)
}

// DecodeBookmarks parses the persisted form. Entries whose savedAt does not
// parse are returned separately as dropped.
func DecodeBookmarks(data []byte) (kept []SavedQuery, dropped []string, err error) {
	var records []savedQueryRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, err
	}
	kept = make([]SavedQuery, 0, len(records))
	for _, r := range records {
		ts, err := parseTimestamp(r.SavedAt)
		if err != nil {
			dropped = append(dropped, r.ID)
			continue
		}
		kept = append(kept, SavedQuery{
			ID:           r.ID,
			Name:         r.Name,
			NaturalQuery: r.NaturalQuery,
			SQL:          r.SQL,
			SavedAt:      ts,
		})
	}
	return kept, dropped, nil
}

func parseTimestamp(s string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return ts, nil
	}
	// ISO strings without a zone, as written by some clients.
	return time.Parse("2006-01-02T15:04:05.999999999", s)
}
