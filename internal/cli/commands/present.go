package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/sqlpilot/internal/cli/output"
	"github.com/leapstack-labs/sqlpilot/internal/monitor"
	"github.com/leapstack-labs/sqlpilot/internal/session"
)

// renderDisplay writes the engine's displayed output: SQL, warning, rows and
// timing. Errors are left to the caller.
func renderDisplay(r *output.Renderer, d session.Display) error {
	if r.Mode() == output.ModeJSON {
		return r.JSON(d)
	}
	if d.SQL != "" {
		r.SQL(d.SQL)
		r.Println()
	}
	if d.Warning != "" {
		r.Warning(d.Warning)
	}
	if err := r.Rows(d.Rows, d.HasRows); err != nil {
		return err
	}
	if d.ExecutionTime != nil {
		r.Muted("Executed in " + formatSeconds(*d.ExecutionTime))
	}
	if d.Explanation != "" {
		r.Println()
		r.Println(d.Explanation)
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "s"
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

func renderHistory(r *output.Renderer, items []session.HistoryItem) error {
	if r.Mode() == output.ModeJSON {
		return r.JSON(items)
	}
	if len(items) == 0 {
		r.Muted("No queries yet")
		return nil
	}
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		t := ""
		if item.ExecutionTime != nil {
			t = formatSeconds(*item.ExecutionTime)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(item.Status),
			truncate(item.NaturalQuery, 48),
			strconv.Itoa(len(item.Rows)),
			t,
			formatTime(item.Timestamp),
		})
	}
	r.Table([]string{"#", "Status", "Query", "Rows", "Time", "At"}, rows)
	return nil
}

func renderBookmarks(r *output.Renderer, items []session.SavedQuery) error {
	if r.Mode() == output.ModeJSON {
		return r.JSON(items)
	}
	if len(items) == 0 {
		r.Muted("No saved queries")
		return nil
	}
	rows := make([][]string, 0, len(items))
	for i, b := range items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			shortID(b.ID),
			b.Name,
			truncate(b.NaturalQuery, 48),
			formatTime(b.SavedAt),
		})
	}
	r.Table([]string{"#", "ID", "Name", "Query", "Saved"}, rows)
	return nil
}

func renderSchema(r *output.Renderer, tables []session.TableInfo) error {
	if r.Mode() == output.ModeJSON {
		return r.JSON(tables)
	}
	if len(tables) == 0 {
		r.Muted("No tables")
		return nil
	}
	rows := make([][]string, 0, len(tables))
	for _, t := range tables {
		count := ""
		if t.RowCount != nil {
			count = strconv.FormatInt(*t.RowCount, 10)
		}
		rows = append(rows, []string{t.Name, strconv.Itoa(len(t.Columns)), count})
	}
	r.Table([]string{"Table", "Columns", "Rows"}, rows)
	return nil
}

func renderTable(r *output.Renderer, t session.TableInfo) error {
	if r.Mode() == output.ModeJSON {
		return r.JSON(t)
	}
	rows := make([][]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		key := ""
		if c.IsPrimary {
			key = "PK"
		}
		rows = append(rows, []string{c.Name, c.Type, key})
	}
	r.Printf("Table: %s\n", t.Name)
	r.Table([]string{"Column", "Type", "Key"}, rows)
	return nil
}

func renderStats(r *output.Renderer, s session.Stats) error {
	if r.Mode() == output.ModeJSON {
		return r.JSON(s)
	}
	avg, fastest := "-", "-"
	if s.AverageTime != nil {
		avg = formatSeconds(*s.AverageTime)
	}
	if s.FastestTime != nil {
		fastest = formatSeconds(*s.FastestTime)
	}
	r.Table([]string{"Total", "Success", "Errors", "Success Rate", "Average", "Fastest"}, [][]string{{
		strconv.Itoa(s.Total),
		strconv.Itoa(s.Success),
		strconv.Itoa(s.Errors),
		strconv.Itoa(s.SuccessRate) + "%",
		avg,
		fastest,
	}})
	return nil
}

func renderStatus(r *output.Renderer, st monitor.Status) error {
	if r.Mode() == output.ModeJSON {
		return r.JSON(st)
	}
	styles := r.Styles()
	switch {
	case st.Connected:
		r.Printf("%s %s\n", styles.Online.Render("CONNECTED"), st.BaseURL)
	case st.Reachable:
		r.Printf("%s %s (no database session)\n", styles.Offline.Render("NO DATABASE"), st.BaseURL)
	default:
		r.Printf("%s %s\n", styles.Offline.Render("UNREACHABLE"), st.BaseURL)
	}
	if st.DatabaseType != "" || st.DatabaseName != "" {
		r.Printf("Database: %s %s\n", st.DatabaseType, st.DatabaseName)
	}
	if st.Error != "" {
		r.Muted(st.Error)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveRef maps a 1-based index or an id prefix to an id.
func resolveRef(ref string, ids []string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("missing id")
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(ids) {
			return "", fmt.Errorf("index %d out of range (1-%d)", n, len(ids))
		}
		return ids[n-1], nil
	}
	match := ""
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", ref)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("no entry matches %q", ref)
	}
	return match, nil
}

func historyIDs(items []session.HistoryItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func bookmarkIDs(items []session.SavedQuery) []string {
	ids := make([]string, len(items))
	for i, b := range items {
		ids[i] = b.ID
	}
	return ids
}
