package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/sqlpilot/internal/session"
)

// NoRowsMessage is shown when a statement returned no result set.
const NoRowsMessage = "Query executed successfully (no rows returned)"

// Columns returns the union of row keys in sorted order.
func Columns(rows []session.Row) []string {
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range rows {
		for k := range row {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

// FormatValue renders a cell value, showing nil as NULL.
func FormatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

// Rows writes a result set in the renderer's mode. hasRows distinguishes a
// statement without a result set from an empty one.
func (r *Renderer) Rows(rows []session.Row, hasRows bool) error {
	if !hasRows {
		if r.mode == ModeJSON {
			return r.JSON([]session.Row{})
		}
		r.Muted(NoRowsMessage)
		return nil
	}

	switch r.mode {
	case ModeJSON:
		if rows == nil {
			rows = []session.Row{}
		}
		return r.JSON(rows)
	case ModeCSV:
		return WriteCSV(r.out, rows)
	case ModeMarkdown:
		return writeMarkdown(r.out, rows)
	default:
		return writeTable(r.out, rows)
	}
}

// Table writes a generic table with a header row.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	hdr := make(table.Row, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	t.AppendHeader(hdr)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, v := range row {
			tr[i] = v
		}
		t.AppendRow(tr)
	}
	t.Render()
}

func writeTable(w io.Writer, rows []session.Row) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	cols := Columns(rows)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, row := range rows {
		tr := make(table.Row, len(cols))
		for i, col := range cols {
			tr[i] = FormatValue(row[col])
		}
		t.AppendRow(tr)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

func writeMarkdown(w io.Writer, rows []session.Row) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	cols := Columns(rows)

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range rows {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = strings.ReplaceAll(FormatValue(row[col]), "|", `\|`)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

// WriteCSV writes rows as CSV. The header is bare; every value is quoted and
// nil becomes an empty string.
func WriteCSV(w io.Writer, rows []session.Row) error {
	cols := Columns(rows)
	if _, err := fmt.Fprintln(w, strings.Join(cols, ",")); err != nil {
		return err
	}
	for _, row := range rows {
		values := make([]string, len(cols))
		for i, col := range cols {
			values[i] = quoteCSV(row[col])
		}
		if _, err := fmt.Fprintln(w, strings.Join(values, ",")); err != nil {
			return err
		}
	}
	return nil
}

func quoteCSV(v any) string {
	s := ""
	if v != nil {
		s = fmt.Sprintf("%v", v)
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
