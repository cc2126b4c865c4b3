package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/sqlpilot/internal/cli/output"
	"github.com/leapstack-labs/sqlpilot/internal/session"
)

// Export formats.
const (
	ExportCSV  = "csv"
	ExportJSON = "json"
	ExportSQL  = "sql"
)

var (
	errNoResults = errors.New("no results to export")
	errNoSQL     = errors.New("no SQL to export")
)

// Export writes the displayed result in format. csv and json export the
// rows; sql exports the statement text.
func Export(w io.Writer, d session.Display, format string) error {
	switch format {
	case ExportCSV:
		if len(d.Rows) == 0 {
			return errNoResults
		}
		return output.WriteCSV(w, d.Rows)
	case ExportJSON:
		if len(d.Rows) == 0 {
			return errNoResults
		}
		return output.WriteJSON(w, d.Rows)
	case ExportSQL:
		if d.SQL == "" {
			return errNoSQL
		}
		_, err := io.WriteString(w, d.SQL)
		return err
	default:
		return fmt.Errorf("unknown export format %q (csv|json|sql)", format)
	}
}

// ExportFile writes the export to path, creating or truncating it.
func ExportFile(path string, d session.Display, format string) (err error) {
	// Validate before touching the file system.
	if err := Export(io.Discard, d, format); err != nil {
		return err
	}

	f, err := os.Create(path) //nolint:gosec // path comes from the user
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return Export(f, d, format)
}

func formatFromPath(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case ExportCSV, ExportJSON, ExportSQL:
		return ext, nil
	default:
		return "", fmt.Errorf("cannot infer export format from %q (use .csv, .json or .sql)", path)
	}
}
