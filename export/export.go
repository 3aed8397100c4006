// Package export persists query results to local artifacts: CSV for
// spreadsheet triage, pretty-printed JSON for downstream tooling, and a
// small SQLite database for offline hunting. Writes are whole-file and
// overwrite in place; a failed write is fatal to the run.
package export

import (
	"encoding/csv"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// Row is a flat record keyed by column name. Values may be nil; nil renders
// as an empty cell.
type Row = map[string]any

// WriteCSV writes rows to path with a header row matching columns. Cells
// absent from a row render empty.
func WriteCSV(path string, rows []Row, columns []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		f.Close()
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = CellString(row[col])
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return f.Close()
}

// WriteJSON pretty-prints v to path.
func WriteJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create JSON file %s: %w", path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return f.Close()
}

// CellString renders a decoded JSON value for tabular output. Nil is empty;
// strings pass through; everything else uses the default formatting.
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
