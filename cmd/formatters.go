package cmd

import (
	"fmt"
	"strings"

	"tigerfetch/core"
	"tigerfetch/export"
)

// tabulate renders rows as an aligned text table in the caller's column
// order. Null and absent cells render empty; an empty row set renders
// "(no results)".
func tabulate(rows []export.Row, columns []string) string {
	if len(rows) == 0 {
		return "(no results)"
	}

	strRows := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = export.CellString(row[col])
		}
		strRows = append(strRows, cells)
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	for _, cells := range strRows {
		for i, cell := range cells {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	fmtRow := func(cells []string) string {
		padded := make([]string, len(columns))
		for i := range columns {
			padded[i] = pad(cells[i], widths[i])
		}
		return strings.Join(padded, " | ")
	}

	seps := make([]string, len(columns))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}

	var b strings.Builder
	b.WriteString(fmtRow(columns))
	b.WriteByte('\n')
	b.WriteString(strings.Join(seps, "-+-"))
	for _, cells := range strRows {
		b.WriteByte('\n')
		b.WriteString(fmtRow(cells))
	}
	return b.String()
}

// renderTable prints the tabulated rows to stdout.
func renderTable(rows []export.Row, columns []string) {
	fmt.Println(tabulate(rows, columns))
}

// pad left-justifies s to width.
func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// iocRows converts normalized IOC records to generic rows for the table
// and CSV presenters. Nullable fields become nil cells.
func iocRows(iocs []core.IOCRecord) []export.Row {
	rows := make([]export.Row, 0, len(iocs))
	for _, ioc := range iocs {
		rows = append(rows, export.Row{
			"analysis_guid": ioc.AnalysisGUID,
			"title":         ioc.Title,
			"analysed_at":   ioc.AnalysedAt,
			"source_name":   ioc.SourceName,
			"ioc_type":      deref(ioc.IOCType),
			"ioc_value":     deref(ioc.IOCValue),
			"confidence":    ioc.Confidence,
			"context":       deref(ioc.Context),
		})
	}
	return rows
}

// deref unwraps an optional string to an untyped cell value, keeping nil.
func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
