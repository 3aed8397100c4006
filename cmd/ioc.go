package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"tigerfetch/core"
	"tigerfetch/export"
)

// iocProjection is the fixed select list for IOC extraction: the identity
// fields plus the embedded payload, skipping the heavy content column.
const iocProjection = "analysis_guid,title,analysed_at,source_name,key_iocs"

// iocTableColumns is the default table view for extracted IOCs.
var iocTableColumns = []string{
	"ioc_type", "ioc_value", "confidence", "source_name", "analysed_at", "analysis_guid",
}

// iocCSVColumns is the fixed CSV header for --out-csv.
var iocCSVColumns = []string{
	"ioc_type", "ioc_value", "confidence", "context", "source_name", "analysed_at", "analysis_guid", "title",
}

// newIOCCmd creates the 'ioc' subcommand: fetch recent analyses and flatten
// their embedded indicators for hunting.
func newIOCCmd() *cobra.Command {
	var (
		since       string
		severities  []string
		contains    string
		detectTypes bool
		offset      int
		limit       int
		columns     []string
		outCSV      string
		outJSON     string
		outSQLite   string
	)

	cmd := &cobra.Command{
		Use:   "ioc",
		Short: "Extract IOCs from recent analyses",
		Long: `Fetch recent analysis entries and flatten their embedded key_iocs
payloads into uniform indicator records.

The payload shape is not guaranteed: objects, bare strings, and
JSON-encoded strings all normalize to one record per indicator.
Malformed elements degrade to a plain string value rather than failing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateSeverities(severities); err != nil {
				return err
			}

			rt, cleanup, err := initRuntime(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			criteria := core.Criteria{
				Severities: severities,
				Projection: strings.Split(iocProjection, ","),
			}
			if since != "" {
				resolved, err := rt.temporal.Parse(since)
				if err != nil {
					return err
				}
				criteria.Since = resolved
			}

			from, to, err := core.Window{Offset: offset, Limit: limit}.Range()
			if err != nil {
				return err
			}

			query := core.BuildQuery(core.AnalysisEntries, criteria)
			resp, err := rt.fetch(cmd.Context(), core.AnalysisEntries, query, from, to)
			if err != nil {
				return err
			}

			var records []core.AnalysisRecord
			if err := resp.Decode(&records); err != nil {
				return err
			}

			iocs := core.NormalizeIOCs(records)
			if detectTypes {
				core.ApplyDetectedTypes(iocs)
			}
			iocs = core.FilterIOCs(iocs, contains)

			if flagFormat == "json" {
				if err := outputAsJSON(iocs); err != nil {
					return err
				}
			} else {
				cols := columns
				if len(cols) == 0 {
					cols = iocTableColumns
				}
				renderTable(iocRows(iocs), cols)
			}

			if outCSV != "" {
				if err := export.WriteCSV(outCSV, iocRows(iocs), iocCSVColumns); err != nil {
					return err
				}
				if !flagQuiet {
					successColor.Fprintf(cmd.ErrOrStderr(), "Wrote CSV: %s\n", outCSV)
				}
			}

			if outJSON != "" {
				if err := export.WriteJSON(outJSON, iocs); err != nil {
					return err
				}
				if !flagQuiet {
					successColor.Fprintf(cmd.ErrOrStderr(), "Wrote JSON: %s\n", outJSON)
				}
			}

			if outSQLite != "" {
				exportID, err := export.WriteSQLite(cmd.Context(), outSQLite, iocs, rt.logger)
				if err != nil {
					return err
				}
				if !flagQuiet {
					successColor.Fprintf(cmd.ErrOrStderr(), "Wrote SQLite export %s: %s\n", exportID, outSQLite)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only include analysed_at >= since (YYYY-MM-DD | RFC3339 | 24h | 7d)")
	cmd.Flags().StringSliceVar(&severities, "severity", nil, "Severity levels to include (CRITICAL, HIGH, MEDIUM, LOW)")
	cmd.Flags().StringVar(&contains, "contains", "", "Filter IOC values containing substring (case-insensitive)")
	cmd.Flags().BoolVar(&detectTypes, "detect-types", false, "Fill missing IOC types from value format heuristics")
	cmd.Flags().IntVar(&offset, "offset", 0, "Pagination offset (Range start)")
	cmd.Flags().IntVar(&limit, "limit", 50, "How many analyses to scan for IOCs")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Table columns (table format only)")
	cmd.Flags().StringVar(&outCSV, "out-csv", "", "Write extracted IOCs to a CSV file")
	cmd.Flags().StringVar(&outJSON, "out-json", "", "Write extracted IOCs to a JSON file")
	cmd.Flags().StringVar(&outSQLite, "out-sqlite", "", "Append extracted IOCs to a local SQLite hunting database")

	return cmd
}
