package cmd

import (
	"github.com/spf13/cobra"

	"tigerfetch/core"
	"tigerfetch/export"
)

// newTriageCmd creates the 'triage' subcommand: list recent analysis
// entries with severity/source/time/keyword filters.
func newTriageCmd() *cobra.Command {
	var (
		severities []string
		since      string
		source     string
		keyword    string
		orderCol   string
		orderDir   string
		selectList string
		offset     int
		limit      int
		columns    []string
	)

	cmd := &cobra.Command{
		Use:   "triage",
		Short: "List recent analysis entries with filters",
		Long: `List analysis entries from the lite analysis view with optional
severity, source, time-window, and keyword filters.

The --since value accepts a calendar date (2025-06-01), an RFC3339
timestamp, or relative shorthand like 24h or 7d.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateSeverities(severities); err != nil {
				return err
			}
			if err := validateChoice("order-dir", orderDir, []string{"asc", "desc"}); err != nil {
				return err
			}

			rt, cleanup, err := initRuntime(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			criteria := core.Criteria{
				Severities: severities,
				Keyword:    keyword,
				Ordering:   []core.Order{{Field: orderCol, Direction: core.Direction(orderDir)}},
				Projection: splitProjection(selectList),
			}
			if source != "" {
				criteria.Exact = map[string]string{"source_name": source}
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

			var rows []export.Row
			if err := resp.Decode(&rows); err != nil {
				return err
			}

			if flagFormat == "json" {
				return outputAsJSON(rows)
			}

			cols := columns
			if len(cols) == 0 {
				cols = core.AnalysisEntries.DefaultColumns
			}
			renderTable(rows, cols)
			if !flagQuiet {
				infoColor.Fprintf(cmd.ErrOrStderr(), "%d entries (range %d-%d)\n", len(rows), from, to)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&severities, "severity", nil, "Severity levels to include (CRITICAL, HIGH, MEDIUM, LOW)")
	cmd.Flags().StringVar(&since, "since", "", "Only include analysed_at >= since (YYYY-MM-DD | RFC3339 | 24h | 7d)")
	cmd.Flags().StringVar(&source, "source", "", "Filter by source_name (exact)")
	cmd.Flags().StringVar(&keyword, "keyword", "", "Keyword search in title (case-insensitive substring)")
	cmd.Flags().StringVar(&orderCol, "order", "analysed_at", "Order column")
	cmd.Flags().StringVar(&orderDir, "order-dir", "desc", "Order direction (asc, desc)")
	cmd.Flags().StringVar(&selectList, "select", "", "Column projection (comma-separated)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Pagination offset (Range start)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Pagination limit")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Table columns (table format only)")

	return cmd
}
