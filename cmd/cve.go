package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"tigerfetch/core"
	"tigerfetch/export"
)

// patchlistProjection is the default select list for patch prioritization:
// everything needed to decide what to patch first, nothing more.
const patchlistProjection = "cve_id,epss,cvss_base,in_kev,due_date,required_action,mention_count,last_seen,description_en"

// patchlistColumns is the default table view for the patch list.
var patchlistColumns = []string{
	"cve_id", "in_kev", "epss", "cvss_base", "due_date", "mention_count", "last_seen",
}

// newCVECmd creates the 'cve' command group.
func newCVECmd() *cobra.Command {
	cveCmd := &cobra.Command{
		Use:   "cve",
		Short: "CVE operations",
		Long:  "Fetch consolidated CVE detail or build a prioritized patch list from the cve_detail view.",
	}

	cveCmd.AddCommand(newCVEGetCmd())
	cveCmd.AddCommand(newCVEPatchlistCmd())

	return cveCmd
}

// newCVEGetCmd creates the 'cve get' subcommand.
func newCVEGetCmd() *cobra.Command {
	var (
		selectList string
		columns    []string
	)

	cmd := &cobra.Command{
		Use:   "get <cve-id>",
		Short: "Fetch consolidated CVE detail",
		Long:  "Fetch the consolidated detail row (NVD, EPSS, KEV) for a single CVE.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := initRuntime(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			cveID := strings.ToUpper(args[0])
			criteria := core.Criteria{
				Exact:      map[string]string{"cve_id": cveID},
				Projection: splitProjection(selectList),
			}

			query := core.BuildQuery(core.CVEDetail, criteria)
			resp, err := rt.fetch(cmd.Context(), core.CVEDetail, query, 0, 0)
			if err != nil {
				return err
			}

			var rows []export.Row
			if err := resp.Decode(&rows); err != nil {
				return err
			}

			var row export.Row
			if len(rows) > 0 {
				row = rows[0]
			}

			if flagFormat == "json" {
				if row == nil {
					return outputAsJSON(export.Row{})
				}
				return outputAsJSON(row)
			}

			cols := columns
			if len(cols) == 0 {
				cols = core.CVEDetail.DefaultColumns
			}
			if row == nil {
				renderTable(nil, cols)
				return nil
			}
			renderTable([]export.Row{row}, cols)
			return nil
		},
	}

	cmd.Flags().StringVar(&selectList, "select", "", "Column projection (comma-separated)")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Table columns (table format only)")

	return cmd
}

// newCVEPatchlistCmd creates the 'cve patchlist' subcommand.
func newCVEPatchlistCmd() *cobra.Command {
	var (
		inKEV          bool
		epssGTE        float64
		cvssGTE        float64
		mentionedSince string
		selectList     string
		offset         int
		limit          int
		columns        []string
	)

	cmd := &cobra.Command{
		Use:   "patchlist",
		Short: "Generate a prioritized patch list",
		Long: `List CVEs from cve_detail ordered by exploit likelihood (EPSS) then
impact (CVSS), with optional thresholds and a KEV-only filter.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := initRuntime(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			projection := selectList
			if projection == "" {
				projection = patchlistProjection
			}

			criteria := core.Criteria{
				Projection: splitProjection(projection),
			}
			if inKEV {
				criteria.BoolIs = map[string]bool{"in_kev": true}
			}
			thresholds := make(map[string]float64)
			if cmd.Flags().Changed("epss-gte") {
				thresholds["epss"] = epssGTE
			}
			if cmd.Flags().Changed("cvss-gte") {
				thresholds["cvss_base"] = cvssGTE
			}
			if len(thresholds) > 0 {
				criteria.NumericGTE = thresholds
			}
			if mentionedSince != "" {
				resolved, err := rt.temporal.Parse(mentionedSince)
				if err != nil {
					return err
				}
				criteria.Since = resolved
			}

			from, to, err := core.Window{Offset: offset, Limit: limit}.Range()
			if err != nil {
				return err
			}

			query := core.BuildQuery(core.CVEDetail, criteria)
			resp, err := rt.fetch(cmd.Context(), core.CVEDetail, query, from, to)
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
				cols = patchlistColumns
			}
			renderTable(rows, cols)
			return nil
		},
	}

	cmd.Flags().BoolVar(&inKEV, "in-kev", false, "Only include CVEs in the CISA KEV catalog")
	cmd.Flags().Float64Var(&epssGTE, "epss-gte", 0, "Only include epss >= value")
	cmd.Flags().Float64Var(&cvssGTE, "cvss-gte", 0, "Only include cvss_base >= value")
	cmd.Flags().StringVar(&mentionedSince, "mentioned-since", "", "Only include last_seen >= since (YYYY-MM-DD | RFC3339 | 24h | 7d)")
	cmd.Flags().StringVar(&selectList, "select", "", "Column projection (comma-separated)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Pagination offset (Range start)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Pagination limit")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Table columns (table format only)")

	return cmd
}
