package cmd

import (
	"github.com/spf13/cobra"

	"tigerfetch/core"
	"tigerfetch/export"
)

// campaignKinds is the fixed campaign_kind enumeration.
var campaignKinds = []string{"patch_wave", "active_exploitation", "cve_story"}

// newCampaignCmd creates the 'campaign' command group.
func newCampaignCmd() *cobra.Command {
	campaignCmd := &cobra.Command{
		Use:   "campaign",
		Short: "Campaign exploration",
		Long:  "Explore named campaigns: latest sightings and per-campaign CVE rollups.",
	}

	campaignCmd.AddCommand(newCampaignLatestCmd())
	campaignCmd.AddCommand(newCampaignRollupCmd())

	return campaignCmd
}

// newCampaignLatestCmd creates the 'campaign latest' subcommand.
func newCampaignLatestCmd() *cobra.Command {
	var (
		kind       string
		selectList string
		offset     int
		limit      int
		columns    []string
	)

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "List latest-seen campaigns",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateChoice("kind", kind, campaignKinds); err != nil {
				return err
			}

			rt, cleanup, err := initRuntime(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			criteria := core.Criteria{
				Projection: splitProjection(selectList),
			}
			if kind != "" {
				criteria.Exact = map[string]string{"campaign_kind": kind}
			}

			from, to, err := core.Window{Offset: offset, Limit: limit}.Range()
			if err != nil {
				return err
			}

			query := core.BuildQuery(core.CampaignLatest, criteria)
			resp, err := rt.fetch(cmd.Context(), core.CampaignLatest, query, from, to)
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
				cols = core.CampaignLatest.DefaultColumns
			}
			renderTable(rows, cols)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Filter by campaign_kind (patch_wave, active_exploitation, cve_story)")
	cmd.Flags().StringVar(&selectList, "select", "", "Column projection (comma-separated)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Pagination offset (Range start)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Pagination limit")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Table columns (table format only)")

	return cmd
}

// newCampaignRollupCmd creates the 'campaign rollup' subcommand.
func newCampaignRollupCmd() *cobra.Command {
	var (
		selectList string
		offset     int
		limit      int
		columns    []string
	)

	cmd := &cobra.Command{
		Use:   "rollup <campaign-key>",
		Short: "Show CVE rollups for a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := initRuntime(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			criteria := core.Criteria{
				Exact:      map[string]string{"campaign_key": args[0]},
				Projection: splitProjection(selectList),
			}

			from, to, err := core.Window{Offset: offset, Limit: limit}.Range()
			if err != nil {
				return err
			}

			query := core.BuildQuery(core.CampaignRollups, criteria)
			resp, err := rt.fetch(cmd.Context(), core.CampaignRollups, query, from, to)
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
				cols = core.CampaignRollups.DefaultColumns
			}
			renderTable(rows, cols)
			return nil
		},
	}

	cmd.Flags().StringVar(&selectList, "select", "", "Column projection (comma-separated)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Pagination offset (Range start)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Pagination limit")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Table columns (table format only)")

	return cmd
}
