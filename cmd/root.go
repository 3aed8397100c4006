// Package cmd provides the tigerfetch command-line interface: triage,
// CVE lookup and prioritization, campaign exploration, and IOC extraction
// against the tigerfetch PostgREST gateway.
package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tigerfetch/config"
	"tigerfetch/core"
	"tigerfetch/postgrest"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// Global flags shared by all subcommands
var (
	flagBaseURL string
	flagJWT     string
	flagTimeout int
	flagConfig  string
	flagFormat  string
	flagNoColor bool
	flagQuiet   bool
)

// severityChoices is the fixed severity enumeration of the analysis
// listing. Values are embedded unescaped into the filter grammar, which is
// safe only because this set contains no commas or parentheses.
var severityChoices = []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"}

// NewRootCmd creates the tigerfetch root command with all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tigerfetch",
		Short: "Query the tigerfetch threat-analysis gateway",
		Long: `tigerfetch is a CLI for the tigerfetch PostgREST API.

It supports SOC triage of analysis entries, consolidated CVE detail and
patch prioritization, campaign exploration, and IOC extraction for hunting.

Pagination uses the gateway's Range header: one page per invocation,
controlled by --offset and --limit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagNoColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "PostgREST base URL (default: TIGERFETCH_BASE_URL or built-in)")
	rootCmd.PersistentFlags().StringVar(&flagJWT, "jwt", "", "JWT sent as Authorization: Bearer <token> (default: TIGERFETCH_JWT)")
	rootCmd.PersistentFlags().IntVar(&flagTimeout, "timeout", 0, "HTTP timeout in seconds (default: TIGERFETCH_TIMEOUT_SECONDS or 30)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (optional)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "Suppress non-essential output")

	rootCmd.AddCommand(newTriageCmd())
	rootCmd.AddCommand(newCVECmd())
	rootCmd.AddCommand(newCampaignCmd())
	rootCmd.AddCommand(newIOCCmd())

	return rootCmd
}

// runtime bundles the per-invocation collaborators: resolved configuration,
// logger, transport client, and temporal parser.
type runtime struct {
	cfg      *config.Config
	logger   *zap.SugaredLogger
	client   *postgrest.Client
	temporal *core.TemporalParser
}

// initRuntime resolves configuration (flags override environment overrides
// defaults) and wires the collaborators. Returns the runtime and a cleanup
// function.
func initRuntime(cmd *cobra.Command) (*runtime, func(), error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = strings.TrimRight(flagBaseURL, "/")
	}
	if cmd.Flags().Changed("jwt") {
		cfg.JWT = flagJWT
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutSeconds = flagTimeout
	}
	if cfg.TimeoutSeconds <= 0 {
		return nil, nil, fmt.Errorf("timeout must be positive, got %d", cfg.TimeoutSeconds)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	sugar := logger.Sugar()

	rt := &runtime{
		cfg:      cfg,
		logger:   sugar,
		client:   postgrest.New(cfg.BaseURL, cfg.JWT, cfg.Timeout(), sugar),
		temporal: core.NewTemporalParser(),
	}

	cleanup := func() {
		// Sync errors on stderr are common and harmless for a CLI.
		_ = logger.Sync()
	}

	return rt, cleanup, nil
}

// newLogger builds a zap logger: human-readable debug output when enabled,
// errors-only otherwise so tables and JSON stay clean on stdout.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// fetch runs the single outbound request with a progress spinner, and
// promotes HTTP-level error statuses to UpstreamError.
func (rt *runtime) fetch(ctx context.Context, res core.Resource, query map[string]string, from, to int) (*postgrest.Response, error) {
	var s *spinner.Spinner
	if flagFormat == "table" && !flagQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " Querying " + res.Name + "..."
		s.Start()
	}

	resp, err := rt.client.Get(ctx, res.Name, query, from, to)

	if s != nil {
		s.Stop()
	}

	if err != nil {
		return nil, err
	}
	if resp.Status >= 400 {
		return nil, &core.UpstreamError{Status: resp.Status, Body: resp.Body}
	}
	return resp, nil
}

// outputAsJSON pretty-prints data to stdout.
func outputAsJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// validateChoice rejects values outside a fixed enumeration.
func validateChoice(flagName, value string, choices []string) error {
	if value == "" || slices.Contains(choices, value) {
		return nil
	}
	return fmt.Errorf("invalid --%s %q (choose from %s)", flagName, value, strings.Join(choices, ", "))
}

// validateSeverities rejects severity values outside the fixed set.
func validateSeverities(severities []string) error {
	for _, s := range severities {
		if !slices.Contains(severityChoices, s) {
			return fmt.Errorf("invalid severity %q (choose from %s)", s, strings.Join(severityChoices, ", "))
		}
	}
	return nil
}

// splitProjection turns a --select value into a projection list.
func splitProjection(sel string) []string {
	if sel == "" {
		return nil
	}
	parts := strings.Split(sel, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
