// Command tigerfetch queries the tigerfetch PostgREST gateway: analysis
// triage, CVE prioritization, campaign exploration, and IOC extraction.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"tigerfetch/cmd"
	"tigerfetch/core"
)

// Exit codes: 0 success, 2 upstream HTTP error, 130 interrupt,
// 1 everything else.
const (
	exitOK        = 0
	exitError     = 1
	exitUpstream  = 2
	exitInterrupt = 130
)

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := cmd.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	if ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "Interrupted")
		return exitInterrupt
	}

	var upstream *core.UpstreamError
	if errors.As(err, &upstream) {
		fmt.Fprintln(os.Stderr, upstream.Error())
		return exitUpstream
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return exitError
}

func main() {
	os.Exit(run())
}
