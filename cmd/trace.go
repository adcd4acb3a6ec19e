package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tracefetch/tracefetch/internal/fetch"
	"github.com/tracefetch/tracefetch/internal/runner"
	"github.com/tracefetch/tracefetch/pkg/logtrace"
)

var traceClient string

// traceCmd runs a single traced download
var traceCmd = &cobra.Command{
	Use:   "trace <asset> <logfile>",
	Short: "Download one asset and keep its timestamped trace log",
	Long: `Download the named asset once, discard the payload and write the
timestamped trace lines to the given log file.

The asset must be one of the allowed names (1M.bin, 1K.bin or 1G.bin by
default) and the log filename must end with .log. Only lines starting
with an HH:MM:SS.microseconds timestamp are kept; informational chatter
and hex dumps are dropped.`,
	Example: `  tracefetch trace 1M.bin 1M_1.log
  tracefetch trace 1G.bin big.log --client curl`,
	Args: cobra.ArbitraryArgs,
	RunE: runTrace,
}

func init() {
	traceCmd.Flags().StringVar(&traceClient, "client", "", "Trace client to use: native or curl (default from config)")
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	if len(args) != 2 {
		return fmt.Errorf("usage: tracefetch trace <asset> <logfile>\n  asset:   one of %s\n  logfile: must end with .log",
			strings.Join(cfg.Assets.Allowed, ", "))
	}

	if traceClient != "" {
		cfg.Trace.Client = traceClient
	}

	fetcher, err := fetch.New(cfg.Trace)
	if err != nil {
		return err
	}

	ctx := logtrace.CtxWithNewCorrelationID(context.Background())
	ctx = logtrace.CtxWithOrigin(ctx, "trace")
	r := runner.New(cfg, fetcher, os.Stdout)
	if _, err := r.Run(ctx, args[0], args[1]); err != nil {
		return err
	}
	return nil
}
