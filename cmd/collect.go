package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tracefetch/tracefetch/internal/config"
	"github.com/tracefetch/tracefetch/internal/fetch"
	"github.com/tracefetch/tracefetch/internal/runner"
	"github.com/tracefetch/tracefetch/pkg/logtrace"
)

var (
	collectOutDir   string
	collectCompress bool
	collectPace     int
	collectClient   string
)

// batchOptions merges collect flags with the loaded config. Config
// supplies the values; a flag overrides only when it was set on the
// command line.
func batchOptions(cfg *config.Config, asset string, count int) runner.BatchOptions {
	opts := runner.BatchOptions{
		Asset:    asset,
		Count:    count,
		OutDir:   cfg.Collect.OutDir,
		Compress: cfg.Collect.Compress,
		Pace:     cfg.Collect.Pace,
	}

	flags := collectCmd.Flags()
	if flags.Changed("out-dir") {
		opts.OutDir = collectOutDir
	}
	if flags.Changed("compress") {
		opts.Compress = collectCompress
	}
	if flags.Changed("pace") {
		opts.Pace = collectPace
	}
	return opts
}

// collectCmd runs a batch of consecutive traces
var collectCmd = &cobra.Command{
	Use:   "collect <asset> <count>",
	Short: "Collect a batch of consecutive trace runs",
	Long: `Run <count> consecutive traced downloads of <asset> and collect the
logs in one output directory as <asset>_1.log, <asset>_2.log and so on.

The batch stops at the first failed run. A manifest.yaml is written next
to the logs with per-run digests, sizes and a snapshot of the collecting
host. When the archive is enabled every run is also recorded in the run
database for later inspection with the runs command.`,
	Example: `  tracefetch collect 1M.bin 10
  tracefetch collect 1K.bin 100 --pace 30 --compress`,
	Args: cobra.ExactArgs(2),
}

func init() {
	collectCmd.RunE = runCollect
	collectCmd.Flags().StringVar(&collectOutDir, "out-dir", "", "Directory for collected logs (default from config)")
	collectCmd.Flags().BoolVar(&collectCompress, "compress", false, "Compress finished logs with zstd (default from config)")
	collectCmd.Flags().IntVar(&collectPace, "pace", 0, "Maximum runs per minute, 0 for no pacing (default from config)")
	collectCmd.Flags().StringVar(&collectClient, "client", "", "Trace client to use: native or curl (default from config)")
}

func runCollect(cmd *cobra.Command, args []string) error {
	count, err := strconv.Atoi(args[1])
	if err != nil || count <= 0 {
		return fmt.Errorf("%s must be a positive integer", args[1])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	if collectClient != "" {
		cfg.Trace.Client = collectClient
	}

	fetcher, err := fetch.New(cfg.Trace)
	if err != nil {
		return err
	}

	store, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	r := runner.New(cfg, fetcher, os.Stdout)
	c := runner.NewCollector(cfg, r, store, os.Stdout)

	ctx := logtrace.CtxWithOrigin(context.Background(), "collect")
	manifestPath, err := c.Collect(ctx, batchOptions(cfg, args[0], count))
	if err != nil {
		return err
	}

	fmt.Printf("[collect] Batch complete, manifest written to %s\n", manifestPath)
	return nil
}
