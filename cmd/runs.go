package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tracefetch/tracefetch/internal/archive"
)

var (
	runsAsset string
	runsLimit int
)

// runsCmd lists archived trace runs
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived trace runs",
	Long: `List runs recorded in the local archive database, newest first.

The archive is populated by the collect command when archive.enabled is
set in the config.`,
	Example: `  tracefetch runs
  tracefetch runs --asset 1G.bin --limit 10`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsAsset, "asset", "", "Only show runs for this asset")
	runsCmd.Flags().IntVar(&runsLimit, "limit", archive.DefaultListLimit, "Maximum number of runs to show")
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	if !cfg.Archive.Enabled {
		return fmt.Errorf("run archive is disabled in config")
	}
	if _, err := os.Stat(cfg.ArchivePath()); os.IsNotExist(err) {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	store, err := archive.NewStore(cfg.ArchivePath())
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(runsAsset, runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	var w tabwriter.Writer
	w.Init(os.Stdout, 10, 4, 3, ' ', 0)
	fmt.Fprintf(&w, "STARTED\tSESSION\tRUN\tASSET\tSTATUS\tLINES\tBYTES\tDURATION\tLOG\n")
	for _, r := range runs {
		fmt.Fprintf(&w, "%s\t%s\t%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			time.Unix(r.StartedAtUnix, 0).Format("2006-01-02 15:04:05"),
			shortID(r.SessionID),
			r.RunIndex,
			r.Asset,
			r.Status,
			r.TraceLines,
			r.BytesFetched,
			(time.Duration(r.DurationMS) * time.Millisecond).String(),
			r.LogPath,
		)
	}
	w.Flush() // nolint: errcheck

	return nil
}

// shortID truncates a session UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
