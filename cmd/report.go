package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tracefetch/tracefetch/internal/report"
)

var (
	reportCSV   string
	reportSVG   string
	reportTitle string
)

// reportCmd summarizes collected trace logs
var reportCmd = &cobra.Command{
	Use:   "report <log|dir> [<log|dir>...]",
	Short: "Summarize trace logs and export charts",
	Long: `Parse trace logs and print per-log transfer statistics: sample
count, total bytes, duration, time to first data and average rate.

Arguments may be individual log files or directories, which are expanded
to every .log and .log.zst inside. With --csv the raw samples of every
log are exported as elapsed seconds and cumulative bytes. With --svg an
overlay chart of cumulative bytes over time is written.`,
	Example: `  tracefetch report traces/
  tracefetch report traces/1M.bin_1.log traces/1M.bin_2.log --csv samples.csv
  tracefetch report traces/ --svg traces.svg --title "1M.bin, 10 runs"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportCSV, "csv", "", "Write raw samples as CSV to this file")
	reportCmd.Flags().StringVar(&reportSVG, "svg", "", "Write an overlay chart as SVG to this file")
	reportCmd.Flags().StringVar(&reportTitle, "title", "", "Chart title (default \"Received bytes vs. time\")")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	paths, err := report.ExpandPaths(args)
	if err != nil {
		return err
	}

	series, err := report.ParseAll(context.Background(), paths)
	if err != nil {
		return err
	}

	report.WriteTable(os.Stdout, series)

	if reportCSV != "" {
		f, err := os.Create(reportCSV)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", reportCSV, err)
		}
		if err := report.WriteCSV(f, series); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", reportCSV, err)
		}
		fmt.Printf("CSV written to %s\n", reportCSV)
	}

	if reportSVG != "" {
		title := reportTitle
		if title == "" {
			title = "Received bytes vs. time"
		}
		f, err := os.Create(reportSVG)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", reportSVG, err)
		}
		if err := report.WriteSVG(f, series, title); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write %s: %w", reportSVG, err)
		}
		fmt.Printf("Chart written to %s\n", reportSVG)
	}

	return nil
}
