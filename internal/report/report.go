// Package report summarizes collected trace logs: a per-log table of
// transfer statistics, a CSV export of the raw series and an SVG overlay
// chart of cumulative bytes against elapsed time.
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/tracefetch/tracefetch/internal/analysis"
)

// parseParallelism bounds concurrent log parsing.
const parseParallelism = 4

// indexedLogRE captures the run index from collected log names like
// "1M.bin_12.log" or "1M.bin_12.log.zst".
var indexedLogRE = regexp.MustCompile(`^(.*)_(\d+)\.log(?:\.zst)?$`)

// ExpandPaths resolves report arguments into log files. A directory
// contributes every .log and .log.zst inside it; collected logs sort by
// run index so overlays follow collection order.
func ExpandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".log.zst") {
				found = append(found, filepath.Join(arg, name))
			}
		}
		sortLogs(found)
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no trace logs found")
	}
	return paths, nil
}

// sortKey normalizes a log name for ordering. Indexed names get their
// run index zero-padded so numeric order and lexical order agree;
// everything else sorts by its plain base name.
func sortKey(p string) string {
	base := filepath.Base(p)
	m := indexedLogRE.FindStringSubmatch(base)
	if m == nil {
		return base
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil {
		return base
	}
	return fmt.Sprintf("%s_%012d", m[1], idx)
}

// sortLogs orders collected logs by prefix then run index, falling back
// to lexical order for names without an index. A single precomputed key
// per path keeps the ordering total even when indexed and unindexed
// names mix.
func sortLogs(paths []string) {
	keys := make(map[string]string, len(paths))
	for _, p := range paths {
		keys[p] = sortKey(p)
	}

	sort.Slice(paths, func(i, j int) bool {
		ki, kj := keys[paths[i]], keys[paths[j]]
		if ki != kj {
			return ki < kj
		}
		return paths[i] < paths[j]
	})
}

// ParseAll parses the logs concurrently, preserving input order.
func ParseAll(ctx context.Context, paths []string) ([]*analysis.Series, error) {
	series := make([]*analysis.Series, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(parseParallelism)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			s, err := analysis.ParseLog(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			series[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return series, nil
}

// WriteTable prints one summary row per series.
func WriteTable(writer io.Writer, series []*analysis.Series) {
	var w tabwriter.Writer
	w.Init(writer, 10, 4, 3, ' ', 0)
	fmt.Fprintf(&w, "LOG\tSAMPLES\tBYTES\tDURATION\tFIRST DATA\tRATE\n")
	for _, s := range series {
		st := s.Stats()
		if st.Samples == 0 {
			fmt.Fprintf(&w, "%s\t0\t0\t-\t-\t-\n", s.Name)
			continue
		}
		fmt.Fprintf(&w, "%s\t%d\t%d\t%.3fs\t%.3fs\t%.2f MB/s\n",
			s.Name, st.Samples, st.TotalBytes,
			st.Duration.Seconds(), st.TimeToFirst.Seconds(),
			st.BytesPerSec/(1024*1024))
	}
	w.Flush() // nolint: errcheck
}
