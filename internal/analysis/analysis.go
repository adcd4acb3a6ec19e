// Package analysis parses retained trace logs into cumulative-bytes time
// series. The baseline instant is the first timestamped line of the log,
// whatever event it carries, so a series shows transfer progress measured
// from the moment the client started talking to the server.
package analysis

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tracefetch/tracefetch/pkg/utils"
)

var (
	anyTSRE    = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}\.\d{6})`)
	recvDataRE = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}\.\d{6})\s+<=\s+Recv data,\s+(\d+)\s+bytes`)
)

const stampLayout = "15:04:05.000000"

// Sample is one receive event: cumulative body bytes at an elapsed
// offset from the series baseline.
type Sample struct {
	Elapsed time.Duration
	Bytes   int64
}

// Series is the transfer progress parsed from one trace log.
type Series struct {
	Name    string // log name without directory or compression suffix
	Path    string
	Samples []Sample
}

// Parse reads a trace log and extracts the receive-progress series.
// Logs only carry wall-clock times, so a series that crosses midnight
// is unwrapped by a day.
func Parse(r io.Reader, path string) (*Series, error) {
	s := &Series{Name: seriesName(path), Path: path}

	var t0 time.Time
	haveT0 := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)

	var cum int64
	for scanner.Scan() {
		line := scanner.Text()

		if !haveT0 {
			if m := anyTSRE.FindStringSubmatch(line); m != nil {
				ts, err := time.Parse(stampLayout, m[1])
				if err != nil {
					return nil, fmt.Errorf("failed to parse timestamp %q: %w", m[1], err)
				}
				t0 = ts
				haveT0 = true
			}
		}

		m := recvDataRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		ts, err := time.Parse(stampLayout, m[1])
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp %q: %w", m[1], err)
		}
		n, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse byte count %q: %w", m[2], err)
		}

		elapsed := ts.Sub(t0)
		if elapsed < 0 {
			elapsed += 24 * time.Hour
		}

		cum += n
		s.Samples = append(s.Samples, Sample{Elapsed: elapsed, Bytes: cum})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	return s, nil
}

// ParseLog opens path and parses it, decompressing zstd logs
// transparently.
func ParseLog(path string) (*Series, error) {
	rc, err := utils.OpenMaybeCompressed(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	defer rc.Close()
	return Parse(rc, path)
}

func seriesName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".zst")
	return name
}
