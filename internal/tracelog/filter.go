// Package tracelog filters raw HTTP client trace output down to the
// timestamped event lines. Clients in trace mode interleave two kinds of
// lines: event lines prefixed with a wall-clock timestamp
// ("22:49:03.974237 <= Recv data, 1378 bytes (0x562)") and untimestamped
// continuation lines holding hex dumps of the payload. Only the former
// carry timing information, so only the former are kept.
package tracelog

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
)

// timestampRE matches lines that begin with an HH:MM:SS.microseconds
// wall-clock stamp. Anchored at the start so hex-dump continuation lines
// never match.
var timestampRE = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{6}`)

// maxLineSize bounds a single trace line. Event lines are short; the
// generous cap only guards against pathological client output.
const maxLineSize = 1 << 20

// IsTraceLine reports whether line begins with a trace timestamp.
func IsTraceLine(line string) bool {
	return timestampRE.MatchString(line)
}

// Filter copies the timestamped lines from r to w, one per line, in
// input order. It returns the number of lines retained.
func Filter(r io.Reader, w io.Writer) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	retained := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if !timestampRE.Match(line) {
			continue
		}
		if _, err := w.Write(line); err != nil {
			return retained, fmt.Errorf("filter: write line: %w", err)
		}
		if _, err := w.Write([]byte{'\n'}); err != nil {
			return retained, fmt.Errorf("filter: write line: %w", err)
		}
		retained++
	}
	if err := scanner.Err(); err != nil {
		return retained, fmt.Errorf("filter: read trace: %w", err)
	}
	return retained, nil
}
