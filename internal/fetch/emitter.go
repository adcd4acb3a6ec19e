package fetch

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// stampLayout renders local wall-clock time with microsecond precision,
// matching curl's --trace-time prefix.
const stampLayout = "15:04:05.000000"

// traceWriter serializes timestamped event lines onto a writer. Client
// callbacks can fire from more than one goroutine, so every write takes
// the lock. The first write error sticks and suppresses later events.
type traceWriter struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
	err error
}

func newTraceWriter(w io.Writer) *traceWriter {
	return &traceWriter{w: w, now: time.Now}
}

// eventf writes one trace line: timestamp, space, formatted event text.
func (t *traceWriter) eventf(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.err != nil {
		return
	}
	line := t.now().Format(stampLayout) + " " + fmt.Sprintf(format, args...) + "\n"
	if _, err := io.WriteString(t.w, line); err != nil {
		t.err = fmt.Errorf("failed to write trace event: %w", err)
	}
}

// infof writes an informational trace line ("== Info: ...").
func (t *traceWriter) infof(format string, args ...interface{}) {
	t.eventf("== Info: "+format, args...)
}

// Err returns the first write error, if any.
func (t *traceWriter) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
