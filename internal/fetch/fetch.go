// Package fetch downloads an asset over HTTP while emitting a wall-clock
// timestamped protocol trace. The body itself is discarded; the trace is
// the product. Two client backends are available: a native one built on
// net/http/httptrace and an external curl process in trace mode. Both
// produce the same line-oriented trace format, so downstream filtering
// and analysis do not care which one ran.
package fetch

import (
	"context"
	"fmt"
	"io"

	"github.com/tracefetch/tracefetch/internal/config"
)

// Fetcher downloads a URL, discards the body and writes the protocol
// trace to the given writer. It returns the number of body bytes read.
type Fetcher interface {
	Fetch(ctx context.Context, url string, trace io.Writer) (int64, error)
}

// New returns the fetcher selected by the trace configuration.
func New(cfg config.TraceConfig) (Fetcher, error) {
	switch cfg.Client {
	case "", "native":
		return NewNative(), nil
	case "curl":
		return NewCurl(cfg.CurlBinary), nil
	default:
		return nil, fmt.Errorf("unknown trace client %q", cfg.Client)
	}
}
