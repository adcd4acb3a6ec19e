package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"sort"
	"sync/atomic"
)

// readBufSize is the body read chunk size. Each full or partial read
// becomes one "Recv data" trace event, mirroring how curl reports its
// receive loop.
const readBufSize = 32 * 1024 // 32KB buffer

// Native fetches over net/http and synthesizes a curl-shaped trace from
// httptrace callbacks. Compression is disabled on the transport so the
// reported data counts match wire bytes.
type Native struct {
	client *http.Client
}

// NewNative returns a fetcher backed by the Go HTTP client. No timeout
// is set; cancellation comes from the caller's context.
func NewNative() *Native {
	return &Native{
		client: &http.Client{
			Transport: &http.Transport{DisableCompression: true},
		},
	}
}

// Fetch downloads url, discarding the body and writing trace events to
// trace. It returns the number of body bytes read.
func (n *Native) Fetch(ctx context.Context, url string, trace io.Writer) (int64, error) {
	tw := newTraceWriter(trace)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}

	host := req.URL.Hostname()
	port := req.URL.Port()
	if port == "" {
		if req.URL.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	// Header bytes accumulate as the transport reports each written
	// field; the Send header event fires once the block is complete.
	var headerBytes int64
	requestLine := int64(len(req.Method) + 1 + len(req.URL.RequestURI()) + 1 + len("HTTP/1.1") + 2)

	clientTrace := &httptrace.ClientTrace{
		DNSStart: func(info httptrace.DNSStartInfo) {
			tw.infof("Resolving %s...", info.Host)
		},
		DNSDone: func(info httptrace.DNSDoneInfo) {
			if info.Err != nil {
				tw.infof("Could not resolve host: %s", info.Err)
				return
			}
			for _, addr := range info.Addrs {
				tw.infof("Host %s resolved to %s", host, addr.String())
			}
		},
		ConnectStart: func(network, addr string) {
			tw.infof("  Trying %s...", addr)
		},
		ConnectDone: func(network, addr string, err error) {
			if err != nil {
				tw.infof("Failed to connect to %s: %s", addr, err)
				return
			}
			tw.infof("Connected to %s (%s) port %s", host, addr, port)
		},
		TLSHandshakeStart: func() {
			tw.infof("TLS handshake started with %s", host)
		},
		TLSHandshakeDone: func(cs tls.ConnectionState, err error) {
			if err != nil {
				tw.infof("TLS handshake failed: %s", err)
				return
			}
			tw.infof("SSL connection using %s / %s", tls.VersionName(cs.Version), tls.CipherSuiteName(cs.CipherSuite))
		},
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Reused {
				tw.infof("Re-using existing connection with host %s", host)
			}
		},
		WroteHeaderField: func(key string, values []string) {
			for _, v := range values {
				atomic.AddInt64(&headerBytes, int64(len(key)+2+len(v)+2))
			}
		},
		WroteHeaders: func() {
			total := requestLine + atomic.LoadInt64(&headerBytes) + 2
			tw.eventf("=> Send header, %d bytes (0x%x)", total, total)
		},
	}

	req = req.WithContext(httptrace.WithClientTrace(req.Context(), clientTrace))

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	emitRecvHeaders(tw, resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	var read int64
	buf := make([]byte, readBufSize)
	for {
		nr, rerr := resp.Body.Read(buf)
		if nr > 0 {
			read += int64(nr)
			tw.eventf("<= Recv data, %d bytes (0x%x)", nr, nr)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return read, fmt.Errorf("download error: %w", rerr)
		}
	}

	tw.infof("Connection #0 to host %s left intact", host)
	if err := tw.Err(); err != nil {
		return read, err
	}
	return read, nil
}

// emitRecvHeaders replays the response status line and header fields as
// Recv header events. Go surfaces headers as a map, so fields are
// emitted in sorted order rather than wire order.
func emitRecvHeaders(tw *traceWriter, resp *http.Response) {
	statusLine := len(resp.Proto) + 1 + len(resp.Status) + 2
	tw.eventf("<= Recv header, %d bytes (0x%x)", statusLine, statusLine)

	keys := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, v := range resp.Header[k] {
			line := len(k) + 2 + len(v) + 2
			tw.eventf("<= Recv header, %d bytes (0x%x)", line, line)
		}
	}

	// terminating blank line of the header block
	tw.eventf("<= Recv header, 2 bytes (0x2)")
}
