package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracefetch/tracefetch/internal/tracelog"
)

func TestNativeFetch(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 100*1024)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/assets/1M.bin", r.URL.Path)
		w.Write(payload)
	}))
	defer srv.Close()

	var trace bytes.Buffer
	n, err := NewNative().Fetch(context.Background(), srv.URL+"/assets/1M.bin", &trace)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)

	out := trace.String()
	assert.Contains(t, out, "=> Send header,")
	assert.Contains(t, out, "<= Recv header,")
	assert.Contains(t, out, "<= Recv data,")
	assert.Contains(t, out, "left intact")

	// every emitted line must carry the timestamp prefix the filter keeps
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.True(t, tracelog.IsTraceLine(line), "line without timestamp: %q", line)
	}
}

func TestNativeFetchCountsChunkedReads(t *testing.T) {
	payload := bytes.Repeat([]byte{0x5C}, 3*readBufSize+17)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	var trace bytes.Buffer
	n, err := NewNative().Fetch(context.Background(), srv.URL+"/assets/1M.bin", &trace)
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)

	recv := 0
	for _, line := range strings.Split(trace.String(), "\n") {
		if m := recvDataRE.FindStringSubmatch(line); m != nil {
			recv++
		}
	}
	assert.GreaterOrEqual(t, recv, 4)
}

func TestNativeFetchHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	var trace bytes.Buffer
	n, err := NewNative().Fetch(context.Background(), srv.URL+"/assets/2M.bin", &trace)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download failed with status 404")
	assert.Zero(t, n)
}

func TestNativeFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	var trace bytes.Buffer
	_, err := NewNative().Fetch(context.Background(), url+"/assets/1M.bin", &trace)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to download")
}

func TestNativeFetchContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var trace bytes.Buffer
	_, err := NewNative().Fetch(ctx, srv.URL+"/assets/1M.bin", &trace)
	assert.Error(t, err)
}

func TestNativeFetchBadURL(t *testing.T) {
	var trace bytes.Buffer
	_, err := NewNative().Fetch(context.Background(), "http://\x00bad/", &trace)
	assert.Error(t, err)
}
