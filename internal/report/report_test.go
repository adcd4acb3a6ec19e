package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracefetch/tracefetch/internal/analysis"
)

const reportLog = `22:48:43.182637 == Info: Connected to 104.154.51.134 (104.154.51.134) port 80
22:48:43.242430 <= Recv data, 1378 bytes (0x562)
22:48:44.182637 <= Recv data, 2756 bytes (0xac4)
`

func writeLogs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(reportLog), 0o644))
	}
}

func TestExpandPathsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeLogs(t, dir, "1M.bin_1.log", "1M.bin_10.log", "1M.bin_2.log")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte("session_id: x\n"), 0o644))

	paths, err := ExpandPaths([]string{dir})
	require.NoError(t, err)
	require.Len(t, paths, 3)

	// run index order, not lexical order
	assert.Equal(t, "1M.bin_1.log", filepath.Base(paths[0]))
	assert.Equal(t, "1M.bin_2.log", filepath.Base(paths[1]))
	assert.Equal(t, "1M.bin_10.log", filepath.Base(paths[2]))
}

func TestExpandPathsFile(t *testing.T) {
	dir := t.TempDir()
	writeLogs(t, dir, "single.log")

	path := filepath.Join(dir, "single.log")
	paths, err := ExpandPaths([]string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, paths)
}

func TestExpandPathsMissing(t *testing.T) {
	_, err := ExpandPaths([]string{filepath.Join(t.TempDir(), "absent.log")})
	assert.Error(t, err)
}

func TestExpandPathsEmptyDir(t *testing.T) {
	_, err := ExpandPaths([]string{t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no trace logs found")
}

func TestParseAll(t *testing.T) {
	dir := t.TempDir()
	writeLogs(t, dir, "1K.bin_1.log", "1K.bin_2.log", "1K.bin_3.log")

	paths, err := ExpandPaths([]string{dir})
	require.NoError(t, err)

	series, err := ParseAll(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, series, 3)

	// order follows the input paths
	assert.Equal(t, "1K.bin_1.log", series[0].Name)
	assert.Equal(t, "1K.bin_3.log", series[2].Name)
	for _, s := range series {
		assert.Len(t, s.Samples, 2)
	}
}

func TestParseAllMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeLogs(t, dir, "ok.log")

	_, err := ParseAll(context.Background(), []string{
		filepath.Join(dir, "ok.log"),
		filepath.Join(dir, "gone.log"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone.log")
}

func TestWriteTable(t *testing.T) {
	s, err := analysis.Parse(strings.NewReader(reportLog), "1M.bin_1.log")
	require.NoError(t, err)

	var buf bytes.Buffer
	WriteTable(&buf, []*analysis.Series{s})

	out := buf.String()
	assert.Contains(t, out, "LOG")
	assert.Contains(t, out, "SAMPLES")
	assert.Contains(t, out, "1M.bin_1.log")
	assert.Contains(t, out, "4134")
	assert.Contains(t, out, "1.000s")
}

func TestWriteTableEmptySeries(t *testing.T) {
	var buf bytes.Buffer
	WriteTable(&buf, []*analysis.Series{{Name: "empty.log"}})

	assert.Contains(t, buf.String(), "empty.log")
	assert.Contains(t, buf.String(), "-")
}

func TestWriteCSV(t *testing.T) {
	s, err := analysis.Parse(strings.NewReader(reportLog), "1M.bin_1.log")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []*analysis.Series{s}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "log,elapsed_seconds,cumulative_bytes", lines[0])
	assert.Equal(t, "1M.bin_1.log,0.059793,1378", lines[1])
	assert.Equal(t, "1M.bin_1.log,1.000000,4134", lines[2])
}

func TestWriteSVG(t *testing.T) {
	s1, err := analysis.Parse(strings.NewReader(reportLog), "1M.bin_1.log")
	require.NoError(t, err)
	s2, err := analysis.Parse(strings.NewReader(reportLog), "1M.bin_2.log")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, []*analysis.Series{s1, s2}, "1M.bin - 2 traces"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Equal(t, 2, strings.Count(out, "<polyline"))
	assert.Contains(t, out, "1M.bin - 2 traces")
	assert.Contains(t, out, "1M.bin_1.log")
	assert.Contains(t, out, "1M.bin_2.log")
	assert.Contains(t, out, "Cumulative bytes received")
}

func TestWriteSVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, nil, "empty"))
	assert.Contains(t, buf.String(), "<svg")
}

func TestSortLogsMixedNames(t *testing.T) {
	paths := []string{"b/zz.log", "b/1M.bin_3.log", "b/1M.bin_1.log", "b/aa.log"}
	sortLogs(paths)
	assert.Equal(t, []string{"b/1M.bin_1.log", "b/1M.bin_3.log", "b/aa.log", "b/zz.log"}, paths)
}

func TestSortLogsIndexedAndUnindexedInterleaved(t *testing.T) {
	// x_10 vs x_9 order numerically while x_5x only sorts lexically;
	// the shared key keeps the ordering consistent for sort.Slice.
	paths := []string{"d/x_10.log", "d/x_5x.log", "d/x_9.log", "d/x_1.log"}
	sortLogs(paths)
	assert.Equal(t, []string{"d/x_1.log", "d/x_9.log", "d/x_10.log", "d/x_5x.log"}, paths)
}

func TestSortLogsSameNameAcrossDirs(t *testing.T) {
	paths := []string{"b/1M.bin_1.log", "a/1M.bin_1.log"}
	sortLogs(paths)
	assert.Equal(t, []string{"a/1M.bin_1.log", "b/1M.bin_1.log"}, paths)
}
