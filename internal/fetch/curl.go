package fetch

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// recvDataRE pulls the payload size out of curl's receive events so the
// fetcher can report how much body was downloaded.
var recvDataRE = regexp.MustCompile(`<= Recv data, (\d+) bytes`)

// Curl fetches by running an external curl process in trace mode. The
// body goes to the null device; the timestamped trace arrives on stdout
// and is streamed through to the trace writer unchanged.
type Curl struct {
	binary string
}

// NewCurl returns a fetcher that shells out to the given curl binary.
func NewCurl(binary string) *Curl {
	if binary == "" {
		binary = "curl"
	}
	return &Curl{binary: binary}
}

// Fetch runs curl against url. It returns the number of body bytes curl
// reported receiving.
func (c *Curl) Fetch(ctx context.Context, url string, trace io.Writer) (int64, error) {
	cmd := exec.CommandContext(ctx, c.binary,
		"-s", "-S",
		"--trace-ascii", "-",
		"--trace-time",
		"-o", os.DevNull,
		url,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to open curl stdout: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", c.binary, err)
	}

	var read int64
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if m := recvDataRE.FindStringSubmatch(line); m != nil {
			if n, perr := strconv.ParseInt(m[1], 10, 64); perr == nil {
				read += n
			}
		}
		if _, werr := io.WriteString(trace, line+"\n"); werr != nil {
			// drain the process before reporting, so Wait does not block
			io.Copy(io.Discard, stdout)
			cmd.Wait()
			return read, fmt.Errorf("failed to write trace event: %w", werr)
		}
	}
	scanErr := scanner.Err()
	waitErr := cmd.Wait()

	if scanErr != nil {
		return read, fmt.Errorf("failed to read curl output: %w", scanErr)
	}
	if waitErr != nil {
		msg := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			if msg != "" {
				return read, fmt.Errorf("curl exited with code %d: %s", exitErr.ExitCode(), msg)
			}
			return read, fmt.Errorf("curl exited with code %d", exitErr.ExitCode())
		}
		return read, fmt.Errorf("curl failed: %w", waitErr)
	}
	return read, nil
}
