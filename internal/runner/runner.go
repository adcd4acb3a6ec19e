// Package runner orchestrates a single trace run: validate the request,
// create the log file, fetch the asset while filtering the client's
// trace stream, and leave only the timestamped lines behind.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tracefetch/tracefetch/internal/config"
	"github.com/tracefetch/tracefetch/internal/fetch"
	"github.com/tracefetch/tracefetch/internal/tracelog"
	"github.com/tracefetch/tracefetch/pkg/logtrace"
)

var (
	// ErrAssetNotAllowed rejects download targets outside the allow-list.
	ErrAssetNotAllowed = errors.New("not an allowed asset")
	// ErrLogName rejects log paths without the required extension.
	ErrLogName = errors.New("log filename must end with .log")
)

// Runner executes trace runs with a fixed configuration and client.
type Runner struct {
	cfg     *config.Config
	fetcher fetch.Fetcher
	out     io.Writer
}

// New creates a runner. out receives the user-facing progress lines.
func New(cfg *config.Config, fetcher fetch.Fetcher, out io.Writer) *Runner {
	return &Runner{cfg: cfg, fetcher: fetcher, out: out}
}

// Result describes one completed trace run.
type Result struct {
	Asset     string
	URL       string
	LogPath   string
	Bytes     int64
	Lines     int
	Duration  time.Duration
	StartedAt time.Time
}

// ValidateAsset checks the download target against the allow-list.
func (r *Runner) ValidateAsset(asset string) error {
	if !r.cfg.IsAllowedAsset(asset) {
		return fmt.Errorf("%q is %w, allowed: %s", asset, ErrAssetNotAllowed, strings.Join(r.cfg.Assets.Allowed, " "))
	}
	return nil
}

// Validate checks the two run arguments. It must pass before anything
// touches the filesystem, so a rejected run leaves no log file behind.
func (r *Runner) Validate(asset, logPath string) error {
	if err := r.ValidateAsset(asset); err != nil {
		return err
	}
	if !strings.HasSuffix(logPath, ".log") {
		return fmt.Errorf("%w, got %q", ErrLogName, logPath)
	}
	return nil
}

// Run performs one trace run. The raw client trace is filtered on the
// fly, so only timestamped event lines ever reach the log file and
// memory stays flat regardless of asset size. On fetch failure the
// partially written log is left in place for inspection.
func (r *Runner) Run(ctx context.Context, asset, logPath string) (*Result, error) {
	if err := r.Validate(asset, logPath); err != nil {
		return nil, err
	}

	url := r.cfg.AssetURL(asset)
	res := &Result{
		Asset:     asset,
		URL:       url,
		LogPath:   logPath,
		StartedAt: time.Now(),
	}

	fmt.Fprintf(r.out, "Fetching %s (trace -> %s)\n", url, logPath)
	logtrace.Info(ctx, "starting trace run", logtrace.Fields{
		logtrace.FieldAsset:   asset,
		logtrace.FieldURL:     url,
		logtrace.FieldLogFile: logPath,
	})

	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	pr, pw := io.Pipe()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer pw.Close()
		n, ferr := r.fetcher.Fetch(gctx, url, pw)
		res.Bytes = n
		return ferr
	})
	g.Go(func() error {
		defer pr.Close()
		lines, ferr := tracelog.Filter(pr, logFile)
		res.Lines = lines
		if ferr != nil {
			// unblock the writer side
			pr.CloseWithError(ferr)
		}
		return ferr
	})

	runErr := g.Wait()
	res.Duration = time.Since(res.StartedAt)

	if cerr := logFile.Close(); cerr != nil && runErr == nil {
		runErr = fmt.Errorf("failed to write log file: %w", cerr)
	}

	if runErr != nil {
		logtrace.Error(ctx, "trace run failed", logtrace.Fields{
			logtrace.FieldAsset:   asset,
			logtrace.FieldLogFile: logPath,
			logtrace.FieldError:   runErr.Error(),
		})
		return res, runErr
	}

	if res.Lines == 0 {
		fmt.Fprintf(r.out, "Warning: no trace lines captured in %s\n", logPath)
		logtrace.Warn(ctx, "trace run captured no lines", logtrace.Fields{
			logtrace.FieldAsset:   asset,
			logtrace.FieldLogFile: logPath,
		})
	}

	fmt.Fprintf(r.out, "Done. %d trace lines written to %s\n", res.Lines, logPath)
	logtrace.Info(ctx, "trace run completed", logtrace.Fields{
		logtrace.FieldAsset:      asset,
		logtrace.FieldLogFile:    logPath,
		logtrace.FieldBytes:      res.Bytes,
		logtrace.FieldLines:      res.Lines,
		logtrace.FieldDurationMS: res.Duration.Milliseconds(),
	})
	return res, nil
}
