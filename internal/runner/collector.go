package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/ratelimit"
	"gopkg.in/yaml.v3"

	"github.com/tracefetch/tracefetch/internal/archive"
	"github.com/tracefetch/tracefetch/internal/config"
	"github.com/tracefetch/tracefetch/internal/sysinfo"
	"github.com/tracefetch/tracefetch/pkg/logtrace"
	"github.com/tracefetch/tracefetch/pkg/utils"
)

// ManifestName is the batch manifest written next to the collected logs.
const ManifestName = "manifest.yaml"

// Collector runs consecutive traces of one asset and records the batch:
// numbered logs, a manifest with digests and the host snapshot, and an
// optional row per run in the archive database.
type Collector struct {
	cfg    *config.Config
	runner *Runner
	store  *archive.Store
	probe  *sysinfo.Collector
	out    io.Writer
}

// NewCollector creates a batch collector. store may be nil when
// archiving is disabled.
func NewCollector(cfg *config.Config, runner *Runner, store *archive.Store, out io.Writer) *Collector {
	return &Collector{
		cfg:    cfg,
		runner: runner,
		store:  store,
		probe:  sysinfo.NewCollector(),
		out:    out,
	}
}

// BatchOptions parameterizes one collection batch.
type BatchOptions struct {
	Asset    string
	Count    int
	OutDir   string // defaults to the configured collect.out_dir
	Compress bool   // compress each finished log with zstd
	Pace     int    // runs per minute, 0 runs back to back
}

// ManifestRun is one run entry in the batch manifest.
type ManifestRun struct {
	Index      int    `yaml:"index"`
	Log        string `yaml:"log"`
	Blake3     string `yaml:"blake3,omitempty"`
	Bytes      int64  `yaml:"bytes"`
	TraceLines int    `yaml:"trace_lines"`
	DurationMS int64  `yaml:"duration_ms"`
}

// Manifest describes a collection batch.
type Manifest struct {
	SessionID   string           `yaml:"session_id"`
	Asset       string           `yaml:"asset"`
	URL         string           `yaml:"url"`
	Client      string           `yaml:"client"`
	Status      string           `yaml:"status"`
	Error       string           `yaml:"error,omitempty"`
	StartedAt   time.Time        `yaml:"started_at"`
	FinishedAt  time.Time        `yaml:"finished_at"`
	Environment sysinfo.Snapshot `yaml:"environment"`
	Runs        []ManifestRun    `yaml:"runs"`
}

// Collect runs opts.Count consecutive traces. It stops at the first
// failed run; the manifest still records every run that finished before
// the failure. It returns the manifest path.
func (c *Collector) Collect(ctx context.Context, opts BatchOptions) (string, error) {
	if opts.Count <= 0 {
		return "", fmt.Errorf("run count must be a positive integer, got %d", opts.Count)
	}
	if err := c.runner.ValidateAsset(opts.Asset); err != nil {
		return "", err
	}

	outDir := opts.OutDir
	if outDir == "" {
		outDir = c.cfg.Collect.OutDir
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	sessionID := uuid.NewString()
	ctx = logtrace.CtxWithCorrelationID(ctx, sessionID)

	manifest := &Manifest{
		SessionID:   sessionID,
		Asset:       opts.Asset,
		URL:         c.cfg.AssetURL(opts.Asset),
		Client:      c.cfg.Trace.Client,
		Status:      "completed",
		StartedAt:   time.Now(),
		Environment: c.probe.Collect(ctx, outDir),
	}

	logtrace.Info(ctx, "starting collection batch", logtrace.Fields{
		logtrace.FieldSessionID: sessionID,
		logtrace.FieldAsset:     opts.Asset,
		"count":                 opts.Count,
		"out_dir":               outDir,
	})

	limiter := ratelimit.NewUnlimited()
	if opts.Pace > 0 {
		limiter = ratelimit.New(opts.Pace, ratelimit.Per(time.Minute))
	}

	var batchErr error
	for i := 1; i <= opts.Count; i++ {
		limiter.Take()

		logPath := filepath.Join(outDir, fmt.Sprintf("%s_%d.log", opts.Asset, i))
		fmt.Fprintf(c.out, "[collect] Collecting run %d: %s -> %s\n", i, opts.Asset, logPath)

		res, err := c.runner.Run(ctx, opts.Asset, logPath)
		if err != nil {
			batchErr = fmt.Errorf("run %d failed: %w", i, err)
			manifest.Status = "failed"
			manifest.Error = batchErr.Error()
			c.archiveRun(ctx, sessionID, opts.Asset, i, logPath, "", res, err)
			break
		}

		entry := ManifestRun{
			Index:      i,
			Log:        filepath.Base(logPath),
			Bytes:      res.Bytes,
			TraceLines: res.Lines,
			DurationMS: res.Duration.Milliseconds(),
		}

		if digest, herr := utils.Blake3HexFile(logPath); herr == nil {
			entry.Blake3 = digest
		} else {
			logtrace.Warn(ctx, "failed to hash log", logtrace.Fields{
				logtrace.FieldPath:  logPath,
				logtrace.FieldError: herr.Error(),
			})
		}

		if opts.Compress {
			zpath, zerr := utils.ZstdCompressFile(logPath)
			if zerr != nil {
				// the run itself finished; keep it in the manifest and
				// archive with the compression error attached
				batchErr = fmt.Errorf("run %d failed: %w", i, zerr)
				manifest.Status = "failed"
				manifest.Error = batchErr.Error()
				manifest.Runs = append(manifest.Runs, entry)
				c.archiveRun(ctx, sessionID, opts.Asset, i, logPath, entry.Blake3, res, zerr)
				break
			}
			logPath = zpath
			entry.Log = filepath.Base(zpath)
		}

		manifest.Runs = append(manifest.Runs, entry)
		c.archiveRun(ctx, sessionID, opts.Asset, i, logPath, entry.Blake3, res, nil)
	}

	manifest.FinishedAt = time.Now()
	manifestPath := filepath.Join(outDir, ManifestName)
	if err := writeManifest(manifest, manifestPath); err != nil {
		if batchErr == nil {
			batchErr = err
		}
		logtrace.Error(ctx, "failed to write manifest", logtrace.Fields{
			logtrace.FieldPath:  manifestPath,
			logtrace.FieldError: err.Error(),
		})
	}

	if batchErr != nil {
		return manifestPath, batchErr
	}

	logtrace.Info(ctx, "collection batch completed", logtrace.Fields{
		logtrace.FieldSessionID: sessionID,
		"runs":                  len(manifest.Runs),
	})
	return manifestPath, nil
}

// archiveRun records one run in the archive store, when enabled.
func (c *Collector) archiveRun(ctx context.Context, sessionID, asset string, idx int, logPath, digest string, res *Result, runErr error) {
	if c.store == nil {
		return
	}

	rec := archive.RunRecord{
		RunID:     uuid.NewString(),
		SessionID: sessionID,
		RunIndex:  idx,
		Asset:     asset,
		URL:       c.cfg.AssetURL(asset),
		Client:    c.cfg.Trace.Client,
		LogPath:   logPath,
		LogHash:   digest,
		Status:    archive.RunStatusCompleted,
	}

	if res != nil {
		rec.TraceLines = res.Lines
		rec.BytesFetched = res.Bytes
		rec.DurationMS = res.Duration.Milliseconds()
		rec.StartedAtUnix = res.StartedAt.Unix()
	}
	if runErr != nil {
		rec.Status = archive.RunStatusFailed
		rec.LastError = runErr.Error()
	}

	if err := c.store.UpsertRun(rec); err != nil {
		logtrace.Warn(ctx, "failed to archive run", logtrace.Fields{
			logtrace.FieldSessionID: sessionID,
			logtrace.FieldRunIndex:  idx,
			logtrace.FieldError:     err.Error(),
		})
	}
}

func writeManifest(m *Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
