package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tracefetch/tracefetch/internal/archive"
	"github.com/tracefetch/tracefetch/internal/config"
	"github.com/tracefetch/tracefetch/pkg/logtrace"
)

// loadConfig resolves the active configuration. An explicit --config path
// must exist; otherwise the default path is used when present and built-in
// defaults when it is not.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return config.DefaultConfig(), nil
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// setupLogging initializes structured logging for the current invocation.
// Log output goes to stderr so command output on stdout stays clean.
func setupLogging(cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if debug {
		level = slog.LevelDebug
	}
	logtrace.Setup("tracefetch", "cli", level)
}

// openArchive opens the run archive named by the config, creating its
// parent directory when needed. Returns nil when archiving is disabled.
func openArchive(cfg *config.Config) (*archive.Store, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	path := cfg.ArchivePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return archive.NewStore(path)
}
