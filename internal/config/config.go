package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the tracefetch configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Assets  AssetsConfig  `yaml:"assets"`
	Trace   TraceConfig   `yaml:"trace"`
	Collect CollectConfig `yaml:"collect"`
	Archive ArchiveConfig `yaml:"archive"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig describes the asset server the runner downloads from
type ServerConfig struct {
	Address  string `yaml:"address"`   // Host or host:port of the asset server
	Scheme   string `yaml:"scheme"`    // http or https
	BasePath string `yaml:"base_path"` // URL path prefix the assets live under
}

// AssetsConfig lists the downloads the runner will accept
type AssetsConfig struct {
	Allowed []string `yaml:"allowed"` // Asset names the trace command accepts
}

// TraceConfig selects and tunes the traced HTTP client
type TraceConfig struct {
	Client     string `yaml:"client"`      // Client backend: native or curl
	CurlBinary string `yaml:"curl_binary"` // curl executable (curl backend only)
}

// CollectConfig contains batch-collection settings
type CollectConfig struct {
	OutDir   string `yaml:"out_dir"`  // Directory batch logs are written into
	Compress bool   `yaml:"compress"` // Compress finished logs with zstd
	Pace     int    `yaml:"pace"`     // Runs per minute, 0 disables pacing
}

// ArchiveConfig contains run-archive settings
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"` // Record batch runs in the archive database
	Path    string `yaml:"path"`    // Database file, relative paths resolve under the home dir
}

// LogConfig contains logger settings
type LogConfig struct {
	Level string `yaml:"level"` // Log level: debug, info, warn, error
}

// GetHome returns the tracefetch home directory, honoring the
// TRACEFETCH_HOME override.
func GetHome() string {
	if home := os.Getenv("TRACEFETCH_HOME"); home != "" {
		return home
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		userHome = "."
	}
	return filepath.Join(userHome, ".tracefetch")
}

// DefaultPath returns the default config file location under the home dir.
func DefaultPath() string {
	return filepath.Join(GetHome(), "config.yml")
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:  "104.154.51.134",
			Scheme:   "http",
			BasePath: "/assets",
		},
		Assets: AssetsConfig{
			Allowed: []string{"1M.bin", "1K.bin", "1G.bin"},
		},
		Trace: TraceConfig{
			Client:     "native",
			CurlBinary: "curl",
		},
		Collect: CollectConfig{
			OutDir:   "traces",
			Compress: false,
			Pace:     0,
		},
		Archive: ArchiveConfig{
			Enabled: true,
			Path:    "runs.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Apply defaults for missing values
	if cfg.Server.Address == "" {
		cfg.Server.Address = "104.154.51.134"
	}
	if cfg.Server.Scheme == "" {
		cfg.Server.Scheme = "http"
	}
	if cfg.Server.BasePath == "" {
		cfg.Server.BasePath = "/assets"
	}
	if len(cfg.Assets.Allowed) == 0 {
		cfg.Assets.Allowed = []string{"1M.bin", "1K.bin", "1G.bin"}
	}
	if cfg.Trace.Client == "" {
		cfg.Trace.Client = "native"
	}
	if cfg.Trace.CurlBinary == "" {
		cfg.Trace.CurlBinary = "curl"
	}
	if cfg.Collect.OutDir == "" {
		cfg.Collect.OutDir = "traces"
	}
	if cfg.Archive.Path == "" {
		cfg.Archive.Path = "runs.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	return &cfg, nil
}

// Save writes configuration to a file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}

	if c.Server.Scheme != "http" && c.Server.Scheme != "https" {
		return fmt.Errorf("server.scheme must be http or https")
	}

	if len(c.Assets.Allowed) == 0 {
		return fmt.Errorf("assets.allowed cannot be empty")
	}

	if c.Trace.Client != "native" && c.Trace.Client != "curl" {
		return fmt.Errorf("trace.client must be native or curl")
	}

	if c.Collect.Pace < 0 {
		return fmt.Errorf("collect.pace cannot be negative")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}

	return nil
}

// IsAllowedAsset reports whether name is in the allowed asset list.
func (c *Config) IsAllowedAsset(name string) bool {
	for _, a := range c.Assets.Allowed {
		if a == name {
			return true
		}
	}
	return false
}

// AssetURL builds the download URL for an asset name.
func (c *Config) AssetURL(asset string) string {
	return fmt.Sprintf("%s://%s%s/%s", c.Server.Scheme, c.Server.Address, c.Server.BasePath, asset)
}

// ArchivePath resolves the archive database location, placing relative
// paths under the tracefetch home directory.
func (c *Config) ArchivePath() string {
	if filepath.IsAbs(c.Archive.Path) {
		return c.Archive.Path
	}
	return filepath.Join(GetHome(), c.Archive.Path)
}
