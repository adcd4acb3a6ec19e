package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
		check         func(t *testing.T, cfg *Config)
		wantErr       bool
	}{
		{
			name: "full_config",
			configContent: `server:
  address: "10.0.0.5:8080"
  scheme: "https"
  base_path: "/files"
assets:
  allowed:
    - "big.bin"
trace:
  client: "curl"
  curl_binary: "/usr/local/bin/curl"
collect:
  out_dir: "out"
  compress: true
  pace: 6
archive:
  enabled: true
  path: "/var/lib/tracefetch/runs.db"
log:
  level: "debug"`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "10.0.0.5:8080", cfg.Server.Address)
				assert.Equal(t, "https", cfg.Server.Scheme)
				assert.Equal(t, "/files", cfg.Server.BasePath)
				assert.Equal(t, []string{"big.bin"}, cfg.Assets.Allowed)
				assert.Equal(t, "curl", cfg.Trace.Client)
				assert.Equal(t, "/usr/local/bin/curl", cfg.Trace.CurlBinary)
				assert.Equal(t, "out", cfg.Collect.OutDir)
				assert.True(t, cfg.Collect.Compress)
				assert.Equal(t, 6, cfg.Collect.Pace)
				assert.Equal(t, "/var/lib/tracefetch/runs.db", cfg.Archive.Path)
				assert.Equal(t, "debug", cfg.Log.Level)
			},
		},
		{
			name:          "empty_config_gets_defaults",
			configContent: `{}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "104.154.51.134", cfg.Server.Address)
				assert.Equal(t, "http", cfg.Server.Scheme)
				assert.Equal(t, "/assets", cfg.Server.BasePath)
				assert.Equal(t, []string{"1M.bin", "1K.bin", "1G.bin"}, cfg.Assets.Allowed)
				assert.Equal(t, "native", cfg.Trace.Client)
				assert.Equal(t, "curl", cfg.Trace.CurlBinary)
				assert.Equal(t, "traces", cfg.Collect.OutDir)
				assert.Equal(t, "runs.db", cfg.Archive.Path)
				assert.Equal(t, "info", cfg.Log.Level)
			},
		},
		{
			name: "partial_config_fills_missing",
			configContent: `server:
  address: "example.org"`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "example.org", cfg.Server.Address)
				assert.Equal(t, "http", cfg.Server.Scheme)
				assert.Equal(t, "native", cfg.Trace.Client)
			},
		},
		{
			name:          "invalid_yaml",
			configContent: "server: [not a mapping",
			wantErr:       true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yml")
			require.NoError(t, os.WriteFile(path, []byte(tc.configContent), 0o644))

			cfg, err := Load(path)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Address = "localhost:9090"
	cfg.Collect.Compress = true

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "default_is_valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing_address",
			mutate:  func(cfg *Config) { cfg.Server.Address = "" },
			wantErr: "server.address is required",
		},
		{
			name:    "bad_scheme",
			mutate:  func(cfg *Config) { cfg.Server.Scheme = "ftp" },
			wantErr: "server.scheme must be http or https",
		},
		{
			name:    "empty_allow_list",
			mutate:  func(cfg *Config) { cfg.Assets.Allowed = nil },
			wantErr: "assets.allowed cannot be empty",
		},
		{
			name:    "unknown_client",
			mutate:  func(cfg *Config) { cfg.Trace.Client = "wget" },
			wantErr: "trace.client must be native or curl",
		},
		{
			name:    "negative_pace",
			mutate:  func(cfg *Config) { cfg.Collect.Pace = -1 },
			wantErr: "collect.pace cannot be negative",
		},
		{
			name:    "bad_log_level",
			mutate:  func(cfg *Config) { cfg.Log.Level = "verbose" },
			wantErr: "log.level must be one of debug, info, warn, error",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestIsAllowedAsset(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.IsAllowedAsset("1M.bin"))
	assert.True(t, cfg.IsAllowedAsset("1K.bin"))
	assert.True(t, cfg.IsAllowedAsset("1G.bin"))
	assert.False(t, cfg.IsAllowedAsset("2M.bin"))
	assert.False(t, cfg.IsAllowedAsset("1m.bin"))
	assert.False(t, cfg.IsAllowedAsset(""))
}

func TestAssetURL(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "http://104.154.51.134/assets/1M.bin", cfg.AssetURL("1M.bin"))

	cfg.Server.Scheme = "https"
	cfg.Server.Address = "example.org:8443"
	cfg.Server.BasePath = "/files"
	assert.Equal(t, "https://example.org:8443/files/1G.bin", cfg.AssetURL("1G.bin"))
}

func TestGetHomeOverride(t *testing.T) {
	t.Setenv("TRACEFETCH_HOME", "/tmp/tf-home")
	assert.Equal(t, "/tmp/tf-home", GetHome())
	assert.Equal(t, "/tmp/tf-home/config.yml", DefaultPath())
}

func TestArchivePath(t *testing.T) {
	t.Setenv("TRACEFETCH_HOME", "/tmp/tf-home")

	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join("/tmp/tf-home", "runs.db"), cfg.ArchivePath())

	cfg.Archive.Path = "/data/runs.db"
	assert.Equal(t, "/data/runs.db", cfg.ArchivePath())
}
