package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knnspace/version"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knnctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
local_version: 2.19.0
log_level: debug
log_format: json
state:
  backend: minio
  compression: lz4
  minio:
    endpoint: localhost:9000
    access_key: minioadmin
    secret_key: minioadmin
    bucket: knnspace
limits:
  calls_per_second: 20
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMinIO, cfg.State.Backend)
	assert.Equal(t, "go-json", cfg.State.Codec)
	assert.Equal(t, int64(8), cfg.Limits.MaxInFlight)
	assert.Equal(t, 20.0, cfg.Limits.CallsPerSecond)
	assert.Equal(t, version.V2_19_0, cfg.Version())

	lvl, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "knnctl.yaml")
	cfg := Default()
	cfg.State.Backend = BackendS3
	cfg.State.S3 = S3Config{Bucket: "state", Prefix: "prod/", DynamoDBTable: "commits"}

	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"log format", func(c *Config) { c.LogFormat = "xml" }},
		{"local version", func(c *Config) { c.LocalVersion = "x.y" }},
		{"codec", func(c *Config) { c.State.Codec = "msgpack" }},
		{"compression", func(c *Config) { c.State.Compression = "brotli" }},
		{"backend", func(c *Config) { c.State.Backend = "gcs" }},
		{"local root", func(c *Config) { c.State.Local.Root = "" }},
		{"s3 bucket", func(c *Config) { c.State.Backend = BackendS3 }},
		{"minio endpoint", func(c *Config) { c.State.Backend = BackendMinIO }},
		{"limits", func(c *Config) { c.Limits.MaxInFlight = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestVersion_DefaultsToBuild(t *testing.T) {
	assert.Equal(t, version.Current(), Default().Version())
}
