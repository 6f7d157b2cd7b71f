// Package config loads the knnctl configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/knnspace/codec"
	"github.com/hupe1980/knnspace/internal/compress"
	"github.com/hupe1980/knnspace/version"
)

// Supported state backends.
const (
	BackendMemory = "memory"
	BackendLocal  = "local"
	BackendS3     = "s3"
	BackendMinIO  = "minio"
)

type LocalConfig struct {
	Root string `yaml:"root"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix,omitempty"`
	Region   string `yaml:"region,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	// DynamoDBTable enables conditional commits of the CURRENT pointer.
	DynamoDBTable string `yaml:"dynamodb_table,omitempty"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region,omitempty"`
	Secure    bool   `yaml:"secure"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix,omitempty"`
}

// StateConfig selects where published cluster state lives.
type StateConfig struct {
	Backend     string      `yaml:"backend"`
	Codec       string      `yaml:"codec"`
	Compression string      `yaml:"compression"`
	Local       LocalConfig `yaml:"local,omitempty"`
	S3          S3Config    `yaml:"s3,omitempty"`
	MinIO       MinIOConfig `yaml:"minio,omitempty"`
}

// LimitsConfig bounds calls into the state backend.
type LimitsConfig struct {
	MaxInFlight    int64   `yaml:"max_in_flight"`
	CallsPerSecond float64 `yaml:"calls_per_second"`
	IOBytesPerSec  int64   `yaml:"io_bytes_per_sec"`
}

type Config struct {
	LocalVersion string       `yaml:"local_version,omitempty"`
	LogLevel     string       `yaml:"log_level"`
	LogFormat    string       `yaml:"log_format"`
	State        StateConfig  `yaml:"state"`
	Limits       LimitsConfig `yaml:"limits"`
}

func Default() *Config {
	return &Config{
		LogLevel:  "warn",
		LogFormat: "text",
		State: StateConfig{
			Backend:     BackendLocal,
			Codec:       codec.Default.Name(),
			Compression: compress.ZSTD.String(),
			Local:       LocalConfig{Root: ".knnspace"},
		},
		Limits: LimitsConfig{MaxInFlight: 8},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: log_format must be text or json, got %q", c.LogFormat)
	}
	if c.LocalVersion != "" {
		if _, err := version.Parse(c.LocalVersion); err != nil {
			return fmt.Errorf("config: local_version: %w", err)
		}
	}
	if _, ok := codec.ByName(c.State.Codec); !ok {
		return fmt.Errorf("config: unknown codec %q", c.State.Codec)
	}
	if _, err := compress.ParseType(c.State.Compression); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	switch c.State.Backend {
	case BackendMemory:
	case BackendLocal:
		if c.State.Local.Root == "" {
			return errors.New("config: state.local.root is required")
		}
	case BackendS3:
		if c.State.S3.Bucket == "" {
			return errors.New("config: state.s3.bucket is required")
		}
	case BackendMinIO:
		if c.State.MinIO.Endpoint == "" || c.State.MinIO.Bucket == "" {
			return errors.New("config: state.minio.endpoint and state.minio.bucket are required")
		}
	default:
		return fmt.Errorf("config: unknown state backend %q", c.State.Backend)
	}

	if c.Limits.MaxInFlight < 0 || c.Limits.CallsPerSecond < 0 || c.Limits.IOBytesPerSec < 0 {
		return errors.New("config: limits must not be negative")
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return l, nil
}

// Version returns the configured local version, or the build version.
func (c *Config) Version() version.Version {
	if c.LocalVersion == "" {
		return version.Current()
	}
	v, err := version.Parse(c.LocalVersion)
	if err != nil {
		return version.Current()
	}
	return v
}
