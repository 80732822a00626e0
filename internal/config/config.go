package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all blenderctl configuration.
type Config struct {
	// Blender executable and invocation settings
	Blender BlenderConfig `yaml:"blender"`

	// Batch processing settings
	Batch BatchConfig `yaml:"batch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// BlenderConfig configures how the Blender subprocess is located and run.
type BlenderConfig struct {
	// Executable is an explicit path to the Blender binary.
	// Overridden by the BLENDER_EXE environment variable and the
	// --blender flag, in that order of increasing priority.
	Executable string `yaml:"executable" env:"BLENDER_EXE"`

	// DefaultTimeout bounds a single Blender invocation ("10m", "30s").
	DefaultTimeout string `yaml:"default_timeout" env:"BLENDERCTL_TIMEOUT"`

	// MaxOutputBytes caps captured stdout/stderr per invocation.
	MaxOutputBytes int64 `yaml:"max_output_bytes" env:"BLENDERCTL_MAX_OUTPUT"`

	// ExtraArgs is a shell-style string of additional Blender arguments
	// prepended to every invocation (e.g. "--factory-startup").
	ExtraArgs string `yaml:"extra_args" env:"BLENDERCTL_EXTRA_ARGS"`
}

// BatchConfig configures the batch fan-out.
type BatchConfig struct {
	// Parallel is the default worker count when --parallel is not given.
	Parallel int `yaml:"parallel" env:"BLENDERCTL_PARALLEL"`

	// FileTimeout bounds each per-file invocation ("20m").
	FileTimeout string `yaml:"file_timeout"`
}

// LoggingConfig configures diagnostic logging.
type LoggingConfig struct {
	Level string `yaml:"level" env:"BLENDERCTL_LOG_LEVEL"` // debug, info, warn, error
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Blender: BlenderConfig{
			DefaultTimeout: "10m",
			MaxOutputBytes: 10 * 1024 * 1024,
		},
		Batch: BatchConfig{
			Parallel:    1,
			FileTimeout: "20m",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadDotenv loads .env from the working directory and the home directory.
// Existing environment variables are never overridden, matching setdefault
// semantics. Missing files are not an error.
func LoadDotenv() {
	paths := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// Load reads configuration from path (optional), then applies environment
// overrides. An empty path checks the default locations; a missing default
// file yields Default() plus env overrides, but an explicit path that does
// not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = defaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case explicit:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	return cfg, nil
}

// defaultPath returns the first existing default config location.
func defaultPath() string {
	candidates := []string{".blenderctl.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".blenderctl.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// GetDefaultTimeout parses Blender.DefaultTimeout, falling back to 10m.
func (c *Config) GetDefaultTimeout() time.Duration {
	return parseDuration(c.Blender.DefaultTimeout, 10*time.Minute)
}

// GetFileTimeout parses Batch.FileTimeout, falling back to 20m.
func (c *Config) GetFileTimeout() time.Duration {
	return parseDuration(c.Batch.FileTimeout, 20*time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
