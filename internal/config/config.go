// Package config loads the daemon's configuration (spec §6.3) from an
// optional YAML file plus environment variable overrides, with defaults
// matching the spec exactly.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/touchhouse/touchhouse/internal/errs"
)

// LogLevel mirrors spec §6.3's log_level scale.
type LogLevel int

const (
	LogLevelInfo  LogLevel = 1
	LogLevelWarn  LogLevel = 2
	LogLevelError LogLevel = 3
)

// Config is the daemon's full configuration surface (spec §6.3).
type Config struct {
	StorageDirectory              string   `yaml:"storage_directory"`
	TCPSocket                     string   `yaml:"tcp_socket"`
	MaxConnections                int      `yaml:"max_connections"`
	LogLevel                      LogLevel `yaml:"log_level"`
	BackgroundMergeAvailableUnder int64    `yaml:"background_merge_available_under"`
}

// Default returns the spec's documented defaults.
func Default() Config {
	return Config{
		StorageDirectory:              "db_files/",
		TCPSocket:                     "127.0.0.1:7070",
		MaxConnections:                100,
		LogLevel:                      LogLevelInfo,
		BackgroundMergeAvailableUnder: 5,
	}
}

// Load reads a YAML config file at path, falling back to Default() for any
// field the file omits, then applies environment variable overrides.
// An empty path skips the file read and starts from Default().
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errs.Wrap(errs.IoError, err, "reading config file %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errs.Wrap(errs.Internal, err, "parsing config file %s", path)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnvOverrides lets TOUCHHOUSE_* environment variables override any
// field already set from the file or the defaults, for container/orchestrator
// deployments that prefer env vars to config files.
func applyEnvOverrides(cfg *Config) error {
	if v, ok := os.LookupEnv("TOUCHHOUSE_STORAGE_DIRECTORY"); ok {
		cfg.StorageDirectory = v
	}
	if v, ok := os.LookupEnv("TOUCHHOUSE_TCP_SOCKET"); ok {
		cfg.TCPSocket = v
	}
	if v, ok := os.LookupEnv("TOUCHHOUSE_MAX_CONNECTIONS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errs.Wrap(errs.Internal, err, "parsing TOUCHHOUSE_MAX_CONNECTIONS=%q", v)
		}
		cfg.MaxConnections = n
	}
	if v, ok := os.LookupEnv("TOUCHHOUSE_LOG_LEVEL"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errs.Wrap(errs.Internal, err, "parsing TOUCHHOUSE_LOG_LEVEL=%q", v)
		}
		cfg.LogLevel = LogLevel(n)
	}
	if v, ok := os.LookupEnv("TOUCHHOUSE_BACKGROUND_MERGE_AVAILABLE_UNDER"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errs.Wrap(errs.Internal, err, "parsing TOUCHHOUSE_BACKGROUND_MERGE_AVAILABLE_UNDER=%q", v)
		}
		cfg.BackgroundMergeAvailableUnder = n
	}
	return nil
}

// Validate rejects configurations that can't be used to start the daemon.
func (c Config) Validate() error {
	if c.StorageDirectory == "" {
		return errs.New(errs.Internal, "storage_directory must not be empty")
	}
	if c.TCPSocket == "" {
		return errs.New(errs.Internal, "tcp_socket must not be empty")
	}
	if c.MaxConnections <= 0 {
		return errs.New(errs.Internal, "max_connections must be positive, got %d", c.MaxConnections)
	}
	if c.LogLevel < LogLevelInfo || c.LogLevel > LogLevelError {
		return errs.New(errs.Internal, "log_level must be 1, 2, or 3, got %d", c.LogLevel)
	}
	if c.BackgroundMergeAvailableUnder < 0 {
		return errs.New(errs.Internal, "background_merge_available_under must not be negative, got %d", c.BackgroundMergeAvailableUnder)
	}
	return nil
}

func (l LogLevel) String() string {
	switch l {
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}
