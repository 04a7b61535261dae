// Package config loads poetryctl settings using Viper.
package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sakura-poetry/poetryctl/internal/errors"
)

// EnvPrefix prefixes every environment override, e.g. POETRY_API_BASE_URL.
const EnvPrefix = "POETRY"

// Storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds the CLI configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Breaker BreakerConfig `mapstructure:"breaker" yaml:"breaker"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`

	// Source is the file the config was read from, empty when none existed.
	Source string `mapstructure:"-" yaml:"-"`
}

// APIConfig locates the backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
}

// StorageConfig selects where the session token lives.
type StorageConfig struct {
	Backend string      `mapstructure:"backend" yaml:"backend" validate:"oneof=file redis memory"`
	Path    string      `mapstructure:"path" yaml:"path,omitempty"`
	Redis   RedisConfig `mapstructure:"redis" yaml:"redis"`
}

// RedisConfig is used when Backend is redis.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password,omitempty"`
	DB       int           `mapstructure:"db" yaml:"db" validate:"gte=0"`
	Key      string        `mapstructure:"key" yaml:"key"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl" validate:"gte=0"`
}

// LoggingConfig controls diagnostic output on stderr.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// BreakerConfig tunes the gateway circuit breaker.
type BreakerConfig struct {
	Enabled     bool          `mapstructure:"enabled" yaml:"enabled"`
	MaxFailures uint32        `mapstructure:"max_failures" yaml:"max_failures" validate:"gte=1"`
	OpenTimeout time.Duration `mapstructure:"open_timeout" yaml:"open_timeout" validate:"gt=0"`
}

// TracingConfig turns on span logging for commands and gateway calls.
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// Dir returns ~/.poetryctl.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewConfigError(errors.ErrCodeConfigRead, "failed to get home directory", err)
	}
	return filepath.Join(home, ".poetryctl"), nil
}

// DefaultPath returns ~/.poetryctl/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	return &cfg
}

// Load reads configuration from path (or the location Resolve picks when
// empty) and applies POETRY_* environment overrides. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		resolved, err := Resolve()
		if err != nil {
			return nil, err
		}
		path = resolved
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case stderrors.As(err, &notFound):
		case stderrors.Is(err, os.ErrNotExist):
		default:
			return nil, errors.NewConfigError(errors.ErrCodeConfigRead, "failed to read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, "failed to decode config", err)
	}
	cfg.Source = v.ConfigFileUsed()
	if cfg.Source != "" {
		if _, err := os.Stat(cfg.Source); err != nil {
			cfg.Source = ""
		}
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid, "invalid configuration", err)
	}
	if c.Storage.Backend == BackendRedis && c.Storage.Redis.Addr == "" {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid, "storage.redis.addr is required for the redis backend", nil)
	}
	return nil
}

// Save writes cfg to path as YAML, readable only by the current user since
// it may hold a Redis password.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeConfigInvalid, "failed to encode config", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.NewConfigError(errors.ErrCodeConfigRead, "failed to create config directory", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return errors.NewConfigError(errors.ErrCodeConfigRead, "failed to write config file", err)
	}
	return nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", "15s")

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.path", "~/.poetryctl/session.json")
	v.SetDefault("storage.redis.addr", "")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.key", "poetryctl:token")
	v.SetDefault("storage.redis.ttl", "0s")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")

	v.SetDefault("breaker.enabled", false)
	v.SetDefault("breaker.max_failures", 5)
	v.SetDefault("breaker.open_timeout", "30s")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.sample_rate", 1.0)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
