// Package config loads the server configuration from YAML, environment
// variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		ReadTimeoutSec int      `yaml:"read_timeout_sec"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Log struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Format string `yaml:"format"` // console or json
	} `yaml:"log"`

	Currency struct {
		Code     string `yaml:"code"`
		Exponent int32  `yaml:"exponent"`
	} `yaml:"currency"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`

	Shifts struct {
		// Last publish wins when true.
		SkipVersionCheck bool `yaml:"skip_version_check"`
	} `yaml:"shifts"`

	Scheduler struct {
		Enabled         bool `yaml:"enabled"`
		IntervalMinutes int  `yaml:"interval_minutes"`
	} `yaml:"scheduler"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 8080
	cfg.Server.ReadTimeoutSec = 15
	cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	cfg.Database.Path = "stay.db"
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	cfg.Currency.Code = "EUR"
	cfg.Currency.Exponent = 2
	cfg.Metrics.Enabled = true
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.IntervalMinutes = 15
	return &cfg
}

// Load seeds the environment from .env (if present), then overlays the YAML
// file at path on top of Default. ${VAR} placeholders in the file are
// expanded. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}
	if len(c.Currency.Code) != 3 {
		return fmt.Errorf("currency.code %q is not an ISO 4217 code", c.Currency.Code)
	}
	if c.Currency.Exponent < 0 || c.Currency.Exponent > 4 {
		return fmt.Errorf("currency.exponent %d out of range", c.Currency.Exponent)
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format %q: want console or json", c.Log.Format)
	}
	return nil
}

func (c *Config) ReadTimeout() time.Duration {
	if c.Server.ReadTimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Server.ReadTimeoutSec) * time.Second
}

func (c *Config) SchedulerInterval() time.Duration {
	if c.Scheduler.IntervalMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Scheduler.IntervalMinutes) * time.Minute
}
