package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/loom"
	"github.com/dmitrymomot/loom/pkg/db"
	"github.com/dmitrymomot/loom/pkg/logger"
	"github.com/dmitrymomot/loom/pkg/redis"
)

// AppName names the XDG directories.
const AppName = "loom"

// Session store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the settings file of the loom command.
type Config struct {
	Addr    string        `yaml:"addr"`
	Engine  loom.Settings `yaml:"-"`
	Log     logger.Config `yaml:"log"`
	Session SessionConfig `yaml:"session"`
	Redis   redis.Config  `yaml:"redis"`
	CSRF    CSRFConfig    `yaml:"csrf"`
	Health  bool          `yaml:"health"`

	// RequestTimeout bounds each request. Zero keeps the middleware default.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// CORSOrigins allows cross-origin reads of shared resources.
	CORSOrigins []string `yaml:"cors_origins"`
}

// SessionConfig selects the session store.
type SessionConfig struct {
	Driver     string    `yaml:"driver"`
	SQLitePath string    `yaml:"sqlite_path"`
	Postgres   db.Config `yaml:"postgres"`
	Secret     string    `yaml:"secret"`
	MaxAge     int       `yaml:"max_age"`
	// Janitor is a cron schedule for deleting expired sessions.
	Janitor string `yaml:"janitor"`
}

// CSRFConfig lists extra origins allowed to call listeners.
type CSRFConfig struct {
	TrustedOrigins []string `yaml:"trusted_origins"`
}

// DefaultConfig serves on :8080 with SQLite sessions under the XDG data dir.
func DefaultConfig() Config {
	return Config{
		Addr:   ":8080",
		Engine: loom.DefaultSettings(),
		Session: SessionConfig{
			Driver:     DriverSQLite,
			SQLitePath: filepath.Join(xdg.DataHome, AppName, "sessions.db"),
			Janitor:    "@every 10m",
		},
		Health: true,
	}
}

// LoadConfig reads path, or loom/settings.yaml from the XDG config dirs
// when path is empty. A missing XDG file gives the defaults.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		found, err := xdg.SearchConfigFile(filepath.Join(AppName, "settings.yaml"))
		if err != nil {
			return DefaultConfig(), nil
		}
		path = found
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// LoadConfigFS reads name from fsys.
func LoadConfigFS(fsys fs.FS, name string) (Config, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes data on top of DefaultConfig. The engine section
// goes through loom.ParseSettings.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	var doc struct {
		Config `yaml:",inline"`
		Engine yaml.Node `yaml:"engine"`
	}
	doc.Config = cfg
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg = doc.Config

	if doc.Engine.Kind != 0 {
		raw, err := yaml.Marshal(&doc.Engine)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		if cfg.Engine, err = loom.ParseSettings(raw); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Session.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("session driver %q: %w", c.Session.Driver, errUnknownDriver)
	}
	if c.Session.Driver == DriverPostgres && c.Session.Postgres.ConnectionString == "" {
		return errors.New("session driver postgres needs session.postgres.url")
	}
	return nil
}

var errUnknownDriver = errors.New("unknown driver")
