// Package config loads the stylegraph configuration file.
//
// Config file locations (priority order):
//  1. $STYLEGRAPH_CONFIG
//  2. ./stylegraph.toml
//  3. $XDG_CONFIG_HOME/stylegraph/config.toml
//  4. ~/.config/stylegraph/config.toml
//
// A missing file is not an error: Load returns [Default].
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/store"
)

// Config is the on-disk configuration.
type Config struct {
	Store  store.Config `toml:"store"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures `stylegraph serve`.
type ServerConfig struct {
	Addr     string `toml:"addr"`
	Snapshot string `toml:"snapshot"` // store entry the served graph is saved to
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load finds and loads the config file, or returns defaults if none is
// found. The returned path is empty when defaults are used.
func Load() (*Config, string, error) {
	path := FindPath()
	if path == "" {
		return Default(), "", nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, path, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, path, errors.New(errors.ErrCodeInvalidFormat, "config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	cfg.applyDefaults()
	return &cfg, path, nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create config dir")
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write config")
	}
	return nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "", store.BackendFile, store.BackendMemory, store.BackendSQLite, store.BackendRedis, store.BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "log level")
		}
	}
	return nil
}

// LogLevel returns the configured log level, info when unset.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func (c *Config) applyDefaults() {
	if c.Store.Backend == "" {
		c.Store.Backend = store.BackendFile
	}
	if c.Store.Path == "" && (c.Store.Backend == store.BackendFile || c.Store.Backend == store.BackendSQLite) {
		c.Store.Path = DataDir()
	}
	if c.Store.Backend == store.BackendMongo && c.Store.Database == "" {
		c.Store.Database = AppName
	}
	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:7480"
	}
	if c.Server.Snapshot == "" {
		c.Server.Snapshot = "live"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
