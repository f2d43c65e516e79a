// Package config provides configuration management for catwalk.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultHTTPAddr is where the web form listens unless overridden.
	DefaultHTTPAddr = "127.0.0.1:38111"
	// DefaultMaxConns keeps a single writer connection to the store.
	DefaultMaxConns = 1

	dataDirName  = ".catwalk"
	dbFileName   = "catwalk.db"
	settingsName = "settings.json"
)

// Config holds catwalk settings.
type Config struct {
	DBPath   string `json:"CATWALK_DB_PATH"`
	HTTPAddr string `json:"CATWALK_HTTP_ADDR"`
	MaxConns int    `json:"CATWALK_MAX_CONNS"`
	Debug    bool   `json:"CATWALK_DEBUG"`
}

// DataDir returns the catwalk data directory under the user's home.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, dataDirName)
}

// DBPath returns the default store file path.
func DBPath() string {
	return filepath.Join(DataDir(), dbFileName)
}

// SettingsPath returns the settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), settingsName)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:   DBPath(),
		HTTPAddr: DefaultHTTPAddr,
		MaxConns: DefaultMaxConns,
	}
}

// Load reads the settings file and applies environment overrides.
// A missing or malformed settings file yields defaults, not an error.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(SettingsPath())
	if err == nil {
		var fileCfg Config
		if jsonErr := json.Unmarshal(data, &fileCfg); jsonErr != nil {
			log.Warn().Err(jsonErr).Str("path", SettingsPath()).Msg("Ignoring malformed settings file")
		} else {
			cfg.merge(&fileCfg)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) merge(other *Config) {
	if other.DBPath != "" {
		c.DBPath = expandHome(other.DBPath)
	}
	if other.HTTPAddr != "" {
		c.HTTPAddr = other.HTTPAddr
	}
	if other.MaxConns > 0 {
		c.MaxConns = other.MaxConns
	}
	if other.Debug {
		c.Debug = true
	}
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("CATWALK_DB_PATH")); v != "" {
		c.DBPath = expandHome(v)
	}
	if v := strings.TrimSpace(os.Getenv("CATWALK_HTTP_ADDR")); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv("CATWALK_MAX_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxConns = n
		}
	}
	if v := os.Getenv("CATWALK_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}
}

// EnsureDataDir creates the data directory if needed.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0750)
}

// EnsureSettings writes a default settings file if none exists.
func EnsureSettings() error {
	path := SettingsPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// EnsureAll prepares the data directory and settings file.
func EnsureAll() error {
	if err := EnsureDataDir(); err != nil {
		return err
	}
	return EnsureSettings()
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
