package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Adapter   string         `yaml:"adapter"`
	LogLevel  string         `yaml:"log_level"`
	LogFormat string         `yaml:"log_format"`
	Debug     DebugConfig    `yaml:"debug"`
	KeyStore  KeyStoreConfig `yaml:"keystore"`
	UserKeys  []uint16       `yaml:"user_keys"`
}

// DebugConfig holds the diagnostic sink settings.
type DebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Output  string `yaml:"output"` // "stderr", "stdout" or a file path
}

// KeyStoreConfig selects where user keys are read from.
type KeyStoreConfig struct {
	Backend string `yaml:"backend"` // "config" or "sqlite"
	Path    string `yaml:"path"`    // sqlite database file
}

// maxUserKeys mirrors keystore.MaxUserKeys.
const maxUserKeys = 8

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gobeacon")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultDataDir returns the directory holding the key database.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "gobeacon")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Adapter:   "hci0",
		LogLevel:  "info",
		LogFormat: "text",
		Debug: DebugConfig{
			Enabled: true,
			Output:  "stderr",
		},
		KeyStore: KeyStoreConfig{
			Backend: "config",
			Path:    filepath.Join(DefaultDataDir(), "keys.db"),
		},
		UserKeys: []uint16{0, 0, 0, 0},
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in keystore.path and debug.output is expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.KeyStore.Path = expandTilde(cfg.KeyStore.Path)
	cfg.Debug.Output = expandTilde(cfg.Debug.Output)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be \"text\" or \"json\", got %q", c.LogFormat)
	}

	if c.Debug.Enabled && c.Debug.Output == "" {
		return fmt.Errorf("debug.output must not be empty when debug is enabled")
	}

	switch c.KeyStore.Backend {
	case "config":
	case "sqlite":
		if c.KeyStore.Path == "" {
			return fmt.Errorf("keystore.path must not be empty for the sqlite backend")
		}
	default:
		return fmt.Errorf("keystore.backend must be \"config\" or \"sqlite\", got %q", c.KeyStore.Backend)
	}

	if len(c.UserKeys) > maxUserKeys {
		return fmt.Errorf("user_keys holds at most %d values, got %d", maxUserKeys, len(c.UserKeys))
	}

	return nil
}

const defaultConfigTemplate = `# gobeacon configuration
# Generated on first run. Edit to customize.

# BlueZ adapter (linux only)
adapter: hci0

# Logging: debug, info, warn, error / text or json
log_level: info
log_format: text

# Diagnostic console: stderr, stdout or a file path
debug:
  enabled: true
  output: stderr

# Where the beacon identity keys come from: "config" uses user_keys below,
# "sqlite" uses the database at path (manage it with beaconctl keys).
keystore:
  backend: config
  path: ~/.local/share/gobeacon/keys.db

# User keys, 0 means built-in default:
#   [0] UUID most significant 16 bits
#   [1] major
#   [2] minor
#   [3] TX power at 1 m as a two's complement byte (e.g. 0xB6 = -74 dBm)
user_keys: [0, 0, 0, 0]
`

// WriteDefault writes the default config template to DefaultConfigPath if no
// file exists there. It returns the written path, or "" if a file was
// already present.
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0644); err != nil {
		return "", fmt.Errorf("writing default config: %w", err)
	}
	return path, nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
