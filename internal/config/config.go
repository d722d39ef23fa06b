package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salmonumbrella/notion-normalize/internal/normalize"
	"github.com/salmonumbrella/notion-normalize/internal/output"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "NOTION_NORMALIZE_CONFIG"

// Config represents the CLI configuration
type Config struct {
	// Rename property keys to camelCase by default
	CamelCase bool `yaml:"camelcase,omitempty"`

	// Key collision policy (last, first, error)
	Collision string `yaml:"collision,omitempty"`

	// Reject properties without a type instead of mapping them to null
	Strict bool `yaml:"strict,omitempty"`

	// Number of pages normalized in parallel (0 or 1 = sequential)
	Workers int `yaml:"workers,omitempty"`

	// Default output format (text, json, ndjson, table, yaml, csv)
	Output string `yaml:"output,omitempty"`

	// Default color mode (auto, always, never)
	Color string `yaml:"color,omitempty"`

	// Log format (text, json)
	LogFormat string `yaml:"log_format,omitempty"`
}

// Keys lists the settable configuration keys.
var Keys = []string{"camelcase", "collision", "strict", "workers", "output", "color", "log_format"}

// configPathFunc is the function used to get the default config path
// It can be overridden for testing
var configPathFunc = defaultConfigPath

// SetConfigPathFunc sets the config path function for testing.
// Returns the original function so it can be restored.
func SetConfigPathFunc(fn func() (string, error)) func() (string, error) {
	orig := configPathFunc
	configPathFunc = fn
	return orig
}

// defaultConfigPath returns $NOTION_NORMALIZE_CONFIG or ~/.config/notion-normalize/config.yaml
func defaultConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "notion-normalize", "config.yaml"), nil
}

// DefaultConfigPath returns the config file location.
func DefaultConfigPath() (string, error) {
	return configPathFunc()
}

// Load loads config from the default path, returns empty config if not found
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return &Config{}, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil // Return empty config if file doesn't exist
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}
	return &cfg, nil
}

// Save saves config to the default path
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveToPath(path)
}

// SaveToPath saves config to a specific path
func (c *Config) SaveToPath(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks that every set value is one the CLI accepts.
func (c *Config) Validate() error {
	if _, err := normalize.ParseCollisionPolicy(c.Collision); err != nil {
		return err
	}
	if c.Output != "" {
		if _, err := output.ParseFormat(c.Output); err != nil {
			return err
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}
	if c.Color != "" && !contains([]string{"auto", "always", "never"}, c.Color) {
		return fmt.Errorf("invalid color mode %q, must be one of: auto, always, never", c.Color)
	}
	if c.LogFormat != "" && !contains([]string{"text", "json"}, c.LogFormat) {
		return fmt.Errorf("invalid log format %q, must be one of: text, json", c.LogFormat)
	}
	return nil
}

// Set assigns a configuration value by key, validating it first.
// It returns the value as stored.
func (c *Config) Set(key, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "camelcase", "strict":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("invalid %s value %q, must be true or false", key, value)
		}
		if key == "camelcase" {
			c.CamelCase = b
		} else {
			c.Strict = b
		}
		return strconv.FormatBool(b), nil
	case "collision":
		policy, err := normalize.ParseCollisionPolicy(value)
		if err != nil {
			return "", err
		}
		c.Collision = string(policy)
		return c.Collision, nil
	case "workers":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return "", fmt.Errorf("invalid workers value %q, must be a non-negative integer", value)
		}
		c.Workers = n
		return strconv.Itoa(n), nil
	case "output":
		format, err := output.ParseFormat(value)
		if err != nil {
			return "", err
		}
		c.Output = string(format)
		return c.Output, nil
	case "color":
		if !contains([]string{"auto", "always", "never"}, value) {
			return "", fmt.Errorf("invalid color mode %q, must be one of: auto, always, never", value)
		}
		c.Color = value
		return value, nil
	case "log_format":
		if !contains([]string{"text", "json"}, value) {
			return "", fmt.Errorf("invalid log format %q, must be one of: text, json", value)
		}
		c.LogFormat = value
		return value, nil
	default:
		return "", fmt.Errorf("unknown config key %q\n\nSupported keys: %s", key, strings.Join(Keys, ", "))
	}
}

// GetOutput returns the effective output format (config default or empty)
func (c *Config) GetOutput() string {
	return c.Output
}

// GetColor returns the effective color mode (config default or empty)
func (c *Config) GetColor() string {
	return c.Color
}

func contains(slice []string, value string) bool {
	for _, v := range slice {
		if v == value {
			return true
		}
	}
	return false
}
