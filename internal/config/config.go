package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the casewise configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the casewise configuration directory
const ConfigDirName = ".casewise"

// Config holds all casewise configuration
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Match   MatchConfig   `yaml:"match"`
	Output  OutputConfig  `yaml:"output"`
	Serve   ServeConfig   `yaml:"serve"`
}

// CatalogConfig holds configuration for the case catalogue
type CatalogConfig struct {
	// CaseFiles are glob patterns, relative to the directory holding the
	// config directory, naming the YAML case files to index.
	CaseFiles []string `yaml:"case_files"`
	// AdditionalRequestKeys are extra case fields matched alongside
	// method, url and request body.
	AdditionalRequestKeys []string `yaml:"additional_request_keys"`
	// Store is the path of the sqlite case store, relative to the config
	// directory. Empty disables the store.
	Store string `yaml:"store"`
}

// MatchConfig holds configuration for nearest-match reporting
type MatchConfig struct {
	// TimeoutMS is the soft budget for one report, in milliseconds.
	// Zero disables the budget.
	TimeoutMS int `yaml:"timeout_ms"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// ServeConfig holds configuration for the exchange and MCP servers
type ServeConfig struct {
	Addr                     string `yaml:"addr"`
	LogFile                  string `yaml:"log_file"`
	LogMaxSizeMB             int    `yaml:"log_max_size_mb"`
	LogMaxBackups            int    `yaml:"log_max_backups"`
	InactivityTimeoutMinutes int    `yaml:"inactivity_timeout_minutes"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .casewise/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		// No config dir found, return defaults
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Merge with defaults
	merged := Merge(loaded, DefaultConfig())

	// Validate the merged config
	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .casewise directory by walking up from startDir.
// Returns the path to the .casewise directory if found.
func FindConfigDir(startDir string) (string, error) {
	// Get absolute path
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		// Move to parent directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, config not found
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .casewise directory if it doesn't exist.
// Returns the path to the .casewise directory.
func EnsureConfigDir(workDir string) (string, error) {
	// Get absolute path
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	// Check if it already exists
	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	// Create the directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	// Validate output format
	if !IsValidFormat(cfg.Output.DefaultFormat) {
		return fmt.Errorf("%w: default_format must be one of %v, got %q",
			ErrInvalidConfig, ValidFormats, cfg.Output.DefaultFormat)
	}

	// Validate match timeout (should be non-negative)
	if cfg.Match.TimeoutMS < 0 {
		return fmt.Errorf("%w: timeout_ms must be non-negative, got %d",
			ErrInvalidConfig, cfg.Match.TimeoutMS)
	}

	// Validate serve address
	if cfg.Serve.Addr == "" {
		return fmt.Errorf("%w: serve addr must not be empty", ErrInvalidConfig)
	}

	// Validate log rotation bounds (should be non-negative)
	if cfg.Serve.LogMaxSizeMB < 0 || cfg.Serve.LogMaxBackups < 0 {
		return fmt.Errorf("%w: log rotation settings must be non-negative", ErrInvalidConfig)
	}

	// Validate inactivity timeout (should be non-negative)
	if cfg.Serve.InactivityTimeoutMinutes < 0 {
		return fmt.Errorf("%w: inactivity_timeout_minutes must be non-negative, got %d",
			ErrInvalidConfig, cfg.Serve.InactivityTimeoutMinutes)
	}

	return nil
}

// SaveDefault writes the default configuration to .casewise/config.yaml in
// workDir. Creates the .casewise directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	// Add header comment
	header := "# casewise configuration\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
