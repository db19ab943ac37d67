// Package config loads apexlens configuration from .apexlens/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete apexlens configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Scanner  ScannerConfig  `json:"scanner" mapstructure:"scanner"`
	Grouping GroupingConfig `json:"grouping" mapstructure:"grouping"`
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis"`
	Cache    CacheConfig    `json:"cache" mapstructure:"cache"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// ScannerConfig bounds the fast metadata scanner's windows
type ScannerConfig struct {
	HeadLines int `json:"headLines" mapstructure:"headLines"`
	TailLines int `json:"tailLines" mapstructure:"tailLines"`
	// ObjectsFile optionally extends the record-id prefix table
	ObjectsFile string `json:"objectsFile" mapstructure:"objectsFile"`
}

// GroupingConfig tunes transaction correlation
type GroupingConfig struct {
	WindowSeconds int `json:"windowSeconds" mapstructure:"windowSeconds"`
}

// AnalysisConfig tunes single-trace analysis output
type AnalysisConfig struct {
	IncludeTree bool `json:"includeTree" mapstructure:"includeTree"`
}

// CacheConfig controls the folder-scan cache database
type CacheConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `json:"level" mapstructure:"level"`
	// File routes scan logs to a file; "default" resolves to
	// .apexlens/apexlens.log under the scanned folder.
	File string `json:"file" mapstructure:"file"`
}

// DefaultConfig returns the configuration used when no config file exists.
// The defaults reproduce the documented scanner and grouping constants.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Scanner: ScannerConfig{
			HeadLines: 5000,
			TailLines: 1000,
		},
		Grouping: GroupingConfig{
			WindowSeconds: 10,
		},
		Analysis: AnalysisConfig{
			IncludeTree: true,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load reads configuration from <workRoot>/.apexlens/config.json, falling
// back to defaults when the file is absent.
func Load(workRoot string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("scanner.headLines", 5000)
	v.SetDefault("scanner.tailLines", 1000)
	v.SetDefault("grouping.windowSeconds", 10)
	v.SetDefault("analysis.includeTree", true)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("logging.level", "warn")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(workRoot, ".apexlens"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to <workRoot>/.apexlens/config.json
func (c *Config) Save(workRoot string) error {
	dir := filepath.Join(workRoot, ".apexlens")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Scanner.HeadLines <= 0 {
		return &ConfigError{Field: "scanner.headLines", Message: "must be positive"}
	}
	if c.Scanner.TailLines <= 0 {
		return &ConfigError{Field: "scanner.tailLines", Message: "must be positive"}
	}
	if c.Grouping.WindowSeconds <= 0 {
		return &ConfigError{Field: "grouping.windowSeconds", Message: "must be positive"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
