// Package config provides configuration management for the leapselect CLI.
//
// Values are layered the same way for every command: built-in defaults, then
// an optional YAML file, then LEAPSELECT_* environment variables, then flags
// that were set explicitly on the command line.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/leapselect/pkg/output"
	"github.com/leapstack-labs/leapselect/pkg/schema"
)

// Config holds all CLI configuration options.
type Config struct {
	DataDir     string        `koanf:"data_dir"`
	Metadata    string        `koanf:"metadata"`
	DataFormat  schema.Format `koanf:"data_format"`
	Output      output.Mode   `koanf:"output"`
	Echo        bool          `koanf:"echo"`
	HistoryPath string        `koanf:"history_path"`
	Verbose     bool          `koanf:"verbose"`
	LogLevel    string        `koanf:"log_level"`

	// ConfigFile is the YAML file that was loaded, if any.
	ConfigFile string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultDataDir      = "files"
	DefaultMetadataFile = "metadata.txt"
	DefaultOutput       = output.ModeText
	DefaultDataFormat   = schema.FormatCSV
	DefaultLogLevel     = "warn"
	EnvPrefix           = "LEAPSELECT_"
)

// ConfigFileNames are searched in the working directory when --config is not
// given.
var ConfigFileNames = []string{"leapselect.yaml", "leapselect.yml"}

// Level returns the slog level: debug when verbose, otherwise LogLevel.
func (c *Config) Level() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Metadata == "" {
		return fmt.Errorf("metadata is required")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}
