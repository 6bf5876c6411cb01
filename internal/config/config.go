// Package config provides configuration management for the plugin with
// Viper integration. The plugin identity (id, version, root URI, optional
// stylesheet) is supplied once at construction and immutable afterward; only
// the logging level may be re-applied at runtime by the watcher.
package config

import (
	"fmt"
	"regexp"
)

// Config is the complete plugin configuration.
type Config struct {
	// ID is the plugin identifier the host knows us by.
	ID string `mapstructure:"id" yaml:"id" json:"id"`
	// Version is the plugin's semantic version string.
	Version string `mapstructure:"version" yaml:"version" json:"version"`
	// RootURI is the base resource URI the host serves plugin assets from.
	RootURI string `mapstructure:"root_uri" yaml:"root_uri" json:"root_uri"`
	// Stylesheet is an optional stylesheet identifier injected alongside
	// the scripts. Empty disables style injection.
	Stylesheet string `mapstructure:"stylesheet" yaml:"stylesheet" json:"stylesheet,omitempty"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging" json:"logging"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level"`
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ID:      "center-pdf@dawaltconley.github.io",
		Version: "0.0.0",
		RootURI: "resource://center-pdf/",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

var semverRe = regexp.MustCompile(`^\d+\.\d+\.\d+(?:[-+].*)?$`)

// validate rejects configurations the plugin cannot start with.
func validate(cfg *Config) error {
	if cfg.ID == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if !semverRe.MatchString(cfg.Version) {
		return fmt.Errorf("version %q is not a semantic version", cfg.Version)
	}
	if cfg.RootURI == "" {
		return fmt.Errorf("root_uri cannot be empty")
	}
	switch cfg.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not one of console, json", cfg.Logging.Format)
	}
	return nil
}
