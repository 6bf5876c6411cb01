package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/dawaltconley/zotero-center-pdf/internal/logging"
)

// Manager owns the viper instance and the loaded configuration.
type Manager struct {
	viper *viper.Viper

	mu       sync.RWMutex
	config   *Config
	watching bool
}

// Load reads configuration from path (optional; empty means defaults plus
// environment only). Environment overrides use the CENTERPDF_ prefix, e.g.
// CENTERPDF_LOGGING_LEVEL=debug.
func Load(path string) (*Manager, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("id", def.ID)
	v.SetDefault("version", def.Version)
	v.SetDefault("root_uri", def.RootURI)
	v.SetDefault("stylesheet", def.Stylesheet)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)

	v.SetEnvPrefix("CENTERPDF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &Manager{viper: v, config: cfg}, nil
}

// Config returns the loaded configuration. The identity fields are
// immutable; callers may hold the pointer.
func (m *Manager) Config() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Watch starts watching the config file for changes. Only the logging level
// is re-applied; identity fields stay as loaded. No-op without a file.
func (m *Manager) Watch() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return nil
	}
	if m.viper.ConfigFileUsed() == "" {
		return nil
	}

	m.viper.WatchConfig()
	m.viper.OnConfigChange(func(e fsnotify.Event) {
		log := logging.NewFromEnv()
		log.Debug().Str("op", e.Op.String()).Str("file", e.Name).Msg("config change detected")

		if err := m.viper.ReadInConfig(); err != nil {
			log.Warn().Err(err).Msg("failed to reload config")
			return
		}

		level := m.viper.GetString("logging.level")
		if err := logging.SetGlobalLevel(level); err != nil {
			log.Warn().Err(err).Str("level", level).Msg("ignoring invalid logging level")
			return
		}

		m.mu.Lock()
		m.config.Logging.Level = level
		m.mu.Unlock()
		log.Info().Str("level", level).Msg("applied new logging level")
	})

	m.watching = true
	return nil
}
