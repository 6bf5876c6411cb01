// Package cli wires configuration, logging, and the TUI theme for the
// command layer.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dawaltconley/zotero-center-pdf/internal/cli/styles"
	"github.com/dawaltconley/zotero-center-pdf/internal/config"
	"github.com/dawaltconley/zotero-center-pdf/internal/logging"
)

// BuildInfo identifies the binary. Populated from main via ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App holds the dependencies every command shares.
type App struct {
	Config    *config.Config
	Manager   *config.Manager
	Theme     *styles.Theme
	Logger    zerolog.Logger
	BuildInfo BuildInfo

	ctx context.Context
}

// NewApp loads configuration and sets up logging. configPath may be empty;
// defaults plus CENTERPDF_* environment overrides still apply.
func NewApp(configPath string) (*App, error) {
	mgr, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := mgr.Config()

	logCfg := logging.DefaultConfig()
	if parsed, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		logCfg.Level = parsed
	}
	if cfg.Logging.Format != "" {
		logCfg.Format = cfg.Logging.Format
	}
	logCfg.TimeFormat = "15:04:05"
	logger := logging.New(logCfg)

	return &App{
		Config:  cfg,
		Manager: mgr,
		Theme:   styles.NewTheme(),
		Logger:  logger,
		ctx:     logging.WithContext(context.Background(), logger),
	}, nil
}

// Context returns the app's base context with the logger attached.
func (a *App) Context() context.Context {
	return a.ctx
}
