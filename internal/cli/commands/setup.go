// Package commands implements the sqlpilot CLI subcommands.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpilot/internal/cli/config"
	"github.com/leapstack-labs/sqlpilot/internal/cli/output"
	"github.com/leapstack-labs/sqlpilot/internal/engine"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// Bookmarks are loaded before it returns. The cleanup function must be
// called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cc := NewCommandContextWithoutEngine(cmd)

	eng, err := createEngine(cc.Cfg, cc.Logger)
	if err != nil {
		return nil, nil, err
	}
	eng.Load(cmd.Context())
	cc.Engine = eng

	cleanup := func() {
		_ = eng.Close()
	}
	return cc, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without an engine.
// Useful for commands that never talk to the backend.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat), cfg.Color)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// getConfig returns the current configuration, or built-in defaults when
// none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		API: config.APIConfig{
			BaseURL:  config.DefaultBaseURL,
			Endpoint: config.DefaultEndpoint,
			Timeout:  config.DefaultTimeout,
		},
		PollInterval: config.DefaultPollInterval,
		StatePath:    config.ExpandHome(config.DefaultStateFile),
		HistoryFile:  config.ExpandHome(config.DefaultHistoryFile),
		OutputFormat: config.DefaultOutput,
		Color:        config.DefaultColor,
		LogLevel:     config.DefaultLogLevel,
		Serve:        config.ServeConfig{Addr: config.DefaultServeAddr, Watch: true},
	}
}

func createEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	return engine.New(engine.Config{
		API:          apiConfig(cfg),
		Timeout:      cfg.API.Timeout,
		PollInterval: cfg.PollInterval,
		StatePath:    cfg.StatePath,
		Logger:       logger,
	})
}

func apiConfig(cfg *config.Config) engine.APIConfig {
	return engine.APIConfig{
		BaseURL:  cfg.API.BaseURL,
		Endpoint: cfg.API.Endpoint,
	}
}
