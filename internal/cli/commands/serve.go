package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpilot/internal/cli/config"
	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr  string
	Watch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session over a local HTTP bridge",
		Long: `Start a local HTTP server exposing the query session as a JSON API.

The bridge lets editors and browser front ends drive the same engine as the
REPL: ask questions, browse the schema, manage bookmarks and connections.
Connectivity changes are pushed on /api/status/stream as server-sent events.

When --watch is on, edits to the config file repoint the bridge at the new
backend without a restart.`,
		Example: `  # Serve on the default address
  sqlpilot serve

  # Serve on another port without watching the config file
  sqlpilot serve --addr 127.0.0.1:9000 --watch=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (default: "+config.DefaultServeAddr+")")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload the backend location when the config file changes")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cc.Cfg
	addr := cfg.Serve.Addr
	if addr == "" {
		addr = config.DefaultServeAddr
	}

	serverCfg := ui.Config{
		Engine: cc.Engine,
		Addr:   addr,
		Logger: cc.Logger,
	}

	cfgFile := config.GetConfigFileUsed()
	if cfg.Serve.Watch && cfgFile != "" {
		flags := cmd.Flags()
		serverCfg.ConfigPath = cfgFile
		serverCfg.Reload = func() (engine.APIConfig, error) {
			next, err := config.LoadConfig(cfgFile, flags)
			if err != nil {
				return engine.APIConfig{}, err
			}
			return apiConfig(next), nil
		}
	}

	server := ui.NewServer(serverCfg)

	go func() {
		select {
		case a := <-server.Ready():
			cc.Renderer.Success(fmt.Sprintf("Bridge listening on http://%s", a))
			if serverCfg.ConfigPath != "" {
				cc.Renderer.Muted("Watching " + serverCfg.ConfigPath)
			}
			cc.Renderer.Muted("Press Ctrl+C to stop")
		case <-cmd.Context().Done():
		}
	}()

	return server.Serve(cmd.Context())
}
