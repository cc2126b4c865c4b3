package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpilot/internal/backend"
	"github.com/leapstack-labs/sqlpilot/internal/cli/config"
	"github.com/leapstack-labs/sqlpilot/pkg/connstr"
	"github.com/leapstack-labs/sqlpilot/pkg/dialect"
)

var errNoConnectionTarget = errors.New("no connection target: pass a URI, use --dialect, or set connection in the config file")

// ConnectOptions holds options for the connect command.
type ConnectOptions struct {
	Dialect  string
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

// NewConnectCommand creates the connect command.
func NewConnectCommand() *cobra.Command {
	opts := &ConnectOptions{}

	cmd := &cobra.Command{
		Use:   "connect [uri]",
		Short: "Connect the backend to a database",
		Long: `Ask the backend to open a database session.

The target is either a connection URI, individual --dialect/--host/...
flags, or the connection section of the config file, in that order.`,
		Example: `  sqlpilot connect postgresql://app:secret@db:5432/shop
  sqlpilot connect --dialect mysql --host db --database shop --username app
  sqlpilot connect sqlite:///data/app.db`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "Database type ("+joinDialects()+")")
	cmd.Flags().StringVar(&opts.Host, "host", connstr.DefaultHost, "Database host")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "Database port (default: the dialect's port)")
	cmd.Flags().StringVar(&opts.Database, "database", "", "Database name or file path")
	cmd.Flags().StringVar(&opts.Username, "username", "", "Database user")
	cmd.Flags().StringVar(&opts.Password, "password", "", "Database password")

	_ = cmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return dialect.List(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// NewDisconnectCommand creates the disconnect command.
func NewDisconnectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect",
		Short: "Close the backend's database session",
		Long:  `Ask the backend to close its database session. Failures are ignored.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			cc.Engine.Disconnect(cmd.Context())
			cc.Renderer.Success("Disconnected")
			return renderStatus(cc.Renderer, cc.Engine.Status())
		},
	}
}

func runConnect(cmd *cobra.Command, args []string, opts *ConnectOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	req, err := buildConnectRequest(args, opts, cmd.Flags().Changed("port"), cc.Cfg.Connection)
	if err != nil {
		return err
	}

	cc.Renderer.Muted("Connecting to " + describeTarget(req))
	msg, err := cc.Engine.Connect(cmd.Context(), req)
	if err != nil {
		return err
	}
	cc.Renderer.Success(msg)
	return renderStatus(cc.Renderer, cc.Engine.Status())
}

// buildConnectRequest picks the connection target: URI argument, flags, then
// the configured connection.
func buildConnectRequest(args []string, opts *ConnectOptions, portSet bool, conf config.ConnectionConfig) (backend.ConnectRequest, error) {
	if len(args) == 1 {
		return uriRequest(args[0])
	}

	if opts.Dialect != "" {
		d := connstr.Descriptor{
			Host:     opts.Host,
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		}.WithDialect(opts.Dialect)
		if portSet {
			d.Port = opts.Port
		}
		return descriptorRequest(d)
	}

	switch {
	case conf.URI != "":
		return uriRequest(conf.URI)
	case conf.Type != "":
		host := conf.Host
		if host == "" {
			host = connstr.DefaultHost
		}
		d := connstr.Descriptor{
			Host:     host,
			Database: conf.Database,
			Username: conf.Username,
			Password: conf.Password,
		}.WithDialect(conf.Type)
		if conf.Port != 0 {
			d.Port = conf.Port
		}
		return descriptorRequest(d)
	}

	return backend.ConnectRequest{}, errNoConnectionTarget
}

func uriRequest(uri string) (backend.ConnectRequest, error) {
	if _, err := connstr.Parse(uri); err != nil {
		return backend.ConnectRequest{}, err
	}
	return backend.ConnectRequest{ConnectionString: uri}, nil
}

func descriptorRequest(d connstr.Descriptor) (backend.ConnectRequest, error) {
	if _, ok := dialect.Get(d.Dialect); !ok {
		return backend.ConnectRequest{}, fmt.Errorf("unknown dialect %q (%s)", d.Dialect, joinDialects())
	}
	if d.Database == "" {
		return backend.ConnectRequest{}, errors.New("database is required")
	}
	return backend.ConnectRequest{Descriptor: d}, nil
}

func describeTarget(req backend.ConnectRequest) string {
	if req.ConnectionString != "" {
		if d, err := connstr.Parse(req.ConnectionString); err == nil {
			return d.Redacted()
		}
		return req.ConnectionString
	}
	return req.Descriptor.Redacted()
}
