package commands

import (
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqlpilot/internal/cli/output"
	"github.com/leapstack-labs/sqlpilot/internal/monitor"
	"github.com/leapstack-labs/sqlpilot/internal/session"
)

// statusReport is the JSON form of the status command.
type statusReport struct {
	monitor.Status
	Tables    int           `json:"tables"`
	Bookmarks int           `json:"bookmarks"`
	Stats     session.Stats `json:"stats"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend and database connectivity",
		Long: `Probe the backend's health endpoint and fetch the schema concurrently,
then report whether a database session is live.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			var (
				st     monitor.Status
				tables []session.TableInfo
			)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				st = cc.Engine.Probe(gctx)
				return nil
			})
			g.Go(func() error {
				tables = cc.Engine.RefreshSchema(gctx)
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}

			report := statusReport{
				Status:    st,
				Tables:    len(tables),
				Bookmarks: len(cc.Engine.Bookmarks()),
				Stats:     cc.Engine.Stats(),
			}
			if cc.Renderer.Mode() == output.ModeJSON {
				return cc.Renderer.JSON(report)
			}
			if err := renderStatus(cc.Renderer, st); err != nil {
				return err
			}
			cc.Renderer.Printf("Endpoint: %s\n", cc.Engine.APIConfig().Endpoint)
			cc.Renderer.Printf("Tables: %s  Bookmarks: %s\n", strconv.Itoa(report.Tables), strconv.Itoa(report.Bookmarks))
			return nil
		},
	}
}
