package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/session"
)

// AskOptions holds options for the ask command.
type AskOptions struct {
	Explain bool
	Save    string
	Export  string
}

// NewAskCommand creates the ask command.
func NewAskCommand() *cobra.Command {
	opts := &AskOptions{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Translate a question into SQL and run it",
		Long: `Send a natural-language question to the backend, which generates SQL,
runs it against the connected database and returns the rows.

The generated SQL is printed highlighted, followed by the result table.
The command exits non-zero when the backend is unreachable, no database
is connected, or the request fails.`,
		Example: `  # Ask a question
  sqlpilot ask "top 5 customers by revenue"

  # Also explain the generated SQL
  sqlpilot ask --explain "orders placed last week"

  # Save it as a bookmark and export the rows
  sqlpilot ask --save weekly --export weekly.csv "orders placed last week"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Explain, "explain", false, "Explain the generated SQL")
	cmd.Flags().StringVar(&opts.Save, "save", "", "Save the query as a bookmark with this name")
	cmd.Flags().StringVar(&opts.Export, "export", "", "Export the result to a .csv, .json or .sql file")

	return cmd
}

func runAsk(cmd *cobra.Command, question string, opts *AskOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	eng := cc.Engine

	if _, err := eng.Submit(ctx, question); err != nil {
		return errors.New(engine.Message(err))
	}

	if opts.Explain {
		if _, err := eng.Explain(ctx); err != nil && !errors.Is(err, engine.ErrNothingToExplain) {
			return err
		}
	}

	if err := renderDisplay(cc.Renderer, eng.Output()); err != nil {
		return err
	}

	if opts.Save != "" {
		b, err := eng.SaveBookmark(ctx, opts.Save)
		if err != nil && !errors.Is(err, session.ErrPersistenceWriteFailed) {
			return err
		}
		if err != nil {
			cc.Renderer.Warning(err.Error())
		}
		cc.Renderer.Success("Saved bookmark " + b.Name)
	}

	if opts.Export != "" {
		format, err := formatFromPath(opts.Export)
		if err != nil {
			return err
		}
		if err := ExportFile(opts.Export, eng.Output(), format); err != nil {
			return err
		}
		cc.Renderer.Success("Exported to " + opts.Export)
	}

	return nil
}
