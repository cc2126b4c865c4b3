package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
)

// SchemaOptions holds options for the schema command.
type SchemaOptions struct {
	Browse bool
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	opts := &SchemaOptions{}

	cmd := &cobra.Command{
		Use:   "schema [table]",
		Short: "Show the connected database's tables",
		Long: `Fetch the table list from the backend. With a table name, show that
table's columns; with --browse, ask for every record of it instead.`,
		Example: `  sqlpilot schema
  sqlpilot schema orders
  sqlpilot schema orders --browse`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Browse, "browse", false, "Show all records from the table")

	return cmd
}

func runSchema(cmd *cobra.Command, args []string, opts *SchemaOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	tables := cc.Engine.RefreshSchema(ctx)

	if len(args) == 0 {
		return renderSchema(cc.Renderer, tables)
	}

	name := args[0]
	if opts.Browse {
		if _, err := cc.Engine.BrowseTable(ctx, name); err != nil {
			return errors.New(engine.Message(err))
		}
		return renderDisplay(cc.Renderer, cc.Engine.Output())
	}

	for _, t := range tables {
		if t.Name == name {
			return renderTable(cc.Renderer, t)
		}
	}
	return fmt.Errorf("table %q not found", name)
}
