package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpilot/internal/cli/output"
)

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <sql>",
		Short: "Explain a SQL statement in plain language",
		Long: `Ask the backend to describe what a SQL statement does. When the backend
cannot explain it, a fallback message is shown instead of an error.`,
		Example: `  sqlpilot explain "SELECT count(*) FROM orders WHERE total > 100"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			sql := strings.Join(args, " ")
			text := cc.Engine.ExplainSQL(cmd.Context(), sql)

			if cc.Renderer.Mode() == output.ModeJSON {
				return cc.Renderer.JSON(map[string]string{"sql": sql, "explanation": text})
			}
			cc.Renderer.SQL(sql)
			cc.Renderer.Println()
			cc.Renderer.Println(text)
			return nil
		},
	}
}
