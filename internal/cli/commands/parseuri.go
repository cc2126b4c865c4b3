package commands

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpilot/internal/cli/output"
	"github.com/leapstack-labs/sqlpilot/pkg/connstr"
	"github.com/leapstack-labs/sqlpilot/pkg/dialect"
)

// NewParseURICommand creates the parse-uri command.
func NewParseURICommand() *cobra.Command {
	var showPassword bool

	cmd := &cobra.Command{
		Use:   "parse-uri <uri>",
		Short: "Split a connection URI into its fields",
		Long: `Parse a connection URI of the form
scheme://[user[:password]@]host[:port]/database locally, without contacting
the backend. Missing ports take the dialect's default.`,
		Example: `  sqlpilot parse-uri postgresql://app:secret@db/shop
  sqlpilot parse-uri sqlite:///data/app.db -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContextWithoutEngine(cmd)

			d, err := connstr.Parse(args[0])
			if err != nil {
				return err
			}
			if !showPassword && d.Password != "" {
				d.Password = "****"
			}

			if cc.Renderer.Mode() == output.ModeJSON {
				return cc.Renderer.JSON(d)
			}
			port := ""
			if d.Port > 0 {
				port = strconv.Itoa(d.Port)
			}
			cc.Renderer.Table([]string{"Field", "Value"}, [][]string{
				{"db_type", d.Dialect},
				{"host", d.Host},
				{"port", port},
				{"database", d.Database},
				{"username", d.Username},
				{"password", d.Password},
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&showPassword, "show-password", false, "Print the password instead of masking it")

	return cmd
}

func joinDialects() string {
	return strings.Join(dialect.List(), "|")
}
