package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpilot/internal/cli/output"
	"github.com/leapstack-labs/sqlpilot/pkg/token"
)

type tokenJSON struct {
	Text  string `json:"text"`
	Class string `json:"class"`
}

// NewTokensCommand creates the tokens command.
func NewTokensCommand() *cobra.Command {
	var highlight bool

	cmd := &cobra.Command{
		Use:   "tokens [sql]",
		Short: "Show how SQL text is split for highlighting",
		Long: `Split SQL into keyword, string, number and plain fragments. Reads
standard input when no argument is given.`,
		Example: `  sqlpilot tokens "SELECT * FROM t WHERE id = 5"
  echo "select 'x'" | sqlpilot tokens --highlight`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContextWithoutEngine(cmd)

			sql := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				sql = strings.TrimRight(string(data), "\n")
			}

			if highlight {
				cc.Renderer.SQL(sql)
				return nil
			}

			tokens := token.Tokenize(sql)
			if cc.Renderer.Mode() == output.ModeJSON {
				out := make([]tokenJSON, len(tokens))
				for i, t := range tokens {
					out[i] = tokenJSON{Text: t.Text, Class: t.Class.String()}
				}
				return cc.Renderer.JSON(out)
			}

			rows := make([][]string, len(tokens))
			for i, t := range tokens {
				rows[i] = []string{strconv.Itoa(i + 1), strconv.Quote(t.Text), t.Class.String()}
			}
			cc.Renderer.Table([]string{"#", "Text", "Class"}, rows)
			return nil
		},
	}

	cmd.Flags().BoolVar(&highlight, "highlight", false, "Print the highlighted SQL instead of the token list")

	return cmd
}
