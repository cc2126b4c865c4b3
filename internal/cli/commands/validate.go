package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpilot/internal/cli/output"
	"github.com/leapstack-labs/sqlpilot/internal/engine"
)

// errInvalidSQL is returned so an invalid statement exits non-zero.
var errInvalidSQL = errors.New("SQL is invalid")

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "validate <sql>",
		Short:   "Check whether a SQL statement is valid",
		Long:    `Ask the backend to validate a SQL statement without running it.`,
		Example: `  sqlpilot validate "SELECT * FROM orders"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			v, err := cc.Engine.Validate(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return errors.New(engine.Message(err))
			}

			if cc.Renderer.Mode() == output.ModeJSON {
				if err := cc.Renderer.JSON(v); err != nil {
					return err
				}
			} else {
				renderValidation(cc.Renderer, v.Valid, v.Message)
			}
			if !v.Valid {
				return errInvalidSQL
			}
			return nil
		},
	}
}

func renderValidation(r *output.Renderer, valid bool, msg string) {
	switch {
	case valid && msg != "":
		r.Success("Valid: " + msg)
	case valid:
		r.Success("Valid SQL")
	case msg != "":
		r.Error("Invalid: " + msg)
	default:
		r.Error("Invalid SQL")
	}
}
