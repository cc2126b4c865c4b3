package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpilot/internal/cli/config"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	BaseURL string
	URI     string
	Force   bool
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter sqlpilot.yaml",
		Long: `Write a starter sqlpilot.yaml holding the default settings, so they can
be edited in one place.

An optional connection URI is stored under connection.uri and used by
'sqlpilot connect' when no target is given.`,
		Example: `  # Initialize in current directory
  sqlpilot init

  # Point at a remote backend and a default database
  sqlpilot init --base-url http://backend:8000 --uri postgresql://app@db/shop

  # Force overwrite existing config
  sqlpilot init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, opts)
		},
	}

	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "Backend base URL to write")
	cmd.Flags().StringVar(&opts.URI, "uri", "", "Default connection URI to write")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, opts *InitOptions) error {
	r := NewCommandContextWithoutEngine(cmd).Renderer
	path := filepath.Join(dir, config.ConfigFileNames[0])

	err := config.WriteStarter(path, config.StarterOptions{
		BaseURL:       opts.BaseURL,
		ConnectionURI: opts.URI,
		Force:         opts.Force,
	})
	if err != nil {
		return fmt.Errorf("%w (use --force to overwrite)", err)
	}

	r.Success("Wrote " + path)
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Start the text-to-SQL backend")
	r.Println("  2. Run 'sqlpilot connect' to open a database session")
	r.Println("  3. Run 'sqlpilot' to start asking questions")
	return nil
}
