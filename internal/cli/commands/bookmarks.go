package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
)

// NewBookmarksCommand creates the bookmarks command and its subcommands.
func NewBookmarksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookmarks",
		Aliases: []string{"saved"},
		Short:   "Manage saved queries",
		Long: `List, run and delete saved queries. Entries are addressed by their
list position (1 is the newest) or by an id prefix.`,
		RunE: runBookmarksList,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved queries",
		Args:  cobra.NoArgs,
		RunE:  runBookmarksList,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "run <ref>",
		Short: "Run a saved query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := resolveRef(args[0], bookmarkIDs(cc.Engine.Bookmarks()))
			if err != nil {
				return err
			}
			if _, err := cc.Engine.RunBookmark(cmd.Context(), id); err != nil {
				return errors.New(engine.Message(err))
			}
			return renderDisplay(cc.Renderer, cc.Engine.Output())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "delete <ref>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved query",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			items := cc.Engine.Bookmarks()
			id, err := resolveRef(args[0], bookmarkIDs(items))
			if err != nil {
				return err
			}
			if err := cc.Engine.DeleteBookmark(cmd.Context(), id); err != nil {
				return err
			}
			cc.Renderer.Success("Deleted bookmark " + shortID(id))
			return nil
		},
	})

	return cmd
}

func runBookmarksList(cmd *cobra.Command, _ []string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	return renderBookmarks(cc.Renderer, cc.Engine.Bookmarks())
}
