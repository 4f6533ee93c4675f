package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskboard/client/internal/application/app"
)

// NewCardCommand creates the card command group. Cards always belong to the
// active taskboard.
func NewCardCommand(opts *Options) *cobra.Command {
	cardCmd := &cobra.Command{
		Use:   "card",
		Short: "Taskcard commands on the active taskboard",
	}

	cardCmd.AddCommand(&cobra.Command{
		Use:   "add <title>",
		Short: "Add a taskcard",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			if err := r.loadBoards(ctx); err != nil {
				return err
			}
			if err := r.app.HandleAddComponent(ctx, strings.Join(args, " "), nil, app.ComponentTaskcard); err != nil {
				return err
			}
			return r.renderer.State(r.app.State())
		}),
	})

	cardCmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a taskcard",
		Args:  cobra.MinimumNArgs(2),
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := r.loadBoards(ctx); err != nil {
				return err
			}
			_, err = r.app.Cards.RenameCard(ctx, id, strings.Join(args[1:], " "))
			return err
		}),
	})

	cardCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a taskcard",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := r.loadBoards(ctx); err != nil {
				return err
			}
			return r.app.Cards.DeleteCard(ctx, id)
		}),
	})

	cardCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every taskcard of the active taskboard",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			if err := r.loadBoards(ctx); err != nil {
				return err
			}
			return r.app.Cards.ClearCards(ctx)
		}),
	})

	return cardCmd
}
