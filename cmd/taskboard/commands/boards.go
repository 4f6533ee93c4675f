package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// NewBoardCommands creates the boards listing and the board command group.
func NewBoardCommands(opts *Options) []*cobra.Command {
	boardsCmd := &cobra.Command{
		Use:   "boards",
		Short: "Show your taskboards and the active board's cards",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			if err := r.loadBoards(ctx); err != nil {
				return err
			}
			return r.renderer.State(r.app.State())
		}),
	}

	boardCmd := &cobra.Command{
		Use:   "board",
		Short: "Taskboard commands",
	}

	boardCmd.AddCommand(&cobra.Command{
		Use:   "add <title>",
		Short: "Create a taskboard",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			if err := r.loadBoards(ctx); err != nil {
				return err
			}
			board, err := r.app.Boards.CreateBoard(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return r.renderer.Created("taskboard", board.ID, board.BoardTitle)
		}),
	})

	boardCmd.AddCommand(&cobra.Command{
		Use:   "rename <title>",
		Short: "Rename the active taskboard",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			if err := r.loadBoards(ctx); err != nil {
				return err
			}
			_, err := r.app.Boards.RenameBoard(ctx, strings.Join(args, " "))
			return err
		}),
	})

	boardCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a taskboard you own",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := r.loadBoards(ctx); err != nil {
				return err
			}
			_, err = r.app.Boards.DeleteBoard(ctx, id)
			return err
		}),
	})

	boardCmd.AddCommand(&cobra.Command{
		Use:   "share [email...]",
		Short: "Replace the active taskboard's share list; no emails revokes all access",
		RunE: withApp(opts, func(ctx context.Context, r *runtime, args []string) error {
			if err := r.loadBoards(ctx); err != nil {
				return err
			}
			_, err := r.app.Boards.ShareBoard(ctx, args)
			return err
		}),
	})

	return []*cobra.Command{boardsCmd, boardCmd}
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
