package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taskboard/client/cmd/taskboard/commands"
)

func main() {
	opts := &commands.Options{}

	rootCmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Taskboard command line client",
		Long:          `Taskboard manages boards, cards and tasks on a remote taskboard service. The serve command runs a local development service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.Bind(rootCmd.PersistentFlags())

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewAccountCommands(opts)...)
	rootCmd.AddCommand(commands.NewBoardCommands(opts)...)
	rootCmd.AddCommand(commands.NewCardCommand(opts))
	rootCmd.AddCommand(commands.NewTaskCommand(opts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Printf("Command execution failed: %v", err)
		stop()
		os.Exit(1)
	}
}
