package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/kutbudev/duedeck/internal/cli/commands"
	apierrors "github.com/kutbudev/duedeck/internal/errors"
)

// Version will be set during build with ldflags
var Version = "0.4.0"

func main() {
	app := &cli.App{
		Name:    "duedeck",
		Usage:   "Tasks grouped by when they are due",
		Version: Version,
		Flags:   commands.GlobalFlags(),
		Commands: []*cli.Command{
			// Core commands
			commands.NewTaskCommand(),
			commands.NewListCommand(),
			commands.NewTagCommand(),

			// Views
			commands.NewBoardCommand(),
			commands.NewKanbanCommand(),
			commands.NewFocusCommand(),
			commands.NewOverviewCommand(),

			// Meta
			commands.NewMcpCommand(),
			commands.NewConfigCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, apierrors.ParseAPIError(err))
		stop()
		os.Exit(1)
	}
}
