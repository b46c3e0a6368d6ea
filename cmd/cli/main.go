package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/modgen/internal/app"
	"github.com/specialistvlad/modgen/internal/cli"
	"github.com/specialistvlad/modgen/internal/runstate"
)

// main is the entrypoint for the modgen application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdout, os.Args[1:])
	stop()

	// The real main function handles errors and exit codes.
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitFatal)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) error {
	inv, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	modgen := app.NewApp(outW, inv.Config)

	switch inv.Mode {
	case cli.ModeTree:
		return modgen.Tree(ctx)
	case cli.ModeWatch:
		return modgen.Watch(ctx, func(outcome runstate.Outcome, err error) {
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
		})
	}

	outcome, err := modgen.Run(ctx)
	if err != nil {
		return err
	}
	if outcome == runstate.RegenerationRequired {
		return &cli.ExitError{
			Code:    cli.ExitRegenerationRequired,
			Message: "build description regenerated, restart the build",
		}
	}
	return nil
}
