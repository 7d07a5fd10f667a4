package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/riff/internal/shared"
	"github.com/desertthunder/riff/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive favorites browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	if err := os.MkdirAll("tmp", 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	fileLogger, err := shared.NewFileLogger("./tmp/riff-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	if err := r.open(ctx); err != nil {
		return err
	}

	if err := ui.Run(ctx, r.favorites, cmd.String("email")); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
