package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/roastify/internal/shared"
	"github.com/desertthunder/roastify/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive roast controller.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	if err := r.prepare(ctx); err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.Options{
		Session:  r.session,
		Login:    func(ctx context.Context) error { return r.login(ctx, nil) },
		Progress: r.progress,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
