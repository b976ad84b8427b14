package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytlinks/internal/client"
	"github.com/desertthunder/ytlinks/internal/shared"
	"github.com/desertthunder/ytlinks/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive links dashboard.
//
// A saved session skips the login screen; a new login is saved for the CLI too.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger("./tmp/ytlinks-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	r.SetLogger(fileLogger)

	s, err := r.session()
	if err != nil && !errors.Is(err, shared.ErrNotAuthenticated) {
		r.logger.Warn("ignoring unreadable session", "error", err)
	}

	model := ui.NewModel(ctx, ui.Options{
		Auth:        r.api,
		Links:       r.api,
		Sender:      r.sender(),
		Session:     s,
		SaveSession: func(s *client.Session) error { return r.saveSession(s) },
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
