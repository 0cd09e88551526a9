package progress

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// TUI renders progress using a bubbletea interactive terminal display.
type TUI struct {
	Boring bool // use ASCII icons instead of emoji
}

// Run starts a bubbletea program that displays parse progress.
func (t *TUI) Run(ctx context.Context, label string, ch <-chan Event) error {
	m := newModel(label, t.Boring)

	p := tea.NewProgram(m, tea.WithContext(ctx))

	// Forward events into the bubbletea event loop. Selects on ctx.Done()
	// to avoid leaking the goroutine if ch is never closed.
	go func() {
		for {
			select {
			case e, ok := <-ch:
				if !ok {
					p.Send(doneMsg{})
					return
				}
				p.Send(eventMsg{event: e})
			case <-ctx.Done():
				return
			}
		}
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	if fm, ok := final.(*model); ok && fm.err != nil {
		return fmt.Errorf("rendering progress: %w", fm.err)
	}
	return nil
}
