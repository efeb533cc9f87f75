package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fakeyudi/storydrill/internal/catalog"
)

// run starts model full-screen. When watchDir is set, changes below it are
// delivered to the model as CatalogChangedMsg.
func run(model tea.Model, watchDir string) (tea.Model, error) {
	p := tea.NewProgram(model, tea.WithAltScreen())
	if watchDir != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			_ = catalog.Watch(ctx, watchDir, func() { p.Send(CatalogChangedMsg{}) })
		}()
	}
	return p.Run()
}

// RunPractice runs a session screen and returns its final model.
func RunPractice(m Practice, watchDir string) (Practice, error) {
	final, err := run(m, watchDir)
	if err != nil {
		return m, err
	}
	out, ok := final.(Practice)
	if !ok {
		return m, fmt.Errorf("unexpected model %T", final)
	}
	return out, nil
}

// RunStats runs the usage table screen.
func RunStats(m Stats, watchDir string) error {
	_, err := run(m, watchDir)
	return err
}
