// Package tui implements the interactive terminal panel for lockbar.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lockbar-io/lockbar/internal/views"
)

// programRef is a shared reference to the tea.Program for goroutine sends.
// It's set after tea.NewProgram but before p.Run().
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) Set(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// Clear nils out the program reference, preventing post-exit sends.
func (r *programRef) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = nil
}

// Run launches the terminal panel over a started controller.
func Run(controller *views.Controller) error {
	ref := &programRef{}
	model := NewModel(controller)

	p := tea.NewProgram(model, tea.WithAltScreen())
	ref.Set(p)

	unsubscribe := controller.Subscribe(func(s views.Snapshot) {
		ref.Send(StateMsg{Snapshot: s})
	})
	defer unsubscribe()
	defer ref.Clear()

	_, err := p.Run()
	return err
}
