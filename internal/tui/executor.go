package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/latentscope/pkg/explorer"
)

// eventMsg carries a finished task back into the update loop.
type eventMsg struct {
	ev explorer.Event
}

// Executor queues tasks submitted during an update and turns them into
// bubbletea commands once the update returns. Submit is only called from
// the update loop, so the queue needs no lock.
type Executor struct {
	pending []explorer.Task
}

// Submit implements explorer.Executor.
func (e *Executor) Submit(t explorer.Task) {
	e.pending = append(e.pending, t)
}

// Pending returns the number of queued tasks.
func (e *Executor) Pending() int { return len(e.pending) }

// Cmd drains the queue into a single batched command. It returns nil when
// nothing is queued.
func (e *Executor) Cmd(ctx context.Context) tea.Cmd {
	if len(e.pending) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, len(e.pending))
	for i, task := range e.pending {
		cmds[i] = func() tea.Msg { return eventMsg{ev: task(ctx)} }
	}
	e.pending = nil
	return tea.Batch(cmds...)
}

var _ explorer.Executor = (*Executor)(nil)
