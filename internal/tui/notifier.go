package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// RefreshMsg asks the model to re-read the session. It is sent whenever the
// session changes outside a key press: transition halves, timer ticks and
// deck events.
type RefreshMsg struct{}

// Notifier forwards session changes to a running program. The session is
// built before the program exists, so the program is attached later.
// Notifications before Attach are dropped.
type Notifier struct {
	mu      sync.Mutex
	program *tea.Program
}

// Attach starts forwarding to p.
func (n *Notifier) Attach(p *tea.Program) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.program = p
}

// Notify sends a RefreshMsg to the attached program without waiting. It is
// meant to be passed to study.WithNotifier. Deck events raised by the
// model's own commands arrive while Update is running, so a blocking send
// would deadlock the event loop.
func (n *Notifier) Notify() {
	n.mu.Lock()
	p := n.program
	n.mu.Unlock()
	if p != nil {
		go p.Send(RefreshMsg{})
	}
}
