package tui

import tea "github.com/charmbracelet/bubbletea"

// ChannelObserver adapts controller subscriptions to a channel for Bubble Tea.
// Notifications coalesce: the model re-reads controller state on every signal,
// so a pending signal already covers later changes.
type ChannelObserver struct {
	ch chan struct{}
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver() *ChannelObserver {
	return &ChannelObserver{ch: make(chan struct{}, 1)}
}

// Notify signals a state change (non-blocking if a signal is pending).
func (o *ChannelObserver) Notify() {
	select {
	case o.ch <- struct{}{}:
	default: // Non-blocking if channel full
	}
}

// WaitCmd returns a command that delivers the next state change
func (o *ChannelObserver) WaitCmd() tea.Cmd {
	return func() tea.Msg {
		<-o.ch
		return StateChangedMsg{}
	}
}
