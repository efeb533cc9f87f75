package tui

// Inbox collects session notifications until the screen displays them.
// It is written and drained on the Bubble Tea update goroutine only.
type Inbox struct {
	messages []string
}

// NewInbox returns an empty Inbox.
func NewInbox() *Inbox { return &Inbox{} }

// Notify implements session.Notifier.
func (i *Inbox) Notify(message string) {
	i.messages = append(i.messages, message)
}

// Drain returns and clears the pending messages.
func (i *Inbox) Drain() []string {
	out := i.messages
	i.messages = nil
	return out
}
