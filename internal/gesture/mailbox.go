package gesture

import "sync/atomic"

// Mailbox holds the most recent State. Writers overwrite; readers always get
// the latest value. There is no queue and no back-pressure.
type Mailbox struct {
	latest atomic.Pointer[State]
}

func NewMailbox() *Mailbox {
	return &Mailbox{}
}

func (m *Mailbox) Store(s State) {
	s = s.Sanitize()
	m.latest.Store(&s)
}

// Load returns the latest State, or Idle if nothing was stored yet.
func (m *Mailbox) Load() State {
	if s := m.latest.Load(); s != nil {
		return *s
	}
	return Idle()
}
