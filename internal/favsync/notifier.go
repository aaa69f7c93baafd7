package favsync

import (
	"sync"
	"time"
)

// DefaultNotificationDuration is how long a notification stays visible.
const DefaultNotificationDuration = 2 * time.Second

// Notification is the transient message shown to the user.
type Notification struct {
	Message string
	Visible bool
}

// Notifier holds at most one notification. Showing a new one replaces the
// message and restarts the hide timer.
type Notifier struct {
	mu        sync.Mutex
	hideAfter time.Duration
	current   Notification
	seq       uint64
	timer     *time.Timer
	onChange  func(Notification)
}

func NewNotifier(hideAfter time.Duration) *Notifier {
	if hideAfter <= 0 {
		hideAfter = DefaultNotificationDuration
	}
	return &Notifier{hideAfter: hideAfter}
}

// OnChange registers fn to be called after every show and hide.
// fn runs without the notifier's lock held.
func (n *Notifier) OnChange(fn func(Notification)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onChange = fn
}

func (n *Notifier) Show(message string) {
	n.mu.Lock()
	n.seq++
	seq := n.seq
	n.current = Notification{Message: message, Visible: true}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.hideAfter, func() { n.hide(seq) })
	current, fn := n.current, n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(current)
	}
}

func (n *Notifier) hide(seq uint64) {
	n.mu.Lock()
	if seq != n.seq || !n.current.Visible {
		n.mu.Unlock()
		return
	}
	n.current.Visible = false
	current, fn := n.current, n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(current)
	}
}

// Current returns the latest notification; Visible is false once it expired.
func (n *Notifier) Current() Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Stop cancels a pending hide.
func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
	}
}
