package engine

// Notifier is a concurrency primitive for informing a worker that new work
// is available. At most one notification is buffered: notifying an already
// notified Notifier is a no-op, so a burst of Notify calls wakes the worker
// once.
//
// Notifier is safe to pass by value.
type Notifier struct {
	notifier chan struct{}
}

// NewNotifier instantiates a Notifier. Notifiers created via the
// constructor are initialized without a pending notification.
func NewNotifier() Notifier {
	return Notifier{make(chan struct{}, 1)}
}

// Notify sends a notification without blocking.
func (n Notifier) Notify() {
	select {
	case n.notifier <- struct{}{}:
	default:
	}
}

// Channel returns a channel receiving notifications.
func (n Notifier) Channel() <-chan struct{} {
	return n.notifier
}
