package gateway

import "sync"

const (
	MsgSessionExpired = "Session expired – please login again."
	MsgUnauthorized   = "Unauthorized – Please login to continue."
)

// notifier shows at most one auth notification until reset.
type notifier struct {
	mu      sync.Mutex
	shown   bool
	handler func(msg string)
}

func (n *notifier) setHandler(h func(msg string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handler = h
}

func (n *notifier) notify(msg string) {
	n.mu.Lock()
	if n.shown || n.handler == nil {
		n.mu.Unlock()
		return
	}
	n.shown = true
	h := n.handler
	n.mu.Unlock()

	h(msg)
}

func (n *notifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shown = false
}
