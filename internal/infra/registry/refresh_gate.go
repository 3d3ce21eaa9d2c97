package registry

import "context"

// RefreshGate admits one refresh at a time. Waiters block on Acquire; the
// scheduler uses TryAcquire so a slow cycle swallows ticks instead of
// queueing them.
type RefreshGate struct {
	ch chan struct{}
}

func NewRefreshGate() *RefreshGate {
	return &RefreshGate{ch: make(chan struct{}, 1)}
}

func (g *RefreshGate) Acquire(ctx context.Context) error {
	if g == nil {
		return nil
	}
	select {
	case g.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *RefreshGate) TryAcquire() bool {
	if g == nil {
		return true
	}
	select {
	case g.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

func (g *RefreshGate) Release() {
	if g == nil {
		return
	}
	select {
	case <-g.ch:
	default:
	}
}
