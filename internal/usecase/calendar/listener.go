package calendar

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/BruksfildServices01/petcare-scheduler/internal/events"
)

// Subscriber is satisfied by *events.Bus.
type Subscriber interface {
	Subscribe(h events.Handler) func()
}

// Refresher is satisfied by *Scheduler.
type Refresher interface {
	Refresh(ctx context.Context) (Snapshot, error)
}

// Listener re-fetches the last displayed range whenever appointments change.
// The change payload is ignored.
type Listener struct {
	ctx         context.Context
	target      Refresher
	unsubscribe func()
	closeOnce   sync.Once
}

// Listen subscribes target to bus. Refreshes run on their own goroutine so
// the bus worker is never held by a slow backend; overlapping refreshes are
// resolved by the scheduler's generation counter.
func Listen(ctx context.Context, bus Subscriber, target Refresher) *Listener {
	l := &Listener{ctx: ctx, target: target}
	l.unsubscribe = bus.Subscribe(l.handle)
	return l
}

func (l *Listener) handle(ch events.Change) {
	if l.ctx.Err() != nil {
		return
	}
	go func() {
		if _, err := l.target.Refresh(l.ctx); err != nil && !errors.Is(err, ErrSuperseded) {
			log.Printf("[calendar] refresh after %s failed: %v", ch.ID, err)
		}
	}()
}

// Close stops listening. Safe to call more than once.
func (l *Listener) Close() {
	l.closeOnce.Do(l.unsubscribe)
}
