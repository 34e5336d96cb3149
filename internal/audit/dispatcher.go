package audit

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/BruksfildServices01/petcare-scheduler/internal/events"
)

// Dispatcher journals bus changes on its own worker so a slow database
// never holds up the bus.
type Dispatcher struct {
	logger *Logger
	queue  chan events.Change

	unsubscribe func()
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

func NewDispatcher(logger *Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		queue:  make(chan events.Change, 100),
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

// Attach journals every change published on bus by this instance. Changes
// relayed from other instances carry an origin and are journaled there.
func (d *Dispatcher) Attach(bus interface {
	Subscribe(h events.Handler) func()
}) {
	d.unsubscribe = bus.Subscribe(func(ch events.Change) {
		if ch.Origin != "" {
			return
		}
		d.Dispatch(ch)
	})
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for ch := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.logger.Log(ctx, ch); err != nil {
			log.Println("audit error:", err)
		}
		cancel()
	}
}

func (d *Dispatcher) Dispatch(ch events.Change) {
	select {
	case d.queue <- ch:
	default:
		log.Println("audit queue full, dropping change", ch.ID)
	}
}

// Close detaches from the bus and flushes what is queued. Dispatch must
// not be called afterwards.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		if d.unsubscribe != nil {
			d.unsubscribe()
		}
		close(d.queue)
	})
	d.wg.Wait()
}
