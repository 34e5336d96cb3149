// Package events carries the application-wide "appointments changed" signal.
package events

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const Topic = "appointments:changed"

// Actions emitted by this service. Upstream dashboards may send others.
const (
	ActionCreated = "created"
	ActionEdited  = "edited"
	ActionDeleted = "deleted"
	ActionPaid    = "paid"
	ActionStatus  = "status_changed"
)

// Change describes what changed. Subscribers are free to ignore the payload;
// the calendar always re-fetches its whole range.
type Change struct {
	ID            string    `json:"id"`
	Service       string    `json:"service,omitempty"`
	AppointmentID string    `json:"appointment_id,omitempty"`
	Action        string    `json:"action,omitempty"`
	Origin        string    `json:"origin,omitempty"`
	At            time.Time `json:"at"`
}

type Handler func(Change)

// Bus fans changes out to subscribers from a single worker goroutine.
// Publish never blocks: when the queue is full the change is dropped.
type Bus struct {
	mu   sync.RWMutex
	subs map[uint64]Handler
	next uint64

	queue     chan Change
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 100
	}
	b := &Bus{
		subs:  make(map[uint64]Handler),
		queue: make(chan Change, buffer),
		done:  make(chan struct{}),
	}

	b.wg.Add(1)
	go b.worker()
	return b
}

func (b *Bus) worker() {
	defer b.wg.Done()
	for {
		select {
		case ch := <-b.queue:
			b.deliver(ch)
		case <-b.done:
			for {
				select {
				case ch := <-b.queue:
					b.deliver(ch)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) deliver(ch Change) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[events] subscriber panicked on %s: %v", ch.ID, r)
				}
			}()
			h(ch)
		}()
	}
}

// Publish queues ch, filling in ID and At when empty. It reports whether
// the change was accepted.
func (b *Bus) Publish(ch Change) bool {
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	if ch.At.IsZero() {
		ch.At = time.Now()
	}

	select {
	case <-b.done:
		return false
	default:
	}

	select {
	case b.queue <- ch:
		return true
	default:
		log.Printf("[events] queue full, dropping %s %s/%s", ch.Action, ch.Service, ch.AppointmentID)
		return false
	}
}

// Subscribe registers h until the returned function is called.
func (b *Bus) Subscribe(h Handler) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = h
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Close delivers what is already queued and stops the worker.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	b.wg.Wait()
}
