package calendar

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultViewID addresses the shared view used by callers that never opened
// their own. It is never reaped.
const DefaultViewID = "default"

const DefaultIdleTTL = 30 * time.Minute

// ViewsOptions configures every scheduler the registry creates.
type ViewsOptions struct {
	Days      DayFetcher
	Scheduler SchedulerOptions
	Bus       Subscriber
	Booker    Booker
	IdleTTL   time.Duration
	// InitialLoad fetches the current month grid as soon as a view opens.
	InitialLoad bool
}

// CalendarView is one viewer's calendar: its own scheduler, presenter and
// change listener, alive until closed or reaped.
type CalendarView struct {
	ID        string
	Scheduler *Scheduler
	Presenter *Presenter

	ctx      context.Context
	cancel   context.CancelFunc
	listener *Listener
	lastSeen time.Time
}

// Context is cancelled when the view closes. Fetches that should outlive a
// single HTTP request run under it.
func (v *CalendarView) Context() context.Context {
	return v.ctx
}

func (v *CalendarView) close() {
	if v.listener != nil {
		v.listener.Close()
	}
	v.Scheduler.Stop()
	v.cancel()
}

// Views keeps one scheduler per viewer so concurrent viewers never
// supersede each other's range fetches.
type Views struct {
	opts ViewsOptions
	now  func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	views map[string]*CalendarView
}

func NewViews(ctx context.Context, opts ViewsOptions) *Views {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	now := opts.Scheduler.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(ctx)
	v := &Views{
		opts:   opts,
		now:    now,
		ctx:    ctx,
		cancel: cancel,
		views:  make(map[string]*CalendarView),
	}

	v.mu.Lock()
	v.views[DefaultViewID] = v.newView(DefaultViewID)
	v.mu.Unlock()

	return v
}

func (v *Views) newView(id string) *CalendarView {
	ctx, cancel := context.WithCancel(v.ctx)
	sched := NewScheduler(v.opts.Days, v.opts.Scheduler)

	view := &CalendarView{
		ID:        id,
		Scheduler: sched,
		Presenter: NewPresenter(sched, v.opts.Booker, v.now),
		ctx:       ctx,
		cancel:    cancel,
		lastSeen:  v.now(),
	}
	if v.opts.Bus != nil {
		view.listener = Listen(ctx, v.opts.Bus, sched)
	}
	if v.opts.InitialLoad {
		go func() {
			if _, err := sched.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
				log.Printf("[calendar] initial load for view %s failed: %v", id, err)
			}
		}()
	}
	return view
}

// Open creates a new view with a random id.
func (v *Views) Open() *CalendarView {
	id := uuid.NewString()
	view := v.newView(id)

	v.mu.Lock()
	v.views[id] = view
	v.mu.Unlock()

	return view
}

// Get returns the view for id and marks it as recently used. An empty id
// resolves to the default view.
func (v *Views) Get(id string) (*CalendarView, bool) {
	if id == "" {
		id = DefaultViewID
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	view, ok := v.views[id]
	if ok {
		view.lastSeen = v.now()
	}
	return view, ok
}

// Close tears down the view. The default view cannot be closed.
func (v *Views) Close(id string) bool {
	if id == DefaultViewID {
		return false
	}

	v.mu.Lock()
	view, ok := v.views[id]
	delete(v.views, id)
	v.mu.Unlock()

	if ok {
		view.close()
	}
	return ok
}

func (v *Views) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.views)
}

// Reap closes views idle for longer than the configured TTL.
func (v *Views) Reap() int {
	cutoff := v.now().Add(-v.opts.IdleTTL)

	v.mu.Lock()
	var stale []*CalendarView
	for id, view := range v.views {
		if id != DefaultViewID && view.lastSeen.Before(cutoff) {
			stale = append(stale, view)
			delete(v.views, id)
		}
	}
	v.mu.Unlock()

	for _, view := range stale {
		view.close()
	}
	if len(stale) > 0 {
		log.Printf("[calendar] reaped %d idle views", len(stale))
	}
	return len(stale)
}

// Run reaps idle views every interval until ctx is done.
func (v *Views) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-v.ctx.Done():
			return
		case <-ticker.C:
			v.Reap()
		}
	}
}

// Shutdown closes every view including the default one.
func (v *Views) Shutdown() {
	v.mu.Lock()
	all := v.views
	v.views = make(map[string]*CalendarView)
	v.mu.Unlock()

	for _, view := range all {
		view.close()
	}
	v.cancel()
}
