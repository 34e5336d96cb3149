package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sourcegraph/conc/iter"

	"github.com/BruksfildServices01/petcare-scheduler/internal/civildate"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
)

// ErrSuperseded is returned to a range fetch that a newer one overtook. Its
// results were discarded; the newer call owns the displayed state.
var ErrSuperseded = errors.New("calendar: superseded by a newer range fetch")

// ErrorPolicy decides how much of a failure the snapshot reveals. Both
// policies commit an empty event set on an unexpected error.
type ErrorPolicy string

const (
	// PolicySwallow logs failures and shows a clean empty calendar.
	PolicySwallow ErrorPolicy = "swallow"
	// PolicySurface also reports the error and degraded services.
	PolicySurface ErrorPolicy = "surface"
)

func ParseErrorPolicy(s string) ErrorPolicy {
	if ErrorPolicy(s) == PolicySurface {
		return PolicySurface
	}
	return PolicySwallow
}

const DefaultBatchSize = 7

// DayFetcher is satisfied by *FetchDay.
type DayFetcher interface {
	Execute(ctx context.Context, ymd string) DayResult
}

// Snapshot is the displayed state of one calendar view.
type Snapshot struct {
	Events     []domain.Event  `json:"events"`
	Loading    bool            `json:"loading"`
	Generation uint64          `json:"generation"`
	Range      civildate.Range `json:"range"`
	Degraded   []string        `json:"degraded,omitempty"`
	LastError  string          `json:"last_error,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type SchedulerOptions struct {
	BatchSize int
	WeekStart time.Weekday
	Policy    ErrorPolicy
	Now       func() time.Time
}

// Scheduler turns visible ranges into committed event sets. Every FetchRange
// bumps the load generation and cancels the previous call's context; only
// the call whose generation is still current may commit.
type Scheduler struct {
	days DayFetcher
	opts SchedulerOptions

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	lastRange  civildate.Range
	state      Snapshot
	watchers   map[int]chan Snapshot
	nextWatch  int
}

func NewScheduler(days DayFetcher, opts SchedulerOptions) *Scheduler {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Policy == "" {
		opts.Policy = PolicySwallow
	}
	return &Scheduler{
		days:     days,
		opts:     opts,
		state:    Snapshot{Events: []domain.Event{}},
		watchers: make(map[int]chan Snapshot),
	}
}

// FetchRange loads [start, end] clipped to today onward, in batches of days
// fetched concurrently, and commits the result unless a newer call started.
func (s *Scheduler) FetchRange(ctx context.Context, start, end time.Time) (snap Snapshot, err error) {
	rng := civildate.NewRange(start, end)

	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	shown := s.state.Range
	s.lastRange = rng
	s.state.Loading = true
	s.state.Range = rng
	s.mu.Unlock()
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("calendar: range fetch panicked: %v", r)
			log.Printf("[calendar] load error: %v", err)
			snap, err = s.settle(gen, nil, nil, err)
		}
	}()

	today := civildate.StartOfDay(s.opts.Now())

	if civildate.Before(rng.End, today) {
		return s.settle(gen, []domain.Event{}, nil, nil)
	}
	if civildate.Before(rng.Start, today) {
		rng.Start = today
	}

	days := civildate.Days(rng.Start, rng.End)
	all := []domain.Event{}
	var degraded []string

	for i := 0; i < len(days); i += s.opts.BatchSize {
		chunk := days[i:min(i+s.opts.BatchSize, len(days))]

		mapper := iter.Mapper[time.Time, DayResult]{MaxGoroutines: len(chunk)}
		results := mapper.Map(chunk, func(d *time.Time) DayResult {
			return s.days.Execute(fetchCtx, civildate.Format(*d))
		})

		if !s.isCurrent(gen) {
			return Snapshot{}, ErrSuperseded
		}
		if err := fetchCtx.Err(); err != nil {
			if ctx.Err() != nil {
				return s.abandon(gen, shown)
			}
			log.Printf("[calendar] load error: %v", err)
			return s.settle(gen, nil, nil, err)
		}

		for _, res := range results {
			all = append(all, res.Events...)
			for _, svc := range res.Failed {
				degraded = append(degraded, string(svc)+"@"+res.Date)
			}
		}
	}

	return s.settle(gen, all, degraded, nil)
}

// Refresh replays the last recorded range, or the current month grid when
// nothing has been displayed yet.
func (s *Scheduler) Refresh(ctx context.Context) (Snapshot, error) {
	rng := s.LastRange()
	if rng.IsZero() {
		rng = civildate.MonthGrid(s.opts.Now(), s.opts.WeekStart)
	}
	return s.FetchRange(ctx, rng.Start, rng.End)
}

func (s *Scheduler) LastRange() civildate.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRange
}

func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

// Watch delivers every committed snapshot. Slow readers only see the latest.
func (s *Scheduler) Watch() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	id := s.nextWatch
	s.nextWatch++
	s.watchers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
		})
	}
}

// Stop cancels whatever fetch is in flight.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Scheduler) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

// abandon drops gen after its caller went away. Nothing is committed and
// watchers keep the last snapshot they were sent.
func (s *Scheduler) abandon(gen uint64, shown civildate.Range) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		s.state.Loading = false
		s.state.Range = shown
	}
	return Snapshot{}, ErrSuperseded
}

// settle commits events for gen. A nil events slice with a non-nil err is
// the fail-closed path: the display is emptied, never left stale.
func (s *Scheduler) settle(gen uint64, events []domain.Event, degraded []string, err error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return Snapshot{}, ErrSuperseded
	}

	if events == nil {
		events = []domain.Event{}
	}

	s.state.Events = events
	s.state.Loading = false
	s.state.Generation = gen
	s.state.UpdatedAt = s.opts.Now()
	s.state.Degraded = nil
	s.state.LastError = ""
	if s.opts.Policy == PolicySurface {
		s.state.Degraded = degraded
		if err != nil {
			s.state.LastError = err.Error()
		}
	}

	snap := s.copyState()
	for _, ch := range s.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}

	if err != nil && s.opts.Policy == PolicySwallow {
		return snap, nil
	}
	return snap, err
}

func (s *Scheduler) copyState() Snapshot {
	snap := s.state
	snap.Events = append([]domain.Event(nil), s.state.Events...)
	if snap.Events == nil {
		snap.Events = []domain.Event{}
	}
	snap.Degraded = append([]string(nil), s.state.Degraded...)
	if len(snap.Degraded) == 0 {
		snap.Degraded = nil
	}
	return snap
}
