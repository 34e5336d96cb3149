package calendar

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/petcare-scheduler/internal/events"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestViews(t *testing.T, days DayFetcher, c *clock, bus Subscriber) *Views {
	t.Helper()
	v := NewViews(context.Background(), ViewsOptions{
		Days:      days,
		Scheduler: SchedulerOptions{Now: c.Now},
		Bus:       bus,
		IdleTTL:   time.Minute,
	})
	t.Cleanup(v.Shutdown)
	return v
}

func TestViews_DefaultViewAlwaysExists(t *testing.T) {
	c := &clock{now: fixedNow()}
	v := newTestViews(t, funcDays(func(_ context.Context, ymd string) DayResult { return DayResult{Date: ymd} }), c, nil)

	view, ok := v.Get("")
	require.True(t, ok)
	assert.Equal(t, DefaultViewID, view.ID)
	assert.False(t, v.Close(DefaultViewID))

	c.Advance(time.Hour)
	assert.Equal(t, 0, v.Reap())
	_, ok = v.Get(DefaultViewID)
	assert.True(t, ok)
}

func TestViews_OpenGetClose(t *testing.T) {
	c := &clock{now: fixedNow()}
	v := newTestViews(t, funcDays(func(_ context.Context, ymd string) DayResult { return DayResult{Date: ymd} }), c, nil)

	a := v.Open()
	b := v.Open()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 3, v.Len())

	got, ok := v.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	assert.True(t, v.Close(a.ID))
	assert.False(t, v.Close(a.ID))
	assert.Error(t, a.Context().Err())

	_, ok = v.Get(a.ID)
	assert.False(t, ok)
}

func TestViews_ReapClosesIdleViews(t *testing.T) {
	c := &clock{now: fixedNow()}
	v := newTestViews(t, funcDays(func(_ context.Context, ymd string) DayResult { return DayResult{Date: ymd} }), c, nil)

	idle := v.Open()
	busy := v.Open()

	c.Advance(45 * time.Second)
	_, ok := v.Get(busy.ID)
	require.True(t, ok)

	c.Advance(30 * time.Second)
	assert.Equal(t, 1, v.Reap())

	_, ok = v.Get(idle.ID)
	assert.False(t, ok)
	assert.Error(t, idle.Context().Err())
	_, ok = v.Get(busy.ID)
	assert.True(t, ok)
}

func TestViews_ViewersDoNotSupersedeEachOther(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	days := funcDays(func(_ context.Context, ymd string) DayResult {
		if ymd == "2024-06-11" {
			close(started)
			<-release
		}
		return oneEvent(ymd, ymd)
	})

	c := &clock{now: fixedNow()}
	v := newTestViews(t, days, c, nil)
	a, b := v.Open(), v.Open()

	errA := make(chan error, 1)
	go func() {
		_, err := a.Scheduler.FetchRange(a.Context(), day(11), day(11))
		errA <- err
	}()
	<-started

	snapB, err := b.Scheduler.FetchRange(b.Context(), day(12), day(12))
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-06-12"}, ids(snapB.Events))

	close(release)
	require.NoError(t, <-errA)
	assert.Equal(t, []string{"2024-06-11"}, ids(a.Scheduler.Snapshot().Events))
}

func TestViews_ClosedViewStopsListening(t *testing.T) {
	var mu sync.Mutex
	fetched := 0
	days := funcDays(func(_ context.Context, ymd string) DayResult {
		mu.Lock()
		fetched++
		mu.Unlock()
		return DayResult{Date: ymd}
	})

	bus := events.NewBus(10)
	c := &clock{now: fixedNow()}
	v := newTestViews(t, days, c, bus)

	view := v.Open()
	v.Close(view.ID)

	v.mu.Lock()
	v.views[DefaultViewID].listener.Close()
	v.mu.Unlock()

	bus.Publish(events.Change{Action: events.ActionEdited})
	bus.Close()
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, fetched)
}
