package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
)

var colombo = time.FixedZone("colombo", 5*3600+1800)

// fakeSource serves canned records per service and day.
type fakeSource struct {
	mu      sync.Mutex
	records map[string][]domain.Record
	fail    map[domain.Service]error
	calls   []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		records: make(map[string][]domain.Record),
		fail:    make(map[domain.Service]error),
	}
}

func (f *fakeSource) add(t *testing.T, svc domain.Service, ymd string, raw string) {
	t.Helper()
	var rec domain.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	key := string(svc) + "|" + ymd
	f.records[key] = append(f.records[key], rec)
}

func (f *fakeSource) ListByDate(_ context.Context, svc domain.Service, ymd string) ([]domain.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, string(svc)+"|"+ymd)
	if err := f.fail[svc]; err != nil {
		return nil, err
	}
	return f.records[string(svc)+"|"+ymd], nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSource) requestedDays() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, c := range f.calls {
		ymd := c[len(c)-10:]
		if !seen[ymd] {
			seen[ymd] = true
			out = append(out, ymd)
		}
	}
	sort.Strings(out)
	return out
}

func ids(events []domain.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.ID)
	}
	return out
}

func TestFetchDay_MixedStatusesAcrossServices(t *testing.T) {
	src := newFakeSource()
	src.add(t, domain.ServiceVet, "2024-06-01",
		`{"_id": "vet-1", "date": "2024-06-01", "status": "approved", "start": "09:00", "end": "09:30"}`)
	src.add(t, domain.ServiceGrooming, "2024-06-01",
		`{"_id": "groom-1", "date": "2024-06-01", "status": "cancelled", "start": "10:00", "end": "11:30"}`)
	src.add(t, domain.ServiceDaycare, "2024-06-01",
		`{"_id": "day-1", "date": "2024-06-01", "status": "pending", "dropOffMinutes": 480, "pickUpMinutes": 960}`)

	res := NewFetchDay(src, colombo).Execute(context.Background(), "2024-06-01")

	require.Len(t, res.Events, 2)
	assert.Equal(t, []string{"vet-1", "day-1"}, ids(res.Events))
	assert.Empty(t, res.Failed)

	vet := res.Events[0]
	assert.Equal(t, domain.ServiceVet, vet.Service)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 0, 0, 0, colombo), vet.Start)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 30, 0, 0, colombo), vet.End)

	daycare := res.Events[1]
	assert.Equal(t, domain.ServiceDaycare, daycare.Service)
	assert.Equal(t, time.Date(2024, 6, 1, 8, 0, 0, 0, colombo), daycare.Start)
	assert.Equal(t, time.Date(2024, 6, 1, 16, 0, 0, 0, colombo), daycare.End)
}

func TestFetchDay_OneFailingServiceDoesNotHideTheOthers(t *testing.T) {
	src := newFakeSource()
	src.add(t, domain.ServiceVet, "2024-06-01", `{"_id": "vet-1", "timeSlotMinutes": 540}`)
	src.add(t, domain.ServiceDaycare, "2024-06-01", `{"_id": "day-1", "dropOffMinutes": 480}`)
	src.fail[domain.ServiceGrooming] = errors.New("502 bad gateway")

	res := NewFetchDay(src, colombo).Execute(context.Background(), "2024-06-01")

	assert.Equal(t, []string{"vet-1", "day-1"}, ids(res.Events))
	assert.Equal(t, []domain.Service{domain.ServiceGrooming}, res.Failed)
	assert.Equal(t, 3, src.callCount())
}

func TestFetchDay_EveryServiceFailing(t *testing.T) {
	src := newFakeSource()
	for _, svc := range domain.Services {
		src.fail[svc] = errors.New("down")
	}

	res := NewFetchDay(src, colombo).Execute(context.Background(), "2024-06-01")

	assert.NotNil(t, res.Events)
	assert.Empty(t, res.Events)
	assert.Len(t, res.Failed, 3)
}

func TestFetchDay_SynthesisesDeterministicFallbackID(t *testing.T) {
	src := newFakeSource()
	src.add(t, domain.ServiceGrooming, "2024-06-01", `{"timeSlotMinutes": 600}`)

	uc := NewFetchDay(src, colombo)
	first := uc.Execute(context.Background(), "2024-06-01")
	second := uc.Execute(context.Background(), "2024-06-01")

	require.Len(t, first.Events, 1)
	assert.Equal(t, "grooming-2024-06-01-10:00-11:30", first.Events[0].ID)
	assert.Equal(t, ids(first.Events), ids(second.Events))
}

func TestFetchDay_StatusFilterAppliesToEveryService(t *testing.T) {
	src := newFakeSource()
	for _, svc := range domain.Services {
		src.add(t, svc, "2024-06-01", `{"_id": "c", "status": "Cancelled", "timeSlotMinutes": 540}`)
		src.add(t, svc, "2024-06-01", `{"_id": "r", "state": "rejected", "timeSlotMinutes": 600}`)
	}

	res := NewFetchDay(src, colombo).Execute(context.Background(), "2024-06-01")

	assert.Empty(t, res.Events)
	assert.Empty(t, res.Failed)
}
