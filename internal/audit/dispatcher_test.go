package audit

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/petcare-scheduler/internal/events"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

type memoryStore struct {
	mu      sync.Mutex
	entries []models.ChangeLog
}

func (s *memoryStore) Create(_ context.Context, entry *models.ChangeLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *memoryStore) all() []models.ChangeLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChangeLog(nil), s.entries...)
}

func TestLogger_MapsChange(t *testing.T) {
	store := &memoryStore{}
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	err := New(store).Log(context.Background(), events.Change{
		ID: "c1", Service: "grooming", AppointmentID: "g-7", Action: events.ActionPaid, At: at,
	})
	require.NoError(t, err)

	entries := store.all()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "c1", e.ChangeID)
	assert.Equal(t, "grooming", e.Service)
	assert.Equal(t, "g-7", e.AppointmentID)
	assert.Equal(t, events.ActionPaid, e.Action)
	assert.Equal(t, at, e.OccurredAt)

	var meta events.Change
	require.NoError(t, json.Unmarshal([]byte(e.Metadata), &meta))
	assert.Equal(t, "c1", meta.ID)
}

func TestLogger_DefaultsAction(t *testing.T) {
	store := &memoryStore{}
	require.NoError(t, New(store).Log(context.Background(), events.Change{ID: "c2"}))
	assert.Equal(t, "changed", store.all()[0].Action)
}

func TestDispatcher_JournalsLocalChangesOnly(t *testing.T) {
	store := &memoryStore{}
	bus := events.NewBus(10)

	d := NewDispatcher(New(store))
	d.Attach(bus)

	bus.Publish(events.Change{ID: "local", Action: events.ActionCreated})
	bus.Publish(events.Change{ID: "remote", Action: events.ActionCreated, Origin: "instance-b"})
	bus.Close()
	d.Close()

	entries := store.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "local", entries[0].ChangeID)
}
