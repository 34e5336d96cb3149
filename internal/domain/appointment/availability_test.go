package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/petcare-scheduler/internal/timeslot"
)

func TestMarkBooked(t *testing.T) {
	slots := timeslot.DefaultSlots()
	records := []Record{
		{StartMinutes: MinutesOf(540), Status: "approved"},
		{TimeSlotMinutes: MinutesOf(600)},
		{TimeSlotMinutes: MinutesOf(660), Status: "cancelled"},
	}

	got := MarkBooked(slots, records)
	require.Len(t, got, len(slots))

	booked := map[int]bool{}
	for _, s := range got {
		if s.Booked {
			booked[s.Value] = true
		}
	}
	assert.Equal(t, map[int]bool{540: true, 600: true}, booked)
}

func TestOpeningHours(t *testing.T) {
	h := DefaultOpeningHours

	assert.True(t, h.Contains(480))
	assert.True(t, h.Contains(1200))
	assert.False(t, h.Contains(470))
	assert.True(t, h.ContainsWindow(480, 960))
	assert.False(t, h.ContainsWindow(960, 960))
	assert.False(t, h.ContainsWindow(960, 1230))
}
