package appointment

import (
	"fmt"
	"time"

	"github.com/BruksfildServices01/petcare-scheduler/internal/timeslot"
)

// ===============================
// Calendar Event
// ===============================

// Event is the common shape every backing service's record is normalised
// into before it reaches the calendar.
type Event struct {
	ID      string    `json:"id"`
	Service Service   `json:"service"`
	Title   string    `json:"title"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Status  Status    `json:"status"`
}

// NewEvent normalises rec, fetched from svc for civil date ymd. The record's
// own date wins over ymd when present.
func NewEvent(rec Record, svc Service, ymd string, loc *time.Location) (Event, error) {
	day := rec.Day(ymd)

	start, end, err := rec.Window(svc, day, loc)
	if err != nil {
		return Event{}, fmt.Errorf("%s record %q: %w", svc, rec.Identifier(), err)
	}

	id := rec.Identifier()
	if id == "" {
		id = FallbackID(svc, ymd, rec, start, end)
	}

	return Event{
		ID:      id,
		Service: svc,
		Title:   rec.DisplayTitle(svc),
		Start:   start,
		End:     end,
		Status:  rec.NormalizedStatus(),
	}, nil
}

// FallbackID synthesises a deterministic id as service-date-start-end. Two
// distinct upstream bookings on the same service, day and window collide.
func FallbackID(svc Service, ymd string, rec Record, start, end time.Time) string {
	s, e := rec.Start, rec.End
	if s == "" {
		s = timeslot.MinutesToHHMM(timeslot.MinutesOf(start))
	}
	if e == "" {
		e = timeslot.MinutesToHHMM(timeslot.MinutesOf(end))
	}
	return fmt.Sprintf("%s-%s-%s-%s", svc, ymd, s, e)
}

// Active reports whether rec may appear on the calendar.
func Active(rec Record) bool {
	return rec.NormalizedStatus().IsActiveForCalendar()
}
