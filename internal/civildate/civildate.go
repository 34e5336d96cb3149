// Package civildate converts between calendar days and their "YYYY-MM-DD"
// wire form without ever crossing into UTC.
package civildate

import (
	"strings"
	"time"
)

const Layout = "2006-01-02"

// Format renders t using its own calendar fields. The value is never
// converted to UTC first, so a local midnight cannot slip to the previous day.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Parse reads a civil date in loc and pins it to local noon, which keeps
// later day arithmetic clear of DST and offset rounding.
func Parse(ymd string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(Layout, strings.TrimSpace(ymd), loc)
	if err != nil {
		return time.Time{}, err
	}
	return AtNoon(d), nil
}

func AtNoon(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Before reports whether a falls on an earlier civil day than b.
func Before(a, b time.Time) bool {
	return StartOfDay(a).Before(StartOfDay(b.In(a.Location())))
}

// Days enumerates every civil day from start to end inclusive, each at the
// start of the day. It returns nil when end precedes start.
func Days(start, end time.Time) []time.Time {
	cur := StartOfDay(start)
	last := StartOfDay(end.In(start.Location()))

	var out []time.Time
	for !cur.After(last) {
		out = append(out, cur)
		cur = StartOfDay(cur.AddDate(0, 0, 1))
	}
	return out
}

// Range is an inclusive pair of civil days.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewRange(start, end time.Time) Range {
	return Range{Start: StartOfDay(start), End: StartOfDay(end)}
}

func (r Range) IsZero() bool {
	return r.Start.IsZero() || r.End.IsZero()
}

func (r Range) Days() []time.Time {
	return Days(r.Start, r.End)
}

// MonthGrid returns the full weeks a month view displays for anchor's month:
// from the first weekStart on or before the 1st, to the last day of the week
// containing the month's final day.
func MonthGrid(anchor time.Time, weekStart time.Weekday) Range {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	last := first.AddDate(0, 1, -1)

	back := (int(first.Weekday()) - int(weekStart) + 7) % 7
	start := first.AddDate(0, 0, -back)

	forward := (int(weekStart) + 6 - int(last.Weekday()) + 7) % 7
	end := last.AddDate(0, 0, forward)

	return NewRange(start, end)
}

// ParseWeekday maps "monday"/"sunday" style names; anything else is Monday.
func ParseWeekday(name string) time.Weekday {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday
	case "saturday":
		return time.Saturday
	default:
		return time.Monday
	}
}
