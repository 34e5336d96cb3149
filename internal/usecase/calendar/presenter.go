package calendar

import (
	"context"
	"time"

	"github.com/BruksfildServices01/petcare-scheduler/internal/civildate"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/timeslot"
)

var ErrPastSlot = httperr.ErrBusiness("past_slot")

// ===============================
// View
// ===============================

type View string

const (
	ViewMonth View = "month"
	ViewWeek  View = "week"
	ViewDay   View = "day"
)

// ParseView accepts month, week or day. Anything else is inferred from the
// length of rng.
func ParseView(s string, rng civildate.Range) View {
	switch View(s) {
	case ViewMonth, ViewWeek, ViewDay:
		return View(s)
	}

	switch n := len(rng.Days()); {
	case n <= 1:
		return ViewDay
	case n <= 7:
		return ViewWeek
	default:
		return ViewMonth
	}
}

// EventView is an event as the calendar widget draws it.
type EventView struct {
	ID        string         `json:"id"`
	Service   domain.Service `json:"service"`
	Title     string         `json:"title"`
	Label     string         `json:"label"`
	TimeLabel string         `json:"time_label"`
	Start     time.Time      `json:"start"`
	End       time.Time      `json:"end"`
	Color     string         `json:"color"`
	Status    domain.Status  `json:"status"`
	Locked    bool           `json:"locked"`
}

// Selection is a slot the user picked on the widget.
type Selection struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BookingTarget prefills the booking form opened from a selection.
type BookingTarget struct {
	Date            string          `json:"date"`
	TimeSlotMinutes int             `json:"timeSlotMinutes"`
	TimeLabel       string          `json:"timeLabel"`
	EndMinutes      int             `json:"endMinutes"`
	Services        []ServiceOption `json:"services"`
}

type ServiceOption struct {
	Service  domain.Service `json:"service"`
	Label    string         `json:"label"`
	Duration int            `json:"duration"`
	Color    string         `json:"color"`
}

// Booker receives selections that passed the past-date guard.
type Booker func(ctx context.Context, sel Selection) (BookingTarget, error)

// RangeFetcher is satisfied by *Scheduler.
type RangeFetcher interface {
	FetchRange(ctx context.Context, start, end time.Time) (Snapshot, error)
}

// ===============================
// Presenter
// ===============================

type Presenter struct {
	ranges RangeFetcher
	book   Booker
	now    func() time.Time
}

func NewPresenter(ranges RangeFetcher, book Booker, now func() time.Time) *Presenter {
	if book == nil {
		book = DefaultBooker
	}
	if now == nil {
		now = time.Now
	}
	return &Presenter{ranges: ranges, book: book, now: now}
}

// Present maps a committed snapshot to widget events.
func (p *Presenter) Present(snap Snapshot, view View) []EventView {
	out := make([]EventView, 0, len(snap.Events))
	for _, ev := range snap.Events {
		out = append(out, PresentEvent(ev, view))
	}
	return out
}

// PresentEvent labels month cells with a 12-hour range above the title.
// TimeLabel stays 24-hour for the week and day axes.
func PresentEvent(ev domain.Event, view View) EventView {
	start, end := timeslot.MinutesOf(ev.Start), timeslot.MinutesOf(ev.End)
	timeLabel := timeslot.MinutesToHHMM(start) + "–" + timeslot.MinutesToHHMM(end)

	label := ev.Title
	if view == ViewMonth {
		label = timeslot.MinutesToLabel(start) + "–" + timeslot.MinutesToLabel(end) + "\n" + ev.Title
	}

	return EventView{
		ID:        ev.ID,
		Service:   ev.Service,
		Title:     ev.Title,
		Label:     label,
		TimeLabel: timeLabel,
		Start:     ev.Start,
		End:       ev.End,
		Color:     ev.Service.Color(),
		Status:    ev.Status,
		Locked:    ev.Status.IsLocked(),
	}
}

// OnRangeChange forwards widget navigation to the scheduler.
func (p *Presenter) OnRangeChange(ctx context.Context, start, end time.Time) (Snapshot, error) {
	return p.ranges.FetchRange(ctx, start, end)
}

// SelectSlot hands sel to the booker unless it starts before today.
func (p *Presenter) SelectSlot(ctx context.Context, sel Selection) (BookingTarget, error) {
	today := civildate.StartOfDay(p.now().In(sel.Start.Location()))
	if civildate.Before(sel.Start, today) {
		return BookingTarget{}, ErrPastSlot
	}
	if sel.End.Before(sel.Start) {
		sel.End = sel.Start
	}
	return p.book(ctx, sel)
}

// DefaultBooker snaps the selection to the booking grid and offers every
// service.
func DefaultBooker(_ context.Context, sel Selection) (BookingTarget, error) {
	start := snap(timeslot.MinutesOf(sel.Start))
	end := timeslot.MinutesOf(sel.End)
	if end <= start {
		end = start + timeslot.DefaultStep
	}

	options := make([]ServiceOption, 0, len(domain.Services))
	for _, svc := range domain.Services {
		options = append(options, ServiceOption{
			Service:  svc,
			Label:    svc.Label(),
			Duration: svc.DefaultDuration(),
			Color:    svc.Color(),
		})
	}

	return BookingTarget{
		Date:            civildate.Format(sel.Start),
		TimeSlotMinutes: start,
		TimeLabel:       timeslot.MinutesToLabel(start),
		EndMinutes:      end,
		Services:        options,
	}, nil
}

func snap(minutes int) int {
	minutes -= minutes % timeslot.DefaultStep
	if minutes < timeslot.DayStart {
		return timeslot.DayStart
	}
	if minutes > timeslot.DayEnd-timeslot.DefaultStep {
		return timeslot.DayEnd - timeslot.DefaultStep
	}
	return minutes
}
