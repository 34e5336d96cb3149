package appointment

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/BruksfildServices01/petcare-scheduler/internal/timeslot"
)

// ===============================
// Wire types
// ===============================

// FlexString accepts a JSON string or number.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// Minutes is an optional minute offset. Numeric strings are accepted.
type Minutes struct {
	Value int
	Valid bool
}

func MinutesOf(v int) Minutes {
	return Minutes{Value: v, Valid: true}
}

func (m *Minutes) UnmarshalJSON(b []byte) error {
	*m = Minutes{}
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || len(b) == 0 {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// a non-numeric offset is treated as absent
		return nil
	}
	*m = Minutes{Value: int(f), Valid: true}
	return nil
}

func (m Minutes) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(m.Value)), nil
}

type Extra struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Payment struct {
	Status string `json:"status"`
}

// Record is the union of the three backing services' appointment shapes,
// restricted to the fields this service reads.
type Record struct {
	ID       FlexString `json:"id,omitempty"`
	ObjectID FlexString `json:"_id,omitempty"`

	Date    string `json:"date,omitempty"`
	DateISO string `json:"dateISO,omitempty"`

	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`

	TimeSlotMinutes Minutes `json:"timeSlotMinutes"`
	DurationMinutes Minutes `json:"durationMinutes"`
	DropOffMinutes  Minutes `json:"dropOffMinutes"`
	PickUpMinutes   Minutes `json:"pickUpMinutes"`
	StartMinutes    Minutes `json:"startMinutes"`
	EndMinutes      Minutes `json:"endMinutes"`

	Status string `json:"status,omitempty"`
	State  string `json:"state,omitempty"`

	Title           string     `json:"title,omitempty"`
	SelectedService string     `json:"selectedService,omitempty"`
	PackageName     string     `json:"packageName,omitempty"`
	PackageID       FlexString `json:"packageId,omitempty"`
	PlanName        string     `json:"planName,omitempty"`
	ServiceTitle    string     `json:"serviceTitle,omitempty"`

	PaymentStatus string   `json:"paymentStatus,omitempty"`
	Payment       *Payment `json:"payment,omitempty"`
	IsPaid        bool     `json:"isPaid,omitempty"`
	Extras        []Extra  `json:"extras,omitempty"`
}

// ===============================
// Accessors
// ===============================

func (r Record) Identifier() string {
	if r.ID != "" {
		return string(r.ID)
	}
	return string(r.ObjectID)
}

// Day returns the record's civil date, or fallback when it carries none.
// Full ISO timestamps are cut to their date part.
func (r Record) Day(fallback string) string {
	d := r.Date
	if d == "" {
		d = r.DateISO
	}
	if d == "" {
		return fallback
	}
	if i := strings.IndexByte(d, 'T'); i == 10 {
		d = d[:10]
	}
	return d
}

func (r Record) NormalizedStatus() Status {
	if r.Status != "" {
		return NormalizeStatus(r.Status)
	}
	return NormalizeStatus(r.State)
}

// PackageTitle is the first upstream name the record carries, or "".
func (r Record) PackageTitle() string {
	for _, c := range []string{r.Title, r.PackageName, r.SelectedService, string(r.PackageID), r.PlanName, r.ServiceTitle} {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}

func (r Record) DisplayTitle(svc Service) string {
	if t := r.PackageTitle(); t != "" {
		return t
	}
	return string(svc)
}

// SortMinute is the start offset used to order a day's records.
func (r Record) SortMinute() int {
	for _, m := range []Minutes{r.TimeSlotMinutes, r.DropOffMinutes, r.StartMinutes} {
		if m.Valid {
			return m.Value
		}
	}
	if r.Start != "" {
		if m, err := timeslot.ParseClock(r.Start); err == nil {
			return m
		}
	}
	return 0
}

// Window resolves the record's start and end on ymd. Explicit start/end
// labels win; then slot minute plus duration; then the daycare drop-off and
// pick-up pair; then generic start/end minutes. A record with no time at
// all collapses to local midnight.
func (r Record) Window(svc Service, ymd string, loc *time.Location) (time.Time, time.Time, error) {
	dur := svc.DefaultDuration()

	at := func(m int) (time.Time, error) {
		return timeslot.OnDate(ymd, m, loc)
	}
	span := func(start Minutes, end Minutes) (time.Time, time.Time, error) {
		s, err := at(start.Value)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if end.Valid {
			e, err := at(end.Value)
			return s, e, err
		}
		return s, s.Add(time.Duration(dur) * time.Minute), nil
	}

	switch {
	case r.Start != "" || r.End != "":
		s, err := timeslot.ParseOnDate(ymd, r.Start, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if r.End == "" {
			return s, s.Add(time.Duration(dur) * time.Minute), nil
		}
		e, err := timeslot.ParseOnDate(ymd, r.End, loc)
		return s, e, err

	case r.TimeSlotMinutes.Valid:
		if r.DurationMinutes.Valid {
			dur = r.DurationMinutes.Value
		}
		return span(r.TimeSlotMinutes, Minutes{})

	case r.DropOffMinutes.Valid:
		return span(r.DropOffMinutes, r.PickUpMinutes)

	case r.StartMinutes.Valid:
		return span(r.StartMinutes, r.EndMinutes)
	}

	s, err := at(0)
	return s, s, err
}

// TimeRange is the 24-hour "HH:MM–HH:MM" label shown in appointment lists.
func (r Record) TimeRange(svc Service) string {
	join := func(s, e string) string {
		if s != "" && e != "" {
			return s + "–" + e
		}
		if s+e == "" {
			return "—"
		}
		return s + e
	}
	hhmm := func(m Minutes) string {
		if !m.Valid {
			return ""
		}
		return timeslot.MinutesToHHMM(m.Value)
	}

	switch {
	case r.Start != "" || r.End != "":
		return join(r.Start, r.End)
	case r.TimeSlotMinutes.Valid:
		dur := svc.DefaultDuration()
		if r.DurationMinutes.Valid {
			dur = r.DurationMinutes.Value
		}
		return join(hhmm(r.TimeSlotMinutes), timeslot.MinutesToHHMM(r.TimeSlotMinutes.Value+dur))
	case r.DropOffMinutes.Valid:
		return join(hhmm(r.DropOffMinutes), hhmm(r.PickUpMinutes))
	case r.StartMinutes.Valid || r.EndMinutes.Valid:
		return join(hhmm(r.StartMinutes), hhmm(r.EndMinutes))
	}
	return "—"
}
