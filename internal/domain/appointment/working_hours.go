package appointment

import "github.com/BruksfildServices01/petcare-scheduler/internal/timeslot"

// OpeningHours is the bookable window in minutes since midnight. Every
// service shares the same front desk hours.
type OpeningHours struct {
	Open  int
	Close int
}

var DefaultOpeningHours = OpeningHours{Open: timeslot.DayStart, Close: timeslot.DayEnd}
