// Package timeslot converts minute offsets from midnight into clock labels
// and back onto a concrete civil day.
package timeslot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DayStart    = 8 * 60
	DayEnd      = 20 * 60
	DefaultStep = 30
)

type Slot struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// MinutesToLabel renders a minute offset as a zero-padded 12-hour label,
// e.g. 570 -> "09:30 AM". Offsets of a day or more wrap around midnight.
func MinutesToLabel(minutes int) string {
	h24 := (minutes / 60) % 24
	mm := minutes % 60
	h12 := (h24+11)%12 + 1

	suffix := "AM"
	if h24 >= 12 {
		suffix = "PM"
	}
	return fmt.Sprintf("%02d:%02d %s", h12, mm, suffix)
}

// MinutesToHHMM renders a minute offset as a 24-hour "HH:MM" label.
func MinutesToHHMM(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Slots lists bookable slots from..to inclusive every step minutes.
func Slots(from, to, step int) []Slot {
	if step <= 0 {
		step = DefaultStep
	}
	out := make([]Slot, 0, (to-from)/step+1)
	for m := from; m <= to; m += step {
		out = append(out, Slot{Value: m, Label: MinutesToLabel(m)})
	}
	return out
}

// DefaultSlots is the 08:00-20:00 half-hour grid every booking form offers.
func DefaultSlots() []Slot {
	return Slots(DayStart, DayEnd, DefaultStep)
}

// ParseClock reads "10:30 AM", "10:30PM" or "22:30" into minutes since
// midnight. Without an AM/PM suffix the label is read as 24-hour time.
// Missing hour or minute parts count as zero.
func ParseClock(label string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(label))

	meridiem := ""
	if strings.HasSuffix(s, "AM") || strings.HasSuffix(s, "PM") {
		meridiem = s[len(s)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	}

	hourPart, minutePart, _ := strings.Cut(s, ":")

	h, err := atoiOrZero(hourPart)
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", label, err)
	}
	m, err := atoiOrZero(minutePart)
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", label, err)
	}

	switch meridiem {
	case "PM":
		if h != 12 {
			h += 12
		}
	case "AM":
		if h == 12 {
			h = 0
		}
	}

	return h*60 + m, nil
}

// ParseOnDate combines a "YYYY-MM-DD" civil date and a clock label into a
// local instant in loc.
func ParseOnDate(ymd, label string, loc *time.Location) (time.Time, error) {
	y, mo, d, err := splitYMD(ymd)
	if err != nil {
		return time.Time{}, err
	}
	minutes, err := ParseClock(label)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(y, time.Month(mo), d, minutes/60, minutes%60, 0, 0, loc), nil
}

// OnDate places a minute offset onto a civil date in loc.
func OnDate(ymd string, minutes int, loc *time.Location) (time.Time, error) {
	y, mo, d, err := splitYMD(ymd)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(y, time.Month(mo), d, 0, minutes, 0, 0, loc), nil
}

// MinutesOf returns t's offset from its own local midnight.
func MinutesOf(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func splitYMD(ymd string) (int, int, int, error) {
	parts := strings.Split(strings.TrimSpace(ymd), "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid date %q", ymd)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid date %q: %w", ymd, err)
		}
		nums[i] = n
	}
	if nums[1] < 1 || nums[1] > 12 || nums[2] < 1 || nums[2] > 31 {
		return 0, 0, 0, fmt.Errorf("invalid date %q", ymd)
	}
	return nums[0], nums[1], nums[2], nil
}

func atoiOrZero(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
