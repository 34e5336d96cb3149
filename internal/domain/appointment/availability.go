package appointment

import "github.com/BruksfildServices01/petcare-scheduler/internal/timeslot"

type AvailabilityInput struct {
	Service Service
	Date    string // YYYY-MM-DD
}

type SlotAvailability struct {
	Value  int    `json:"value"`
	Label  string `json:"label"`
	Booked bool   `json:"booked"`
}

// MarkBooked flags every slot whose minute matches the start of an active
// record. Cancelled and rejected bookings free their slot again.
func MarkBooked(slots []timeslot.Slot, records []Record) []SlotAvailability {
	taken := make(map[int]bool, len(records))
	for _, rec := range records {
		if !Active(rec) {
			continue
		}
		for _, m := range []Minutes{rec.StartMinutes, rec.TimeSlotMinutes, rec.DropOffMinutes} {
			if m.Valid {
				taken[m.Value] = true
				break
			}
		}
	}

	out := make([]SlotAvailability, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotAvailability{
			Value:  s.Value,
			Label:  s.Label,
			Booked: taken[s.Value],
		})
	}
	return out
}
