package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/timeslot"
)

// GetAvailability lists the day's booking slots, flagging those an active
// appointment already starts at.
type GetAvailability struct {
	source domain.Source
	hours  domain.OpeningHours
}

func NewGetAvailability(source domain.Source, hours domain.OpeningHours) *GetAvailability {
	return &GetAvailability{source: source, hours: hours}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.SlotAvailability, error) {

	records, err := uc.source.ListByDate(ctx, in.Service, in.Date)
	if err != nil {
		return nil, err
	}

	slots := timeslot.Slots(uc.hours.Open, uc.hours.Close, timeslot.DefaultStep)
	return domain.MarkBooked(slots, records), nil
}
