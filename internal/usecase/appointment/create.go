package appointment

import (
	"context"
	"errors"
	"time"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/petcare-scheduler/internal/events"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
)

// Publisher is satisfied by *events.Bus.
type Publisher interface {
	Publish(ch events.Change) bool
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo domain.Repository
	bus  Publisher
	now  func() time.Time
}

func NewCreateAppointment(
	repo domain.Repository,
	bus Publisher,
	now func() time.Time,
) *CreateAppointment {
	return &CreateAppointment{
		repo: repo,
		bus:  bus,
		now:  now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute validates raw against the service's booking schema and forwards
// it. Slot conflicts are the backend's call; its 409 becomes time_conflict.
func (uc *CreateAppointment) Execute(
	ctx context.Context,
	token string,
	svc domain.Service,
	raw []byte,
) (*domain.Record, error) {

	form, err := booking.Decode(svc, raw)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(uc.now()); err != nil {
		return nil, err
	}

	rec, err := uc.repo.CreateAppointment(ctx, token, svc, form.Payload())
	if err != nil {
		if errors.Is(err, domain.ErrSlotTaken) {
			return nil, httperr.ErrBusiness("time_conflict")
		}
		return nil, err
	}
	if rec == nil {
		rec = &domain.Record{}
	}

	uc.bus.Publish(events.Change{
		Service:       string(svc),
		AppointmentID: rec.Identifier(),
		Action:        events.ActionCreated,
	})

	return rec, nil
}
