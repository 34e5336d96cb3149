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

// UpdateAppointment edits one of the caller's appointments. The payload is
// checked against the same booking schema as a new booking.
type UpdateAppointment struct {
	repo domain.Repository
	bus  Publisher
	now  func() time.Time
}

func NewUpdateAppointment(
	repo domain.Repository,
	bus Publisher,
	now func() time.Time,
) *UpdateAppointment {
	return &UpdateAppointment{
		repo: repo,
		bus:  bus,
		now:  now,
	}
}

// Execute refuses cancelled and rejected appointments before anything is
// sent upstream.
func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	token string,
	svc domain.Service,
	id string,
	raw []byte,
) (*domain.Record, error) {

	if id == "" {
		return nil, httperr.ErrBusiness("appointment_id_required")
	}

	form, err := booking.Decode(svc, raw)
	if err != nil {
		return nil, err
	}
	if err := form.Validate(uc.now()); err != nil {
		return nil, err
	}

	current, err := uc.find(ctx, token, svc, id)
	if err != nil {
		return nil, err
	}
	if current.NormalizedStatus().IsLocked() {
		return nil, httperr.ErrBusiness("appointment_locked")
	}

	rec, err := uc.repo.UpdateAppointment(ctx, token, svc, id, form.Payload())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSlotTaken):
			return nil, httperr.ErrBusiness("time_conflict")
		case errors.Is(err, domain.ErrNotFound):
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
		return nil, err
	}
	if rec == nil {
		rec = &domain.Record{ID: domain.FlexString(id)}
	}

	uc.bus.Publish(events.Change{
		Service:       string(svc),
		AppointmentID: id,
		Action:        events.ActionEdited,
	})

	return rec, nil
}

func (uc *UpdateAppointment) find(
	ctx context.Context,
	token string,
	svc domain.Service,
	id string,
) (domain.Record, error) {

	mine, err := uc.repo.ListForUser(ctx, token, svc)
	if err != nil {
		return domain.Record{}, err
	}
	for _, r := range mine {
		if r.Identifier() == id {
			return r, nil
		}
	}
	return domain.Record{}, httperr.ErrBusiness("appointment_not_found")
}
