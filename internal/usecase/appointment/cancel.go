package appointment

import (
	"context"
	"errors"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/events"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
)

// DeleteAppointment removes one of the caller's appointments upstream.
type DeleteAppointment struct {
	repo domain.Repository
	bus  Publisher
}

func NewDeleteAppointment(
	repo domain.Repository,
	bus Publisher,
) *DeleteAppointment {
	return &DeleteAppointment{
		repo: repo,
		bus:  bus,
	}
}

func (uc *DeleteAppointment) Execute(
	ctx context.Context,
	token string,
	svc domain.Service,
	id string,
) error {

	if id == "" {
		return httperr.ErrBusiness("appointment_id_required")
	}

	if err := uc.repo.DeleteAppointment(ctx, token, svc, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.ErrBusiness("appointment_not_found")
		}
		return err
	}

	uc.bus.Publish(events.Change{
		Service:       string(svc),
		AppointmentID: id,
		Action:        events.ActionDeleted,
	})
	return nil
}
