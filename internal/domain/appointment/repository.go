package appointment

import "context"

// Source lists one service's appointments for a civil date. It is the only
// port the calendar needs.
type Source interface {
	ListByDate(
		ctx context.Context,
		service Service,
		ymd string,
	) ([]Record, error)
}

// Repository is the full backend surface used on behalf of a signed-in
// customer. token is forwarded unchanged; the backend authorises it.
type Repository interface {
	Source

	ListForUser(
		ctx context.Context,
		token string,
		service Service,
	) ([]Record, error)

	CreateAppointment(
		ctx context.Context,
		token string,
		service Service,
		payload any,
	) (*Record, error)

	UpdateAppointment(
		ctx context.Context,
		token string,
		service Service,
		id string,
		payload any,
	) (*Record, error)

	DeleteAppointment(
		ctx context.Context,
		token string,
		service Service,
		id string,
	) error
}
