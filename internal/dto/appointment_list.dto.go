package dto

import (
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
)

// MyAppointmentDTO is a customer's appointment with the service it came
// from and a canonical payment status attached. Upstream fields pass
// through untouched.
type MyAppointmentDTO struct {
	domain.Record

	Service       domain.Service `json:"service"`
	PaymentStatus string         `json:"paymentStatus"`
	DisplayTitle  string         `json:"displayTitle"`
	TimeRange     string         `json:"timeRange"`
	LineTotal     float64        `json:"lineTotal"`
	Locked        bool           `json:"locked"`
}
