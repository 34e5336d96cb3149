package order

import (
	"fmt"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
)

const SlipNote = "Please upload a clear image/PDF of your bank transfer slip."

var (
	ErrEmptyOrder = httperr.ErrBusiness("order_empty")
	ErrItemLocked = httperr.ErrBusiness("order_item_locked")
	ErrItemPaid   = httperr.ErrBusiness("order_item_paid")
)

// Entry is an appointment picked for payment.
type Entry struct {
	Service domain.Service
	Record  domain.Record
}

type Line struct {
	ID        string         `json:"id"`
	Service   domain.Service `json:"service"`
	Title     string         `json:"title"`
	Date      string         `json:"date"`
	Time      string         `json:"time"`
	BasePrice float64        `json:"basePrice"`
	Extras    []domain.Extra `json:"extras"`
	LineTotal float64        `json:"lineTotal"`
}

// Order is the payload the slip upload carries alongside the image.
type Order struct {
	Currency string  `json:"currency"`
	Subtotal float64 `json:"subtotal"`
	Items    []Line  `json:"items"`
	Note     string  `json:"note"`
}

// Build prices entries into an order. Cancelled, rejected and already paid
// appointments cannot be ordered.
func Build(entries []Entry) (Order, error) {
	if len(entries) == 0 {
		return Order{}, ErrEmptyOrder
	}

	out := Order{Currency: Currency, Items: make([]Line, 0, len(entries)), Note: SlipNote}
	for _, e := range entries {
		rec := e.Record
		if rec.NormalizedStatus().IsLocked() {
			return Order{}, fmt.Errorf("%s %s: %w", e.Service, rec.Identifier(), ErrItemLocked)
		}
		if rec.Paid() {
			return Order{}, fmt.Errorf("%s %s: %w", e.Service, rec.Identifier(), ErrItemPaid)
		}

		title := rec.PackageTitle()
		if title == "" {
			title = "—"
		}
		extras := make([]domain.Extra, 0, len(rec.Extras))
		extras = append(extras, rec.Extras...)

		line := Line{
			ID:        rec.Identifier(),
			Service:   e.Service,
			Title:     title,
			Date:      rec.Day(""),
			Time:      rec.TimeRange(e.Service),
			BasePrice: BasePrice(e.Service, rec),
			Extras:    extras,
			LineTotal: LineTotal(e.Service, rec),
		}
		out.Subtotal += line.LineTotal
		out.Items = append(out.Items, line)
	}
	return out, nil
}
