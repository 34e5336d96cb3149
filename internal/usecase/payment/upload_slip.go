package payment

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/petcare-scheduler/internal/events"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
)

const MaxSlipBytes = 10 << 20

var allowedSlipTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"application/pdf": true,
}

// Gateway is the backend surface for payments; satisfied by
// *repository.AppointmentHTTPRepository.
type Gateway interface {
	UploadSlip(ctx context.Context, token string, order any, filename, contentType string, slip []byte) error
	MarkPaid(ctx context.Context, token string, items []domain.PaidItem) error
}

// Archive keeps a copy of each slip; satisfied by *storage.SlipArchive.
type Archive interface {
	Put(ctx context.Context, contentType string, body []byte) (string, error)
}

type Publisher interface {
	Publish(ch events.Change) bool
}

// ======================================================
// INPUT
// ======================================================

type UploadSlipInput struct {
	Token    string
	Order    []byte // JSON order as built by order.Build
	Filename string
	Slip     []byte
}

type UploadSlipResult struct {
	ContentType string `json:"content_type"`
	ArchiveKey  string `json:"archive_key,omitempty"`
	Items       int    `json:"items"`
}

// ======================================================
// USE CASE
// ======================================================

type UploadSlip struct {
	gateway Gateway
	archive Archive
	bus     Publisher
}

// NewUploadSlip builds the use case. archive may be nil.
func NewUploadSlip(gateway Gateway, archive Archive, bus Publisher) *UploadSlip {
	return &UploadSlip{gateway: gateway, archive: archive, bus: bus}
}

func (uc *UploadSlip) Execute(
	ctx context.Context,
	in UploadSlipInput,
) (*UploadSlipResult, error) {

	if len(in.Slip) == 0 {
		return nil, httperr.ErrBusiness("slip_required")
	}
	if len(in.Slip) > MaxSlipBytes {
		return nil, httperr.ErrBusiness("slip_too_large")
	}

	contentType := SniffSlip(in.Slip)
	if !allowedSlipTypes[contentType] {
		return nil, httperr.ErrBusiness("slip_type_not_allowed")
	}

	var o order.Order
	if err := json.Unmarshal(in.Order, &o); err != nil {
		return nil, httperr.ErrBusiness("order_invalid")
	}
	if len(o.Items) == 0 {
		return nil, order.ErrEmptyOrder
	}

	res := &UploadSlipResult{ContentType: contentType, Items: len(o.Items)}

	if uc.archive != nil {
		key, err := uc.archive.Put(ctx, contentType, in.Slip)
		if err != nil {
			log.Printf("[payments] slip archive failed: %v", err)
		} else {
			res.ArchiveKey = key
		}
	}

	if err := uc.gateway.UploadSlip(ctx, in.Token, o, in.Filename, contentType, in.Slip); err != nil {
		return nil, err
	}

	for _, it := range o.Items {
		uc.bus.Publish(events.Change{
			Service:       string(it.Service),
			AppointmentID: it.ID,
			Action:        events.ActionPaid,
		})
	}

	return res, nil
}

// SniffSlip reports the slip's real content type from its first bytes.
func SniffSlip(b []byte) string {
	return http.DetectContentType(b)
}

// ======================================================
// MARK PAID
// ======================================================

type MarkPaid struct {
	gateway Gateway
	bus     Publisher
}

func NewMarkPaid(gateway Gateway, bus Publisher) *MarkPaid {
	return &MarkPaid{gateway: gateway, bus: bus}
}

func (uc *MarkPaid) Execute(
	ctx context.Context,
	token string,
	items []domain.PaidItem,
) error {

	if len(items) == 0 {
		return order.ErrEmptyOrder
	}
	for _, it := range items {
		if it.ID == "" || !it.Service.Valid() {
			return httperr.ErrBusiness("order_item_invalid")
		}
	}

	if err := uc.gateway.MarkPaid(ctx, token, items); err != nil {
		return err
	}

	for _, it := range items {
		uc.bus.Publish(events.Change{
			Service:       string(it.Service),
			AppointmentID: it.ID,
			Action:        events.ActionPaid,
		})
	}
	return nil
}

