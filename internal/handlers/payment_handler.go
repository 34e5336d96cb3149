package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/petcare-scheduler/internal/usecase/appointment"
	ucPayment "github.com/BruksfildServices01/petcare-scheduler/internal/usecase/payment"
)

// ======================================================
// HANDLER
// ======================================================

type PaymentHandler struct {
	listMine *ucAppointment.ListMyAppointments
	upload   *ucPayment.UploadSlip
	markPaid *ucPayment.MarkPaid
}

func NewPaymentHandler(
	listMine *ucAppointment.ListMyAppointments,
	upload *ucPayment.UploadSlip,
	markPaid *ucPayment.MarkPaid,
) *PaymentHandler {
	return &PaymentHandler{
		listMine: listMine,
		upload:   upload,
		markPaid: markPaid,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type OrderItemRequest struct {
	ID      string `json:"id" binding:"required"`
	Service string `json:"service" binding:"required"`
}

type OrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ======================================================
// ORDER PREVIEW
// ======================================================

// Preview prices the caller's selected appointments. Items are looked up in
// the caller's own list, so foreign ids are simply not found.
func (h *PaymentHandler) Preview(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Select at least one appointment.")
		return
	}

	mine, err := h.listMine.Execute(c.Request.Context(), middleware.CustomerToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	type key struct {
		svc domain.Service
		id  string
	}
	index := make(map[key]domain.Record, len(mine))
	for _, a := range mine {
		index[key{a.Service, a.Identifier()}] = a.Record
	}

	entries := make([]order.Entry, 0, len(req.Items))
	for _, it := range req.Items {
		svc, err := domain.ParseService(it.Service)
		if err != nil {
			writeError(c, err)
			return
		}
		rec, ok := index[key{svc, it.ID}]
		if !ok {
			httperr.NotFound(c, "order_item_not_found", "Appointment "+it.ID+" was not found.")
			return
		}
		entries = append(entries, order.Entry{Service: svc, Record: rec})
	}

	o, err := order.Build(entries)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// ======================================================
// UPLOAD SLIP
// ======================================================

func (h *PaymentHandler) UploadSlip(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ucPayment.MaxSlipBytes+1<<20)

	file, hdr, err := c.Request.FormFile("slip")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, httperr.ErrBusiness("slip_too_large"))
			return
		}
		writeError(c, httperr.ErrBusiness("slip_required"))
		return
	}
	defer file.Close()

	slip, err := io.ReadAll(io.LimitReader(file, ucPayment.MaxSlipBytes+1))
	if err != nil {
		httperr.BadRequest(c, "slip_unreadable", "The slip could not be read.")
		return
	}

	res, err := h.upload.Execute(c.Request.Context(), ucPayment.UploadSlipInput{
		Token:    middleware.CustomerToken(c),
		Order:    []byte(c.Request.FormValue("order")),
		Filename: hdr.Filename,
		Slip:     slip,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "Slip received. Your payment will be confirmed shortly.",
		"result":  res,
	})
}

// ======================================================
// MARK PAID
// ======================================================

func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Select at least one appointment.")
		return
	}

	items := make([]domain.PaidItem, 0, len(req.Items))
	for _, it := range req.Items {
		svc, err := domain.ParseService(it.Service)
		if err != nil {
			writeError(c, err)
			return
		}
		items = append(items, domain.PaidItem{ID: it.ID, Service: svc})
	}

	if err := h.markPaid.Execute(c.Request.Context(), middleware.CustomerToken(c), items); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "items": len(items)})
}
