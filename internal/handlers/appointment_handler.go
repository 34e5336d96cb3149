package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/petcare-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/petcare-scheduler/internal/usecase/appointment"
)

const maxBookingBody = 64 << 10

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	listMine     *ucAppointment.ListMyAppointments
	create       *ucAppointment.CreateAppointment
	update       *ucAppointment.UpdateAppointment
	remove       *ucAppointment.DeleteAppointment
	availability *ucAppointment.GetAvailability
}

func NewAppointmentHandler(
	listMine *ucAppointment.ListMyAppointments,
	create *ucAppointment.CreateAppointment,
	update *ucAppointment.UpdateAppointment,
	remove *ucAppointment.DeleteAppointment,
	availability *ucAppointment.GetAvailability,
) *AppointmentHandler {
	return &AppointmentHandler{
		listMine:     listMine,
		create:       create,
		update:       update,
		remove:       remove,
		availability: availability,
	}
}

// ======================================================
// CUSTOMER
// ======================================================

func (h *AppointmentHandler) ListMine(c *gin.Context) {
	list, err := h.listMine.Execute(c.Request.Context(), middleware.CustomerToken(c))
	if err != nil {
		writeError(c, err)
		return
	}
	httpresp.List(c, list)
}

// Create validates the body against the service's booking schema before
// anything reaches the backend.
func (h *AppointmentHandler) Create(c *gin.Context) {
	svc, err := domain.ParseService(c.Param("service"))
	if err != nil {
		writeError(c, err)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBookingBody))
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	rec, err := h.create.Execute(c.Request.Context(), middleware.CustomerToken(c), svc, raw)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":          true,
		"service":     svc,
		"appointment": rec,
	})
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	svc, err := domain.ParseService(c.Param("service"))
	if err != nil {
		writeError(c, err)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBookingBody))
	if err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	rec, err := h.update.Execute(c.Request.Context(), middleware.CustomerToken(c), svc, c.Param("id"), raw)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"service":     svc,
		"appointment": rec,
	})
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	svc, err := domain.ParseService(c.Param("service"))
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.remove.Execute(c.Request.Context(), middleware.CustomerToken(c), svc, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ======================================================
// PUBLIC
// ======================================================

func (h *AppointmentHandler) Slots(c *gin.Context) {
	svc, err := domain.ParseService(c.Query("service"))
	if err != nil {
		writeError(c, err)
		return
	}
	date := c.Query("date")
	if _, err := parseYMD(date); err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return
	}

	slots, err := h.availability.Execute(c.Request.Context(), domain.AvailabilityInput{
		Service: svc,
		Date:    date,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service": svc,
		"date":    date,
		"slots":   slots,
	})
}

func (h *AppointmentHandler) Pricing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"currency": order.Currency,
		"prices":   order.PriceTable(),
	})
}
