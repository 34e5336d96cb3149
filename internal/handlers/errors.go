package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/petcare-scheduler/internal/usecase/calendar"
)

// businessStatus overrides the default 400 for codes that mean something
// else on the wire.
var businessStatus = map[string]int{
	"time_conflict":         http.StatusConflict,
	"appointment_not_found": http.StatusNotFound,
	"appointment_locked":    http.StatusConflict,
	"slip_too_large":        http.StatusRequestEntityTooLarge,
	"slip_type_not_allowed": http.StatusUnsupportedMediaType,
	"order_item_locked":     http.StatusConflict,
	"order_item_paid":       http.StatusConflict,
}

var businessMessage = map[string]string{
	"time_conflict":         "That time slot was just booked. Please pick another one.",
	"appointment_not_found": "Appointment not found.",
	"appointment_locked":    "Cancelled or rejected appointments cannot be edited.",
	"past_slot":             "You cannot book a slot in the past.",
	"slip_required":         "Please attach your bank transfer slip.",
	"slip_too_large":        "The slip must be 10 MB or smaller.",
	"slip_type_not_allowed": "The slip must be a PNG, JPEG or PDF file.",
	"order_empty":           "Select at least one appointment to pay for.",
	"order_invalid":         "The order could not be read.",
	"order_item_locked":     "Cancelled or rejected appointments cannot be paid.",
	"order_item_paid":       "This appointment is already paid.",
	"order_item_invalid":    "Every item needs an id and a known service.",
	"unknown_service":       "Unknown service.",
	"invalid_payload":       "Invalid booking data.",
}

// writeError maps a use case error onto an HTTP error body.
func writeError(c *gin.Context, err error) {
	if ve, ok := httperr.AsValidation(err); ok {
		httperr.UnprocessableEntity(c, ve)
		return
	}

	if code, ok := httperr.BusinessCode(err); ok {
		status, ok := businessStatus[code]
		if !ok {
			status = http.StatusBadRequest
		}
		msg := businessMessage[code]
		if msg == "" {
			msg = strings.ReplaceAll(code, "_", " ")
		}
		httperr.Write(c, status, code, msg)
		return
	}

	switch {
	case errors.Is(err, calendar.ErrSuperseded):
		httperr.Conflict(c, "superseded", "A newer calendar range replaced this one.")
		return
	case errors.Is(err, repository.ErrRejected):
		httperr.Write(c, http.StatusUnprocessableEntity, "backend_rejected", err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded):
		httperr.Write(c, http.StatusGatewayTimeout, "backend_timeout", "The booking service took too long to answer.")
		return
	case errors.Is(err, context.Canceled):
		httperr.Write(c, 499, "request_cancelled", "Request cancelled.")
		return
	}

	var se *repository.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusUnauthorized:
			httperr.Unauthorized(c, "session_expired", "Please sign in again.")
		case http.StatusForbidden:
			httperr.Forbidden(c, "forbidden", "You are not allowed to do that.")
		default:
			log.Printf("[backend] %v", se)
			httperr.BadGateway(c, "backend_error", "The booking service is unavailable.")
		}
		return
	}

	log.Printf("[http] %s %s: %v", c.Request.Method, c.FullPath(), err)
	httperr.Internal(c, "internal_error", "Something went wrong.")
}
