package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/events"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/petcare-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/petcare-scheduler/internal/middleware"
	"github.com/BruksfildServices01/petcare-scheduler/internal/models"
)

// ChangeLister is satisfied by *repository.ChangeLogGormRepository.
type ChangeLister interface {
	List(ctx context.Context, f repository.ChangeFilter) ([]models.ChangeLog, int64, error)
}

type Publisher interface {
	Publish(ch events.Change) bool
}

// ======================================================
// HANDLER
// ======================================================

type StaffHandler struct {
	bus     Publisher
	changes ChangeLister
	loc     *time.Location
}

// NewStaffHandler builds the handler. changes may be nil when no database
// is configured; the journal then answers 503.
func NewStaffHandler(bus Publisher, changes ChangeLister, loc *time.Location) *StaffHandler {
	return &StaffHandler{bus: bus, changes: changes, loc: loc}
}

// ======================================================
// REQUESTS
// ======================================================

type ChangedRequest struct {
	Service       string `json:"service"`
	AppointmentID string `json:"appointment_id"`
	Action        string `json:"action"`
}

// Changed emits appointments:changed for edits made outside this service,
// such as a status change in the back office.
func (h *StaffHandler) Changed(c *gin.Context) {
	var req ChangedRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, "invalid_request", "Invalid change notice.")
			return
		}
	}

	if req.Service != "" {
		if _, err := domain.ParseService(req.Service); err != nil {
			writeError(c, err)
			return
		}
	}
	if req.Action == "" {
		req.Action = events.ActionStatus
	}

	ch := events.Change{
		Service:       req.Service,
		AppointmentID: req.AppointmentID,
		Action:        req.Action,
	}
	if !h.bus.Publish(ch) {
		httperr.Write(c, http.StatusServiceUnavailable, "bus_closed", "The service is shutting down.")
		return
	}

	log.Printf("[events] %s by staff %v", req.Action, c.MustGet(middleware.ContextUserID))
	c.JSON(http.StatusAccepted, gin.H{"ok": true})
}

// ======================================================
// JOURNAL
// ======================================================

func (h *StaffHandler) Changes(c *gin.Context) {
	if h.changes == nil {
		httperr.Write(c, http.StatusServiceUnavailable, "journal_disabled", "The change journal is not configured.")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	f := repository.ChangeFilter{
		Service: c.Query("service"),
		Action:  c.Query("action"),
		Page:    page,
		Limit:   limit,
	}

	if s := c.Query("from"); s != "" {
		if from, err := time.ParseInLocation("2006-01-02", s, h.loc); err == nil {
			f.From = from
		}
	}
	if s := c.Query("to"); s != "" {
		if to, err := time.ParseInLocation("2006-01-02", s, h.loc); err == nil {
			f.To = to.AddDate(0, 0, 1)
		}
	}

	logs, total, err := h.changes.List(c.Request.Context(), f)
	if err != nil {
		log.Printf("[audit] list failed: %v", err)
		httperr.Internal(c, "changes_list_failed", "Could not list changes.")
		return
	}

	httpresp.Page(c, logs, page, limit, total)
}
