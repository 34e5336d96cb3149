package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/petcare-scheduler/internal/civildate"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/usecase/calendar"
)

const ViewHeader = "X-Calendar-View"

// keepAlive is how often an open event stream pings and marks its view as
// in use.
const keepAlive = 30 * time.Second

// defaultMaxDays fits the six-week month grid.
const defaultMaxDays = 42

// ======================================================
// HANDLER
// ======================================================

type CalendarHandler struct {
	views     *calendar.Views
	days      calendar.DayFetcher
	loc       *time.Location
	weekStart time.Weekday
	maxDays   int
	now       func() time.Time
}

func NewCalendarHandler(
	views *calendar.Views,
	days calendar.DayFetcher,
	loc *time.Location,
	weekStart time.Weekday,
	maxDays int,
	now func() time.Time,
) *CalendarHandler {
	if now == nil {
		now = time.Now
	}
	if maxDays <= 0 {
		maxDays = defaultMaxDays
	}
	return &CalendarHandler{
		views:     views,
		days:      days,
		loc:       loc,
		weekStart: weekStart,
		maxDays:   maxDays,
		now:       now,
	}
}

// ======================================================
// RESPONSES
// ======================================================

type calendarResponse struct {
	ViewID     string               `json:"view_id"`
	View       calendar.View        `json:"view"`
	Range      civildate.Range      `json:"range"`
	Generation uint64               `json:"generation"`
	Loading    bool                 `json:"loading"`
	Degraded   []string             `json:"degraded,omitempty"`
	LastError  string               `json:"last_error,omitempty"`
	UpdatedAt  time.Time            `json:"updated_at"`
	Events     []calendar.EventView `json:"events"`
}

func present(v *calendar.CalendarView, snap calendar.Snapshot, view calendar.View) calendarResponse {
	return calendarResponse{
		ViewID:     v.ID,
		View:       view,
		Range:      snap.Range,
		Generation: snap.Generation,
		Loading:    snap.Loading,
		Degraded:   snap.Degraded,
		LastError:  snap.LastError,
		UpdatedAt:  snap.UpdatedAt,
		Events:     v.Presenter.Present(snap, view),
	}
}

// ======================================================
// HELPERS
// ======================================================

func (h *CalendarHandler) view(c *gin.Context) (*calendar.CalendarView, bool) {
	id := c.Param("id")
	if id == "" {
		id = c.Query("view_id")
	}
	if id == "" {
		id = c.GetHeader(ViewHeader)
	}

	v, ok := h.views.Get(id)
	if !ok {
		httperr.NotFound(c, "view_not_found", "Calendar view not found or expired.")
		return nil, false
	}
	return v, true
}

// parseDay accepts YYYY-MM-DD or RFC 3339. The civil day is read in the
// calendar's zone either way.
func (h *CalendarHandler) parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := civildate.Parse(s, h.loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return civildate.AtNoon(t.In(h.loc)), nil
}

func (h *CalendarHandler) fetch(c *gin.Context, v *calendar.CalendarView, start, end time.Time, view calendar.View) {
	snap, err := v.Presenter.OnRangeChange(c.Request.Context(), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, present(v, snap, view))
}

// ======================================================
// RANGE
// ======================================================

func (h *CalendarHandler) Range(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}

	start, err := h.parseDay(c.Query("start"))
	if err != nil {
		httperr.BadRequest(c, "invalid_start", "Invalid start date.")
		return
	}
	end, err := h.parseDay(c.Query("end"))
	if err != nil {
		httperr.BadRequest(c, "invalid_end", "Invalid end date.")
		return
	}
	if civildate.Before(end, start) {
		httperr.BadRequest(c, "invalid_range", "The range ends before it starts.")
		return
	}

	rng := civildate.NewRange(start, end)
	if len(rng.Days()) > h.maxDays {
		httperr.BadRequest(c, "range_too_large", fmt.Sprintf("The range may span at most %d days.", h.maxDays))
		return
	}
	h.fetch(c, v, start, end, calendar.ParseView(c.Query("view"), rng))
}

// Month loads the full-week grid around anchor's month (today by default).
func (h *CalendarHandler) Month(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}

	anchor := h.now().In(h.loc)
	if s := c.Query("anchor"); s != "" {
		var err error
		if anchor, err = h.parseDay(s); err != nil {
			httperr.BadRequest(c, "invalid_anchor", "Invalid anchor date.")
			return
		}
	}

	rng := civildate.MonthGrid(anchor, h.weekStart)
	h.fetch(c, v, rng.Start, rng.End, calendar.ViewMonth)
}

// State returns the last committed snapshot without fetching.
func (h *CalendarHandler) State(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	snap := v.Scheduler.Snapshot()
	c.JSON(http.StatusOK, present(v, snap, calendar.ParseView(c.Query("view"), snap.Range)))
}

// Day runs a single per-day fetch, outside any view.
func (h *CalendarHandler) Day(c *gin.Context) {
	day, err := h.parseDay(c.Query("date"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return
	}

	res := h.days.Execute(c.Request.Context(), civildate.Format(day))

	events := make([]calendar.EventView, 0, len(res.Events))
	for _, ev := range res.Events {
		events = append(events, calendar.PresentEvent(ev, calendar.ViewDay))
	}

	c.JSON(http.StatusOK, gin.H{
		"date":   res.Date,
		"failed": res.Failed,
		"events": events,
	})
}

// ======================================================
// SELECT
// ======================================================

func (h *CalendarHandler) Select(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}

	var sel calendar.Selection
	if err := c.ShouldBindJSON(&sel); err != nil || sel.Start.IsZero() {
		httperr.BadRequest(c, "invalid_request", "Invalid selection.")
		return
	}
	sel.Start = sel.Start.In(h.loc)
	sel.End = sel.End.In(h.loc)

	target, err := v.Presenter.SelectSlot(c.Request.Context(), sel)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, target)
}

// ======================================================
// VIEWS
// ======================================================

func (h *CalendarHandler) OpenView(c *gin.Context) {
	v := h.views.Open()
	c.JSON(http.StatusCreated, gin.H{"view_id": v.ID})
}

func (h *CalendarHandler) CloseView(c *gin.Context) {
	id := c.Param("id")
	if id == calendar.DefaultViewID {
		httperr.BadRequest(c, "default_view", "The shared view cannot be closed.")
		return
	}
	if !h.views.Close(id) {
		httperr.NotFound(c, "view_not_found", "Calendar view not found or expired.")
		return
	}
	c.Status(http.StatusNoContent)
}

// Events streams every committed snapshot of the view as server-sent
// events, starting with the current one.
func (h *CalendarHandler) Events(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}

	updates, stop := v.Scheduler.Watch()
	defer stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	send := func(snap calendar.Snapshot) {
		c.SSEvent("snapshot", present(v, snap, calendar.ParseView(c.Query("view"), snap.Range)))
		c.Writer.Flush()
	}
	send(v.Scheduler.Snapshot())

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-v.Context().Done():
			return
		case snap := <-updates:
			send(snap)
		case <-ticker.C:
			h.views.Get(v.ID)
			c.SSEvent("ping", "")
			c.Writer.Flush()
		}
	}
}
