package status

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/muezzin/internal/db"
	"github.com/Nixie-Tech-LLC/muezzin/internal/prayer"
	"github.com/Nixie-Tech-LLC/muezzin/internal/scheduler"
	"github.com/Nixie-Tech-LLC/muezzin/internal/soundtrack"
)

// Handlers serves the read-only operator surface: scheduler state, cached
// times, mute history, and force-refresh actions. Schedule CRUD lives in
// the admin app, not here.
type Handlers struct {
	store db.Store
	sched *scheduler.Scheduler
	zones *soundtrack.Client
}

func RegisterRoutes(r gin.IRoutes, store db.Store, sched *scheduler.Scheduler, zones *soundtrack.Client) {
	h := &Handlers{store: store, sched: sched, zones: zones}

	r.GET("/status", h.getStatus)
	r.GET("/schedules", h.listSchedules)
	r.GET("/schedules/:id/history", h.getHistory)
	r.GET("/schedules/:id/times", h.getTimes)
	r.GET("/schedules/:id/durations", h.getDurations)
	r.POST("/schedules/:id/refresh", h.refresh)
	r.POST("/schedules/:id/prefetch", h.prefetchMonth)
	r.GET("/accounts/:id/zones", h.listZones)
}

func scheduleID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule id"})
		return 0, false
	}
	return id, true
}

func (h *Handlers) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"jobs":         h.sched.Status(),
		"active_mutes": h.sched.Registry().Snapshot(),
	})
}

func (h *Handlers) listSchedules(c *gin.Context) {
	schedules, err := h.store.ListSchedules()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list schedules"})
		return
	}
	c.JSON(http.StatusOK, schedules)
}

func (h *Handlers) getHistory(c *gin.Context) {
	id, ok := scheduleID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	history, err := h.store.ListMuteHistory(id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list history"})
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handlers) getTimes(c *gin.Context) {
	id, ok := scheduleID(c)
	if !ok {
		return
	}
	sched, err := h.store.GetSchedule(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
		return
	}

	date := time.Now()
	if q := c.Query("date"); q != "" {
		date, err = time.ParseInLocation("2006-01-02", q, sched.Zone())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
			return
		}
	}

	local := date.In(sched.Zone())
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, sched.Zone()).UTC()
	pt, err := h.store.GetPrayerTimesForDay(id, day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load prayer times"})
		return
	}
	if pt == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no prayer times cached for that day"})
		return
	}
	c.JSON(http.StatusOK, pt)
}

// getDurations reports the resolved mute duration per prayer for a date,
// used by the admin UI to suggest sensible overrides.
func (h *Handlers) getDurations(c *gin.Context) {
	id, ok := scheduleID(c)
	if !ok {
		return
	}
	sched, err := h.store.GetSchedule(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "schedule not found"})
		return
	}

	date := time.Now()
	if q := c.Query("date"); q != "" {
		date, err = time.ParseInLocation("2006-01-02", q, sched.Zone())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
			return
		}
	}

	weekday := date.In(sched.Zone()).Weekday()
	c.JSON(http.StatusOK, gin.H{
		"date":      date.In(sched.Zone()).Format("2006-01-02"),
		"durations": prayer.AllDurations(sched.CalculationMethod, weekday, prayer.IsRamadan(date)),
	})
}

func (h *Handlers) refresh(c *gin.Context) {
	id, ok := scheduleID(c)
	if !ok {
		return
	}
	if err := h.sched.RefreshSchedule(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "refresh failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "prayer times refreshed"})
}

func (h *Handlers) prefetchMonth(c *gin.Context) {
	id, ok := scheduleID(c)
	if !ok {
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}
	written, err := h.sched.PrefetchMonth(c.Request.Context(), id, year, time.Month(month))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "prefetch failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days_written": written})
}

func (h *Handlers) listZones(c *gin.Context) {
	account, err := h.zones.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch account"})
		return
	}
	c.JSON(http.StatusOK, account)
}
