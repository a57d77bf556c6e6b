package handler

import (
	"net/http"
	"strconv"

	"github.com/arung-agamani/denpa-radio/internal/api/service"
	"github.com/arung-agamani/denpa-radio/internal/show"
	"github.com/gin-gonic/gin"
)

// ShowHandlers holds the gin route handlers for status, upcoming, preview,
// and interactive-command endpoints.
type ShowHandlers struct {
	svc *service.ShowService
}

func NewShowHandlers(svc *service.ShowService) *ShowHandlers {
	return &ShowHandlers{svc: svc}
}

// Status handles GET /api/status
func (h *ShowHandlers) Status(c *gin.Context) {
	h.svc.Tick()
	snap := h.svc.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"now_ms":           snap.NowMs,
		"playing":          snap.Playing,
		"stack":            snap.Stack,
		"stack_depth":      snap.StackDepth,
		"heap_len":         snap.HeapLen,
		"future_len":       snap.FutureLen,
		"pending_warnings": snap.PendingWarnings,
	})
}

// Upcoming handles GET /api/upcoming?readahead_ms=...&schedahead_ms=...&max=...
// The listing is always returned; the simulated prefetch actions only when a
// readahead window is asked for.
func (h *ShowHandlers) Upcoming(c *gin.Context) {
	resp := gin.H{
		"status":   "ok",
		"upcoming": h.svc.Upcoming(),
	}
	if readahead, err := strconv.ParseInt(c.Query("readahead_ms"), 10, 64); err == nil && readahead > 0 {
		schedahead, _ := strconv.ParseInt(c.DefaultQuery("schedahead_ms", "0"), 10, 64)
		max, _ := strconv.Atoi(c.DefaultQuery("max", "0"))
		resp["actions"] = h.svc.UpcomingActions(readahead, schedahead, max)
	}
	c.JSON(http.StatusOK, resp)
}

// Preview handles GET /api/preview?at_ms=...
func (h *ShowHandlers) Preview(c *gin.Context) {
	atStr := c.Query("at_ms")
	at, err := strconv.ParseInt(atStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid or missing at_ms"})
		return
	}
	events, actions := h.svc.PreviewUntil(at)
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"events":  events,
		"actions": actions,
	})
}

// Warnings handles GET /api/warnings  (protected)
func (h *ShowHandlers) Warnings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"warnings": h.svc.Warnings(),
	})
}

// Command handles POST /api/command  (protected)
func (h *ShowHandlers) Command(c *gin.Context) {
	var cmd show.InteractiveCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	if err := h.svc.Command(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AddSchedule handles POST /api/schedules  (protected)
func (h *ShowHandlers) AddSchedule(c *gin.Context) {
	var body struct {
		Schedule  show.ScheduledPlaylist `json:"schedule"`
		HorizonMs int64                  `json:"horizon_ms"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	if body.HorizonMs <= 0 {
		body.HorizonMs = 24 * 3600 * 1000
	}
	if err := h.svc.AddSchedule(&body.Schedule, body.HorizonMs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

// Reload handles POST /api/reload  (protected) — wholesale replace of the
// three libraries, e.g. after an external bulk edit.
func (h *ShowHandlers) Reload(c *gin.Context) {
	var body struct {
		Sequences []*show.Sequence          `json:"sequences"`
		Playlists []*show.Playlist          `json:"playlists"`
		Schedules []*show.ScheduledPlaylist `json:"schedules"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "error": "invalid request body"})
		return
	}
	if err := h.svc.Reload(body.Sequences, body.Playlists, body.Schedules); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "warnings": h.svc.Warnings()})
}
