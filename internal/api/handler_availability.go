package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Keta808/backendTesis/internal/timeslot"
)

// FreeSlots handles GET /api/availability/:workerId/:date. The optional
// "duration" query parameter sets the slot step in minutes.
func (h *Handler) FreeSlots(c *gin.Context) {
	date, err := timeslot.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "bad_request", "error": err.Error()})
		return
	}

	duration := 30
	if raw := c.Query("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"kind": "bad_request", "error": "invalid duration"})
			return
		}
	}

	slots, err := h.engine.FreeSlotsFor(c.Request.Context(), c.Param("workerId"), date, duration)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}
