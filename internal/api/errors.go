package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Keta808/backendTesis/internal/booking"
)

// writeError translates a booking error into an HTTP response. Every
// business-rule rejection names the rule that failed through the "kind"
// field so the client UI can react differently to each. Storage failures
// surface as an opaque 500; their detail only goes to the log.
func (h *Handler) writeError(c *gin.Context, err error) {
	var notFound *booking.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"kind": "not_found", "error": notFound.Error()})
		return
	}

	var unavailable *booking.UnavailableError
	if errors.As(err, &unavailable) {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":   "unavailable",
			"reason": string(unavailable.Reason),
			"error":  unavailable.Error(),
		})
		return
	}

	var conflict *booking.SlotConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":                     "slot_conflict",
			"conflictingReservationId": conflict.ReservationID,
			"conflictingRange":         conflict.Start + "-" + conflict.End,
			"error":                    conflict.Error(),
		})
		return
	}

	var capacity *booking.CapacityExceededError
	if errors.As(err, &capacity) {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":  "capacity_exceeded",
			"scope": string(capacity.Scope),
			"limit": capacity.Limit,
			"error": capacity.Error(),
		})
		return
	}

	var transition *booking.InvalidTransitionError
	if errors.As(err, &transition) {
		c.JSON(http.StatusBadRequest, gin.H{
			"kind":  "invalid_transition",
			"from":  string(transition.From),
			"error": transition.Error(),
		})
		return
	}

	h.log.Error().Err(err).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"kind": "internal", "error": "internal server error"})
}
