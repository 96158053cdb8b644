package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Keta808/backendTesis/internal/booking"
	"github.com/Keta808/backendTesis/internal/model"
	"github.com/Keta808/backendTesis/internal/timeslot"
)

type createReservationRequest struct {
	ClientID  string `json:"clientId" binding:"required"`
	WorkerID  string `json:"workerId" binding:"required"`
	ServiceID string `json:"serviceId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
}

// reservationResponse is a reservation plus its derived end time.
type reservationResponse struct {
	model.Reservation
	EndTime time.Time `json:"endTime"`
}

func toResponse(r *model.Reservation) reservationResponse {
	return reservationResponse{Reservation: *r, EndTime: r.EndTime()}
}

func toResponses(rs []model.Reservation) []reservationResponse {
	out := make([]reservationResponse, len(rs))
	for i := range rs {
		out[i] = toResponse(&rs[i])
	}
	return out
}

func (h *Handler) bindBookingRequest(c *gin.Context) (booking.Request, bool) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "bad_request", "error": err.Error()})
		return booking.Request{}, false
	}

	date, err := timeslot.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "bad_request", "error": err.Error()})
		return booking.Request{}, false
	}
	startMinute, err := timeslot.ParseClock(req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "bad_request", "error": err.Error()})
		return booking.Request{}, false
	}

	return booking.Request{
		ClientID:    req.ClientID,
		WorkerID:    req.WorkerID,
		ServiceID:   req.ServiceID,
		Date:        date,
		StartMinute: startMinute,
	}, true
}

// CreateReservation handles POST /api/reservations.
func (h *Handler) CreateReservation(c *gin.Context) {
	req, ok := h.bindBookingRequest(c)
	if !ok {
		return
	}
	r, err := h.engine.CreateReservation(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(r))
}

// CreateReservationAgainstBlocks handles POST /api/reservations/crear-reserva-horario,
// the discrete-block booking entry point.
func (h *Handler) CreateReservationAgainstBlocks(c *gin.Context) {
	req, ok := h.bindBookingRequest(c)
	if !ok {
		return
	}
	r, err := h.engine.CreateReservationAgainstBlocks(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(r))
}

// ListByWorker handles GET /api/reservations/trabajador/:workerId.
func (h *Handler) ListByWorker(c *gin.Context) {
	rs, err := h.engine.ListByWorker(c.Request.Context(), c.Param("workerId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(rs))
}

// ListByClient handles GET /api/reservations/cliente/:clientId. Listing a
// client's reservations runs the lazy expiry sweep first.
func (h *Handler) ListByClient(c *gin.Context) {
	rs, err := h.engine.ListByClient(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponses(rs))
}

// CancelByBusiness handles PUT /api/reservations/cancelar/:id.
func (h *Handler) CancelByBusiness(c *gin.Context) {
	h.transition(c, func(id string) (*model.Reservation, error) {
		return h.engine.Cancel(c.Request.Context(), id, booking.ActorBusiness)
	})
}

// CancelByClient handles PUT /api/reservations/cancelarCliente/:id.
func (h *Handler) CancelByClient(c *gin.Context) {
	h.transition(c, func(id string) (*model.Reservation, error) {
		return h.engine.Cancel(c.Request.Context(), id, booking.ActorClient)
	})
}

// Finalize handles PUT /api/reservations/finalizar/:id.
func (h *Handler) Finalize(c *gin.Context) {
	h.transition(c, func(id string) (*model.Reservation, error) {
		return h.engine.Finalize(c.Request.Context(), id)
	})
}

// MarkDone handles PUT /api/reservations/:id/realizada.
func (h *Handler) MarkDone(c *gin.Context) {
	h.transition(c, func(id string) (*model.Reservation, error) {
		return h.engine.MarkDone(c.Request.Context(), id)
	})
}

func (h *Handler) transition(c *gin.Context, op func(id string) (*model.Reservation, error)) {
	r, err := op(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(r))
}

// DeleteReservation handles DELETE /api/reservations/:id, the
// administrative hard delete.
func (h *Handler) DeleteReservation(c *gin.Context) {
	if err := h.engine.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// reservationProjection is the minimal calendar-view shape.
type reservationProjection struct {
	ID              string       `json:"id"`
	ClientID        string       `json:"clientId"`
	DurationMinutes int          `json:"durationMinutes"`
	Status          model.Status `json:"status"`
	Date            string       `json:"date"`
	StartTime       string       `json:"startTime"`
	ServiceID       string       `json:"serviceId"`
	WorkerID        string       `json:"workerId"`
}

func project(rs []model.Reservation) []reservationProjection {
	out := make([]reservationProjection, len(rs))
	for i := range rs {
		r := &rs[i]
		out[i] = reservationProjection{
			ID:              r.ID,
			ClientID:        r.ClientID,
			DurationMinutes: r.DurationMinutes,
			Status:          r.Status,
			Date:            r.Date.Format("2006-01-02"),
			StartTime:       r.StartTime.Format("15:04"),
			ServiceID:       r.ServiceID,
			WorkerID:        r.WorkerID,
		}
	}
	return out
}

// ActiveByWorkerDate handles GET /api/reservations/horas/trabajador/:workerId/:date.
func (h *Handler) ActiveByWorkerDate(c *gin.Context) {
	date, err := timeslot.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "bad_request", "error": err.Error()})
		return
	}
	rs, err := h.engine.ActiveForWorkerOnDate(c.Request.Context(), c.Param("workerId"), date)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservas": project(rs)})
}

// ActiveByBusinessDate handles GET /api/reservations/horas/microempresa/:serviceId/:date.
func (h *Handler) ActiveByBusinessDate(c *gin.Context) {
	date, err := timeslot.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"kind": "bad_request", "error": err.Error()})
		return
	}
	rs, err := h.engine.ActiveForBusinessOnDate(c.Request.Context(), c.Param("serviceId"), date)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservas": project(rs)})
}

// CountActive handles GET /api/reservations/count/:clientId/:microempresaId.
func (h *Handler) CountActive(c *gin.Context) {
	count, err := h.engine.CountActiveForBusiness(c.Request.Context(), c.Param("clientId"), c.Param("microempresaId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// PaymentService handles GET /api/reservations/servicio-url/:id, resolving
// the service (and its payment link) behind a reservation.
func (h *Handler) PaymentService(c *gin.Context) {
	svc, err := h.engine.PaymentService(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}
