// Package booking implements the availability and booking engine: slot
// conflict detection, capacity caps, the reservation lifecycle and its lazy
// expiry sweep.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Keta808/backendTesis/internal/metrics"
	"github.com/Keta808/backendTesis/internal/model"
	"github.com/Keta808/backendTesis/internal/schedule"
	"github.com/Keta808/backendTesis/internal/store"
	"github.com/Keta808/backendTesis/internal/timeslot"
)

// CancelActor identifies who requested a cancellation; the counterparty
// gets notified.
type CancelActor string

const (
	ActorClient   CancelActor = "client"
	ActorBusiness CancelActor = "business"
)

// CancellationNotice describes a cancelled reservation for the
// notification dispatcher.
type CancellationNotice struct {
	Reservation model.Reservation
	RecipientID string
	CancelledBy CancelActor
}

// Notifier dispatches cancellation notices. Implementations must not
// block; delivery is fire-and-forget.
type Notifier interface {
	NotifyCancellation(notice CancellationNotice)
}

// Caps holds the active-reservation limits enforced at creation time.
type Caps struct {
	MaxActivePerClient   int
	MaxActivePerBusiness int
}

// Request is a booking attempt. Date is the calendar day at local
// midnight; StartMinute is the day-relative start offset. The weekday is
// always derived from Date.
type Request struct {
	ClientID    string
	WorkerID    string
	ServiceID   string
	Date        time.Time
	StartMinute int
}

// Engine composes the availability calendar, the conflict detector and the
// capacity caps into the booking operations exposed to the HTTP layer.
type Engine struct {
	store    store.Store
	cal      *schedule.Calendar
	caps     Caps
	notifier Notifier
	locks    *workerLocks
	now      func() time.Time
	log      zerolog.Logger
}

// NewEngine creates a booking engine. notifier may be nil when cancellation
// notices are not wanted (tests, offline tooling).
func NewEngine(s store.Store, caps Caps, notifier Notifier, log zerolog.Logger) *Engine {
	return &Engine{
		store:    s,
		cal:      schedule.NewCalendar(s),
		caps:     caps,
		notifier: notifier,
		locks:    newWorkerLocks(),
		now:      time.Now,
		log:      log.With().Str("component", "booking").Logger(),
	}
}

// WithClock overrides the engine's clock. Used by tests to drive expiry.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// CreateReservation validates and persists a booking using the worker's
// configured availability representation.
func (e *Engine) CreateReservation(ctx context.Context, req Request) (*model.Reservation, error) {
	return e.create(ctx, req, "")
}

// CreateReservationAgainstBlocks validates and persists a booking using the
// discrete-block availability representation regardless of the worker's
// configured mode.
func (e *Engine) CreateReservationAgainstBlocks(ctx context.Context, req Request) (*model.Reservation, error) {
	return e.create(ctx, req, model.ModeSlots)
}

func (e *Engine) create(ctx context.Context, req Request, mode model.ScheduleMode) (*model.Reservation, error) {
	if _, err := e.store.GetWorker(ctx, req.WorkerID); err != nil {
		return nil, e.notFoundOr(err, "worker", req.WorkerID)
	}
	if _, err := e.store.GetClient(ctx, req.ClientID); err != nil {
		return nil, e.notFoundOr(err, "client", req.ClientID)
	}
	svc, err := e.store.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, e.notFoundOr(err, "service", req.ServiceID)
	}

	active, err := e.store.ActiveReservationsByClient(ctx, req.ClientID)
	if err != nil {
		return nil, &PersistenceError{Op: "count client reservations", Err: err}
	}
	if len(active) >= e.caps.MaxActivePerClient {
		metrics.IncReservationRejected("capacity_global")
		return nil, &CapacityExceededError{Scope: ScopeGlobal, Limit: e.caps.MaxActivePerClient}
	}

	businessCount, err := e.store.CountActiveByClientAndBusiness(ctx, req.ClientID, svc.MicroempresaID)
	if err != nil {
		return nil, &PersistenceError{Op: "count business reservations", Err: err}
	}
	if businessCount >= int64(e.caps.MaxActivePerBusiness) {
		metrics.IncReservationRejected("capacity_business")
		return nil, &CapacityExceededError{Scope: ScopeBusiness, Limit: e.caps.MaxActivePerBusiness}
	}

	candidate, err := timeslot.New(req.StartMinute, svc.DurationMinutes)
	if err != nil {
		metrics.IncReservationRejected("unavailable")
		return nil, &UnavailableError{Reason: ReasonOutsideBlocks, WorkerID: req.WorkerID, Detail: err.Error()}
	}

	weekday := req.Date.Weekday()
	verdict, err := e.cal.CheckMode(ctx, req.WorkerID, weekday, candidate, mode)
	if err != nil {
		return nil, &PersistenceError{Op: "check availability", Err: err}
	}
	if verdict != schedule.Open {
		metrics.IncReservationRejected("unavailable")
		return nil, &UnavailableError{
			Reason:   verdictReason(verdict),
			WorkerID: req.WorkerID,
			Detail:   verdict.String(),
		}
	}

	// The conflict check and the insert must not interleave with another
	// request for the same worker.
	unlock := e.locks.acquire(req.WorkerID)
	defer unlock()

	existing, err := e.store.ActiveReservationsForDate(ctx, req.WorkerID, req.Date)
	if err != nil {
		return nil, &PersistenceError{Op: "load existing reservations", Err: err}
	}
	if conflict := FindConflict(candidate, existing); conflict != nil {
		metrics.IncReservationRejected("conflict")
		return nil, conflictError(conflict)
	}

	r := &model.Reservation{
		ID:              uuid.NewString(),
		ClientID:        req.ClientID,
		WorkerID:        req.WorkerID,
		ServiceID:       req.ServiceID,
		Date:            req.Date,
		StartTime:       timeslot.AtMinute(req.Date, req.StartMinute),
		DurationMinutes: svc.DurationMinutes,
		Status:          model.StatusActiva,
	}
	if err := e.store.CreateReservation(ctx, r); err != nil {
		if errors.Is(err, store.ErrDuplicateSlot) {
			// Another process won the slot between our check and the
			// insert; the unique index caught it.
			metrics.IncReservationRejected("conflict")
			return nil, e.conflictFromStore(ctx, req, candidate)
		}
		return nil, &PersistenceError{Op: "create reservation", Err: err}
	}

	metrics.IncReservationCreated()
	e.log.Info().
		Str("reservation", r.ID).
		Str("worker", r.WorkerID).
		Str("client", r.ClientID).
		Str("slot", candidate.String()).
		Msg("reservation created")
	return r, nil
}

// conflictFromStore rebuilds a descriptive conflict error after the unique
// index rejected an insert.
func (e *Engine) conflictFromStore(ctx context.Context, req Request, candidate timeslot.Range) error {
	existing, err := e.store.ActiveReservationsForDate(ctx, req.WorkerID, req.Date)
	if err == nil {
		if conflict := FindConflict(candidate, existing); conflict != nil {
			return conflictError(conflict)
		}
	}
	return &SlotConflictError{
		Start: timeslot.FormatClock(candidate.Start),
		End:   timeslot.FormatClock(candidate.End),
	}
}

// Cancel transitions a reservation to Cancelada and notifies the
// counterparty of whoever cancelled.
func (e *Engine) Cancel(ctx context.Context, id string, by CancelActor) (*model.Reservation, error) {
	r, err := e.transition(ctx, id, model.StatusCancelada)
	if err != nil {
		return nil, err
	}
	if e.notifier != nil {
		recipient := r.ClientID
		if by == ActorClient {
			recipient = r.WorkerID
		}
		e.notifier.NotifyCancellation(CancellationNotice{
			Reservation: *r,
			RecipientID: recipient,
			CancelledBy: by,
		})
	}
	return r, nil
}

// Finalize explicitly transitions a reservation to Finalizada.
func (e *Engine) Finalize(ctx context.Context, id string) (*model.Reservation, error) {
	return e.transition(ctx, id, model.StatusFinalizada)
}

// MarkDone transitions a reservation to Realizada.
func (e *Engine) MarkDone(ctx context.Context, id string) (*model.Reservation, error) {
	return e.transition(ctx, id, model.StatusRealizada)
}

func (e *Engine) transition(ctx context.Context, id string, to model.Status) (*model.Reservation, error) {
	r, err := e.store.GetReservation(ctx, id)
	if err != nil {
		return nil, e.notFoundOr(err, "reservation", id)
	}
	if !CanTransition(r.Status, to) {
		return nil, &InvalidTransitionError{ReservationID: id, From: r.Status, To: to}
	}

	updated, err := e.store.TransitionReservation(ctx, id, r.Status, to, r.Version)
	if err != nil {
		if errors.Is(err, store.ErrStaleVersion) {
			// The row changed between read and write; report against the
			// current state rather than retrying blindly.
			current, rerr := e.store.GetReservation(ctx, id)
			if rerr != nil {
				return nil, e.notFoundOr(rerr, "reservation", id)
			}
			return nil, &InvalidTransitionError{ReservationID: id, From: current.Status, To: to}
		}
		return nil, &PersistenceError{Op: "transition reservation", Err: err}
	}

	e.log.Info().Str("reservation", id).Str("to", string(to)).Msg("reservation transitioned")
	return updated, nil
}

// Delete removes a reservation entirely. Administrative operation; the
// lifecycle invariants do not apply.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if err := e.store.DeleteReservation(ctx, id); err != nil {
		return e.notFoundOr(err, "reservation", id)
	}
	return nil
}

// ListByWorker returns a worker's non-cancelled reservations.
func (e *Engine) ListByWorker(ctx context.Context, workerID string) ([]model.Reservation, error) {
	out, err := e.store.ReservationsByWorker(ctx, workerID)
	if err != nil {
		return nil, &PersistenceError{Op: "list worker reservations", Err: err}
	}
	return out, nil
}

// ListByClient returns a client's non-cancelled reservations, reconciling
// expired ones first so the caller always sees Finalizada for reservations
// whose end time has passed.
func (e *Engine) ListByClient(ctx context.Context, clientID string) ([]model.Reservation, error) {
	if _, err := e.ExpireDue(ctx, clientID); err != nil {
		return nil, err
	}
	out, err := e.store.ReservationsByClient(ctx, clientID)
	if err != nil {
		return nil, &PersistenceError{Op: "list client reservations", Err: err}
	}
	return out, nil
}

// ExpireDue flips a client's active reservations whose end time has passed
// to Finalizada. It recomputes purely from stored timestamps and the
// current clock, so repeated calls are idempotent. Finalization is only
// guaranteed to be visible at the next read, not at the instant of expiry.
func (e *Engine) ExpireDue(ctx context.Context, clientID string) (int, error) {
	active, err := e.store.ActiveReservationsByClient(ctx, clientID)
	if err != nil {
		return 0, &PersistenceError{Op: "load active reservations", Err: err}
	}

	now := e.now()
	expired := 0
	for i := range active {
		r := &active[i]
		if !r.Expired(now) {
			continue
		}
		_, err := e.store.TransitionReservation(ctx, r.ID, model.StatusActiva, model.StatusFinalizada, r.Version)
		if err != nil {
			if errors.Is(err, store.ErrStaleVersion) {
				// Another reader already reconciled this one.
				continue
			}
			return expired, &PersistenceError{Op: "expire reservation", Err: err}
		}
		expired++
	}

	if expired > 0 {
		metrics.AddReservationsExpired(expired)
		e.log.Info().Str("client", clientID).Int("count", expired).Msg("reservations auto-finalized")
	}
	return expired, nil
}

// ActiveForWorkerOnDate returns a worker's active reservations for one
// calendar day, ordered by start time.
func (e *Engine) ActiveForWorkerOnDate(ctx context.Context, workerID string, date time.Time) ([]model.Reservation, error) {
	out, err := e.store.ActiveReservationsForDate(ctx, workerID, date)
	if err != nil {
		return nil, &PersistenceError{Op: "list active reservations", Err: err}
	}
	return out, nil
}

// ActiveForBusinessOnDate resolves the service's microempresa, collects its
// active worker roster and returns all of their active reservations for
// the day.
func (e *Engine) ActiveForBusinessOnDate(ctx context.Context, serviceID string, date time.Time) ([]model.Reservation, error) {
	svc, err := e.store.GetService(ctx, serviceID)
	if err != nil {
		return nil, e.notFoundOr(err, "service", serviceID)
	}
	workerIDs, err := e.store.ActiveWorkerIDs(ctx, svc.MicroempresaID)
	if err != nil {
		return nil, &PersistenceError{Op: "list business workers", Err: err}
	}
	out, err := e.store.ActiveReservationsForWorkersOnDate(ctx, workerIDs, date)
	if err != nil {
		return nil, &PersistenceError{Op: "list active reservations", Err: err}
	}
	return out, nil
}

// CountActiveForBusiness returns how many active reservations the client
// holds with the given microempresa.
func (e *Engine) CountActiveForBusiness(ctx context.Context, clientID, microempresaID string) (int64, error) {
	count, err := e.store.CountActiveByClientAndBusiness(ctx, clientID, microempresaID)
	if err != nil {
		return 0, &PersistenceError{Op: "count active reservations", Err: err}
	}
	return count, nil
}

// PaymentService returns the service backing a reservation, used by the
// payment collaborator to resolve the payment link.
func (e *Engine) PaymentService(ctx context.Context, reservationID string) (*model.Servicio, error) {
	r, err := e.store.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, e.notFoundOr(err, "reservation", reservationID)
	}
	svc, err := e.store.GetService(ctx, r.ServiceID)
	if err != nil {
		return nil, e.notFoundOr(err, "service", r.ServiceID)
	}
	return svc, nil
}

// FreeSlotsFor builds the free-slot day view for a worker: the schedule
// walked in service-duration steps with reserved ranges marked off.
func (e *Engine) FreeSlotsFor(ctx context.Context, workerID string, date time.Time, durationMinutes int) ([]schedule.Slot, error) {
	ds, err := e.store.GetDaySchedule(ctx, workerID, date.Weekday())
	if err != nil {
		return nil, e.notFoundOr(err, "schedule", workerID)
	}
	reservations, err := e.store.ActiveReservationsForDate(ctx, workerID, date)
	if err != nil {
		return nil, &PersistenceError{Op: "list active reservations", Err: err}
	}
	reserved := make([]timeslot.Range, 0, len(reservations))
	for i := range reservations {
		start := timeslot.MinuteOfDay(reservations[i].StartTime)
		reserved = append(reserved, timeslot.Range{Start: start, End: start + reservations[i].DurationMinutes})
	}
	return schedule.FreeSlots(ds, reserved, durationMinutes), nil
}

func (e *Engine) notFoundOr(err error, resource, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return &PersistenceError{Op: "lookup " + resource, Err: err}
}

func verdictReason(v schedule.Verdict) UnavailableReason {
	switch v {
	case schedule.NoSchedule:
		return ReasonNoSchedule
	case schedule.InsideException:
		return ReasonInsideException
	default:
		return ReasonOutsideBlocks
	}
}

func conflictError(conflict *model.Reservation) error {
	start := timeslot.MinuteOfDay(conflict.StartTime)
	return &SlotConflictError{
		ReservationID: conflict.ID,
		Start:         timeslot.FormatClock(start),
		End:           timeslot.FormatClock(start + conflict.DurationMinutes),
	}
}
