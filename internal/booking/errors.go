package booking

import (
	"fmt"

	"github.com/Keta808/backendTesis/internal/model"
)

// UnavailableReason distinguishes why a requested slot is not bookable.
// All three produce the same rejection, but the caller UI reacts
// differently to each.
type UnavailableReason string

const (
	ReasonNoSchedule      UnavailableReason = "no_schedule"
	ReasonOutsideBlocks   UnavailableReason = "outside_blocks"
	ReasonInsideException UnavailableReason = "inside_exception"
)

// CapacityScope names which reservation cap was hit.
type CapacityScope string

const (
	ScopeGlobal   CapacityScope = "global"
	ScopeBusiness CapacityScope = "business"
)

// NotFoundError reports a missing worker, client, service, schedule or
// reservation reference.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// UnavailableError reports that the requested slot falls outside the
// worker's configured availability.
type UnavailableError struct {
	Reason   UnavailableReason
	WorkerID string
	Detail   string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("worker %s unavailable (%s): %s", e.WorkerID, e.Reason, e.Detail)
}

// SlotConflictError reports an overlap with an existing active reservation.
// It carries enough detail for the caller to retry with a different time.
type SlotConflictError struct {
	ReservationID string
	Start         string
	End           string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot conflicts with reservation %s (%s-%s)", e.ReservationID, e.Start, e.End)
}

// CapacityExceededError reports that the client is already at an active
// reservation cap.
type CapacityExceededError struct {
	Scope CapacityScope
	Limit int
}

func (e *CapacityExceededError) Error() string {
	if e.Scope == ScopeBusiness {
		return fmt.Sprintf("client already has %d active reservation(s) at this business", e.Limit)
	}
	return fmt.Sprintf("client already has %d active reservation(s)", e.Limit)
}

// InvalidTransitionError reports an attempted lifecycle transition out of a
// terminal state.
type InvalidTransitionError struct {
	ReservationID string
	From          model.Status
	To            model.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("reservation %s: invalid transition %s -> %s", e.ReservationID, e.From, e.To)
}

// PersistenceError wraps an underlying storage failure. It is the only
// error kind treated as an operational incident rather than a user-input
// problem, and its detail is never surfaced to clients.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
