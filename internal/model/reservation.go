package model

import "time"

// Status is the lifecycle state of a reservation. Activa is the only
// non-terminal state; the others admit no further transitions.
type Status string

const (
	StatusActiva     Status = "Activa"
	StatusCancelada  Status = "Cancelada"
	StatusFinalizada Status = "Finalizada"
	StatusRealizada  Status = "Realizada"
)

// Terminal reports whether no transition out of s is allowed.
func (s Status) Terminal() bool {
	return s == StatusCancelada || s == StatusFinalizada || s == StatusRealizada
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusActiva, StatusCancelada, StatusFinalizada, StatusRealizada:
		return true
	}
	return false
}

// Reservation is the central booking record. Date carries the calendar day
// (midnight local time) and StartTime the absolute start timestamp; the end
// time is always derived from StartTime plus DurationMinutes, never stored.
// Version supports optimistic concurrency on status transitions.
type Reservation struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	ClientID        string    `gorm:"size:36;index;not null" json:"clientId"`
	WorkerID        string    `gorm:"size:36;not null;index:idx_reservations_worker_date" json:"workerId"`
	ServiceID       string    `gorm:"size:36;not null" json:"serviceId"`
	Date            time.Time `gorm:"not null;index:idx_reservations_worker_date" json:"date"`
	StartTime       time.Time `gorm:"not null" json:"startTime"`
	DurationMinutes int       `gorm:"not null" json:"durationMinutes"`
	Status          Status    `gorm:"size:16;not null;index" json:"status"`
	Version         int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"-"`

	// Associations
	Client  Cliente    `gorm:"foreignKey:ClientID" json:"-"`
	Worker  Trabajador `gorm:"foreignKey:WorkerID" json:"-"`
	Service Servicio   `gorm:"foreignKey:ServiceID" json:"-"`
}

// EndTime returns the derived end timestamp of the reservation.
func (r *Reservation) EndTime() time.Time {
	return r.StartTime.Add(time.Duration(r.DurationMinutes) * time.Minute)
}

// Expired reports whether the reservation's end time has passed at now.
func (r *Reservation) Expired(now time.Time) bool {
	return !now.Before(r.EndTime())
}
