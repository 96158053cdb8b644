package model

import "time"

// Trabajador is a bookable service provider. Its weekly availability lives
// in DaySchedule rows keyed by worker and weekday.
type Trabajador struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	LastName  string    `gorm:"size:64" json:"lastName"`
	Email     string    `gorm:"size:128;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Cliente is the customer making reservations.
type Cliente struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	LastName  string    `gorm:"size:64" json:"lastName"`
	Email     string    `gorm:"size:128;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
