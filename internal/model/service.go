package model

import "time"

// Servicio is a bookable offering with a fixed duration and price, owned by
// one microempresa. The booking engine only consumes DurationMinutes and
// MicroempresaID; price and abono belong to the payment collaborator.
type Servicio struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	MicroempresaID  string    `gorm:"size:36;index;not null" json:"microempresaId"`
	Name            string    `gorm:"size:128;not null" json:"name"`
	DurationMinutes int       `gorm:"not null" json:"durationMinutes"`
	Price           int64     `gorm:"not null" json:"price"`
	AbonoPercentage int       `gorm:"not null;default:0" json:"abonoPercentage"`
	PaymentURL      string    `gorm:"size:512" json:"paymentUrl,omitempty"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}
