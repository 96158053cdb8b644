package model

import "time"

// PushSubscription holds a browser push subscription for one user (client
// or worker). Cancellation notices for that user fan out to all of their
// registered endpoints.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	UserID    string    `gorm:"size:36;index;not null"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}
