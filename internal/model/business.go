package model

import "time"

// Microempresa is the tenant organization owning services and employing workers.
type Microempresa struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Category  string    `gorm:"size:64" json:"category"`
	Email     string    `gorm:"size:128" json:"email"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	// Associations
	Services []Servicio `gorm:"foreignKey:MicroempresaID" json:"-"`
}

// WorkerLink ties a worker to a microempresa's roster. Only active links
// count when resolving the workers of a business.
type WorkerLink struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	MicroempresaID string    `gorm:"size:36;index;not null" json:"microempresaId"`
	WorkerID       string    `gorm:"size:36;index;not null" json:"workerId"`
	Active         bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}
