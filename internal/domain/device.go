package domain

import "time"

// Device tracks the clock trust of a single mobile device. The row is
// overwritten on every sync (last-writer-wins); no history is kept.
type Device struct {
	ID                string    `gorm:"type:text;primaryKey"`
	TimeOffsetSeconds float64   `gorm:"not null"`
	TimeUntrusted     bool      `gorm:"not null;default:false"`
	LastSyncAt        time.Time `gorm:"not null"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime"`
}
