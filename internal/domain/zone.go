package domain

import "time"

// Zone is the read model for scannable locations. Geofence fields are
// optional; a zone without one never flags out_of_zone (fail-open).
type Zone struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	SiteID    int64  `gorm:"not null;index"`
	CompanyID int64  `gorm:"not null"`
	Name      string `gorm:"type:text;not null"`
	Code      string `gorm:"type:text;not null"`
	QRCode    string `gorm:"type:text;not null;uniqueIndex"`

	GeofenceLat     *float64
	GeofenceLng     *float64
	GeofenceRadiusM *float64

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}

// FieldAssignment gives the pipeline the template-resolution axes the sync
// payload does not carry. Seeded by the HR side of the platform; without a
// row the division is unknowable and no checklist materializes.
type FieldAssignment struct {
	UserID    int64   `gorm:"primaryKey"`
	CompanyID int64   `gorm:"not null"`
	Division  string  `gorm:"type:text;not null"`
	Role      *string `gorm:"type:text"`
	ShiftType *string `gorm:"type:text"`

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"`
}
