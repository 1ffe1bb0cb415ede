package domain

import (
	"time"

	"github.com/google/uuid"
)

type ValidityStatus string

const (
	ValidityValid      ValidityStatus = "VALID"
	ValiditySuspicious ValidityStatus = "SUSPICIOUS"
)

// Event types that materialize checklists. These are also the only types
// admitted as a movement baseline for speed/jump classification.
const (
	EventTypeCleaningCheck = "CLEANING_CHECK"
	EventTypePatrolCheck   = "PATROL_CHECK"
)

// ClientEvent is one applied row of the dedup ledger. The composite unique
// index on (device_id, client_event_id) is the exactly-once contract; an
// insert conflicting on it is a no-op success.
type ClientEvent struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	DeviceID         string    `gorm:"type:text;not null;uniqueIndex:ux_client_event_device_event"`
	ClientEventID    string    `gorm:"type:text;not null;uniqueIndex:ux_client_event_device_event"`
	Type             string    `gorm:"type:text;not null"`
	EventTime        time.Time `gorm:"not null;index:idx_client_event_device_time"`
	ServerReceivedAt time.Time `gorm:"not null"`
	Payload          []byte    `gorm:"type:jsonb"`
	ClientVersion    string    `gorm:"type:text"`

	// Position extracted from the payload, kept as columns so the
	// prior-position lookup stays a plain indexed query.
	Lat *float64
	Lng *float64

	MockLocation bool `gorm:"not null;default:false"`
	SpeedAnomaly bool `gorm:"not null;default:false"`
	JumpAnomaly  bool `gorm:"not null;default:false"`
	OutOfZone    bool `gorm:"not null;default:false"`
	TimeSuspect  bool `gorm:"not null;default:false"`

	ValidityStatus ValidityStatus `gorm:"type:text;not null;default:'VALID'"`
	MappedEntityID *int64

	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
}

// AnomalyFlags is the classifier verdict for one event.
type AnomalyFlags struct {
	MockLocation bool
	SpeedAnomaly bool
	JumpAnomaly  bool
	OutOfZone    bool
}

func (f AnomalyFlags) Any() bool {
	return f.MockLocation || f.SpeedAnomaly || f.JumpAnomaly || f.OutOfZone
}
