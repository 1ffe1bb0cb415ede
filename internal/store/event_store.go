package store

import (
	"context"
	"time"

	"fieldsync/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventStore struct{ db *gorm.DB }

func (s *Store) Events() *EventStore { return &EventStore{db: s.DB} }

// Insert appends to the dedup ledger. A conflict on
// (device_id, client_event_id) is swallowed and reported as created=false;
// the caller must then skip all type-specific processing.
func (e *EventStore) Insert(ctx context.Context, ev *domain.ClientEvent) (created bool, err error) {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	res := e.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}, {Name: "client_event_id"}},
			DoNothing: true,
		}).
		Create(ev)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (e *EventStore) Get(ctx context.Context, deviceID, clientEventID string) (*domain.ClientEvent, error) {
	var ev domain.ClientEvent
	err := e.db.WithContext(ctx).
		First(&ev, "device_id = ? AND client_event_id = ?", deviceID, clientEventID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &ev, nil
}

// LastPositionBefore returns the device's most recent position-bearing event
// with event_time strictly before the given instant, restricted to the
// given event types. Returns ErrRecordNotFound when no baseline exists.
func (e *EventStore) LastPositionBefore(ctx context.Context, deviceID string, before time.Time, types []string) (*domain.ClientEvent, error) {
	var ev domain.ClientEvent
	err := e.db.WithContext(ctx).
		Where("device_id = ? AND event_time < ? AND lat IS NOT NULL AND lng IS NOT NULL", deviceID, before).
		Where("type IN ?", types).
		Order("event_time DESC").
		First(&ev).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &ev, nil
}

func (e *EventStore) SetMappedEntity(ctx context.Context, id uuid.UUID, checklistID int64) error {
	return e.db.WithContext(ctx).
		Model(&domain.ClientEvent{}).
		Where("id = ?", id).
		Update("mapped_entity_id", checklistID).Error
}
