package store

import (
	"context"

	"fieldsync/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeviceStore struct{ db *gorm.DB }

func (s *Store) Devices() *DeviceStore { return &DeviceStore{db: s.DB} }

// Upsert overwrites the device row unconditionally (last-writer-wins).
// The conflict clause keeps the overwrite atomic under concurrent syncs
// from the same device.
func (d *DeviceStore) Upsert(ctx context.Context, device *domain.Device) error {
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"time_offset_seconds": device.TimeOffsetSeconds,
				"time_untrusted":      device.TimeUntrusted,
				"last_sync_at":        device.LastSyncAt,
				"updated_at":          device.UpdatedAt,
			}),
		}).
		Create(device).Error
}

func (d *DeviceStore) Get(ctx context.Context, id string) (*domain.Device, error) {
	var device domain.Device
	if err := d.db.WithContext(ctx).First(&device, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &device, nil
}
