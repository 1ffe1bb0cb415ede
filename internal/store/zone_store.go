package store

import (
	"context"

	"fieldsync/internal/domain"

	"gorm.io/gorm"
)

type ZoneStore struct{ db *gorm.DB }

func (s *Store) Zones() *ZoneStore { return &ZoneStore{db: s.DB} }

func (z *ZoneStore) Get(ctx context.Context, id int64) (*domain.Zone, error) {
	var zone domain.Zone
	if err := z.db.WithContext(ctx).First(&zone, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &zone, nil
}

func (z *ZoneStore) List(ctx context.Context, siteID *int64) ([]domain.Zone, error) {
	q := z.db.WithContext(ctx).Model(&domain.Zone{})
	if siteID != nil {
		q = q.Where("site_id = ?", *siteID)
	}
	var zones []domain.Zone
	if err := q.Order("id ASC").Find(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}
