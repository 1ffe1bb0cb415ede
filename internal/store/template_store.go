package store

import (
	"context"

	"fieldsync/internal/domain"

	"gorm.io/gorm"
)

type TemplateStore struct{ db *gorm.DB }

func (s *Store) Templates() *TemplateStore { return &TemplateStore{db: s.DB} }

// FindSiteScoped returns active templates bound to the given site, narrowed
// by role and shift: an exact match or a NULL (wildcard) on each axis.
// Ordered by position so the first candidate wins.
func (t *TemplateStore) FindSiteScoped(ctx context.Context, companyID, siteID int64, division string, role, shiftType *string) ([]domain.ChecklistTemplate, error) {
	q := t.scoped(ctx, companyID, division, role, shiftType).
		Where("site_id = ?", siteID)
	return t.collect(q)
}

// FindGlobal is FindSiteScoped for templates with no site binding.
func (t *TemplateStore) FindGlobal(ctx context.Context, companyID int64, division string, role, shiftType *string) ([]domain.ChecklistTemplate, error) {
	q := t.scoped(ctx, companyID, division, role, shiftType).
		Where("site_id IS NULL")
	return t.collect(q)
}

func (t *TemplateStore) scoped(ctx context.Context, companyID int64, division string, role, shiftType *string) *gorm.DB {
	q := t.db.WithContext(ctx).
		Model(&domain.ChecklistTemplate{}).
		Where("company_id = ? AND division = ? AND active = ?", companyID, division, true)
	if role != nil {
		q = q.Where("role = ? OR role IS NULL", *role)
	} else {
		q = q.Where("role IS NULL")
	}
	if shiftType != nil {
		q = q.Where("shift_type = ? OR shift_type IS NULL", *shiftType)
	} else {
		q = q.Where("shift_type IS NULL")
	}
	return q
}

func (t *TemplateStore) collect(q *gorm.DB) ([]domain.ChecklistTemplate, error) {
	var templates []domain.ChecklistTemplate
	err := q.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).
		Order("position ASC, id ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}
