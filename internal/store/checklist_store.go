package store

import (
	"context"
	"time"

	"fieldsync/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChecklistStore struct{ db *gorm.DB }

func (s *Store) Checklists() *ChecklistStore { return &ChecklistStore{db: s.DB} }

// NaturalKey identifies a checklist instance from the pipeline's point of
// view; surrogate ids are never used for lookup.
type NaturalKey struct {
	CompanyID   int64
	SiteID      int64
	UserID      int64
	ShiftDate   time.Time
	Division    string
	ContextType string
	ContextID   int64
}

func (c *ChecklistStore) GetByNaturalKey(ctx context.Context, key NaturalKey) (*domain.Checklist, error) {
	var cl domain.Checklist
	err := c.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&cl,
			"company_id = ? AND site_id = ? AND user_id = ? AND shift_date = ? AND division = ? AND context_type = ? AND context_id = ?",
			key.CompanyID, key.SiteID, key.UserID, key.ShiftDate, key.Division, key.ContextType, key.ContextID,
		).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &cl, nil
}

// Create inserts a checklist and its item snapshots. A conflict on the
// natural key means another materialization won the race; the caller should
// re-fetch instead of treating it as a failure. Items are inserted only
// after the parent insert is known to have won, so a lost race leaves no
// orphaned snapshots.
func (c *ChecklistStore) Create(ctx context.Context, cl *domain.Checklist) (created bool, err error) {
	res := c.db.WithContext(ctx).
		Omit("Items").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "company_id"}, {Name: "site_id"}, {Name: "user_id"},
				{Name: "shift_date"}, {Name: "division"},
				{Name: "context_type"}, {Name: "context_id"},
			},
			DoNothing: true,
		}).
		Create(cl)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	for i := range cl.Items {
		cl.Items[i].ChecklistID = cl.ID
	}
	if len(cl.Items) > 0 {
		if err := c.db.WithContext(ctx).Create(&cl.Items).Error; err != nil {
			return false, err
		}
	}
	return true, nil
}

func (c *ChecklistStore) UpdateItem(ctx context.Context, item *domain.ChecklistItem) error {
	return c.db.WithContext(ctx).Save(item).Error
}

func (c *ChecklistStore) ItemsByChecklist(ctx context.Context, checklistID int64) ([]domain.ChecklistItem, error) {
	var items []domain.ChecklistItem
	err := c.db.WithContext(ctx).
		Where("checklist_id = ?", checklistID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *ChecklistStore) UpdateStatus(ctx context.Context, checklistID int64, status domain.ChecklistStatus, completedAt *time.Time) error {
	return c.db.WithContext(ctx).
		Model(&domain.Checklist{}).
		Where("id = ?", checklistID).
		Updates(map[string]any{
			"status":       status,
			"completed_at": completedAt,
		}).Error
}
