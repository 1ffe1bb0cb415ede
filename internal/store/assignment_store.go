package store

import (
	"context"

	"fieldsync/internal/domain"

	"gorm.io/gorm"
)

type AssignmentStore struct{ db *gorm.DB }

func (s *Store) Assignments() *AssignmentStore { return &AssignmentStore{db: s.DB} }

func (a *AssignmentStore) Get(ctx context.Context, userID int64) (*domain.FieldAssignment, error) {
	var fa domain.FieldAssignment
	if err := a.db.WithContext(ctx).First(&fa, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &fa, nil
}
