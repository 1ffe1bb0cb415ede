package service

import (
	"context"

	"fieldsync/internal/domain"
	"fieldsync/internal/store"
)

// TemplateResolver picks the best checklist template for a scope:
// site-specific templates win over global ones, and on each of the role and
// shift axes a template matches with an exact value or a NULL wildcard.
// A non-null mismatch never matches.
type TemplateResolver struct {
	store *store.Store
}

func NewTemplateResolver(st *store.Store) *TemplateResolver {
	return &TemplateResolver{store: st}
}

// Resolve returns nil when no template applies; callers treat that as a
// non-error.
func (r *TemplateResolver) Resolve(ctx context.Context, companyID, siteID int64, division string, role, shiftType *string) (*domain.ChecklistTemplate, error) {
	candidates, err := r.store.Templates().FindSiteScoped(ctx, companyID, siteID, division, role, shiftType)
	if err != nil {
		return nil, err
	}
	if len(candidates) > 0 {
		return &candidates[0], nil
	}

	candidates, err = r.store.Templates().FindGlobal(ctx, companyID, division, role, shiftType)
	if err != nil {
		return nil, err
	}
	if len(candidates) > 0 {
		return &candidates[0], nil
	}
	return nil, nil
}
