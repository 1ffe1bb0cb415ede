package service

import (
	"context"
	"errors"

	"fieldsync/internal/domain"
	"fieldsync/internal/store"
)

// Materializer finds or creates the checklist instance for a natural key,
// snapshot-copying template items at creation time. Idempotent on its own,
// independent of event dedup: two different client events racing to create
// the same day's checklist converge on one row.
type Materializer struct {
	resolver *TemplateResolver
}

func NewMaterializer(resolver *TemplateResolver) *Materializer {
	return &Materializer{resolver: resolver}
}

type MaterializeParams struct {
	Key       store.NaturalKey
	Role      *string
	ShiftType *string
}

// GetOrCreate runs against the caller's transaction. A nil checklist with a
// nil error means no template resolves, which callers treat as success
// without materialization. The created flag reports whether this call
// actually materialized the instance.
func (m *Materializer) GetOrCreate(ctx context.Context, tx *store.Store, p MaterializeParams) (cl *domain.Checklist, created bool, err error) {
	existing, err := tx.Checklists().GetByNaturalKey(ctx, p.Key)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, false, err
	}

	tpl, err := m.resolver.Resolve(ctx, p.Key.CompanyID, p.Key.SiteID, p.Key.Division, p.Role, p.ShiftType)
	if err != nil {
		return nil, false, err
	}
	if tpl == nil {
		return nil, false, nil
	}

	fresh := &domain.Checklist{
		CompanyID:   p.Key.CompanyID,
		SiteID:      p.Key.SiteID,
		UserID:      p.Key.UserID,
		ShiftDate:   p.Key.ShiftDate,
		Division:    p.Key.Division,
		ContextType: p.Key.ContextType,
		ContextID:   p.Key.ContextID,
		TemplateID:  tpl.ID,
		Status:      domain.ChecklistOpen,
		Items:       snapshotItems(tpl.Items),
	}

	inserted, err := tx.Checklists().Create(ctx, fresh)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		// Lost the race against a concurrent materialization; the unique
		// index guarantees exactly one row exists now.
		existing, err := tx.Checklists().GetByNaturalKey(ctx, p.Key)
		return existing, false, err
	}
	return fresh, true, nil
}

func snapshotItems(items []domain.ChecklistTemplateItem) []domain.ChecklistItem {
	out := make([]domain.ChecklistItem, 0, len(items))
	for _, it := range items {
		out = append(out, domain.ChecklistItem{
			TemplateItemID: it.ID,
			Position:       it.Position,
			Title:          it.Title,
			Required:       it.Required,
			EvidenceType:   it.EvidenceType,
			KpiKey:         it.KpiKey,
			AnswerType:     it.AnswerType,
			Status:         domain.ItemPending,
		})
	}
	return out
}
