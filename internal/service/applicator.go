package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fieldsync/internal/domain"
	"fieldsync/internal/dto"
	"fieldsync/internal/store"
)

// Applicator maps KPI answers from an event onto checklist items and
// recomputes the parent checklist's aggregate status.
type Applicator struct{}

func NewApplicator() *Applicator { return &Applicator{} }

// ApplyAnswers matches each answer by kpi_key first, then by the snapshot's
// template item id; unmatched answers are dropped silently so a template
// change between materialization and submission never breaks ingestion.
// The recomputation at the end runs unconditionally: required items may have
// been completed by a concurrent event.
func (a *Applicator) ApplyAnswers(ctx context.Context, tx *store.Store, cl *domain.Checklist, answers []dto.KpiAnswer, gps *dto.GPSReading, eventTime time.Time) (completed bool, err error) {
	for _, ans := range answers {
		item := matchItem(cl.Items, ans)
		if item == nil {
			continue
		}

		coerce(item, ans.Value)
		item.Status = domain.ItemCompleted
		t := eventTime
		item.CompletedAt = &t

		if gps != nil {
			if gps.Lat != nil && gps.Lng != nil {
				lat, lng := *gps.Lat, *gps.Lng
				item.Lat = &lat
				item.Lng = &lng
			}
			if gps.MockLocation != nil {
				item.MockLocation = *gps.MockLocation
			}
		}
		if ans.PhotoID != nil {
			item.EvidencePhotoID = ans.PhotoID
		}

		if err := tx.Checklists().UpdateItem(ctx, item); err != nil {
			return false, err
		}
	}

	return a.recompute(ctx, tx, cl, eventTime)
}

func matchItem(items []domain.ChecklistItem, ans dto.KpiAnswer) *domain.ChecklistItem {
	if ans.KpiKey != nil && *ans.KpiKey != "" {
		for i := range items {
			if items[i].KpiKey != nil && *items[i].KpiKey == *ans.KpiKey {
				return &items[i]
			}
		}
	}
	if ans.ItemID != nil {
		for i := range items {
			if items[i].TemplateItemID == *ans.ItemID {
				return &items[i]
			}
		}
	}
	return nil
}

// coerce writes the typed answer column for the item's answer type.
// Coercion never fails: an unparsable SCORE stores NULL.
func coerce(item *domain.ChecklistItem, value any) {
	switch item.AnswerType {
	case domain.AnswerBoolean:
		b := truthy(value)
		item.AnswerBool = &b
	case domain.AnswerScore:
		item.AnswerScore = parseScore(value)
	default: // TEXT, CHOICE
		s := stringify(value)
		item.AnswerText = &s
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch v {
		case "true", "YES", "yes", "Ya", "ya":
			return true
		}
	case float64:
		return v == 1
	case int:
		return v == 1
	}
	return false
}

func parseScore(value any) *int {
	switch v := value.(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		n := v
		return &n
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return &n
		}
	}
	return nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// recompute derives the checklist status from its items: COMPLETED iff
// every required item is COMPLETED or NOT_APPLICABLE, else INCOMPLETE.
// completed_at moves only with the transition: set when the checklist
// becomes COMPLETED, kept while it stays COMPLETED, cleared on reversion.
func (a *Applicator) recompute(ctx context.Context, tx *store.Store, cl *domain.Checklist, eventTime time.Time) (bool, error) {
	items, err := tx.Checklists().ItemsByChecklist(ctx, cl.ID)
	if err != nil {
		return false, err
	}

	done := true
	for _, it := range items {
		if !it.Required {
			continue
		}
		if it.Status != domain.ItemCompleted && it.Status != domain.ItemNotApplicable {
			done = false
			break
		}
	}

	status := domain.ChecklistIncomplete
	var completedAt *time.Time
	if done {
		status = domain.ChecklistCompleted
		if cl.Status == domain.ChecklistCompleted && cl.CompletedAt != nil {
			completedAt = cl.CompletedAt
		} else {
			t := eventTime
			completedAt = &t
		}
	}

	if err := tx.Checklists().UpdateStatus(ctx, cl.ID, status, completedAt); err != nil {
		return false, err
	}

	transitioned := done && cl.Status != domain.ChecklistCompleted
	cl.Status = status
	cl.CompletedAt = completedAt
	cl.Items = items
	return transitioned, nil
}
