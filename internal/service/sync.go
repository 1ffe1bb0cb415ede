package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fieldsync/internal/domain"
	"fieldsync/internal/dto"
	"fieldsync/internal/observability/metrics"
	"fieldsync/internal/store"

	"github.com/google/uuid"
)

type outcome string

const (
	outcomeSynced    outcome = "synced"
	outcomeDuplicate outcome = "duplicate"
	outcomeFailed    outcome = "failed"
)

// checklistEventTypes are the event types that materialize checklist state.
// Every other type terminates after storage and classification.
var checklistEventTypes = map[string]bool{
	domain.EventTypeCleaningCheck: true,
	domain.EventTypePatrolCheck:   true,
}

type Config struct {
	ClockSkewMax           time.Duration
	SpeedLimitKmh          float64
	JumpDistanceM          float64
	JumpWindow             time.Duration
	DefaultGeofenceRadiusM float64
}

// SyncService wires the reconciliation pipeline: device trust, per-event
// dedup, anomaly classification, and template-driven checklist
// materialization. Events within one request run sequentially in submitted
// order, each in its own transaction, so the classifier's prior-position
// lookup sees in-batch predecessors already committed.
type SyncService struct {
	store        *store.Store
	trust        *TrustTracker
	classifier   *Classifier
	materializer *Materializer
	applicator   *Applicator
	now          func() time.Time
}

func NewSyncService(st *store.Store, cfg Config) *SyncService {
	if cfg.ClockSkewMax <= 0 {
		cfg.ClockSkewMax = 5 * time.Minute
	}
	return &SyncService{
		store: st,
		trust: NewTrustTracker(st, cfg.ClockSkewMax),
		classifier: NewClassifier(st, ClassifierConfig{
			SpeedLimitKmh:          cfg.SpeedLimitKmh,
			JumpDistanceM:          cfg.JumpDistanceM,
			JumpWindow:             cfg.JumpWindow,
			DefaultGeofenceRadiusM: cfg.DefaultGeofenceRadiusM,
		}),
		materializer: NewMaterializer(NewTemplateResolver(st)),
		applicator:   NewApplicator(),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// ProcessBatch applies one sync request. Per-event failures are collected
// into the response; they never abort sibling events. Duplicates count as
// synced — that is the retry contract devices depend on.
func (s *SyncService) ProcessBatch(ctx context.Context, req dto.SyncRequest) (dto.SyncResponse, error) {
	metrics.SyncBatchesTotal.WithLabelValues().Inc()

	// Deliberately the one whole-batch failure: every event's validity
	// derives from the device row, so without it there is nothing to process
	// per-event.
	device, err := s.trust.Track(ctx, req.DeviceID, req.DeviceTimeAtSend)
	if err != nil {
		return dto.SyncResponse{}, fmt.Errorf("track device: %w", err)
	}

	resp := dto.SyncResponse{Errors: []dto.SyncEventError{}}
	for _, ev := range req.Events {
		out, err := s.processEvent(ctx, device, ev)
		switch out {
		case outcomeFailed:
			metrics.SyncEventsTotal.WithLabelValues(string(outcomeFailed)).Inc()
			resp.Errors = append(resp.Errors, dto.SyncEventError{
				ClientEventID: ev.ClientEventID,
				Error:         err.Error(),
			})
			slog.Warn("sync event failed",
				"device_id", req.DeviceID,
				"client_event_id", ev.ClientEventID,
				"error", err,
			)
		default:
			metrics.SyncEventsTotal.WithLabelValues(string(out)).Inc()
			resp.SyncedCount++
		}
	}
	return resp, nil
}

// processEvent is the per-event state machine:
// RECEIVED → dedup → {ALREADY_SYNCED | CLASSIFYING} → STORED →
// {NOT_APPLICABLE_TYPE | MATERIALIZING} → {NO_TEMPLATE | APPLYING} → DONE.
// Nothing escapes the per-event boundary, panics included.
func (s *SyncService) processEvent(ctx context.Context, device *domain.Device, ev dto.SyncEvent) (out outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = outcomeFailed, fmt.Errorf("event processing panic: %v", r)
		}
	}()

	if ev.ClientEventID == "" {
		return outcomeFailed, errors.New("missing client_event_id")
	}
	if ev.EventTime.IsZero() {
		return outcomeFailed, errors.New("missing event_time")
	}

	// Dedup fast path: an applied (device, client_event_id) pair is a no-op
	// success, no reprocessing.
	if _, err := s.store.Events().Get(ctx, device.ID, ev.ClientEventID); err == nil {
		return outcomeDuplicate, nil
	} else if !errors.Is(err, store.ErrRecordNotFound) {
		return outcomeFailed, err
	}

	flags := s.classifier.Classify(ctx, device.ID, ev.Type, ev.Payload, ev.EventTime)
	countAnomalies(flags, device.TimeUntrusted)

	validity := domain.ValidityValid
	if flags.Any() || device.TimeUntrusted {
		validity = domain.ValiditySuspicious
	}

	row, err := s.buildEventRow(device, ev, flags, validity)
	if err != nil {
		return outcomeFailed, err
	}

	duplicate := false
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		created, err := tx.Events().Insert(ctx, row)
		if err != nil {
			return err
		}
		if !created {
			// Lost an insert race with a concurrent call; same contract as
			// the fast path above.
			duplicate = true
			return nil
		}
		return s.materializeAndApply(ctx, tx, row, ev)
	})
	if err != nil {
		return outcomeFailed, err
	}
	if duplicate {
		return outcomeDuplicate, nil
	}
	return outcomeSynced, nil
}

func (s *SyncService) buildEventRow(device *domain.Device, ev dto.SyncEvent, flags domain.AnomalyFlags, validity domain.ValidityStatus) (*domain.ClientEvent, error) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	row := &domain.ClientEvent{
		ID:               uuid.New(),
		DeviceID:         device.ID,
		ClientEventID:    ev.ClientEventID,
		Type:             ev.Type,
		EventTime:        ev.EventTime,
		ServerReceivedAt: s.now(),
		Payload:          payload,
		ClientVersion:    ev.ClientVersion,
		MockLocation:     flags.MockLocation,
		SpeedAnomaly:     flags.SpeedAnomaly,
		JumpAnomaly:      flags.JumpAnomaly,
		OutOfZone:        flags.OutOfZone,
		TimeSuspect:      device.TimeUntrusted,
		ValidityStatus:   validity,
	}
	// Position columns only when both coordinates are present; a partial
	// reading must not become a future movement baseline.
	if ev.Payload.GPS != nil && ev.Payload.GPS.Lat != nil && ev.Payload.GPS.Lng != nil {
		lat, lng := *ev.Payload.GPS.Lat, *ev.Payload.GPS.Lng
		row.Lat = &lat
		row.Lng = &lng
	}
	return row, nil
}

// materializeAndApply runs the type-specific tail of the state machine
// inside the event's transaction. Missing zone, user, assignment or
// template all terminate as success with mapped_entity_id left NULL.
func (s *SyncService) materializeAndApply(ctx context.Context, tx *store.Store, row *domain.ClientEvent, ev dto.SyncEvent) error {
	if !checklistEventTypes[ev.Type] {
		return nil
	}
	if ev.Payload.ZoneID == nil || ev.Payload.UserID == nil {
		return nil
	}

	zone, err := tx.Zones().Get(ctx, *ev.Payload.ZoneID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			slog.Warn("event references unknown zone",
				"zone_id", *ev.Payload.ZoneID,
				"client_event_id", ev.ClientEventID,
			)
			return nil
		}
		return err
	}

	assignment, err := tx.Assignments().Get(ctx, *ev.Payload.UserID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			// Division is unknowable without an assignment, so no template
			// can be scoped; the event stays stored and unmapped.
			return nil
		}
		return err
	}

	cl, created, err := s.materializer.GetOrCreate(ctx, tx, MaterializeParams{
		Key: store.NaturalKey{
			CompanyID:   zone.CompanyID,
			SiteID:      zone.SiteID,
			UserID:      *ev.Payload.UserID,
			ShiftDate:   shiftDate(ev.EventTime),
			Division:    assignment.Division,
			ContextType: domain.ContextTypeZone,
			ContextID:   zone.ID,
		},
		Role:      assignment.Role,
		ShiftType: assignment.ShiftType,
	})
	if err != nil {
		return err
	}
	if cl == nil {
		return nil
	}
	if created {
		metrics.ChecklistsMaterializedTotal.WithLabelValues().Inc()
	}

	completed, err := s.applicator.ApplyAnswers(ctx, tx, cl, ev.Payload.KpiAnswers, ev.Payload.GPS, ev.EventTime)
	if err != nil {
		return err
	}
	if completed {
		metrics.ChecklistsCompletedTotal.WithLabelValues().Inc()
	}

	return tx.Events().SetMappedEntity(ctx, row.ID, cl.ID)
}

func shiftDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func countAnomalies(flags domain.AnomalyFlags, timeSuspect bool) {
	if flags.MockLocation {
		metrics.EventAnomaliesTotal.WithLabelValues("mock_location").Inc()
	}
	if flags.SpeedAnomaly {
		metrics.EventAnomaliesTotal.WithLabelValues("speed").Inc()
	}
	if flags.JumpAnomaly {
		metrics.EventAnomaliesTotal.WithLabelValues("jump").Inc()
	}
	if flags.OutOfZone {
		metrics.EventAnomaliesTotal.WithLabelValues("out_of_zone").Inc()
	}
	if timeSuspect {
		metrics.EventAnomaliesTotal.WithLabelValues("time_suspect").Inc()
	}
}
