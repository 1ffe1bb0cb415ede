package service_test

import (
	"context"
	"testing"
	"time"

	"fieldsync/internal/domain"
	"fieldsync/internal/dto"
	"fieldsync/internal/service"

	"github.com/google/uuid"
)

func TestProcessBatchEndToEnd(t *testing.T) {
	st := setupStore(t)
	svc := service.NewSyncService(st, service.Config{})

	zone := seedZone(t, st, &domain.Zone{
		SiteID:      10,
		CompanyID:   1,
		Name:        "Lobby Toilet",
		Code:        "Z-07",
		QRCode:      "qr-lobby-toilet",
		GeofenceLat: fptr(-6.2),
		GeofenceLng: fptr(106.8),
	})
	seedAssignment(t, st, &domain.FieldAssignment{
		UserID:    7,
		CompanyID: 1,
		Division:  "CLEANING",
		Role:      sptr("CLEANER"),
		ShiftType: sptr("DAY"),
	})
	seedTemplate(t, st, &domain.ChecklistTemplate{
		CompanyID: 1,
		Division:  "CLEANING",
		Active:    true,
		Items: []domain.ChecklistTemplateItem{
			{Position: 1, Title: "Clean toilet", Required: true, KpiKey: sptr("TOILET_CLEAN"), AnswerType: domain.AnswerBoolean},
		},
	})

	eventID := uuid.NewString()
	req := dto.SyncRequest{
		DeviceID:         "dev-e2e",
		DeviceTimeAtSend: time.Now().UTC(),
		Events: []dto.SyncEvent{{
			ClientEventID: eventID,
			Type:          domain.EventTypeCleaningCheck,
			EventTime:     time.Date(2026, 8, 27, 9, 15, 0, 0, time.UTC),
			Payload: dto.EventPayload{
				ZoneID: &zone.ID,
				UserID: iptr(7),
				GPS:    &dto.GPSReading{Lat: fptr(-6.2 + 5*degPerMeter), Lng: fptr(106.8)},
				KpiAnswers: []dto.KpiAnswer{
					{KpiKey: sptr("TOILET_CLEAN"), Value: true},
				},
			},
		}},
	}

	resp, err := svc.ProcessBatch(context.Background(), req)
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if resp.SyncedCount != 1 || len(resp.Errors) != 0 {
		t.Fatalf("expected 1 synced 0 errors, got %d/%d", resp.SyncedCount, len(resp.Errors))
	}

	ev, err := st.Events().Get(context.Background(), "dev-e2e", eventID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if ev.ValidityStatus != domain.ValidityValid {
		t.Fatalf("expected VALID event, got %s", ev.ValidityStatus)
	}
	if ev.MappedEntityID == nil {
		t.Fatalf("expected event mapped to a checklist")
	}

	var cl domain.Checklist
	if err := st.DB.Preload("Items").First(&cl, "id = ?", *ev.MappedEntityID).Error; err != nil {
		t.Fatalf("load checklist: %v", err)
	}
	if cl.Status != domain.ChecklistCompleted || cl.CompletedAt == nil {
		t.Fatalf("expected completed checklist, got %s", cl.Status)
	}
	if cl.ShiftDate.Day() != 27 {
		t.Fatalf("expected shift date from event_time, got %v", cl.ShiftDate)
	}
	if len(cl.Items) != 1 || cl.Items[0].AnswerBool == nil || !*cl.Items[0].AnswerBool {
		t.Fatalf("expected answered item, got %+v", cl.Items)
	}

	// Resubmitting the same batch is a no-op success.
	resp, err = svc.ProcessBatch(context.Background(), req)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resp.SyncedCount != 1 || len(resp.Errors) != 0 {
		t.Fatalf("expected duplicate to count as synced, got %d/%d", resp.SyncedCount, len(resp.Errors))
	}

	var eventCount, checklistCount int64
	if err := st.DB.Model(&domain.ClientEvent{}).Count(&eventCount).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if err := st.DB.Model(&domain.Checklist{}).Count(&checklistCount).Error; err != nil {
		t.Fatalf("count checklists: %v", err)
	}
	if eventCount != 1 || checklistCount != 1 {
		t.Fatalf("expected no new rows on resubmit, got %d events %d checklists", eventCount, checklistCount)
	}
}

func TestProcessBatchInBatchBaseline(t *testing.T) {
	st := setupStore(t)
	svc := service.NewSyncService(st, service.Config{})
	base := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	// The second event teleports 2500 m within 30 s of the first. The first
	// must already be visible as its baseline even though both arrive in one
	// request.
	req := dto.SyncRequest{
		DeviceID:         "dev-batch",
		DeviceTimeAtSend: time.Now().UTC(),
		Events: []dto.SyncEvent{
			{
				ClientEventID: "ev-1",
				Type:          domain.EventTypePatrolCheck,
				EventTime:     base,
				Payload:       dto.EventPayload{GPS: &dto.GPSReading{Lat: fptr(0), Lng: fptr(0)}},
			},
			{
				ClientEventID: "ev-2",
				Type:          domain.EventTypePatrolCheck,
				EventTime:     base.Add(30 * time.Second),
				Payload:       dto.EventPayload{GPS: &dto.GPSReading{Lat: fptr(2500 * degPerMeter), Lng: fptr(0)}},
			},
		},
	}

	resp, err := svc.ProcessBatch(context.Background(), req)
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if resp.SyncedCount != 2 {
		t.Fatalf("expected both events synced, got %d", resp.SyncedCount)
	}

	first, err := st.Events().Get(context.Background(), "dev-batch", "ev-1")
	if err != nil {
		t.Fatalf("get first: %v", err)
	}
	if first.ValidityStatus != domain.ValidityValid {
		t.Fatalf("expected first event VALID, got %s", first.ValidityStatus)
	}

	second, err := st.Events().Get(context.Background(), "dev-batch", "ev-2")
	if err != nil {
		t.Fatalf("get second: %v", err)
	}
	if !second.JumpAnomaly {
		t.Fatalf("expected jump anomaly against the in-batch predecessor")
	}
	if second.ValidityStatus != domain.ValiditySuspicious {
		t.Fatalf("expected second event SUSPICIOUS, got %s", second.ValidityStatus)
	}
}

func TestProcessBatchPartialGPSNotPersistedAsPosition(t *testing.T) {
	st := setupStore(t)
	svc := service.NewSyncService(st, service.Config{})
	base := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	mock := false
	req := dto.SyncRequest{
		DeviceID:         "dev-partial",
		DeviceTimeAtSend: time.Now().UTC(),
		Events: []dto.SyncEvent{
			{
				ClientEventID: "ev-located",
				Type:          domain.EventTypePatrolCheck,
				EventTime:     base,
				Payload:       dto.EventPayload{GPS: &dto.GPSReading{Lat: fptr(2500 * degPerMeter), Lng: fptr(0)}},
			},
			{
				ClientEventID: "ev-coordless",
				Type:          domain.EventTypePatrolCheck,
				EventTime:     base.Add(30 * time.Second),
				Payload:       dto.EventPayload{GPS: &dto.GPSReading{MockLocation: &mock}},
			},
			{
				ClientEventID: "ev-after",
				Type:          domain.EventTypePatrolCheck,
				EventTime:     base.Add(45 * time.Second),
				Payload:       dto.EventPayload{GPS: &dto.GPSReading{Lat: fptr(2500 * degPerMeter), Lng: fptr(0)}},
			},
		},
	}

	resp, err := svc.ProcessBatch(context.Background(), req)
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if resp.SyncedCount != 3 || len(resp.Errors) != 0 {
		t.Fatalf("expected all three synced, got %d/%d", resp.SyncedCount, len(resp.Errors))
	}

	coordless, err := st.Events().Get(context.Background(), "dev-partial", "ev-coordless")
	if err != nil {
		t.Fatalf("get coordless event: %v", err)
	}
	if coordless.Lat != nil || coordless.Lng != nil {
		t.Fatalf("expected no position columns for absent lat/lng, got %v/%v", coordless.Lat, coordless.Lng)
	}
	if coordless.ValidityStatus != domain.ValidityValid {
		t.Fatalf("expected coordless event VALID, got %s", coordless.ValidityStatus)
	}

	// The coordless event also never serves as a baseline: the third event is
	// compared against the first, at the same position, and stays clean.
	after, err := st.Events().Get(context.Background(), "dev-partial", "ev-after")
	if err != nil {
		t.Fatalf("get third event: %v", err)
	}
	if after.SpeedAnomaly || after.JumpAnomaly {
		t.Fatalf("expected third event clean against the located baseline, got %+v", after)
	}
}

func TestProcessBatchPerEventIsolation(t *testing.T) {
	st := setupStore(t)
	svc := service.NewSyncService(st, service.Config{})

	req := dto.SyncRequest{
		DeviceID:         "dev-isolation",
		DeviceTimeAtSend: time.Now().UTC(),
		Events: []dto.SyncEvent{
			{
				ClientEventID: "",
				Type:          domain.EventTypePatrolCheck,
				EventTime:     time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC),
			},
			{
				ClientEventID: "ev-good",
				Type:          domain.EventTypePatrolCheck,
				EventTime:     time.Date(2026, 8, 27, 9, 1, 0, 0, time.UTC),
			},
			{
				ClientEventID: "ev-no-time",
				Type:          domain.EventTypePatrolCheck,
			},
		},
	}

	resp, err := svc.ProcessBatch(context.Background(), req)
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if resp.SyncedCount != 1 {
		t.Fatalf("expected the good event synced, got %d", resp.SyncedCount)
	}
	if len(resp.Errors) != 2 {
		t.Fatalf("expected 2 per-event errors, got %d", len(resp.Errors))
	}

	if _, err := st.Events().Get(context.Background(), "dev-isolation", "ev-good"); err != nil {
		t.Fatalf("expected good event stored: %v", err)
	}
}

func TestProcessBatchUntrustedClock(t *testing.T) {
	st := setupStore(t)
	svc := service.NewSyncService(st, service.Config{})

	req := dto.SyncRequest{
		DeviceID:         "dev-skewed",
		DeviceTimeAtSend: time.Now().UTC().Add(time.Hour),
		Events: []dto.SyncEvent{{
			ClientEventID: "ev-skew",
			Type:          domain.EventTypePatrolCheck,
			EventTime:     time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC),
		}},
	}

	resp, err := svc.ProcessBatch(context.Background(), req)
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if resp.SyncedCount != 1 {
		t.Fatalf("expected event synced, got %d", resp.SyncedCount)
	}

	ev, err := st.Events().Get(context.Background(), "dev-skewed", "ev-skew")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if !ev.TimeSuspect {
		t.Fatalf("expected time_suspect on an untrusted clock")
	}
	if ev.ValidityStatus != domain.ValiditySuspicious {
		t.Fatalf("expected SUSPICIOUS despite no GPS anomalies, got %s", ev.ValidityStatus)
	}
}

func TestProcessBatchUnknownZone(t *testing.T) {
	st := setupStore(t)
	svc := service.NewSyncService(st, service.Config{})

	req := dto.SyncRequest{
		DeviceID:         "dev-nozone",
		DeviceTimeAtSend: time.Now().UTC(),
		Events: []dto.SyncEvent{{
			ClientEventID: "ev-nozone",
			Type:          domain.EventTypeCleaningCheck,
			EventTime:     time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC),
			Payload: dto.EventPayload{
				ZoneID: iptr(404),
				UserID: iptr(7),
			},
		}},
	}

	resp, err := svc.ProcessBatch(context.Background(), req)
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if resp.SyncedCount != 1 || len(resp.Errors) != 0 {
		t.Fatalf("expected unknown zone to sync without mapping, got %d/%d", resp.SyncedCount, len(resp.Errors))
	}

	ev, err := st.Events().Get(context.Background(), "dev-nozone", "ev-nozone")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if ev.MappedEntityID != nil {
		t.Fatalf("expected no checklist mapping for an unknown zone")
	}
}

func TestProcessBatchNoAssignment(t *testing.T) {
	st := setupStore(t)
	svc := service.NewSyncService(st, service.Config{})

	zone := seedZone(t, st, &domain.Zone{
		SiteID:    10,
		CompanyID: 1,
		Name:      "Warehouse",
		Code:      "Z-09",
		QRCode:    "qr-warehouse",
	})

	req := dto.SyncRequest{
		DeviceID:         "dev-noassign",
		DeviceTimeAtSend: time.Now().UTC(),
		Events: []dto.SyncEvent{{
			ClientEventID: "ev-noassign",
			Type:          domain.EventTypeCleaningCheck,
			EventTime:     time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC),
			Payload: dto.EventPayload{
				ZoneID: &zone.ID,
				UserID: iptr(4242),
			},
		}},
	}

	resp, err := svc.ProcessBatch(context.Background(), req)
	if err != nil {
		t.Fatalf("process batch: %v", err)
	}
	if resp.SyncedCount != 1 || len(resp.Errors) != 0 {
		t.Fatalf("expected event without assignment to sync, got %d/%d", resp.SyncedCount, len(resp.Errors))
	}

	ev, err := st.Events().Get(context.Background(), "dev-noassign", "ev-noassign")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if ev.MappedEntityID != nil {
		t.Fatalf("expected no mapping without a field assignment")
	}

	var count int64
	if err := st.DB.Model(&domain.Checklist{}).Count(&count).Error; err != nil {
		t.Fatalf("count checklists: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no checklist materialized, got %d", count)
	}
}
