package service

import (
	"context"
	"math"
	"time"

	"fieldsync/internal/domain"
	"fieldsync/internal/store"
)

// TrustTracker maintains the per-device clock-offset row. A device whose
// claimed send time drifts past maxSkew is marked untrusted, which forces
// every event in the same call to at least SUSPICIOUS: an inaccurate clock
// invalidates event_time for checklist timestamps and anomaly windows.
type TrustTracker struct {
	store   *store.Store
	maxSkew time.Duration
	now     func() time.Time
}

func NewTrustTracker(st *store.Store, maxSkew time.Duration) *TrustTracker {
	return &TrustTracker{
		store:   st,
		maxSkew: maxSkew,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Track upserts the device row unconditionally: offset, trust flag and
// last_sync_at are overwritten on every call, no history retained.
func (t *TrustTracker) Track(ctx context.Context, deviceID string, deviceTimeAtSend time.Time) (*domain.Device, error) {
	now := t.now()
	offset := deviceTimeAtSend.Sub(now).Seconds()

	device := &domain.Device{
		ID:                deviceID,
		TimeOffsetSeconds: offset,
		TimeUntrusted:     math.Abs(offset) > t.maxSkew.Seconds(),
		LastSyncAt:        now,
		UpdatedAt:         now,
	}
	if err := t.store.Devices().Upsert(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}
