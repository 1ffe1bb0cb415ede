package service

import (
	"context"
	"time"

	"fieldsync/internal/domain"
	"fieldsync/internal/dto"
	"fieldsync/internal/geo"
	"fieldsync/internal/store"
)

// movementBaselineTypes restricts which prior events can serve as the
// speed/jump baseline. The upstream pipeline hardcodes this pair; other
// event types are never compared against.
// TODO: confirm with product whether GPS pings should join the baseline set.
var movementBaselineTypes = []string{
	domain.EventTypeCleaningCheck,
	domain.EventTypePatrolCheck,
}

type ClassifierConfig struct {
	SpeedLimitKmh          float64
	JumpDistanceM          float64
	JumpWindow             time.Duration
	DefaultGeofenceRadiusM float64
}

// Classifier flags mock-location, speed, jump and geofence anomalies.
// Classification never fails an event: malformed or missing optional fields
// degrade to "not anomalous".
type Classifier struct {
	store *store.Store
	cfg   ClassifierConfig
}

func NewClassifier(st *store.Store, cfg ClassifierConfig) *Classifier {
	if cfg.SpeedLimitKmh <= 0 {
		cfg.SpeedLimitKmh = 200
	}
	if cfg.JumpDistanceM <= 0 {
		cfg.JumpDistanceM = 2000
	}
	if cfg.JumpWindow <= 0 {
		cfg.JumpWindow = time.Minute
	}
	if cfg.DefaultGeofenceRadiusM <= 0 {
		cfg.DefaultGeofenceRadiusM = 20
	}
	return &Classifier{store: st, cfg: cfg}
}

func (c *Classifier) Classify(ctx context.Context, deviceID, eventType string, payload dto.EventPayload, eventTime time.Time) domain.AnomalyFlags {
	var flags domain.AnomalyFlags

	// mock_location is evaluated independently of everything else.
	if payload.GPS != nil && payload.GPS.MockLocation != nil {
		flags.MockLocation = *payload.GPS.MockLocation
	}

	// Without actual coordinates there is no position to compare; absent
	// lat/lng never reads as (0,0).
	if payload.GPS == nil || payload.GPS.Lat == nil || payload.GPS.Lng == nil {
		return flags
	}
	lat, lng := *payload.GPS.Lat, *payload.GPS.Lng

	// Baseline lookup failures degrade to "no baseline".
	prior, err := c.store.Events().LastPositionBefore(ctx, deviceID, eventTime, movementBaselineTypes)
	if err == nil && prior.Lat != nil && prior.Lng != nil {
		distance := geo.DistanceMeters(*prior.Lat, *prior.Lng, lat, lng)
		dt := eventTime.Sub(prior.EventTime).Seconds()

		if dt > 0 && (distance/dt)*3.6 > c.cfg.SpeedLimitKmh {
			flags.SpeedAnomaly = true
		}
		// Catches near-zero-dt teleports where speed is undefined.
		if distance > c.cfg.JumpDistanceM && dt < c.cfg.JumpWindow.Seconds() {
			flags.JumpAnomaly = true
		}
	}

	if payload.ZoneID != nil {
		flags.OutOfZone = c.outOfZone(ctx, *payload.ZoneID, lat, lng)
	}

	return flags
}

// outOfZone is fail-open: an unknown zone or one with no geofence
// configured never flags.
func (c *Classifier) outOfZone(ctx context.Context, zoneID int64, lat, lng float64) bool {
	zone, err := c.store.Zones().Get(ctx, zoneID)
	if err != nil {
		return false
	}
	if zone.GeofenceLat == nil || zone.GeofenceLng == nil {
		return false
	}
	radius := c.cfg.DefaultGeofenceRadiusM
	if zone.GeofenceRadiusM != nil && *zone.GeofenceRadiusM > 0 {
		radius = *zone.GeofenceRadiusM
	}
	return geo.DistanceMeters(*zone.GeofenceLat, *zone.GeofenceLng, lat, lng) > radius
}
