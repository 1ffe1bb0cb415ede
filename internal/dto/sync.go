package dto

import "time"

// SyncRequest is one upload of queued events from a device. The whole body
// is rejected up front if malformed; individual events fail independently.
type SyncRequest struct {
	DeviceID         string      `json:"device_id"`
	DeviceTimeAtSend time.Time   `json:"device_time_at_send"`
	Events           []SyncEvent `json:"events"`
}

type SyncEvent struct {
	ClientEventID string       `json:"client_event_id"`
	Type          string       `json:"type"`
	EventTime     time.Time    `json:"event_time"`
	Payload       EventPayload `json:"payload"`
	ClientVersion string       `json:"client_version,omitempty"`
}

// EventPayload keeps every field optional: devices on old client versions
// omit what they do not know about, and absence must stay distinguishable
// from an explicit null.
type EventPayload struct {
	ZoneID     *int64       `json:"zone_id,omitempty"`
	UserID     *int64       `json:"user_id,omitempty"`
	GPS        *GPSReading  `json:"gps,omitempty"`
	KpiAnswers []KpiAnswer  `json:"kpi_answers,omitempty"`
}

// GPSReading keeps coordinates as pointers: a gps block with lat/lng absent
// must not collapse to (0,0).
type GPSReading struct {
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	MockLocation *bool    `json:"mock_location,omitempty"`
}

// KpiAnswer targets a checklist item by kpi_key, falling back to the
// snapshot's template item id. Value is coerced by the item's answer type.
type KpiAnswer struct {
	KpiKey  *string `json:"kpi_key,omitempty"`
	ItemID  *int64  `json:"item_id,omitempty"`
	Value   any     `json:"value"`
	PhotoID *int64  `json:"photo_id,omitempty"`
}

type SyncResponse struct {
	SyncedCount int              `json:"synced_count"`
	Errors      []SyncEventError `json:"errors"`
}

type SyncEventError struct {
	ClientEventID string `json:"client_event_id"`
	Error         string `json:"error"`
}
