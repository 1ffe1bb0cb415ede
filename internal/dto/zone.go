package dto

type ZoneResponse struct {
	ID       int64        `json:"id"`
	SiteID   int64        `json:"site_id"`
	Name     string       `json:"name"`
	Code     string       `json:"code"`
	QRCode   string       `json:"qr_code"`
	Geofence *GeofenceDTO `json:"geofence,omitempty"`
}

type GeofenceDTO struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
}
