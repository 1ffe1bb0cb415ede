package service

import (
	"context"

	"fieldsync/internal/domain"
	"fieldsync/internal/dto"
	"fieldsync/internal/store"
)

// ZoneReader serves the zone read model devices cache before going offline.
type ZoneReader struct {
	store *store.Store
}

func NewZoneReader(st *store.Store) *ZoneReader {
	return &ZoneReader{store: st}
}

func (z *ZoneReader) List(ctx context.Context, siteID *int64) ([]dto.ZoneResponse, error) {
	zones, err := z.store.Zones().List(ctx, siteID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ZoneResponse, 0, len(zones))
	for _, zn := range zones {
		out = append(out, toZoneResponse(zn))
	}
	return out, nil
}

func toZoneResponse(z domain.Zone) dto.ZoneResponse {
	resp := dto.ZoneResponse{
		ID:     z.ID,
		SiteID: z.SiteID,
		Name:   z.Name,
		Code:   z.Code,
		QRCode: z.QRCode,
	}
	if z.GeofenceLat != nil && z.GeofenceLng != nil {
		g := dto.GeofenceDTO{
			Latitude:  *z.GeofenceLat,
			Longitude: *z.GeofenceLng,
		}
		if z.GeofenceRadiusM != nil {
			g.RadiusMeters = *z.GeofenceRadiusM
		}
		resp.Geofence = &g
	}
	return resp
}
