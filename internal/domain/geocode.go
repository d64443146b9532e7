package domain

import (
	"context"
	"log/slog"
)

// LocationMarker places one location value on the map when the dataset has
// no coordinate columns.
type LocationMarker struct {
	Location         string  `json:"location"`
	Count            int     `json:"count"`
	Geo              Geo     `json:"geo"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
}

// GeocodeLocations forward-geocodes the most frequent location values of v,
// up to limit of them. It returns nil when geocoder is nil, when the schema
// already has coordinates, or when no location column is resolved. Values
// that fail to geocode, or geocode to nothing, are skipped.
func GeocodeLocations(ctx context.Context, v View, s Schema, geocoder Geocoder, region string, limit int, logger *slog.Logger) []LocationMarker {
	if geocoder == nil || s.Resolved(RoleLatitude, RoleLongitude) {
		return nil
	}
	col, ok := s.Column(RoleLocation)
	if !ok {
		return nil
	}

	counts := valueCounts(v, col)
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}

	markers := make([]LocationMarker, 0, len(counts))
	for _, c := range counts {
		if ctx.Err() != nil {
			break
		}
		result, err := geocoder.ForwardGeocode(ctx, c.Value, region)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"location", c.Value,
				"region", region,
				"error", err,
			)
			continue
		}
		if result.Lat == 0 && result.Lon == 0 {
			continue
		}
		markers = append(markers, LocationMarker{
			Location:         c.Value,
			Count:            c.Count,
			Geo:              Geo{Lat: result.Lat, Lon: result.Lon},
			FormattedAddress: result.FormattedAddress,
			PlaceName:        result.PlaceName,
			Confidence:       result.Confidence,
		})
	}
	return markers
}
