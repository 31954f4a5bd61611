package domain

import (
	"context"
	"fmt"
	"log/slog"
)

// Station is a weather observation platform near a distress position.
// Type is "land" for coastal stations and "buoy" for offshore moorings.
type Station struct {
	ID            string  `json:"id"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	DistanceKm    float64 `json:"distance_km"`
	DistanceMiles float64 `json:"distance_miles"`
	Type          string  `json:"type"`
}

// Observation is a flat set of weather readings keyed by measurement name.
// Absent upstream values carry the "N/A" sentinel rather than being omitted,
// so downstream display code never needs existence checks.
type Observation map[string]string

// WeatherProvider supplies nearby stations and their latest observations.
// Implementations degrade gracefully: any upstream failure yields empty
// results with a nil error.
type WeatherProvider interface {
	FetchNearestStations(ctx context.Context, lat, lon, distanceToShoreKm float64) ([]Station, error)
	FetchWeatherData(ctx context.Context, stationURL string) (Observation, error)
}

// EnrichWithWeather attaches nearby-station data to a located position.
// Weather is strictly best effort: a failed or empty lookup marks the record
// and moves on, never failing the message. Unlocated records are left
// untouched with WeatherSource "none".
func EnrichWithWeather(ctx context.Context, pos *ParsedPosition, provider WeatherProvider, baseURL string, distanceToShoreKm float64, logger *slog.Logger) {
	if !pos.A.Located() {
		pos.WeatherSource = "none"
		return
	}

	stations, err := provider.FetchNearestStations(ctx, *pos.A.Lat, *pos.A.Lon, distanceToShoreKm)
	if err != nil || len(stations) == 0 {
		logger.Warn("station lookup returned nothing", "message_id", pos.MessageID, "error", err)
		pos.WeatherSource = "failed"
		return
	}
	pos.Stations = stations

	obs, err := provider.FetchWeatherData(ctx, stationURL(baseURL, stations[0].ID))
	if err != nil || len(obs) == 0 {
		logger.Warn("observation fetch returned nothing", "message_id", pos.MessageID, "station", stations[0].ID, "error", err)
		pos.WeatherSource = "failed"
		return
	}
	pos.Weather = obs
	pos.WeatherSource = "ndbc"
}

func stationURL(baseURL, stationID string) string {
	return fmt.Sprintf("%s/data/realtime2/%s.txt", baseURL, stationID)
}
