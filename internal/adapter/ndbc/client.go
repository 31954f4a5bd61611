// Package ndbc fetches nearby weather-station data from the NOAA National
// Data Buoy Center. Lookups are strictly best effort: any upstream failure
// degrades to empty results so a distress position is never delayed by
// weather.
package ndbc

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rescuedecisions/sarsat-msg-etl/internal/domain"
	"github.com/rescuedecisions/sarsat-msg-etl/internal/observability"
)

// maxStations bounds how many nearby stations ride along on a position record.
const maxStations = 5

// landStationThresholdKm: positions this close to shore get coastal land
// stations, everything further offshore gets buoys.
const landStationThresholdKm = 10

// Client implements domain.WeatherProvider against the NDBC endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an NDBC client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
		metrics:    metrics,
	}
}

// FetchNearestStations returns up to five stations sorted by distance from
// the position. Station type is "land" when the position is within 10 km of
// shore, otherwise "buoy". Failures return an empty slice and a nil error.
func (c *Client) FetchNearestStations(ctx context.Context, lat, lon, distanceToShoreKm float64) ([]domain.Station, error) {
	start := time.Now()
	all, err := c.fetchStationList(ctx)
	c.metrics.WeatherAPIDuration.WithLabelValues("stations").Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn("station list fetch failed", "error", err)
		c.metrics.WeatherRequests.WithLabelValues("stations", "error").Inc()
		return nil, nil
	}
	if len(all) == 0 {
		c.metrics.WeatherRequests.WithLabelValues("stations", "empty").Inc()
		return nil, nil
	}
	c.metrics.WeatherRequests.WithLabelValues("stations", "success").Inc()

	stationType := "buoy"
	if distanceToShoreKm < landStationThresholdKm {
		stationType = "land"
	}

	stations := make([]domain.Station, 0, len(all))
	for _, s := range all {
		km := haversineKm(lat, lon, s.Lat, s.Lon)
		stations = append(stations, domain.Station{
			ID:            s.ID,
			Lat:           s.Lat,
			Lon:           s.Lon,
			DistanceKm:    km,
			DistanceMiles: domain.KmToMiles(km),
			Type:          stationType,
		})
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].DistanceKm < stations[j].DistanceKm })
	if len(stations) > maxStations {
		stations = stations[:maxStations]
	}
	return stations, nil
}

// FetchWeatherData retrieves the latest observation row from a station's
// realtime2 feed. Missing measurements carry the "N/A" sentinel. Failures
// return an empty observation and a nil error.
func (c *Client) FetchWeatherData(ctx context.Context, stationURL string) (domain.Observation, error) {
	start := time.Now()
	body, err := c.get(ctx, stationURL)
	c.metrics.WeatherAPIDuration.WithLabelValues("observation").Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Warn("observation fetch failed", "url", stationURL, "error", err)
		c.metrics.WeatherRequests.WithLabelValues("observation", "error").Inc()
		return nil, nil
	}

	obs := parseRealtimeFeed(string(body))
	if len(obs) == 0 {
		c.metrics.WeatherRequests.WithLabelValues("observation", "empty").Inc()
		return nil, nil
	}
	c.metrics.WeatherRequests.WithLabelValues("observation", "success").Inc()
	return obs, nil
}

// activestations.xml payload shapes.
type stationList struct {
	Stations []stationEntry `xml:"station"`
}

type stationEntry struct {
	ID  string  `xml:"id,attr"`
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

func (c *Client) fetchStationList(ctx context.Context) ([]stationEntry, error) {
	body, err := c.get(ctx, c.baseURL+"/activestations.xml")
	if err != nil {
		return nil, err
	}
	var list stationList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode station list: %w", err)
	}
	return list.Stations, nil
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ndbc request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ndbc API error: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// parseRealtimeFeed reads the NDBC realtime2 text format: a "#"-prefixed
// header row naming the measurements, a units row, then observation rows
// newest first. The feed's "MM" missing-value marker becomes "N/A".
func parseRealtimeFeed(body string) domain.Observation {
	lines := strings.Split(body, "\n")
	if len(lines) < 3 {
		return nil
	}

	header := strings.Fields(strings.TrimPrefix(lines[0], "#"))
	if len(header) == 0 {
		return nil
	}

	// First non-comment line is the latest observation.
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		values := strings.Fields(line)
		obs := make(domain.Observation, len(header))
		for i, name := range header {
			if i >= len(values) || values[i] == "MM" {
				obs[name] = "N/A"
				continue
			}
			obs[name] = values[i]
		}
		return obs
	}
	return nil
}

// haversineKm is the great-circle distance between two points in kilometers.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
