package ndbc

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescuedecisions/sarsat-msg-etl/internal/observability"
)

const activeStationsXML = `<?xml version="1.0" encoding="UTF-8"?>
<stations>
  <station id="44009" lat="38.457" lon="-74.702" name="DELAWARE BAY 26NM"/>
  <station id="44014" lat="36.611" lon="-74.842" name="VIRGINIA BEACH 64NM"/>
  <station id="41001" lat="34.714" lon="-72.317" name="EAST HATTERAS"/>
  <station id="46042" lat="36.785" lon="-122.398" name="MONTEREY"/>
  <station id="51001" lat="23.445" lon="-162.279" name="NORTHWESTERN HAWAII"/>
  <station id="CHLV2" lat="36.905" lon="-75.713" name="CHESAPEAKE LIGHT"/>
</stations>`

const realtimeFeed = `#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES  ATMP  WTMP
#yr  mo dy hr mn degT m/s  m/s     m   sec   sec degT   hPa  degC  degC
2026 08 25 14 50 180  6.2  7.8   1.1     9   6.4 155 1016.8  26.1  27.0
2026 08 25 13 50 175  5.9  7.1   1.0     9   6.2 150 1017.0  26.0  27.0
`

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    testMetrics(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestClient_FetchNearestStations_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/activestations.xml", r.URL.Path)
		_, _ = w.Write([]byte(activeStationsXML))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	// Offshore position near the Virginia coast.
	stations, err := c.FetchNearestStations(context.Background(), 37.76, -75.5, 42)
	require.NoError(t, err)
	require.Len(t, stations, 5)

	// CHLV2 is the closest of the fixture stations.
	assert.Equal(t, "CHLV2", stations[0].ID)
	assert.Equal(t, "buoy", stations[0].Type)
	assert.Greater(t, stations[0].DistanceKm, 0.0)
	assert.InDelta(t, stations[0].DistanceKm*0.621371, stations[0].DistanceMiles, 1e-9)

	// Sorted ascending by distance.
	for i := 1; i < len(stations); i++ {
		assert.GreaterOrEqual(t, stations[i].DistanceKm, stations[i-1].DistanceKm)
	}
}

func TestClient_FetchNearestStations_LandType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(activeStationsXML))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	stations, err := c.FetchNearestStations(context.Background(), 37.76, -75.5, 3)
	require.NoError(t, err)
	require.NotEmpty(t, stations)
	assert.Equal(t, "land", stations[0].Type)
}

func TestClient_FetchNearestStations_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	stations, err := c.FetchNearestStations(context.Background(), 37.76, -75.5, 42)
	require.NoError(t, err, "upstream failures degrade to empty results")
	assert.Empty(t, stations)
}

func TestClient_FetchNearestStations_Unreachable(t *testing.T) {
	c := testClient("http://127.0.0.1:1")
	stations, err := c.FetchNearestStations(context.Background(), 37.76, -75.5, 42)
	require.NoError(t, err)
	assert.Empty(t, stations)
}

func TestClient_FetchWeatherData_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/realtime2/44009.txt", r.URL.Path)
		_, _ = w.Write([]byte(realtimeFeed))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	obs, err := c.FetchWeatherData(context.Background(), srv.URL+"/data/realtime2/44009.txt")
	require.NoError(t, err)
	require.NotEmpty(t, obs)

	assert.Equal(t, "6.2", obs["WSPD"])
	assert.Equal(t, "1.1", obs["WVHT"])
	assert.Equal(t, "1016.8", obs["PRES"])
}

func TestClient_FetchWeatherData_MissingValues(t *testing.T) {
	feed := "#YY  MM DD hh mm WDIR WSPD WVHT\n#yr  mo dy hr mn degT m/s  m\n2026 08 25 14 50 MM   6.2\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	obs, err := c.FetchWeatherData(context.Background(), srv.URL+"/data/realtime2/X.txt")
	require.NoError(t, err)

	assert.Equal(t, "N/A", obs["WDIR"], "MM marker becomes N/A")
	assert.Equal(t, "6.2", obs["WSPD"])
	assert.Equal(t, "N/A", obs["WVHT"], "short row pads with N/A")
}

func TestClient_FetchWeatherData_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	obs, err := c.FetchWeatherData(context.Background(), srv.URL+"/data/realtime2/X.txt")
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestHaversineKm(t *testing.T) {
	// Norfolk to Virginia Beach is roughly 27 km.
	d := haversineKm(36.8508, -76.2859, 36.8529, -75.978)
	assert.InDelta(t, 27.4, d, 1.0)

	assert.Zero(t, haversineKm(10, 20, 10, 20))
}
