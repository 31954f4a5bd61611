package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAlert = `1. DISTRESS COSPAS-SARSAT ALERT
BEACON ID: ADCD0228C500401
SITE ID: 1234
TIME OF DETECTION: 2026-08-25 14:32Z
PROB EE SOL LATITUDE LONGITUDE
98.3 5.1 A 37 45.600N 075 30.200W
PROB EE SOL LATITUDE LONGITUDE
72.0 8.8 B 37 44.100N 075 31.500W
POSITION DEVICE: GPS
POSITION RESOLUTION: 15 SEC
EXPECTED HORIZONTAL ERROR: 2.5
`

func TestParseMessageFullAlert(t *testing.T) {
	cfg := DefaultConfig()
	pos, err := ParseMessage(RawMessage{ID: "msg-001", Text: sampleAlert}, cfg)
	require.NoError(t, err)

	assert.Equal(t, "msg-001", pos.MessageID)
	assert.Equal(t, "ADCD0228C500401", pos.BeaconID)
	assert.Equal(t, "1234", pos.SiteID)
	assert.Equal(t, time.Date(2026, 8, 25, 14, 32, 0, 0, time.UTC), pos.DetectTime)
	assert.Equal(t, "GPS", pos.PositionMethod)
	assert.Equal(t, "15 SEC", pos.PositionResolution)
	require.NotNil(t, pos.ExpectedErrorNM)
	assert.InDelta(t, 2.5, *pos.ExpectedErrorNM, 1e-9)

	require.True(t, pos.A.Located())
	assert.Equal(t, "C", pos.A.Status)
	assert.InDelta(t, 37.76, *pos.A.Lat, 1e-9)
	assert.InDelta(t, -75.50333333333333, *pos.A.Lon, 1e-9)

	require.True(t, pos.B.Located())
	assert.Equal(t, "C", pos.B.Status)
	assert.InDelta(t, 37.735, *pos.B.Lat, 1e-9)
	assert.InDelta(t, -75.525, *pos.B.Lon, 1e-9)
}

func TestParseMessageMissingSections(t *testing.T) {
	text := `BEACON ID: ADCD0228C500401
PROB EE SOL LATITUDE LONGITUDE
98.3 5.1 A 37 45.600N 075 30.200W
`
	pos, err := ParseMessage(RawMessage{ID: "msg-002", Text: text}, DefaultConfig())
	require.NoError(t, err)

	assert.True(t, pos.A.Located())
	assert.False(t, pos.B.Located())
	assert.Empty(t, pos.B.Status)
	assert.True(t, pos.DetectTime.IsZero())
	assert.Empty(t, pos.PositionMethod)
	assert.Nil(t, pos.ExpectedErrorNM)
}

func TestParseMessageUnlocated(t *testing.T) {
	text := `BEACON ID: ADCD0228C500401
PROB EE SOL LATITUDE LONGITUDE
N/A N/A U N/A
`
	pos, err := ParseMessage(RawMessage{ID: "msg-003", Text: text}, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "U", pos.A.Status)
	assert.False(t, pos.A.Located())
	assert.Empty(t, pos.A.LatResult.RawSpan)
}

func TestParseMessageGarbledPositionKeepsDiagnostics(t *testing.T) {
	text := `BEACON ID: ADCD0228C500401
PROB EE SOL LATITUDE LONGITUDE
98.3 5.1 A GARBLED NO COORDS HERE
`
	pos, err := ParseMessage(RawMessage{ID: "msg-004", Text: text}, DefaultConfig())
	require.NoError(t, err)

	assert.False(t, pos.A.Located())
	assert.Empty(t, pos.A.Status)
	assert.False(t, pos.A.LatResult.Valid)
	assert.False(t, pos.A.LonResult.Valid)
}

func TestParseMessageNoHeaders(t *testing.T) {
	_, err := ParseMessage(RawMessage{ID: "msg-005", Text: "MAYDAY MAYDAY MAYDAY\nVESSEL TAKING ON WATER\n"}, DefaultConfig())
	var se *StructureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "msg-005", se.MessageID)
}

func TestParseMessageIgnoresThirdPositionBlock(t *testing.T) {
	text := `BEACON ID: ADCD0228C500401
PROB EE SOL LATITUDE LONGITUDE
98.3 5.1 A 37 45.600N 075 30.200W
PROB EE SOL LATITUDE LONGITUDE
72.0 8.8 B 37 44.100N 075 31.500W
PROB EE SOL LATITUDE LONGITUDE
50.0 9.9 C 10 00.000N 010 00.000W
`
	pos, err := ParseMessage(RawMessage{ID: "msg-006", Text: text}, DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, 37.76, *pos.A.Lat, 1e-9)
	assert.InDelta(t, 37.735, *pos.B.Lat, 1e-9)
}

func TestEnrichPosition(t *testing.T) {
	frozen := time.Date(2026, 8, 25, 15, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { SetClock(nil) })

	lat, lon := 37.76, -75.5
	tests := []struct {
		name     string
		method   string
		wantRing float64
	}{
		{"gps gets tight ring", "GPS", 5},
		{"gnss gets tight ring", "GNSS", 5},
		{"doppler gets wide ring", "DOPPLER", 5000},
		{"unknown method gets wide ring", "", 5000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := &ParsedPosition{
				MessageID:      "msg-010",
				PositionMethod: tt.method,
				A:              Position{Lat: &lat, Lon: &lon, Status: "C"},
			}
			EnrichPosition(pos)

			require.NotNil(t, pos.RangeRingMetersA)
			assert.Equal(t, tt.wantRing, *pos.RangeRingMetersA)
			assert.Nil(t, pos.RangeRingMetersB, "B has no coordinates, no ring")
			assert.Equal(t, frozen, pos.ProcessedAt)
		})
	}
}

func TestEnrichPositionGeneratesMessageID(t *testing.T) {
	lat, lon := 37.76, -75.5
	pos := &ParsedPosition{
		BeaconID: "ADCD0228C500401",
		A:        Position{Lat: &lat, Lon: &lon},
	}
	EnrichPosition(pos)
	require.NotEmpty(t, pos.MessageID)
	assert.Contains(t, pos.MessageID, "sarsat-")

	again := &ParsedPosition{
		BeaconID: "ADCD0228C500401",
		A:        Position{Lat: &lat, Lon: &lon},
	}
	EnrichPosition(again)
	assert.Equal(t, pos.MessageID, again.MessageID, "same detection hashes to same ID")
}

func TestCrossCheck(t *testing.T) {
	lat, lon := 37.76, -75.50333333
	mk := func() *ParsedPosition {
		return &ParsedPosition{
			MessageID: "msg-020",
			A:         Position{Lat: &lat, Lon: &lon, Status: "C"},
		}
	}
	rowVal := func(v float64) *float64 { return &v }

	t.Run("agreement within tolerance", func(t *testing.T) {
		pos := mk()
		CrossCheck(pos, []CoordinateRow{
			{MessageID: "msg-020", Field: "latitude", Value: rowVal(37.76)},
			{MessageID: "msg-020", Field: "longitude", Value: rowVal(-75.50333333)},
		})
		require.NotNil(t, pos.A.PrescanMatched)
		assert.True(t, *pos.A.PrescanMatched)
	})

	t.Run("disagreement recorded not fatal", func(t *testing.T) {
		pos := mk()
		CrossCheck(pos, []CoordinateRow{
			{MessageID: "msg-020", Field: "latitude", Value: rowVal(37.5)},
			{MessageID: "msg-020", Field: "longitude", Value: rowVal(-75.50333333)},
		})
		require.NotNil(t, pos.A.PrescanMatched)
		assert.False(t, *pos.A.PrescanMatched)
		assert.Equal(t, "C", pos.A.Status)
	})

	t.Run("no rows leaves diagnostic unset", func(t *testing.T) {
		pos := mk()
		CrossCheck(pos, nil)
		assert.Nil(t, pos.A.PrescanMatched)
	})

	t.Run("other message rows ignored", func(t *testing.T) {
		pos := mk()
		CrossCheck(pos, []CoordinateRow{
			{MessageID: "msg-099", Field: "latitude", Value: rowVal(37.76)},
			{MessageID: "msg-099", Field: "longitude", Value: rowVal(-75.50333333)},
		})
		assert.Nil(t, pos.A.PrescanMatched)
	})
}
