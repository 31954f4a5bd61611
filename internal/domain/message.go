package domain

import (
	"context"
	"time"
)

// RawMessage is one SARSAT report: an immutable text blob plus an identifier.
type RawMessage struct {
	ID   string
	Text string
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ExtractionResult is the validator's output for one field extraction.
// Created fresh per call and never mutated afterwards. Valid implies Value
// (or Text, for non-numeric fields) is populated and within the configured
// range.
type ExtractionResult struct {
	Value        *float64 `json:"value,omitempty"`
	Text         string   `json:"text,omitempty"`
	RawSpan      string   `json:"raw_span,omitempty"`
	Valid        bool     `json:"valid"`
	Confidence   float64  `json:"confidence"`
	ChecksPassed []string `json:"checks_passed,omitempty"`
	ChecksFailed []string `json:"checks_failed,omitempty"`
	FallbackUsed bool     `json:"fallback_used"`
	Notes        []string `json:"notes,omitempty"`
}

// CoordinateRow is one row of the preparse QA log. A row is only ever
// emitted for a span that matched an extraction pattern, valid or not.
type CoordinateRow struct {
	MessageID  string
	Field      string
	RawSpan    string
	Value      *float64
	Valid      bool
	Confidence float64
}

// Position holds one extracted position with its validation diagnostics.
// Status is "C" (confirmed), "U" (unlocated marker seen), or "" (absent).
type Position struct {
	Lat            *float64         `json:"lat,omitempty"`
	Lon            *float64         `json:"lon,omitempty"`
	Status         string           `json:"status,omitempty"`
	LatResult      ExtractionResult `json:"lat_result"`
	LonResult      ExtractionResult `json:"lon_result"`
	PrescanMatched *bool            `json:"prescan_matched,omitempty"`
}

// Located reports whether both coordinates extracted successfully.
func (p Position) Located() bool {
	return p.Lat != nil && p.Lon != nil
}

// ParsedPosition is the authoritative structured record for one message,
// consumed by downstream mapping and persistence collaborators.
type ParsedPosition struct {
	MessageID          string            `json:"message_id"`
	BeaconID           string            `json:"beacon_id,omitempty"`
	SiteID             string            `json:"site_id,omitempty"`
	DetectTime         time.Time         `json:"detect_time,omitzero"`
	A                  Position          `json:"position_a"`
	B                  Position          `json:"position_b"`
	PositionMethod     string            `json:"position_method,omitempty"`
	PositionResolution string            `json:"position_resolution,omitempty"`
	ExpectedErrorNM    *float64          `json:"expected_error_nm,omitempty"`
	RangeRingMetersA   *float64          `json:"range_ring_meters_a,omitempty"`
	RangeRingMetersB   *float64          `json:"range_ring_meters_b,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`

	// Weather enrichment fields.
	Stations      []Station   `json:"stations,omitempty"`
	Weather       Observation `json:"weather,omitempty"`
	WeatherSource string      `json:"weather_source,omitempty"` // "ndbc", "failed", "none"

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}
