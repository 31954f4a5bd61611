package domain

import (
	"math"
	"strings"
	"time"
)

// Section headers recognized in SARSAT alert text. Matching is
// substring-based on the uppercased line; ground stations disagree on
// spacing and numbering, so exact-prefix matching loses messages.
const (
	headerBeaconID      = "BEACON ID"
	headerSiteID        = "SITE ID"
	headerDetectTime    = "TIME OF DETECTION"
	headerPositionBlock = "PROB EE SOL"
	headerPosDevice     = "POSITION DEVICE"
	headerPosResolution = "POSITION RESOLUTION"
	headerExpectedError = "EXPECTED HORIZONTAL ERROR"

	unlocatedMarker = "N/A N/A U N/A"
)

// Range-ring radii in meters keyed by position method. GNSS-class fixes are
// tight; Doppler solutions and unknown methods get the wide default ring.
const (
	rangeRingGNSSMeters    = 5.0
	rangeRingDefaultMeters = 5000.0
)

// Detect-time layouts tried in order.
var detectTimeLayouts = []string{
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05Z",
	"2006-01-02T15:04Z",
	"2006-01-02 15:04Z",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseMessage walks the message's sections in their expected order and
// extracts every configured field through the shared validator. Individual
// garbled fields degrade to diagnostics on the record; the only error is a
// *StructureError when not a single section header is recognized.
func ParseMessage(msg RawMessage, cfg Config) (*ParsedPosition, error) {
	pos := &ParsedPosition{
		MessageID: msg.ID,
		Metadata:  map[string]string{},
	}

	lines := strings.Split(msg.Text, "\n")
	headers := 0
	positionBlocks := 0
	pendingPosition := false

	for _, raw := range lines {
		line := strings.TrimSpace(strings.ToUpper(raw))
		if line == "" {
			continue
		}

		if pendingPosition {
			pendingPosition = false
			p := parsePositionRow(line, cfg)
			switch positionBlocks {
			case 1:
				pos.A = p
			case 2:
				pos.B = p
			}
			continue
		}

		switch {
		case strings.Contains(line, headerBeaconID), strings.Contains(line, headerSiteID):
			headers++
			res, err := ValidateAndExtract("beacon_id", line, cfg, nil)
			if err != nil {
				return nil, err
			}
			if res.Valid {
				pos.BeaconID = res.Text
			}
			if strings.Contains(line, headerSiteID) {
				pos.SiteID = trailingValue(line, headerSiteID)
			}
		case strings.Contains(line, headerDetectTime):
			headers++
			res, err := ValidateAndExtract("detect_time", line, cfg, nil)
			if err != nil {
				return nil, err
			}
			if res.Valid {
				pos.Metadata["detect_time_raw"] = res.Text
				pos.DetectTime = parseDetectTime(res.Text)
			}
		case strings.Contains(line, headerPositionBlock):
			headers++
			// Only the first two position blocks are kept; composite
			// solutions past B are operator noise.
			if positionBlocks < 2 {
				positionBlocks++
				pendingPosition = true
			}
		case strings.Contains(line, headerPosDevice):
			headers++
			res, err := ValidateAndExtract("position_method", line, cfg, nil)
			if err != nil {
				return nil, err
			}
			if res.Valid {
				pos.PositionMethod = res.Text
			}
		case strings.Contains(line, headerPosResolution):
			headers++
			res, err := ValidateAndExtract("position_resolution", line, cfg, nil)
			if err != nil {
				return nil, err
			}
			if res.Valid {
				pos.PositionResolution = res.Text
			}
		case strings.Contains(line, headerExpectedError):
			headers++
			res, err := ValidateAndExtract("expected_error_nm", trailingValue(line, headerExpectedError), cfg, nil)
			if err != nil {
				return nil, err
			}
			if res.Valid {
				pos.ExpectedErrorNM = res.Value
			}
		}
	}

	if headers == 0 {
		return nil, &StructureError{MessageID: msg.ID}
	}
	return pos, nil
}

// parsePositionRow extracts one A/B solution row. Both coordinates go
// through the validator over the whole row, so the parser and the preparse
// scanner share one extraction path.
func parsePositionRow(line string, cfg Config) Position {
	if strings.Contains(line, unlocatedMarker) {
		return Position{Status: "U"}
	}

	ctx := map[string]string{"section": "position"}
	if span := probeSpan(cfg, "latitude", line); span != "" {
		ctx["latitude"] = span
	}
	if span := probeSpan(cfg, "longitude", line); span != "" {
		ctx["longitude"] = span
	}

	// The config is compiled and the field names are its own defaults, so
	// a ConfigError here cannot happen with DefaultConfig-shaped input.
	latRes, _ := ValidateAndExtract("latitude", line, cfg, ctx)
	lonRes, _ := ValidateAndExtract("longitude", line, cfg, ctx)

	p := Position{LatResult: latRes, LonResult: lonRes}
	if latRes.Valid && lonRes.Valid {
		p.Lat = latRes.Value
		p.Lon = lonRes.Value
		p.Status = "C"
	}
	return p
}

// probeSpan reports whether any primary pattern for the field finds a span
// in the line, so the counterpart's pairing check has something to see.
func probeSpan(cfg Config, field, line string) string {
	fc, ok := cfg[field]
	if !ok {
		return ""
	}
	for _, p := range fc.Patterns {
		if span := p.re.FindString(line); span != "" {
			return span
		}
	}
	return ""
}

func trailingValue(line, header string) string {
	idx := strings.Index(line, header)
	rest := line[idx+len(header):]
	rest = strings.TrimLeft(rest, " :")
	return strings.TrimSpace(rest)
}

func parseDetectTime(text string) time.Time {
	for _, layout := range detectTimeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// EnrichPosition stamps processing metadata onto a parsed record: the
// message ID when the source carried none, range-ring radii derived from
// the position method, and the processing timestamp from the package clock.
func EnrichPosition(pos *ParsedPosition) {
	if pos.MessageID == "" {
		pos.MessageID = generateMessageID(pos)
	}

	ring := rangeRingDefaultMeters
	switch pos.PositionMethod {
	case "GPS", "GNSS":
		ring = rangeRingGNSSMeters
	}
	if pos.A.Located() {
		r := ring
		pos.RangeRingMetersA = &r
	}
	if pos.B.Located() {
		r := ring
		pos.RangeRingMetersB = &r
	}

	pos.ProcessedAt = clock.Now().UTC()
}

// crossCheckTolerance is the max per-axis delta, in degrees, for a parsed
// position to count as matching its preparse row.
const crossCheckTolerance = 1e-4

// CrossCheck compares the parsed positions against the preparse QA rows for
// the same message and records agreement as a diagnostic. A mismatch never
// invalidates the position; the preparse sweep is coarser by design.
func CrossCheck(pos *ParsedPosition, rows []CoordinateRow) {
	var lat, lon *float64
	for i := range rows {
		if rows[i].MessageID != pos.MessageID || rows[i].Value == nil {
			continue
		}
		switch rows[i].Field {
		case "latitude":
			if lat == nil {
				lat = rows[i].Value
			}
		case "longitude":
			if lon == nil {
				lon = rows[i].Value
			}
		}
	}
	if lat == nil || lon == nil || !pos.A.Located() {
		return
	}
	matched := math.Abs(*pos.A.Lat-*lat) <= crossCheckTolerance &&
		math.Abs(*pos.A.Lon-*lon) <= crossCheckTolerance
	pos.A.PrescanMatched = &matched
}
