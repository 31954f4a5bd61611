package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Coordinate grammars, tried in order against a cleaned token. DMS is tried
// before decimal minutes because a DMS tail ("06 36.0N") is itself a valid
// decimal-minutes token.
var (
	dmsRe = regexp.MustCompile(`^(\d{1,3})[ -](\d{1,2})[ -](\d{1,2}(?:\.\d+)?) ?([NSEW])?$`)
	dmRe  = regexp.MustCompile(`^(\d{1,3})[ -]([0-5]?\d(?:\.\d+)?) ?([NSEW])?$`)
	ddRe  = regexp.MustCompile(`^([+-]?\d{1,3}(?:\.\d+)?) ?([NSEW])?$`)

	punctRe = regexp.MustCompile(`[°'",;:]+`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// Clean normalizes a coordinate token: uppercases, replaces degree/minute
// punctuation with spaces, collapses whitespace and trims. Idempotent, so
// pre-cleaned input passes through unchanged.
func Clean(raw string) string {
	s := strings.ToUpper(raw)
	s = punctRe.ReplaceAllString(s, " ")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ConvertToDecimal parses a single coordinate token in any of the supported
// grammars and returns signed decimal degrees. South and west are negative.
// When the token carries no cardinal letter, hemisphereHint ("N", "S", "E",
// "W" or empty) decides the sign. A token matching no grammar returns a
// *FormatError.
func ConvertToDecimal(raw, hemisphereHint string) (float64, error) {
	token := Clean(raw)
	if token == "" {
		return 0, &FormatError{Raw: raw}
	}

	if m := dmsRe.FindStringSubmatch(token); m != nil {
		deg := parseCoordPart(m[1])
		min := parseCoordPart(m[2])
		sec := parseCoordPart(m[3])
		if min >= 60 || sec >= 60 {
			return 0, &FormatError{Raw: raw}
		}
		return applyHemisphere(deg+min/60+sec/3600, m[4], hemisphereHint), nil
	}

	if m := dmRe.FindStringSubmatch(token); m != nil {
		deg := parseCoordPart(m[1])
		min := parseCoordPart(m[2])
		if min >= 60 {
			return 0, &FormatError{Raw: raw}
		}
		return applyHemisphere(deg+min/60, m[3], hemisphereHint), nil
	}

	if m := ddRe.FindStringSubmatch(token); m != nil {
		deg := parseCoordPart(m[1])
		if m[1][0] == '-' {
			// An explicit sign already encodes hemisphere; a trailing
			// cardinal on a signed value is contradictory noise.
			return deg, nil
		}
		return applyHemisphere(deg, m[2], hemisphereHint), nil
	}

	return 0, &FormatError{Raw: raw}
}

// applyHemisphere negates southern and western values. The cardinal embedded
// in the token wins over the caller's hint.
func applyHemisphere(value float64, cardinal, hint string) float64 {
	h := cardinal
	if h == "" {
		h = strings.ToUpper(strings.TrimSpace(hint))
	}
	if h == "S" || h == "W" {
		return -value
	}
	return value
}

func parseCoordPart(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// KmToMiles converts kilometers to statute miles for operator-facing
// distance displays.
func KmToMiles(km float64) float64 {
	return km * 0.621371
}
