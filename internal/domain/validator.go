package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Confidence bases for the structural match. A fallback match starts lower
// so it needs stronger semantic corroboration to clear the threshold.
const (
	primaryBase  = 0.5
	fallbackBase = 0.4
)

// degreesLeftRe finds a degrees token stranded just left of a minutes-only
// longitude fragment.
var degreesLeftRe = regexp.MustCompile(`(\d{1,3})[ -]*$`)

// Cross-field pairing counterparts. Fields absent here skip the pairing
// check entirely.
var pairingCounterpart = map[string]string{
	"latitude":  "longitude",
	"longitude": "latitude",
}

// ValidateAndExtract runs the configured extraction for one field against
// raw text and returns a fully scored ExtractionResult. It is a pure
// function of its inputs and never fails on message content; the only error
// is a *ConfigError for a field the configuration does not define.
//
// Patterns are tried in priority order and the first match wins. Semantic
// checks then adjust a base confidence up or down by their weights; the
// field is valid when confidence reaches the acceptance threshold and no
// hard-fail check failed. When the primary attempt is invalid and a
// fallback pattern is configured, the fallback is tried exactly once and
// its outcome is final.
func ValidateAndExtract(field, rawText string, cfg Config, context map[string]string) (ExtractionResult, error) {
	fc, ok := cfg[field]
	if !ok {
		return ExtractionResult{}, &ConfigError{Field: field}
	}

	text := strings.ToUpper(rawText)
	if strings.TrimSpace(text) == "" {
		return noMatchResult(fc), nil
	}

	for _, p := range fc.Patterns {
		if loc := p.re.FindStringIndex(text); loc != nil {
			res := scoreSpan(fc, field, text, loc, primaryBase, false, context)
			if res.Valid || fc.Fallback == nil {
				return res, nil
			}
			// One fallback retry; if the fallback pattern matches, its
			// outcome replaces the primary's, valid or not.
			if fb, ok := runFallback(fc, field, text, context); ok {
				return fb, nil
			}
			return res, nil
		}
	}

	if fc.Fallback != nil {
		if res, ok := runFallback(fc, field, text, context); ok {
			return res, nil
		}
	}
	return noMatchResult(fc), nil
}

func runFallback(fc *FieldConfig, field, text string, context map[string]string) (ExtractionResult, bool) {
	loc := fc.Fallback.re.FindStringIndex(text)
	if loc == nil {
		return ExtractionResult{}, false
	}
	res := scoreSpan(fc, field, text, loc, fallbackBase, true, context)
	res.FallbackUsed = true
	return res, true
}

// noMatchResult is the degenerate outcome for empty text or no structural
// match: every configured check is recorded as failed.
func noMatchResult(fc *FieldConfig) ExtractionResult {
	res := ExtractionResult{Confidence: 0}
	for _, c := range fc.Checks {
		res.ChecksFailed = append(res.ChecksFailed, c.Name)
	}
	return res
}

// scoreSpan parses the matched span and runs the semantic checks over it.
func scoreSpan(fc *FieldConfig, field, text string, loc []int, base float64, fallback bool, context map[string]string) ExtractionResult {
	span := text[loc[0]:loc[1]]
	res := ExtractionResult{RawSpan: span, Confidence: base}

	parseSpan := span
	if fallback && fc.RepairDegrees {
		repaired, ok := repairDegrees(text, loc[0], span)
		if ok {
			parseSpan = repaired
			res.Notes = append(res.Notes, "repaired stranded degrees token")
		} else {
			res.ChecksFailed = append(res.ChecksFailed, "parse")
			res.Notes = append(res.Notes, "minutes-only fragment with no degrees token in reach")
			res.Valid = false
			return res
		}
	}

	switch fc.Parse {
	case ParseCoordinate:
		v, err := ConvertToDecimal(parseSpan, context["hemisphere"])
		if err != nil {
			res.ChecksFailed = append(res.ChecksFailed, "parse")
			res.Notes = append(res.Notes, err.Error())
			return res
		}
		res.Value = &v
	case ParseNumber:
		v, err := strconv.ParseFloat(strings.TrimSpace(parseSpan), 64)
		if err != nil {
			res.ChecksFailed = append(res.ChecksFailed, "parse")
			return res
		}
		res.Value = &v
	default:
		res.Text = strings.TrimSpace(parseSpan)
	}

	hardFailed := false
	for _, c := range fc.Checks {
		outcome := runCheck(c.Name, fc, field, span, res, context)
		switch outcome {
		case checkPassed:
			res.Confidence += c.Weight
			res.ChecksPassed = append(res.ChecksPassed, c.Name)
		case checkFailed:
			res.Confidence -= c.Weight
			res.ChecksFailed = append(res.ChecksFailed, c.Name)
			if c.HardFail {
				hardFailed = true
			}
		case checkSkipped:
			res.Notes = append(res.Notes, c.Name+" check skipped")
		}
	}

	res.Confidence = clamp01(res.Confidence)
	res.Valid = res.Confidence >= fc.AcceptanceThreshold && !hardFailed &&
		(res.Value != nil || res.Text != "")
	return res
}

type checkOutcome int

const (
	checkPassed checkOutcome = iota
	checkFailed
	checkSkipped
)

func runCheck(name string, fc *FieldConfig, field, span string, res ExtractionResult, context map[string]string) checkOutcome {
	switch name {
	case "range":
		if fc.Range == nil || res.Value == nil {
			return checkFailed
		}
		if *res.Value >= fc.Range.Min && *res.Value <= fc.Range.Max {
			return checkPassed
		}
		return checkFailed
	case "format":
		if fc.Parse == ParseCoordinate {
			if strings.ContainsAny(span, "NSEW") {
				return checkPassed
			}
			return checkFailed
		}
		// Non-coordinate spans pass when normalization is a no-op, i.e.
		// the raw text already looked the way the field should.
		if strings.TrimSpace(span) == span {
			return checkPassed
		}
		return checkFailed
	case "pairing":
		counterpart, ok := pairingCounterpart[field]
		if !ok || context == nil {
			return checkSkipped
		}
		if _, ok := context[counterpart]; ok {
			return checkPassed
		}
		return checkSkipped
	case "enum":
		norm := strings.TrimSpace(span)
		for _, e := range fc.Enums {
			if norm == e {
				return checkPassed
			}
		}
		return checkFailed
	default:
		return checkSkipped
	}
}

// repairDegrees searches a short window left of a minutes-only match for the
// stranded degrees token and reassembles the full coordinate.
func repairDegrees(text string, start int, span string) (string, bool) {
	left := start - 8
	if left < 0 {
		left = 0
	}
	m := degreesLeftRe.FindStringSubmatch(text[left:start])
	if m == nil {
		return "", false
	}
	return m[1] + " " + span, true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
