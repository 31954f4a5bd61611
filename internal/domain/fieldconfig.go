package domain

import (
	"fmt"
	"regexp"
)

// Parse kinds supported by FieldConfig.Parse.
const (
	ParseCoordinate = "coordinate"
	ParseNumber     = "number"
	ParseText       = "text"
)

// PatternSpec is one named extraction pattern. Expr is a regular expression
// matched against the raw field text; the first pattern in a field's list to
// match wins.
type PatternSpec struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`

	re *regexp.Regexp
}

// CheckSpec is one weighted semantic check run against a matched span.
// A failed hard-fail check invalidates the field regardless of the
// accumulated confidence.
type CheckSpec struct {
	Name     string  `yaml:"name"`
	Weight   float64 `yaml:"weight"`
	HardFail bool    `yaml:"hard_fail"`
}

// RangeSpec bounds a numeric field, inclusive on both ends.
type RangeSpec struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// FieldConfig describes how one field is extracted and scored. The validator
// treats it as read-only; a Config shared across goroutines is safe once
// compiled.
type FieldConfig struct {
	Patterns            []PatternSpec `yaml:"patterns"`
	Checks              []CheckSpec   `yaml:"checks"`
	AcceptanceThreshold float64       `yaml:"acceptance_threshold"`
	Fallback            *PatternSpec  `yaml:"fallback,omitempty"`
	Range               *RangeSpec    `yaml:"range,omitempty"`
	Enums               []string      `yaml:"enums,omitempty"`
	Parse               string        `yaml:"parse"`

	// Coordinate marks the field for the preparse QA sweep.
	Coordinate bool `yaml:"coordinate"`

	// RepairDegrees enables the minutes-only longitude repair: when the
	// fallback matches a bare minutes fragment, the validator searches a
	// small window left of the span for the stranded degrees token.
	RepairDegrees bool `yaml:"repair_degrees"`
}

// Config maps field names to their extraction configuration.
type Config map[string]*FieldConfig

// Compile compiles every pattern expression in place. Call once after
// construction or YAML load; an invalid expression is a deployment error.
func (c Config) Compile() error {
	for name, fc := range c {
		for i := range fc.Patterns {
			re, err := regexp.Compile(fc.Patterns[i].Expr)
			if err != nil {
				return fmt.Errorf("compiling pattern %s/%s: %w", name, fc.Patterns[i].Name, err)
			}
			fc.Patterns[i].re = re
		}
		if fc.Fallback != nil {
			re, err := regexp.Compile(fc.Fallback.Expr)
			if err != nil {
				return fmt.Errorf("compiling fallback for %s: %w", name, err)
			}
			fc.Fallback.re = re
		}
	}
	return nil
}

// DefaultConfig returns the compiled-in field configuration covering every
// field the SARSAT parser extracts. The expressions encode hard-won quirks
// of real RCC traffic; override from YAML only to tune weights or add
// station-specific patterns.
func DefaultConfig() Config {
	cfg := Config{
		"latitude": {
			Patterns: []PatternSpec{
				{Name: "dm_dms", Expr: `\b\d{2,3}(?:[ -]\d{1,2}(?:\.\d+)?){1,2} ?[NS]\b`},
				{Name: "dd_cardinal", Expr: `[+-]?\d{1,2}\.\d+ ?[NS]\b`},
			},
			Fallback: &PatternSpec{Name: "dd_signed", Expr: `[+-]\d{1,2}\.\d+\b`},
			Checks: []CheckSpec{
				{Name: "range", Weight: 0.25, HardFail: true},
				{Name: "format", Weight: 0.15},
				{Name: "pairing", Weight: 0.1},
			},
			AcceptanceThreshold: 0.6,
			Range:               &RangeSpec{Min: -90, Max: 90},
			Parse:               ParseCoordinate,
			Coordinate:          true,
		},
		"longitude": {
			Patterns: []PatternSpec{
				{Name: "dm_dms", Expr: `\b\d{1,3}(?:[ -]\d{1,2}(?:\.\d+)?){1,2} ?[EW]\b`},
				// A bare two-digit value under 60 is more likely a stranded
				// minutes fragment than a real decimal longitude, so the DD
				// grammar here demands a sign, three digits, or degrees >= 60.
				{Name: "dd_cardinal", Expr: `(?:[+-]\d{1,3}|\d{3}|[6-9]\d)\.\d+ ?[EW]\b`},
			},
			Fallback: &PatternSpec{Name: "minutes_only", Expr: `\b[0-5]?\d\.\d{2,} ?[EW]\b`},
			Checks: []CheckSpec{
				{Name: "range", Weight: 0.25, HardFail: true},
				{Name: "format", Weight: 0.15},
				{Name: "pairing", Weight: 0.1},
			},
			AcceptanceThreshold: 0.6,
			Range:               &RangeSpec{Min: -180, Max: 180},
			Parse:               ParseCoordinate,
			Coordinate:          true,
			RepairDegrees:       true,
		},
		"beacon_id": {
			Patterns: []PatternSpec{
				{Name: "hex15", Expr: `\b[0-9A-F]{15}\b`},
			},
			Fallback: &PatternSpec{Name: "hex_short", Expr: `\b[0-9A-F]{12,15}\b`},
			Checks: []CheckSpec{
				{Name: "format", Weight: 0.2},
			},
			AcceptanceThreshold: 0.6,
			Parse:               ParseText,
		},
		"detect_time": {
			Patterns: []PatternSpec{
				{Name: "iso", Expr: `\b\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}(?::\d{2})?Z?\b`},
				{Name: "day_time", Expr: `\b\d{1,3} \d{4}(?:\.\d+)?Z?\b`},
			},
			Checks: []CheckSpec{
				{Name: "format", Weight: 0.2},
			},
			AcceptanceThreshold: 0.6,
			Parse:               ParseText,
		},
		"position_method": {
			Patterns: []PatternSpec{
				{Name: "method", Expr: `\b(?:GPS|GNSS|DOPPLER|MANUAL|AIS)\b`},
			},
			Checks: []CheckSpec{
				{Name: "enum", Weight: 0.25, HardFail: true},
			},
			AcceptanceThreshold: 0.6,
			Enums:               []string{"GPS", "GNSS", "DOPPLER", "MANUAL", "AIS"},
			Parse:               ParseText,
		},
		"position_resolution": {
			Patterns: []PatternSpec{
				{Name: "resolution", Expr: `\b\d+(?:\.\d+)? ?(?:M|KM|NM|SEC|MIN)\b`},
			},
			Checks: []CheckSpec{
				{Name: "format", Weight: 0.2},
			},
			AcceptanceThreshold: 0.6,
			Parse:               ParseText,
		},
		"expected_error_nm": {
			Patterns: []PatternSpec{
				{Name: "decimal", Expr: `\b\d+(?:\.\d+)?\b`},
			},
			Checks: []CheckSpec{
				{Name: "range", Weight: 0.25, HardFail: true},
			},
			AcceptanceThreshold: 0.6,
			Range:               &RangeSpec{Min: 0, Max: 1000},
			Parse:               ParseNumber,
		},
	}
	if err := cfg.Compile(); err != nil {
		// The default expressions are covered by tests; a compile failure
		// here means the binary itself is broken.
		panic(err)
	}
	return cfg
}
