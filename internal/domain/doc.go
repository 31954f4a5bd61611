// Package domain models SARSAT (Search and Rescue Satellite-Aided Tracking)
// distress-beacon position reports and the coordinate extraction core that
// turns raw message text into structured position records.
//
// # Data Source
//
// SARSAT alert messages are relayed by Rescue Coordination Centers as
// newline-delimited plain text. The upstream collector publishes each message
// verbatim to the Kafka source topic; the message body is never structured
// JSON. Formatting is inconsistent across ground stations, so every field is
// recovered with regex heuristics rather than positional parsing.
//
// # Coordinate Conventions
//
// Coordinates appear in three textual grammars, all ending (usually) in a
// cardinal letter:
//
//	Decimal minutes:  "37 45.600N 075 30.200W"   (most common)
//	Degrees-minutes-seconds: "47 06 36.0N"        (three numeric groups,
//	  integer minutes distinguish DMS from decimal minutes)
//	Decimal degrees:  "34.0522N" or "-34.0522"
//
// Longitudes occasionally arrive as a minutes-only fragment ("30.200W") with
// the degrees token stranded a few characters to the left; the validator
// repairs these by searching a small left window for the degrees.
//
// # Extraction Policy
//
// All field extraction funnels through [ValidateAndExtract], the single
// validation engine shared by the preparse QA scanner and the main parser.
// Extraction never fails on garbled text: malformed fields degrade to an
// [ExtractionResult] with Valid=false and diagnostic notes. The only caller
// errors are [ConfigError] (unknown field name) and [StructureError] (the
// message has no recognizable SARSAT section headers at all).
//
// Confidence is accumulated from weighted semantic checks on top of a base
// score for the structural match; a field is valid when confidence reaches
// the configured acceptance threshold and no hard-fail check failed. A single
// configured fallback pattern is retried once when the primary attempt is
// invalid, and the fallback outcome is final.
//
// # Position Semantics
//
// A message carries up to two positions: A (first "PROB EE SOL" block) and
// B (second). Position status is "C" (confirmed) on successful extraction and
// "U" (unlocated) for the "N/A N/A U N/A" marker. Range-ring radii derive
// from the position method: GNSS resolves to 5 m, Doppler and unknown methods
// fall back to 5000 m.
package domain
