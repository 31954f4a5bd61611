package domain

import "fmt"

// ConfigError reports a request for a field name the configuration does not
// define. It is the only error ValidateAndExtract returns and always
// indicates a programming or deployment mistake, never bad message text.
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("no field configuration for %q", e.Field)
}

// FormatError reports a coordinate token that matched none of the supported
// grammars. Callers inside the extraction path recover it into an invalid
// ExtractionResult; it never escapes to the pipeline.
type FormatError struct {
	Raw string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized coordinate format: %q", e.Raw)
}

// StructureError reports a message with no recognizable SARSAT section
// headers. The pipeline treats it as a data error: the message is skipped
// and committed, not retried.
type StructureError struct {
	MessageID string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("message %s has no recognizable SARSAT sections", e.MessageID)
}
