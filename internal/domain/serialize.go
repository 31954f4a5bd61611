package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// generateMessageID derives a stable identifier for messages that arrived
// without one, hashing the fields that distinguish a detection.
func generateMessageID(pos *ParsedPosition) string {
	var lat, lon float64
	if pos.A.Located() {
		lat, lon = *pos.A.Lat, *pos.A.Lon
	}
	seed := fmt.Sprintf("%s|%s|%.6f|%.6f", pos.BeaconID, pos.DetectTime.Format(time.RFC3339), lat, lon)
	sum := sha256.Sum256([]byte(seed))
	return "sarsat-" + hex.EncodeToString(sum[:8])
}

// SerializeParsedPosition renders the record as the sink-topic event: JSON
// body keyed by message ID, with routing headers downstream consumers
// filter on without deserializing.
func SerializeParsedPosition(pos *ParsedPosition) (OutputEvent, error) {
	body, err := json.Marshal(pos)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("marshaling position %s: %w", pos.MessageID, err)
	}
	return OutputEvent{
		Key:   []byte(pos.MessageID),
		Value: body,
		Headers: map[string]string{
			"beacon_id":    pos.BeaconID,
			"processed_at": pos.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
