package prescan

import (
	"encoding/csv"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rescuedecisions/sarsat-msg-etl/internal/domain"
)

// DefaultLogPath is where the QA sweep appends its findings.
const DefaultLogPath = "data/debugging/debug_preparsed_coordinates.csv"

var csvHeader = []string{"message_id", "field_name", "raw_span", "value", "valid", "confidence"}

// WriteCSV appends the rows to the QA log at path, creating the file and
// its directories on first use. The header is written only when the file is
// new, so repeated sweeps keep appending to one log. Returns the number of
// rows written.
func WriteCSV(path string, rows iter.Seq[domain.CoordinateRow]) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating QA log directory: %w", err)
	}

	info, err := os.Stat(path)
	fresh := os.IsNotExist(err) || (err == nil && info.Size() == 0)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("opening QA log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(csvHeader); err != nil {
			return 0, fmt.Errorf("writing QA log header: %w", err)
		}
	}

	count := 0
	for row := range rows {
		value := ""
		if row.Value != nil {
			value = strconv.FormatFloat(*row.Value, 'f', -1, 64)
		}
		record := []string{
			row.MessageID,
			row.Field,
			row.RawSpan,
			value,
			strconv.FormatBool(row.Valid),
			strconv.FormatFloat(row.Confidence, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return count, fmt.Errorf("writing QA log row: %w", err)
		}
		count++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return count, fmt.Errorf("flushing QA log: %w", err)
	}
	return count, nil
}
