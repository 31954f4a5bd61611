// Package prescan sweeps raw SARSAT messages for coordinate-like fields
// before full parsing and logs every pattern-matched span, valid or not, to
// the coordinate QA log. Operators diff the log against parser output to
// catch extraction regressions on live traffic.
package prescan

import (
	"iter"
	"sort"
	"strings"

	"github.com/rescuedecisions/sarsat-msg-etl/internal/domain"
)

// Scan lazily walks the messages and yields one CoordinateRow per
// coordinate-flagged field per message line where an extraction pattern
// matched. Spans with no pattern match are never logged. A message that
// fails extraction entirely yields nothing for that message and the sweep
// continues; re-invoking the returned sequence restarts the sweep.
func Scan(messages iter.Seq[domain.RawMessage], cfg domain.Config) iter.Seq[domain.CoordinateRow] {
	fields := coordinateFields(cfg)
	return func(yield func(domain.CoordinateRow) bool) {
		for msg := range messages {
			for _, line := range strings.Split(msg.Text, "\n") {
				if strings.TrimSpace(line) == "" {
					continue
				}
				for _, field := range fields {
					res, err := domain.ValidateAndExtract(field, line, cfg, nil)
					if err != nil || res.RawSpan == "" {
						continue
					}
					row := domain.CoordinateRow{
						MessageID:  msg.ID,
						Field:      field,
						RawSpan:    res.RawSpan,
						Value:      res.Value,
						Valid:      res.Valid,
						Confidence: res.Confidence,
					}
					if !yield(row) {
						return
					}
				}
			}
		}
	}
}

// coordinateFields returns the coordinate-flagged field names in a stable
// order so QA log diffs stay line-comparable across runs.
func coordinateFields(cfg domain.Config) []string {
	var names []string
	for name, fc := range cfg {
		if fc.Coordinate {
			names = append(names, name)
		}
	}
	// Latitude before longitude reads naturally in the log; a plain sort
	// happens to give exactly that.
	sort.Strings(names)
	return names
}
