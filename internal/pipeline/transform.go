package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/rescuedecisions/sarsat-msg-etl/internal/domain"
	"github.com/rescuedecisions/sarsat-msg-etl/internal/observability"
)

// SarsatTransformer implements Transformer using the domain parser with
// optional weather enrichment.
type SarsatTransformer struct {
	fieldCfg domain.Config
	weather  domain.WeatherProvider
	logger   *slog.Logger
	metrics  *observability.Metrics

	weatherBaseURL  string
	weatherTimeout  time.Duration
	shoreDistanceKm float64
}

// NewTransformer creates a SarsatTransformer. Pass a nil weather provider to
// disable weather enrichment.
func NewTransformer(fieldCfg domain.Config, weather domain.WeatherProvider, logger *slog.Logger, metrics *observability.Metrics, weatherBaseURL string, weatherTimeout time.Duration, shoreDistanceKm float64) *SarsatTransformer {
	return &SarsatTransformer{
		fieldCfg:        fieldCfg,
		weather:         weather,
		logger:          logger,
		metrics:         metrics,
		weatherBaseURL:  weatherBaseURL,
		weatherTimeout:  weatherTimeout,
		shoreDistanceKm: shoreDistanceKm,
	}
}

// Transform parses one raw SARSAT message into a serialized position record.
// The only transform error surfaced to the pipeline is a *StructureError for
// text with no SARSAT sections; garbled individual fields ride along as
// diagnostics on the record.
func (t *SarsatTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	msg := domain.RawMessage{ID: string(raw.Key), Text: string(raw.Value)}

	pos, err := domain.ParseMessage(msg, t.fieldCfg)
	if err != nil {
		return domain.OutputEvent{}, err
	}
	pos.RawPayload = raw.Value

	t.observeConfidence(pos)
	domain.EnrichPosition(pos)

	if t.weather != nil {
		weatherCtx, cancel := context.WithTimeout(ctx, t.weatherTimeout)
		domain.EnrichWithWeather(weatherCtx, pos, t.weather, t.weatherBaseURL, t.shoreDistanceKm, t.logger)
		cancel()
	} else {
		pos.WeatherSource = "none"
	}

	return domain.SerializeParsedPosition(pos)
}

func (t *SarsatTransformer) observeConfidence(pos *domain.ParsedPosition) {
	if pos.A.LatResult.RawSpan != "" {
		t.metrics.ExtractionConfidence.WithLabelValues("latitude").Observe(pos.A.LatResult.Confidence)
	}
	if pos.A.LonResult.RawSpan != "" {
		t.metrics.ExtractionConfidence.WithLabelValues("longitude").Observe(pos.A.LonResult.Confidence)
	}
}
