package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ETL pipeline.
type Metrics struct {
	MessagesConsumed  prometheus.Counter
	PositionsProduced prometheus.Counter
	ParseErrors       prometheus.Counter
	TransformErrors   prometheus.Counter
	PipelineRunning   prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Extraction quality metrics.
	ExtractionConfidence *prometheus.HistogramVec // labels: field

	// Weather enrichment metrics.
	WeatherRequests    *prometheus.CounterVec   // labels: kind={stations,observation}, outcome={success,error,empty}
	WeatherCache       *prometheus.CounterVec   // labels: result={hit,miss}
	WeatherAPIDuration *prometheus.HistogramVec // labels: kind={stations,observation}
	WeatherEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sarsat_etl",
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the source topic.",
		}),
		PositionsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sarsat_etl",
			Name:      "positions_produced_total",
			Help:      "Total parsed position records written to the sink topic.",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sarsat_etl",
			Name:      "parse_errors_total",
			Help:      "Total messages rejected as structurally non-SARSAT.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sarsat_etl",
			Name:      "transform_errors_total",
			Help:      "Total transformation failures other than parse rejections.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sarsat_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sarsat_etl",
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sarsat_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ExtractionConfidence: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sarsat_etl",
			Name:      "extraction_confidence",
			Help:      "Validator confidence scores for extracted coordinate fields.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}, []string{"field"}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sarsat_etl",
			Name:      "weather_requests_total",
			Help:      "NDBC requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sarsat_etl",
			Name:      "weather_cache_total",
			Help:      "Station lookup cache results.",
		}, []string{"result"}),
		WeatherAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sarsat_etl",
			Name:      "weather_api_duration_seconds",
			Help:      "NDBC request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
		WeatherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sarsat_etl",
			Name:      "weather_enabled",
			Help:      "1 when weather enrichment is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.PositionsProduced,
		m.ParseErrors,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.ExtractionConfidence,
		m.WeatherRequests,
		m.WeatherCache,
		m.WeatherAPIDuration,
		m.WeatherEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		MessagesConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sarsat_etl", Name: "messages_consumed_total"}),
		PositionsProduced:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sarsat_etl", Name: "positions_produced_total"}),
		ParseErrors:             prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sarsat_etl", Name: "parse_errors_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "sarsat_etl", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "sarsat_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "sarsat_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "sarsat_etl", Name: "batch_processing_duration_seconds"}),
		ExtractionConfidence:    prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "sarsat_etl", Name: "extraction_confidence"}, []string{"field"}),
		WeatherRequests:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sarsat_etl", Name: "weather_requests_total"}, []string{"kind", "outcome"}),
		WeatherCache:            prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "sarsat_etl", Name: "weather_cache_total"}, []string{"result"}),
		WeatherAPIDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "sarsat_etl", Name: "weather_api_duration_seconds"}, []string{"kind"}),
		WeatherEnabled:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "sarsat_etl", Name: "weather_enabled"}),
	}
}
