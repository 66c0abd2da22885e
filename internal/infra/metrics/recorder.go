package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"actbatch/internal/domain"
)

// Recorder collects per-run dispatch metrics in its own registry so a run can
// be exported as a node_exporter textfile.
type Recorder struct {
	registry *prometheus.Registry

	itemsTotal       *prometheus.CounterVec
	skippedTotal     prometheus.Counter
	generateDuration *prometheus.HistogramVec
	lastRunTimestamp prometheus.Gauge
}

func NewRecorder(runID string) *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(prometheus.WrapRegistererWith(prometheus.Labels{"run_id": runID}, registry))

	return &Recorder{
		registry: registry,
		itemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actbatch_items_total",
				Help: "Images dispatched to the generator",
			},
			[]string{"outcome"}, // outcome: success, failure
		),
		skippedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "actbatch_skipped_duplicates_total",
				Help: "Images skipped because their video already existed",
			},
		),
		generateDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "actbatch_generate_duration_seconds",
				Help:    "Generation call duration in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"outcome"},
		),
		lastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "actbatch_last_result_timestamp_seconds",
				Help: "Unix time of the most recent recorded result",
			},
		),
	}
}

func (r *Recorder) ObserveResult(result domain.ProcessingResult) {
	outcome := string(result.Outcome)
	r.itemsTotal.WithLabelValues(outcome).Inc()
	r.generateDuration.WithLabelValues(outcome).Observe(result.Duration.Seconds())
	if !result.Timestamp.IsZero() {
		r.lastRunTimestamp.Set(float64(result.Timestamp.Unix()))
	}
}

func (r *Recorder) ObserveSkipped(count int) {
	if count > 0 {
		r.skippedTotal.Add(float64(count))
	}
}

// WriteTextfile writes the collected metrics to path in the Prometheus text
// format, replacing the file atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
