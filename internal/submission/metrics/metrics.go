package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the submission module.
// Tracks generation outcomes and compile durations.
type Metrics struct {
	Generations     *prometheus.CounterVec
	CompileDuration prometheus.Histogram
	Downloads       *prometheus.CounterVec
	Emails          *prometheus.CounterVec
}

// New creates a new Metrics instance with all submission module metrics registered.
func New() *Metrics {
	return &Metrics{
		Generations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "willforge_generations_total",
			Help: "Total number of generation runs by outcome",
		}, []string{"outcome"}),
		CompileDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "willforge_compile_duration_seconds",
			Help:    "Duration of the full build-render-compile pipeline",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		Downloads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "willforge_downloads_total",
			Help: "Total number of document downloads by kind",
		}, []string{"kind"}),
		Emails: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "willforge_emails_total",
			Help: "Total number of email delivery attempts by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementGeneration records one generation run with its outcome
// (completed, validation_failed, error).
func (m *Metrics) IncrementGeneration(outcome string) {
	m.Generations.WithLabelValues(outcome).Inc()
}

// ObserveCompile records the duration of a generation pipeline run.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCompile(start time.Time) {
	m.CompileDuration.Observe(time.Since(start).Seconds())
}

// IncrementDownload records one document download ("will" or "checklist").
func (m *Metrics) IncrementDownload(kind string) {
	m.Downloads.WithLabelValues(kind).Inc()
}

// IncrementEmail records one email delivery attempt ("sent" or "failed").
func (m *Metrics) IncrementEmail(outcome string) {
	m.Emails.WithLabelValues(outcome).Inc()
}
