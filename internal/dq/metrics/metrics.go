package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus metrics. A nil *Metrics is valid
// and records nothing, which keeps service tests free of global registry
// collisions.
type Metrics struct {
	IssuesCreated     *prometheus.CounterVec
	IssuesIgnored     prometheus.Counter
	PatchesApplied    prometheus.Counter
	OverridesDetected prometheus.Counter
	AmbiguousSkipped  prometheus.Counter
	ScanDuration      *prometheus.HistogramVec
}

// New creates and registers all engine metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		IssuesCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "civiq_issues_created_total",
			Help: "Issues created by materialization runs, by subject kind",
		}, []string{"kind"}),
		IssuesIgnored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civiq_issues_ignored_total",
			Help: "Issues dismissed by a human exception",
		}),
		PatchesApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civiq_patches_applied_total",
			Help: "Approved patches applied to live entities",
		}),
		OverridesDetected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civiq_patch_overrides_total",
			Help: "Approved patches deprecated because a scraper overrode the old value",
		}),
		AmbiguousSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "civiq_patches_ambiguous_skipped_total",
			Help: "Approved patches skipped because a single-value category had duplicates",
		}),
		ScanDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "civiq_scan_duration_seconds",
			Help:    "Wall time of one jurisdiction+kind materialization",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

func (m *Metrics) AddIssuesCreated(kind string, n int) {
	if m == nil {
		return
	}
	m.IssuesCreated.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) IncIssuesIgnored() {
	if m == nil {
		return
	}
	m.IssuesIgnored.Inc()
}

func (m *Metrics) IncPatchesApplied() {
	if m == nil {
		return
	}
	m.PatchesApplied.Inc()
}

func (m *Metrics) IncOverridesDetected() {
	if m == nil {
		return
	}
	m.OverridesDetected.Inc()
}

func (m *Metrics) IncAmbiguousSkipped() {
	if m == nil {
		return
	}
	m.AmbiguousSkipped.Inc()
}

func (m *Metrics) ObserveScan(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.ScanDuration.WithLabelValues(kind).Observe(d.Seconds())
}
