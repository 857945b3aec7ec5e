package observability

import (
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/yungbote/kgcontent-backend/internal/platform/envutil"
	"github.com/yungbote/kgcontent-backend/internal/platform/logger"
)

const namespace = "kgcontent"

type Metrics struct {
	registry     *prometheus.Registry
	stepDuration *prometheus.HistogramVec
	runs         *prometheus.CounterVec
	graphWrites  *prometheus.CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Current returns the process-wide metrics, or nil when Init has not enabled them.
func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics once. It returns nil unless
// METRICS_ENABLED is set; every method is safe on a nil receiver.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics(prometheus.NewRegistry())
		if log != nil {
			log.Info("metrics initialized", "namespace", namespace)
		}
	})
	return instance
}

// NewMetrics registers the content metrics on reg.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "step_duration_seconds",
				Help:      "Pipeline step latency in seconds by operation/step/outcome.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"operation", "step", "outcome"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "runs_total",
				Help:      "Pipeline runs by operation/outcome.",
			},
			[]string{"operation", "outcome"},
		),
		graphWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "graph",
				Name:      "writes_total",
				Help:      "Graph write calls by kind.",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.stepDuration, m.runs, m.graphWrites)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveStep(operation, step, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(orUnknown(operation), orUnknown(step), orUnknown(outcome)).Observe(dur.Seconds())
}

func (m *Metrics) ObserveRun(operation, outcome string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(orUnknown(operation), orUnknown(outcome)).Inc()
}

// IncGraphWrite counts one write call; kind is e.g. "resource_create".
func (m *Metrics) IncGraphWrite(kind string) {
	if m == nil {
		return
	}
	m.graphWrites.WithLabelValues(orUnknown(kind)).Inc()
}

// WritePrometheus writes the text exposition of every registered metric.
func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
