package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run results used as the "result" label of ephext_runs_total.
const (
	ResultSuccess   = "success"
	ResultNoBlocks  = "no_blocks"
	ResultFailure   = "failure"
	ResultCancelled = "cancelled"
)

// RunCollector bundles Prometheus metrics describing extension runs. The
// values are written to a node-exporter textfile at the end of a run rather
// than scraped, since the process is short-lived.
type RunCollector struct {
	gatherer prometheus.Gatherer

	Runs           *prometheus.CounterVec
	BlocksExtended prometheus.Counter
	FieldsSkipped  *prometheus.CounterVec
	InputLines     prometheus.Gauge
	RunDuration    prometheus.Histogram
}

// NewRunCollector registers run metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewRunCollector(reg prometheus.Registerer) (*RunCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ephext_runs_total",
		Help: "Total number of extension runs, labeled by result.",
	}, []string{"result"}), "ephext_runs_total")
	if err != nil {
		return nil, err
	}

	blocks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ephext_blocks_extended_total",
		Help: "Number of epoch blocks appended to output files.",
	}), "ephext_blocks_extended_total")
	if err != nil {
		return nil, err
	}

	skipped, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ephext_fields_skipped_total",
		Help: "Optional fields left unchanged because they could not be rewritten, labeled by field.",
	}, []string{"field"}), "ephext_fields_skipped_total")
	if err != nil {
		return nil, err
	}

	lines, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ephext_input_lines",
		Help: "Number of lines in the most recently processed input file.",
	}), "ephext_input_lines")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ephext_run_duration_seconds",
		Help:    "Wall-clock duration of extension runs in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}), "ephext_run_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &RunCollector{
		gatherer:       gatherer,
		Runs:           runs,
		BlocksExtended: blocks,
		FieldsSkipped:  skipped,
		InputLines:     lines,
		RunDuration:    duration,
	}, nil
}

// ObserveRun counts a finished run and records its duration.
func (c *RunCollector) ObserveRun(result string, d time.Duration) {
	if c == nil {
		return
	}
	c.Runs.WithLabelValues(result).Inc()
	c.RunDuration.Observe(d.Seconds())
}

// RecordBlock counts one appended epoch block.
func (c *RunCollector) RecordBlock() {
	if c == nil {
		return
	}
	c.BlocksExtended.Inc()
}

// RecordSkipped counts an optional field that was left unchanged.
func (c *RunCollector) RecordSkipped(field string) {
	if c == nil {
		return
	}
	c.FieldsSkipped.WithLabelValues(field).Inc()
}

// SetInputLines records the size of the processed input.
func (c *RunCollector) SetInputLines(n int) {
	if c == nil {
		return
	}
	c.InputLines.Set(float64(n))
}

// WriteTextfile writes every metric in the collector's gatherer to path in
// the Prometheus text exposition format. The file is replaced atomically.
func (c *RunCollector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
