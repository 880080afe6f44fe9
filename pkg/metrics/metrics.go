// Package metrics records FieldSet activity. FieldSets talk to the Recorder
// interface; Prometheus is the bundled implementation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder receives FieldSet lifecycle observations.
type Recorder interface {
	ObserveRender(model, mode string, elapsed time.Duration, err error)
	ObserveValidation(model string, valid bool, elapsed time.Duration)
	ObserveFieldError(model, field string)
	ObserveSync(model string, err error)
}

// Nop discards observations.
type Nop struct{}

func (Nop) ObserveRender(string, string, time.Duration, error) {}
func (Nop) ObserveValidation(string, bool, time.Duration)      {}
func (Nop) ObserveFieldError(string, string)                   {}
func (Nop) ObserveSync(string, error)                          {}

// Config configures the Prometheus recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "fieldset").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the Prometheus recorder.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "fieldset",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Prometheus implements Recorder with counters and histograms.
type Prometheus struct {
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	validations    *prometheus.CounterVec
	validateTime   *prometheus.HistogramVec
	fieldErrors    *prometheus.CounterVec
	syncs          *prometheus.CounterVec
}

var _ Recorder = (*Prometheus)(nil)

// NewPrometheus registers the collectors. Registering twice on one registry
// panics, so build one recorder per registry.
func NewPrometheus(opts ...Option) *Prometheus {
	config := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&config)
		}
	}
	factory := promauto.With(config.Registry)

	return &Prometheus{
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of FieldSet renders",
			ConstLabels: config.ConstLabels,
		}, []string{"model", "mode", "status"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "FieldSet render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"model", "mode"}),

		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "validations_total",
			Help:        "Total number of FieldSet validations by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"model", "outcome"}),

		validateTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "validation_duration_seconds",
			Help:        "FieldSet validation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"model"}),

		fieldErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "field_errors_total",
			Help:        "Total number of field validation failures",
			ConstLabels: config.ConstLabels,
		}, []string{"model", "field"}),

		syncs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "syncs_total",
			Help:        "Total number of FieldSet syncs",
			ConstLabels: config.ConstLabels,
		}, []string{"model", "status"}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) ObserveRender(model, mode string, elapsed time.Duration, err error) {
	p.renders.WithLabelValues(model, mode, status(err)).Inc()
	p.renderDuration.WithLabelValues(model, mode).Observe(elapsed.Seconds())
}

func (p *Prometheus) ObserveValidation(model string, valid bool, elapsed time.Duration) {
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	p.validations.WithLabelValues(model, outcome).Inc()
	p.validateTime.WithLabelValues(model).Observe(elapsed.Seconds())
}

func (p *Prometheus) ObserveFieldError(model, field string) {
	p.fieldErrors.WithLabelValues(model, field).Inc()
}

func (p *Prometheus) ObserveSync(model string, err error) {
	p.syncs.WithLabelValues(model, status(err)).Inc()
}
