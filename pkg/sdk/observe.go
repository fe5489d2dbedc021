package ctxdex

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// clientMetrics holds prometheus metrics registered for the client.
type clientMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	results    *prometheus.HistogramVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ctxdex",
			Subsystem: "client",
			Name:      "operations_total",
			Help:      "Total client operations by type, retrieval mode and status.",
		}, []string{"operation", "mode", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ctxdex",
			Subsystem: "client",
			Name:      "operation_duration_seconds",
			Help:      "Client operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ctxdex",
			Subsystem: "client",
			Name:      "operation_results",
			Help:      "Documents returned per client operation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.results); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("ctxdex: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("ctxdex: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for client operations.
type observer struct {
	logger  *slog.Logger
	metrics *clientMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *clientMetrics
	if reg != nil {
		var err error
		m, err = newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// op describes one finished client operation.
type op struct {
	name    string
	mode    Mode
	start   time.Time
	results int
	err     error
}

func (o *observer) observe(e op) {
	if o == nil {
		return
	}
	dur := time.Since(e.start)

	if o.metrics != nil {
		status := "ok"
		if e.err != nil {
			status = "error"
		}
		o.metrics.operations.WithLabelValues(e.name, string(e.mode), status).Inc()
		o.metrics.duration.WithLabelValues(e.name).Observe(dur.Seconds())
		if e.err == nil {
			o.metrics.results.WithLabelValues(e.name).Observe(float64(e.results))
		}
	}

	if o.logger == nil {
		return
	}
	if e.err != nil {
		o.logger.Warn("operation failed",
			"op", e.name,
			"mode", e.mode,
			"duration", dur,
			"error", e.err,
		)
		return
	}
	o.logger.Debug("operation completed",
		"op", e.name,
		"mode", e.mode,
		"duration", dur,
		"results", e.results,
	)
}
