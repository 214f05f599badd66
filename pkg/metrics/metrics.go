package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OpCreate      = "create"
	OpUpdate      = "update"
	OpDelete      = "delete"
	OpRetrieveAll = "retrieve_all"
)

// Observer captures telemetry for gateway operations.
type Observer interface {
	RecordUpload(op string, duration time.Duration, sizeBytes int, err error)
	RecordOperation(op string, duration time.Duration, err error)
	RecordInvalidation(err error)
}

// PrometheusObserver exports gateway metrics to Prometheus.
type PrometheusObserver struct {
	opDuration    *prometheus.HistogramVec
	opErrors      *prometheus.CounterVec
	uploadBytes   prometheus.Counter
	invalidations *prometheus.CounterVec
}

// NewPrometheusObserver registers the gateway metrics on reg (the default registerer when nil).
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "media_gateway"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of remote media operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		opErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_errors_total",
			Help:      "Count of remote media operation failures.",
		}, []string{"operation"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Cumulative size of files accepted by the media store.",
		}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_invalidations_total",
			Help:      "Page cache invalidations by outcome.",
		}, []string{"outcome"}),
	}
	var err error
	if o.opDuration, err = register(reg, o.opDuration); err != nil {
		return nil, err
	}
	if o.opErrors, err = register(reg, o.opErrors); err != nil {
		return nil, err
	}
	if o.uploadBytes, err = register(reg, o.uploadBytes); err != nil {
		return nil, err
	}
	if o.invalidations, err = register(reg, o.invalidations); err != nil {
		return nil, err
	}
	return o, nil
}

// register returns the collector already registered under the same descriptor, if any,
// so every observer on one registry records into the scraped series.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register gateway metric: %w", err)
	}
	return c, nil
}

func (o *PrometheusObserver) RecordUpload(op string, duration time.Duration, sizeBytes int, err error) {
	if o == nil {
		return
	}
	o.RecordOperation(op, duration, err)
	if err == nil {
		o.uploadBytes.Add(float64(sizeBytes))
	}
}

func (o *PrometheusObserver) RecordOperation(op string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.opDuration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		o.opErrors.WithLabelValues(op).Inc()
	}
}

func (o *PrometheusObserver) RecordInvalidation(err error) {
	if o == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	o.invalidations.WithLabelValues(outcome).Inc()
}

type nopObserver struct{}

func NewNopObserver() Observer { return nopObserver{} }

func (nopObserver) RecordUpload(string, time.Duration, int, error) {}

func (nopObserver) RecordOperation(string, time.Duration, error) {}

func (nopObserver) RecordInvalidation(error) {}
