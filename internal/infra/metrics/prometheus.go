// Package metrics records service operation outcomes in Prometheus.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Recorder implements core.MetricsRecorder with a counter and a latency
// histogram per operation.
type Recorder struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

// NewRecorder creates the collectors under namespace and registers them on
// reg. A nil registerer leaves them unregistered.
func NewRecorder(namespace string, reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "The total number of service operations by outcome",
		}, []string{"operation", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time taken by service operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		return r, nil
	}
	for _, c := range []prometheus.Collector{r.operations, r.durations} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return r, nil
}

// Observe records one operation.
func (r *Recorder) Observe(_ context.Context, op string, success bool, duration time.Duration) {
	status := StatusSuccess
	if !success {
		status = StatusError
	}
	r.operations.WithLabelValues(op, status).Inc()
	r.durations.WithLabelValues(op).Observe(duration.Seconds())
}

// Collectors exposes the underlying collectors.
func (r *Recorder) Collectors() []prometheus.Collector {
	return []prometheus.Collector{r.operations, r.durations}
}
