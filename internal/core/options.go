package core

import (
	"time"

	"airportcore/internal/blob"
	"airportcore/internal/export"
)

// Option customises a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	clock   Clock
	logger  Logger
	metrics MetricsRecorder
	blobs   blob.Store
	archive export.Archive
}

func defaultServiceOptions() serviceOptions {
	return serviceOptions{
		clock:   ClockFunc(func() time.Time { return time.Now().UTC() }),
		logger:  noopLogger{},
		metrics: noopMetrics{},
	}
}

// WithClock overrides the time source used for validation and session
// bookkeeping.
func WithClock(clock Clock) Option {
	return func(o *serviceOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger installs a structured logger.
func WithLogger(logger Logger) Option {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetricsRecorder installs an operation metrics recorder.
func WithMetricsRecorder(metrics MetricsRecorder) Option {
	return func(o *serviceOptions) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// WithBlobStore sets the blob store used for dataset loads and report exports.
func WithBlobStore(store blob.Store) Option {
	return func(o *serviceOptions) { o.blobs = store }
}

// WithArchive adds a write-only archive sink to report exports.
func WithArchive(archive export.Archive) Option {
	return func(o *serviceOptions) { o.archive = archive }
}
