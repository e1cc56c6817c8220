package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"airportcore/internal/core"
)

var _ core.MetricsRecorder = (*Recorder)(nil)

func TestRecorderCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder("airportcore", reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	ctx := context.Background()
	rec.Observe(ctx, "flight.create", true, 5*time.Millisecond)
	rec.Observe(ctx, "flight.create", true, 7*time.Millisecond)
	rec.Observe(ctx, "flight.create", false, time.Millisecond)

	if got := testutil.ToFloat64(rec.operations.WithLabelValues("flight.create", StatusSuccess)); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("flight.create", StatusError)); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
	if got := testutil.CollectAndCount(rec.durations); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}

	expected := `
# HELP airportcore_operations_total The total number of service operations by outcome
# TYPE airportcore_operations_total counter
airportcore_operations_total{operation="flight.create",status="error"} 1
airportcore_operations_total{operation="flight.create",status="success"} 2
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "airportcore_operations_total"); err != nil {
		t.Fatalf("unexpected exposition: %v", err)
	}
}

func TestRecorderRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewRecorder("dup", reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewRecorder("dup", reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestRecorderWithService(t *testing.T) {
	rec, err := NewRecorder("svc", nil)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	svc := core.NewInMemoryService(nil, core.WithMetricsRecorder(rec))
	svc.ListPlanes(context.Background())
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("plane.list", StatusSuccess)); got != 1 {
		t.Fatalf("expected plane.list to be counted, got %v", got)
	}
}
