package instrumentation

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics recorder backed by a manual reader so the
// recorded data can be collected and inspected.
func newTestMetrics(t *testing.T, detailedLabels bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	m, err := NewMetrics(provider.Meter("test"), detailedLabels)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
}

func collectMetricNames(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	metrics := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			metrics[m.Name] = m
		}
	}
	return metrics
}

func TestRecordToolInvocation(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordToolInvocation(ctx, "get_document", StatusSuccess, 50*time.Millisecond)
	m.RecordToolInvocation(ctx, "get_document", StatusError, 10*time.Millisecond)

	metrics := collectMetricNames(t, reader)

	counter, ok := metrics["mcp_tool_invocations_total"]
	if !ok {
		t.Fatal("Expected mcp_tool_invocations_total to be recorded")
	}
	sum, ok := counter.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("Expected Sum[int64] data, got %T", counter.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 2 {
		t.Errorf("Expected 2 invocations recorded, got %d", total)
	}

	if _, ok := metrics["mcp_tool_duration_seconds"]; !ok {
		t.Error("Expected mcp_tool_duration_seconds to be recorded")
	}
}

func TestRecordGoogleAPIOperation(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordGoogleAPIOperation(ctx, ServiceDocs, OperationGet, StatusSuccess, 100*time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceDrive, OperationCreate, StatusSuccess, 200*time.Millisecond)

	metrics := collectMetricNames(t, reader)

	counter, ok := metrics["google_api_operations_total"]
	if !ok {
		t.Fatal("Expected google_api_operations_total to be recorded")
	}
	sum, ok := counter.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("Expected Sum[int64] data, got %T", counter.Data)
	}
	// One data point per service/operation attribute set
	if len(sum.DataPoints) != 2 {
		t.Errorf("Expected 2 data points, got %d", len(sum.DataPoints))
	}
}

func TestRecordToolInvocationWithAccountCardinality(t *testing.T) {
	// With detailed labels disabled, the account must not appear as a label,
	// so two accounts collapse into one data point.
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordToolInvocationWithAccount(ctx, "get_document", StatusSuccess, "work", time.Millisecond)
	m.RecordToolInvocationWithAccount(ctx, "get_document", StatusSuccess, "personal", time.Millisecond)

	metrics := collectMetricNames(t, reader)
	sum := metrics["mcp_tool_invocations_total"].Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 1 {
		t.Errorf("Expected accounts to collapse into 1 data point, got %d", len(sum.DataPoints))
	}

	// With detailed labels enabled, accounts produce separate data points.
	m, reader = newTestMetrics(t, true)
	m.RecordToolInvocationWithAccount(ctx, "get_document", StatusSuccess, "work", time.Millisecond)
	m.RecordToolInvocationWithAccount(ctx, "get_document", StatusSuccess, "personal", time.Millisecond)

	metrics = collectMetricNames(t, reader)
	sum = metrics["mcp_tool_invocations_total"].Data.(metricdata.Sum[int64])
	if len(sum.DataPoints) != 2 {
		t.Errorf("Expected 2 data points with detailed labels, got %d", len(sum.DataPoints))
	}
}

func TestMetricsNilSafe(t *testing.T) {
	// The zero-value recorder (disabled instrumentation) must not panic.
	m := &Metrics{}
	ctx := context.Background()

	m.RecordToolInvocation(ctx, "get_document", StatusSuccess, time.Millisecond)
	m.RecordGoogleAPIOperation(ctx, ServiceDocs, OperationGet, StatusSuccess, time.Millisecond)
	m.RecordToolInvocationWithAccount(ctx, "get_document", StatusSuccess, "work", time.Millisecond)
}
