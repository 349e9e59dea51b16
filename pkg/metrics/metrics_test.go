package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	// Verify all metrics are initialized
	if r.HTTPRequestsTotal == nil {
		t.Error("HTTPRequestsTotal not initialized")
	}
	if r.ResolutionsTotal == nil {
		t.Error("ResolutionsTotal not initialized")
	}
	if r.LayoutRunsTotal == nil {
		t.Error("LayoutRunsTotal not initialized")
	}
	if r.SessionsActive == nil {
		t.Error("SessionsActive not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	// Should return the same instance
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()

	r.RecordHTTPRequest("GET", "/api/analysis", "200", 100*time.Millisecond)
	r.RecordHTTPRequest("POST", "/api/analysis", "201", 200*time.Millisecond)
	r.RecordHTTPRequest("GET", "/api/analysis", "404", 50*time.Millisecond)

	got := testutil.ToFloat64(r.HTTPRequestsTotal.WithLabelValues("GET", "/api/analysis", "200"))
	if got != 1 {
		t.Errorf("expected 1 GET 200 request, got %f", got)
	}
}

func TestRecordResolution(t *testing.T) {
	r := NewRegistry()

	r.RecordResolution("ok", 42, 50*time.Millisecond)
	r.RecordResolution("error", 0, 0)

	if got := testutil.ToFloat64(r.ResolutionsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("expected 1 ok resolution, got %f", got)
	}
	if got := testutil.ToFloat64(r.ResolutionsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 error resolution, got %f", got)
	}
}

func TestRecordLayoutTruncation(t *testing.T) {
	r := NewRegistry()

	r.RecordLayout("flow", 300, false, 10*time.Millisecond)
	r.RecordLayout("flow", 120, true, 5*time.Millisecond)
	// Tree layouts are analytic, zero steps, never truncated
	r.RecordLayout("modules", 0, true, time.Millisecond)

	if got := testutil.ToFloat64(r.LayoutTruncationsTotal); got != 1 {
		t.Errorf("expected 1 truncation, got %f", got)
	}
	if got := testutil.ToFloat64(r.LayoutRunsTotal.WithLabelValues("flow")); got != 2 {
		t.Errorf("expected 2 flow runs, got %f", got)
	}
}

func TestRecordInteraction(t *testing.T) {
	r := NewRegistry()

	r.RecordInteraction("click")
	r.RecordInteraction("click")
	r.RecordInteraction("hover")

	if got := testutil.ToFloat64(r.InteractionEventsTotal.WithLabelValues("click")); got != 2 {
		t.Errorf("expected 2 clicks, got %f", got)
	}
}
