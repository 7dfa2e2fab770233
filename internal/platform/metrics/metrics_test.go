package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Counts(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	r, err := NewRecorder(reg)
	if err != nil {
		t.Fatalf("NewRecorder returned error: %v", err)
	}

	r.ValidationFailed("report.create")
	r.ValidationFailed("report.create")
	r.ValidationFailed("employee.update")
	r.LikeConflict()

	if got := testutil.ToFloat64(r.validationFailures.WithLabelValues("report.create")); got != 2 {
		t.Fatalf("expected 2 report.create failures, got %v", got)
	}
	if got := testutil.ToFloat64(r.validationFailures.WithLabelValues("employee.update")); got != 1 {
		t.Fatalf("expected 1 employee.update failure, got %v", got)
	}
	if got := testutil.ToFloat64(r.likeConflicts); got != 1 {
		t.Fatalf("expected 1 like conflict, got %v", got)
	}
}

func TestNewRecorder_DuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	if _, err := NewRecorder(reg); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if _, err := NewRecorder(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
