package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-fieldset/pkg/metrics"
)

func TestPrometheus_CountsOutcomes(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheus(metrics.WithRegistry(registry))

	recorder.ObserveValidation("User", true, time.Millisecond)
	recorder.ObserveValidation("User", false, time.Millisecond)
	recorder.ObserveValidation("User", false, time.Millisecond)
	recorder.ObserveFieldError("User", "email")
	recorder.ObserveRender("User", "edit", time.Millisecond, nil)
	recorder.ObserveSync("User", errors.New("boom"))

	counters, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(counters))
	for _, family := range counters {
		names[family.GetName()] = true
	}
	for _, want := range []string{
		"fieldset_validations_total",
		"fieldset_validation_duration_seconds",
		"fieldset_field_errors_total",
		"fieldset_renders_total",
		"fieldset_render_duration_seconds",
		"fieldset_syncs_total",
	} {
		if !names[want] {
			t.Fatalf("expected metric family %q, got %v", want, names)
		}
	}

	if got := testutil.CollectAndCount(registry, "fieldset_validations_total"); got != 2 {
		t.Fatalf("expected 2 validation series, got %d", got)
	}
}

func TestPrometheus_Namespace(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder := metrics.NewPrometheus(metrics.WithRegistry(registry), metrics.WithNamespace("forms"))
	recorder.ObserveSync("Order", nil)

	if got := testutil.CollectAndCount(registry, "forms_syncs_total"); got != 1 {
		t.Fatalf("expected 1 sync series, got %d", got)
	}
}

func TestNop(t *testing.T) {
	var recorder metrics.Recorder = metrics.Nop{}
	recorder.ObserveRender("User", "edit", 0, nil)
	recorder.ObserveValidation("User", true, 0)
	recorder.ObserveFieldError("User", "name")
	recorder.ObserveSync("User", nil)
}
