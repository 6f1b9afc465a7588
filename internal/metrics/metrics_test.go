package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tidemark-games/worldcore/pkg/models"
)

func TestObserverCounters(t *testing.T) {
	s := NewSet()

	s.ActivationResolved(models.ActivationStarted)
	s.ActivationResolved(models.ActivationStarted)
	s.ActivationResolved(models.ActivationBlocked)
	s.ContextTicked(models.TickCompleted)
	s.ExecutionFault()

	if got := testutil.ToFloat64(s.activations.WithLabelValues(string(models.ActivationStarted))); got != 2 {
		t.Errorf("started activations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(s.activations.WithLabelValues(string(models.ActivationBlocked))); got != 1 {
		t.Errorf("blocked activations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.executionFaults); got != 1 {
		t.Errorf("faults = %v, want 1", got)
	}
}

func TestReloadRecorded(t *testing.T) {
	s := NewSet()

	s.ReloadRecorded(true, 12)
	s.ReloadRecorded(false, 0)

	if got := testutil.ToFloat64(s.definitions); got != 12 {
		t.Errorf("definitions gauge = %v, want 12", got)
	}
	if got := testutil.ToFloat64(s.reloads.WithLabelValues("success")); got != 1 {
		t.Errorf("successful reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.reloads.WithLabelValues("failure")); got != 1 {
		t.Errorf("failed reloads = %v, want 1", got)
	}

	// A failed reload must not disturb the gauge.
	s.ReloadRecorded(false, 0)
	if got := testutil.ToFloat64(s.definitions); got != 12 {
		t.Errorf("definitions gauge = %v after failed reload, want 12", got)
	}
}

func TestHandlerExposesTickMetrics(t *testing.T) {
	s := NewSet()
	s.TickProcessed(2*time.Millisecond, 40)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, name := range []string{
		"worldcore_ticks_total",
		"worldcore_tick_duration_seconds",
		"worldcore_entities_per_tick",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
