package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveLabelsOutcome(t *testing.T) {
	rec := New()
	rec.Observe("report", "approve", nil)
	rec.Observe("report", "approve", apperr.Conflict("changed").WithCode("stale_transition"))
	rec.Observe("report", "approve", errors.New("db down"))

	if got := testutil.ToFloat64(rec.transitions.WithLabelValues("report", "approve", OutcomeOK)); got != 1 {
		t.Fatalf("expected 1 ok, got %v", got)
	}
	if got := testutil.ToFloat64(rec.transitions.WithLabelValues("report", "approve", "stale_transition")); got != 1 {
		t.Fatalf("expected 1 stale_transition, got %v", got)
	}
	if got := testutil.ToFloat64(rec.transitions.WithLabelValues("report", "approve", "error")); got != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
}

func TestNilRecorderIsSafe(t *testing.T) {
	var rec *Recorder
	rec.Observe("project", "transition", nil)
}

func TestHandlerExposesCounter(t *testing.T) {
	rec := New()
	rec.Observe("project", "transition", nil)

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(w.Body.String(), "slf_workflow_transitions_total") {
		t.Fatalf("expected counter in exposition output")
	}
}
