// Package metrics exposes Prometheus instrumentation for the workflow services.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"net/http"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeOK is the outcome label for a committed transition.
const OutcomeOK = "ok"

// Recorder counts workflow transition attempts by entity, action and outcome.
type Recorder struct {
	registry    *prometheus.Registry
	transitions *prometheus.CounterVec
}

// New creates a Recorder with its own registry, including Go runtime collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Recorder{
		registry: reg,
		transitions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "slf",
			Subsystem: "workflow",
			Name:      "transitions_total",
			Help:      "Workflow transition attempts partitioned by entity, action and outcome.",
		}, []string{"entity", "action", "outcome"}),
	}
}

// Observe records one attempt. A nil err counts as OutcomeOK; otherwise the
// error's code is used, falling back to "error" for untyped failures.
func (r *Recorder) Observe(entity, action string, err error) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(entity, action, Outcome(err)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Outcome converts an error into the outcome label value.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if code := apperr.GetCode(err); code != "" {
		return code
	}
	return "error"
}
