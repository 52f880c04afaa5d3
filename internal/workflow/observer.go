// Package workflow holds the cross-cutting plumbing shared by the workflow
// services: metrics, transition logs and post-commit event publication.
package workflow

import (
	"context"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/events"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/logger"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/metrics"

	"github.com/google/uuid"
)

// Observer reports transition outcomes. A nil *Observer, or one built with
// nil dependencies, is a no-op.
type Observer struct {
	bus     events.Bus
	metrics *metrics.Recorder
	log     *logger.Logger
}

// NewObserver creates an Observer.
func NewObserver(bus events.Bus, rec *metrics.Recorder, log *logger.Logger) *Observer {
	return &Observer{bus: bus, metrics: rec, log: log}
}

// Committed records a successful transition and publishes it. Publication
// happens after the write committed and never fails the caller.
func (o *Observer) Committed(ctx context.Context, action string, evt events.WorkflowTransitioned) {
	if o == nil {
		return
	}
	o.metrics.Observe(evt.EntityType, action, nil)
	if o.log != nil {
		o.log.WithContext(ctx).TransitionApplied(evt.EntityType, evt.EntityID.String(), evt.FromStatus, evt.ToStatus, evt.ActorID.String())
	}
	if o.bus != nil {
		if evt.Timestamp.IsZero() {
			evt.BaseEvent = events.NewBaseEvent()
		}
		o.bus.Publish(ctx, evt)
	}
}

// Rejected records a refused transition and returns err unchanged.
func (o *Observer) Rejected(ctx context.Context, entity string, id uuid.UUID, action string, err error) error {
	if o == nil || err == nil {
		return err
	}
	o.metrics.Observe(entity, action, err)
	if o.log != nil {
		o.log.WithContext(ctx).TransitionRejected(entity, id.String(), action, apperr.GetCode(err), err)
	}
	return err
}
