// Package notification forwards workflow domain events to a Redis stream so
// downstream consumers (mailers, dashboards, the audit warehouse) can follow
// project progress without reaching into this service's database.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/events"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/config"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/logger"

	"github.com/redis/go-redis/v9"
)

const defaultStream = "slf:workflow:events"

// Module publishes bus events onto a capped Redis stream.
type Module struct {
	rdb    redis.Cmdable
	stream string
	maxLen int64
	log    *logger.Logger
}

// New creates the stream publisher. A non-positive max length disables trimming.
func New(rdb redis.Cmdable, cfg config.StreamConfig, log *logger.Logger) *Module {
	stream := cfg.GetWorkflowEventStream()
	if stream == "" {
		stream = defaultStream
	}
	return &Module{
		rdb:    rdb,
		stream: stream,
		maxLen: cfg.GetWorkflowEventStreamMaxLen(),
		log:    log,
	}
}

// NewRedisClient opens a go-redis client for the configured URL.
func NewRedisClient(cfg config.StreamConfig) (*redis.Client, error) {
	if cfg.GetRedisURL() == "" {
		return nil, fmt.Errorf("redis url not configured")
	}
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// RegisterHandlers subscribes to the workflow events on the bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.WorkflowTransitioned{}.EventName(), m)
	bus.Subscribe(events.InspectionReminderDue{}.EventName(), m)

	m.log.Info("notification stream publisher registered", "stream", m.stream)
}

// Handle routes events to the stream.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	var fields map[string]interface{}

	switch e := event.(type) {
	case events.WorkflowTransitioned:
		fields = map[string]interface{}{
			"entity_type": e.EntityType,
			"entity_id":   e.EntityID.String(),
			"project_id":  e.ProjectID.String(),
			"from":        e.FromStatus,
			"to":          e.ToStatus,
		}
	case events.InspectionReminderDue:
		fields = map[string]interface{}{
			"entity_type": events.EntityScheduleEvent,
			"entity_id":   e.EventID.String(),
			"project_id":  e.ProjectID.String(),
			"assignee_id": e.AssigneeID.String(),
		}
	default:
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event.EventName(), err)
	}
	fields["event"] = event.EventName()
	fields["occurred_at"] = event.OccurredAt().UTC().Format(time.RFC3339Nano)
	fields["payload"] = string(payload)

	args := &redis.XAddArgs{
		Stream: m.stream,
		Values: fields,
	}
	if m.maxLen > 0 {
		args.MaxLen = m.maxLen
		args.Approx = true
	}

	if err := m.rdb.XAdd(ctx, args).Err(); err != nil {
		m.log.Error("workflow event stream append failed",
			"event", event.EventName(),
			"stream", m.stream,
			"error", err,
		)
		return err
	}
	return nil
}
