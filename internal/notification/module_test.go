package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/events"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type streamConfig struct {
	stream string
	maxLen int64
}

func (c streamConfig) GetRedisURL() string                 { return "" }
func (c streamConfig) GetWorkflowEventStream() string      { return c.stream }
func (c streamConfig) GetWorkflowEventStreamMaxLen() int64 { return c.maxLen }

func newTestModule(t *testing.T, cfg streamConfig) (*Module, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, cfg, logger.Discard()), rdb
}

func TestHandleAppendsWorkflowTransition(t *testing.T) {
	m, rdb := newTestModule(t, streamConfig{stream: "test:workflow", maxLen: 100})
	ctx := context.Background()

	projectID := uuid.New()
	evt := events.WorkflowTransitioned{
		BaseEvent:  events.NewBaseEvent(),
		EntityType: events.EntityProject,
		EntityID:   projectID,
		ProjectID:  projectID,
		FromStatus: "draft",
		ToStatus:   "submitted",
		ActorID:    uuid.New(),
		ActorRole:  "admin_lead",
	}
	if err := m.Handle(ctx, evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := rdb.XRange(ctx, "test:workflow", "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 stream entry, got %d", len(entries))
	}
	values := entries[0].Values
	if values["event"] != "workflow.transitioned" {
		t.Fatalf("unexpected event field %v", values["event"])
	}
	if values["to"] != "submitted" || values["project_id"] != projectID.String() {
		t.Fatalf("unexpected fields %v", values)
	}

	var decoded events.WorkflowTransitioned
	if err := json.Unmarshal([]byte(values["payload"].(string)), &decoded); err != nil {
		t.Fatalf("payload is not valid json: %v", err)
	}
	if decoded.ActorRole != "admin_lead" {
		t.Fatalf("expected actor role in payload, got %q", decoded.ActorRole)
	}
}

func TestHandleAppendsInspectionReminder(t *testing.T) {
	m, rdb := newTestModule(t, streamConfig{})
	ctx := context.Background()

	evt := events.InspectionReminderDue{
		BaseEvent:    events.NewBaseEvent(),
		EventID:      uuid.New(),
		ProjectID:    uuid.New(),
		AssigneeID:   uuid.New(),
		Title:        "Site inspection",
		ScheduleDate: time.Now().Add(24 * time.Hour),
	}
	if err := m.Handle(ctx, evt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, err := rdb.XLen(ctx, defaultStream).Result()
	if err != nil {
		t.Fatalf("xlen: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected reminder on the default stream, got %d entries", n)
	}
}

func TestHandleIgnoresOtherEvents(t *testing.T) {
	m, rdb := newTestModule(t, streamConfig{stream: "test:workflow"})
	ctx := context.Background()

	if err := m.Handle(ctx, otherEvent{BaseEvent: events.NewBaseEvent()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, _ := rdb.XLen(ctx, "test:workflow").Result()
	if n != 0 {
		t.Fatalf("expected no entries, got %d", n)
	}
}

func TestHandleReportsRedisFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	m := New(rdb, streamConfig{stream: "test:workflow"}, logger.Discard())
	mr.Close()

	err := m.Handle(context.Background(), events.WorkflowTransitioned{BaseEvent: events.NewBaseEvent()})
	if err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
}

func TestRegisterHandlersDeliversFromBus(t *testing.T) {
	m, rdb := newTestModule(t, streamConfig{stream: "test:workflow"})
	bus := events.NewInMemoryBus(logger.Discard())
	m.RegisterHandlers(bus)

	ctx := context.Background()
	if err := bus.PublishSync(ctx, events.WorkflowTransitioned{BaseEvent: events.NewBaseEvent(), ToStatus: "approved"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, _ := rdb.XLen(ctx, "test:workflow").Result()
	if n != 1 {
		t.Fatalf("expected 1 entry, got %d", n)
	}
}

type otherEvent struct {
	events.BaseEvent
}

func (otherEvent) EventName() string { return "other.event" }
