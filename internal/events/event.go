// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// Entity types carried by WorkflowTransitioned.
const (
	EntityProject           = "project"
	EntityReport            = "report"
	EntityChecklistResponse = "checklist_response"
	EntityScheduleEvent     = "schedule_event"
)

// =============================================================================
// Workflow Events
// =============================================================================

// WorkflowTransitioned is published after any committed status change on a
// project or one of its sub-workflow entities.
type WorkflowTransitioned struct {
	BaseEvent
	EntityType string    `json:"entityType"`
	EntityID   uuid.UUID `json:"entityId"`
	ProjectID  uuid.UUID `json:"projectId"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	ActorID    uuid.UUID `json:"actorId"`
	ActorRole  string    `json:"actorRole"`
	Notes      string    `json:"notes,omitempty"`
}

func (e WorkflowTransitioned) EventName() string { return "workflow.transitioned" }

// =============================================================================
// Schedule Events
// =============================================================================

// InspectionReminderDue is published by the reminder worker for an inspection
// that is still scheduled shortly before its date.
type InspectionReminderDue struct {
	BaseEvent
	EventID      uuid.UUID `json:"eventId"`
	ProjectID    uuid.UUID `json:"projectId"`
	AssigneeID   uuid.UUID `json:"assigneeId"`
	Title        string    `json:"title"`
	ScheduleDate time.Time `json:"scheduleDate"`
}

func (e InspectionReminderDue) EventName() string { return "schedule.inspection.reminder_due" }
