package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateEventRequest schedules an event on a project.
type CreateEventRequest struct {
	EventType    string     `json:"eventType" validate:"required,oneof=inspection meeting deadline document_verification"`
	Title        string     `json:"title" validate:"required,notblank,max=300"`
	Description  string     `json:"description" validate:"max=4000"`
	ScheduleDate time.Time  `json:"scheduleDate" validate:"required"`
	EndDate      *time.Time `json:"endDate"`
	AssigneeID   uuid.UUID  `json:"assigneeId" validate:"required"`
}

// UpdateStatusRequest moves an event to a new status.
type UpdateStatusRequest struct {
	Status         string `json:"status" validate:"required,oneof=scheduled in_progress completed cancelled"`
	ExpectedStatus string `json:"expectedStatus" validate:"omitempty,oneof=scheduled in_progress completed cancelled"`
}

// ListEventsRequest limits a listing to [from, to).
type ListEventsRequest struct {
	From *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
}

// EventResponse is one schedule event.
type EventResponse struct {
	ID           uuid.UUID  `json:"id"`
	ProjectID    uuid.UUID  `json:"projectId"`
	EventType    string     `json:"eventType"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ScheduleDate time.Time  `json:"scheduleDate"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	AssigneeID   uuid.UUID  `json:"assigneeId"`
	Status       string     `json:"status"`
	Version      int        `json:"version"`
	CreatedBy    uuid.UUID  `json:"createdBy"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// EventListResponse wraps a list of events.
type EventListResponse struct {
	Items []EventResponse `json:"items"`
}
