package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateProjectRequest registers a new certification case.
type CreateProjectRequest struct {
	Name              string     `json:"name" validate:"required,notblank,max=300"`
	Address           string     `json:"address" validate:"max=1000"`
	ApplicationType   string     `json:"applicationType" validate:"omitempty,oneof=new renewal"`
	IsSpecialFunction bool       `json:"isSpecialFunction"`
	ClientID          *uuid.UUID `json:"clientId"`
}

// ListProjectsRequest filters and pages the project list. Phase selects
// every status of that phase and combines with Status.
type ListProjectsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=draft submitted project_lead_review inspection_scheduled inspection_in_progress report_draft head_consultant_review client_review government_submitted slf_issued completed cancelled"`
	Phase    *int   `form:"phase" validate:"omitempty,min=0,max=5"`
	Search   string `form:"search" validate:"max=200"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// TransitionRequest asks the orchestrator to move a project.
type TransitionRequest struct {
	Status         string `json:"status" validate:"required"`
	Notes          string `json:"notes" validate:"max=4000"`
	ExpectedStatus string `json:"expectedStatus"`
	RetryOnStale   bool   `json:"retryOnStale"`
}

// ProjectResponse is one project with its phase.
type ProjectResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Address           string     `json:"address"`
	ApplicationType   string     `json:"applicationType"`
	IsSpecialFunction bool       `json:"isSpecialFunction"`
	ClientID          *uuid.UUID `json:"clientId,omitempty"`
	Status            string     `json:"status"`
	Phase             int        `json:"phase"`
	PhaseName         string     `json:"phaseName"`
	Version           int        `json:"version"`
	CreatedBy         uuid.UUID  `json:"createdBy"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// ProjectListResponse is one page of projects.
type ProjectListResponse struct {
	Items      []ProjectResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

// HistoryEntry is one committed status change on the project or one of its
// sub-workflow entities.
type HistoryEntry struct {
	ID         uuid.UUID `json:"id"`
	EntityType string    `json:"entityType"`
	EntityID   uuid.UUID `json:"entityId"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	ActorID    uuid.UUID `json:"actorId"`
	ActorRole  string    `json:"actorRole"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HistoryResponse wraps the audit trail of a project.
type HistoryResponse struct {
	Items []HistoryEntry `json:"items"`
}

// AvailableTransition is one status the caller may request next.
type AvailableTransition struct {
	Status        string   `json:"status"`
	Phase         int      `json:"phase"`
	RequiresNotes bool     `json:"requiresNotes"`
	Requires      []string `json:"requires,omitempty"`
}

// AvailableTransitionsResponse lists the moves open to the caller.
type AvailableTransitionsResponse struct {
	Current string                `json:"current"`
	Items   []AvailableTransition `json:"items"`
}
