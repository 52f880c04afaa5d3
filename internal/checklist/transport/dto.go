package transport

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreateResponseRequest opens a draft answer for one checklist item.
type CreateResponseRequest struct {
	ItemID       string          `json:"itemId" validate:"required,notblank,max=200"`
	InspectionID *uuid.UUID      `json:"inspectionId"`
	Response     json.RawMessage `json:"response"`
}

// SaveResponseRequest replaces the answer of a draft response.
type SaveResponseRequest struct {
	Response json.RawMessage `json:"response" validate:"required"`
}

// TransitionRequest is the body of submit, approve and reopen.
type TransitionRequest struct {
	ExpectedStatus string `json:"expectedStatus" validate:"omitempty,oneof=draft submitted project_lead_approved rejected"`
}

// RejectRequest is the body of reject. Notes are mandatory.
type RejectRequest struct {
	Notes          string `json:"notes" validate:"required,notblank,max=4000"`
	ExpectedStatus string `json:"expectedStatus" validate:"omitempty,oneof=draft submitted project_lead_approved rejected"`
}

// ListResponsesRequest filters the checklist of a project.
type ListResponsesRequest struct {
	InspectionID string `form:"inspectionId" validate:"omitempty,uuid"`
	Status       string `form:"status" validate:"omitempty,oneof=draft submitted project_lead_approved rejected"`
}

// ResponseView is one checklist response.
type ResponseView struct {
	ID           uuid.UUID       `json:"id"`
	ProjectID    uuid.UUID       `json:"projectId"`
	InspectionID *uuid.UUID      `json:"inspectionId,omitempty"`
	ItemID       string          `json:"itemId"`
	InspectorID  uuid.UUID       `json:"inspectorId"`
	Response     json.RawMessage `json:"response"`
	Status       string          `json:"status"`
	ReviewNotes  *string         `json:"reviewNotes,omitempty"`
	ReviewedBy   *uuid.UUID      `json:"reviewedBy,omitempty"`
	SubmittedAt  *time.Time      `json:"submittedAt,omitempty"`
	ReviewedAt   *time.Time      `json:"reviewedAt,omitempty"`
	Version      int             `json:"version"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// ResponseListView wraps a list of responses with the draft count.
type ResponseListView struct {
	Items  []ResponseView `json:"items"`
	Drafts int            `json:"drafts"`
}
