package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateReportRequest opens a draft report on a project.
type CreateReportRequest struct {
	Title        string     `json:"title" validate:"required,notblank,max=300"`
	Content      string     `json:"content" validate:"max=200000"`
	InspectionID *uuid.UUID `json:"inspectionId"`
}

// UpdateReportRequest edits a draft report.
type UpdateReportRequest struct {
	Title   string `json:"title" validate:"required,notblank,max=300"`
	Content string `json:"content" validate:"max=200000"`
}

// TransitionRequest is the body of submit, verify and approve.
type TransitionRequest struct {
	ExpectedStatus string `json:"expectedStatus" validate:"omitempty,oneof=draft submitted verified_by_admin_team approved_by_pl rejected_by_pl completed"`
}

// RejectRequest is the body of reject. Notes are mandatory.
type RejectRequest struct {
	Notes          string `json:"notes" validate:"required,notblank,max=4000"`
	ExpectedStatus string `json:"expectedStatus" validate:"omitempty,oneof=draft submitted verified_by_admin_team approved_by_pl rejected_by_pl completed"`
}

// ReportResponse is one report.
type ReportResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProjectID      uuid.UUID  `json:"projectId"`
	InspectionID   *uuid.UUID `json:"inspectionId,omitempty"`
	Title          string     `json:"title"`
	Content        string     `json:"content"`
	Status         string     `json:"status"`
	DrafterID      uuid.UUID  `json:"drafterId"`
	RejectionNotes *string    `json:"rejectionNotes,omitempty"`
	RejectedBy     *uuid.UUID `json:"rejectedBy,omitempty"`
	VerifiedBy     *uuid.UUID `json:"verifiedBy,omitempty"`
	ApprovedBy     *uuid.UUID `json:"approvedBy,omitempty"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	CompletedBy    *uuid.UUID `json:"completedBy,omitempty"`
	Version        int        `json:"version"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ReportListResponse wraps a list of reports.
type ReportListResponse struct {
	Items []ReportResponse `json:"items"`
}
