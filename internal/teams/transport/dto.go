package transport

import (
	"time"

	"github.com/google/uuid"
)

// AssignRequest adds a user to a project team in a role.
type AssignRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
	Role   string    `json:"role" validate:"required,oneof=admin_lead admin_team project_lead inspector drafter"`
}

// AssignmentResponse is one team membership.
type AssignmentResponse struct {
	ProjectID  uuid.UUID `json:"projectId"`
	UserID     uuid.UUID `json:"userId"`
	Role       string    `json:"role"`
	AssignedBy uuid.UUID `json:"assignedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AssignmentListResponse wraps a list of memberships.
type AssignmentListResponse struct {
	Items []AssignmentResponse `json:"items"`
}
