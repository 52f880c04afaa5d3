// Package ports defines what the project orchestrator needs from the team,
// checklist, report and schedule contexts. Implementations are wired by the
// composition root through internal/adapters so this module never imports
// the others directly.
package ports

import (
	"context"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"

	"github.com/google/uuid"
)

// RoleResolver returns every role an actor may act in on a project: team
// assignments plus project-wide token roles.
type RoleResolver interface {
	RolesOn(ctx context.Context, projectID uuid.UUID, actor domain.Actor) ([]domain.Role, error)
}

// ChecklistReader answers checklist completeness.
type ChecklistReader interface {
	// DraftItems returns the item ids still in draft, for one inspection
	// when inspectionID is set. Empty means complete.
	DraftItems(ctx context.Context, projectID uuid.UUID, inspectionID *uuid.UUID) ([]string, error)
}

// ReportGateway reads and submits inspection reports.
type ReportGateway interface {
	// LatestSnapshot returns the status and approval time of the newest
	// report; found is false when the project has none.
	LatestSnapshot(ctx context.Context, projectID uuid.UUID) (snap domain.ReportSnapshot, found bool, err error)
	// Scope returns the project and optional inspection a report belongs to.
	Scope(ctx context.Context, reportID uuid.UUID) (projectID uuid.UUID, inspectionID *uuid.UUID, err error)
	Submit(ctx context.Context, actor domain.Actor, reportID uuid.UUID, expectedStatus string) error
}

// ScheduleReader answers inspection completeness.
type ScheduleReader interface {
	HasCompletedRequiredInspections(ctx context.Context, projectID uuid.UUID) (bool, error)
}
