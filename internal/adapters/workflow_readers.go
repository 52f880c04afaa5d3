package adapters

import (
	"context"

	checklistservice "github.com/idanurida/slf-one-manager-full-stack-sub007/internal/checklist/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/projects/ports"
	scheduleservice "github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/service"
	teamsservice "github.com/idanurida/slf-one-manager-full-stack-sub007/internal/teams/service"

	"github.com/google/uuid"
)

// ChecklistReader answers checklist completeness for the orchestrator.
type ChecklistReader struct {
	svc *checklistservice.Service
}

// NewChecklistReader wraps the checklist service.
func NewChecklistReader(svc *checklistservice.Service) *ChecklistReader {
	return &ChecklistReader{svc: svc}
}

func (a *ChecklistReader) DraftItems(ctx context.Context, projectID uuid.UUID, inspectionID *uuid.UUID) ([]string, error) {
	return a.svc.DraftItems(ctx, projectID, inspectionID)
}

// ScheduleReader answers inspection completeness for the orchestrator.
type ScheduleReader struct {
	svc *scheduleservice.Service
}

// NewScheduleReader wraps the schedule service.
func NewScheduleReader(svc *scheduleservice.Service) *ScheduleReader {
	return &ScheduleReader{svc: svc}
}

func (a *ScheduleReader) HasCompletedRequiredInspections(ctx context.Context, projectID uuid.UUID) (bool, error) {
	return a.svc.HasCompletedRequiredInspections(ctx, projectID)
}

var (
	_ ports.ChecklistReader = (*ChecklistReader)(nil)
	_ ports.ScheduleReader  = (*ScheduleReader)(nil)
	_ ports.RoleResolver    = (*teamsservice.Service)(nil)
)

