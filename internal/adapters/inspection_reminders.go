package adapters

import (
	"context"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/scheduler"

	"github.com/google/uuid"
)

// InspectionReminderSource lets the reminder worker re-check an inspection
// before announcing it.
type InspectionReminderSource struct {
	svc *service.Service
}

// NewInspectionReminderSource wraps the schedule service.
func NewInspectionReminderSource(svc *service.Service) *InspectionReminderSource {
	return &InspectionReminderSource{svc: svc}
}

func (a *InspectionReminderSource) PendingInspection(ctx context.Context, eventID uuid.UUID) (scheduler.PendingInspection, bool, error) {
	e, ok, err := a.svc.PendingInspection(ctx, eventID)
	if err != nil || !ok {
		return scheduler.PendingInspection{}, false, err
	}
	return scheduler.PendingInspection{
		EventID:      e.ID,
		ProjectID:    e.ProjectID,
		AssigneeID:   e.AssigneeID,
		Title:        e.Title,
		ScheduleDate: e.ScheduleDate,
	}, true, nil
}

var (
	_ scheduler.InspectionSource = (*InspectionReminderSource)(nil)
	_ service.ReminderScheduler  = (*scheduler.Client)(nil)
)
