package adapters

import (
	"context"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/projects/ports"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"

	"github.com/google/uuid"
)

// ReportGateway exposes the reports service to the project orchestrator.
type ReportGateway struct {
	svc *service.Service
}

// NewReportGateway wraps the reports service.
func NewReportGateway(svc *service.Service) *ReportGateway {
	return &ReportGateway{svc: svc}
}

func (a *ReportGateway) LatestSnapshot(ctx context.Context, projectID uuid.UUID) (domain.ReportSnapshot, bool, error) {
	return a.svc.LatestSnapshot(ctx, projectID)
}

func (a *ReportGateway) Scope(ctx context.Context, reportID uuid.UUID) (uuid.UUID, *uuid.UUID, error) {
	return a.svc.Scope(ctx, reportID)
}

// Submit runs the report submit step. The resulting view is discarded; HTTP
// callers re-read the report after the gate passes.
func (a *ReportGateway) Submit(ctx context.Context, actor domain.Actor, reportID uuid.UUID, expectedStatus string) error {
	_, err := a.svc.Submit(ctx, actor, reportID, transport.TransitionRequest{ExpectedStatus: expectedStatus})
	return err
}

var _ ports.ReportGateway = (*ReportGateway)(nil)
