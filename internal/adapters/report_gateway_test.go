package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"

	"github.com/google/uuid"
)

// reportStore implements only Latest; the gateway snapshot path never calls the rest.
type reportStore struct {
	service.Repository
	latest map[uuid.UUID]repository.Report
}

func (s *reportStore) Latest(_ context.Context, projectID uuid.UUID) (repository.Report, error) {
	r, ok := s.latest[projectID]
	if !ok {
		return repository.Report{}, apperr.NotFound("project has no report")
	}
	return r, nil
}

func TestReportGatewayCarriesApprovalTime(t *testing.T) {
	projectID := uuid.New()
	approvedAt := time.Date(2026, 10, 1, 14, 30, 0, 0, time.UTC)
	store := &reportStore{latest: map[uuid.UUID]repository.Report{
		projectID: {ID: uuid.New(), ProjectID: projectID, Status: string(domain.ReportCompleted), ApprovedAt: &approvedAt},
	}}
	gw := NewReportGateway(service.New(store, nil, nil))

	snap, found, err := gw.LatestSnapshot(context.Background(), projectID)
	if err != nil || !found {
		t.Fatalf("expected a report, got found=%v err=%v", found, err)
	}
	if snap.Status != domain.ReportCompleted || snap.ApprovedAt == nil || !snap.ApprovedAt.Equal(approvedAt) {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	_, found, err = gw.LatestSnapshot(context.Background(), uuid.New())
	if err != nil || found {
		t.Fatalf("expected no report, got found=%v err=%v", found, err)
	}
}
