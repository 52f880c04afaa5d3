package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/service"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/httpkit"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type reportStore struct {
	service.Repository
	reports     map[uuid.UUID]repository.Report
	transitions int
}

func (s *reportStore) GetByID(_ context.Context, id uuid.UUID) (repository.Report, error) {
	r, ok := s.reports[id]
	if !ok {
		return repository.Report{}, apperr.NotFound("report not found")
	}
	return r, nil
}

func (s *reportStore) Transition(_ context.Context, p repository.TransitionParams) (repository.Report, error) {
	s.transitions++
	r := s.reports[p.ID]
	r.Status = p.To
	s.reports[p.ID] = r
	return r, nil
}

type drafterRoles struct{}

func (drafterRoles) RolesOn(context.Context, uuid.UUID, domain.Actor) ([]domain.Role, error) {
	return []domain.Role{domain.RoleDrafter}, nil
}

type refusingGate struct {
	calls int
}

func (g *refusingGate) SubmitReport(context.Context, domain.Actor, uuid.UUID, string) error {
	g.calls++
	return domain.ErrPreconditionNotMet(domain.PreconditionChecklistComplete, "1 checklist responses are still in draft")
}

func newTestRouter(t *testing.T, store *reportStore, gate SubmitGate) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := New(service.New(store, drafterRoles{}, nil), validator.New())
	if gate != nil {
		h.SetSubmitGate(gate)
	}

	r := gin.New()
	group := r.Group("/reports")
	userID := uuid.New()
	group.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, userID)
		c.Set(httpkit.ContextRolesKey, []string{"drafter"})
		c.Next()
	})
	h.RegisterRoutes(group)
	return r
}

func draftStore() (*reportStore, uuid.UUID) {
	id := uuid.New()
	return &reportStore{reports: map[uuid.UUID]repository.Report{
		id: {ID: id, ProjectID: uuid.New(), Status: string(domain.ReportDraft)},
	}}, id
}

func TestSubmitWithoutGateFailsClosed(t *testing.T) {
	store, id := draftStore()
	router := newTestRouter(t, store, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reports/"+id.String()+"/submit", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.transitions != 0 {
		t.Fatalf("expected no report transition, got %d", store.transitions)
	}
	if store.reports[id].Status != string(domain.ReportDraft) {
		t.Fatalf("expected report to stay draft, got %s", store.reports[id].Status)
	}
}

func TestSubmitGoesThroughGate(t *testing.T) {
	store, id := draftStore()
	gate := &refusingGate{}
	router := newTestRouter(t, store, gate)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reports/"+id.String()+"/submit", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusPreconditionFailed {
		t.Fatalf("expected 412, got %d: %s", rec.Code, rec.Body.String())
	}
	if gate.calls != 1 {
		t.Fatalf("expected gate to be consulted once, got %d", gate.calls)
	}
	if store.transitions != 0 {
		t.Fatalf("expected no report transition, got %d", store.transitions)
	}
}
