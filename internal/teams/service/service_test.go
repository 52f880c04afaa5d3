package service

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/teams/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/teams/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"

	"github.com/google/uuid"
)

type fakeRepo struct {
	rows []repository.Assignment
}

func (f *fakeRepo) Create(_ context.Context, a repository.Assignment) (repository.Assignment, error) {
	for _, row := range f.rows {
		if row.ProjectID == a.ProjectID && row.UserID == a.UserID && row.Role == a.Role {
			return repository.Assignment{}, apperr.Conflict("duplicate")
		}
	}
	a.CreatedAt = time.Now()
	f.rows = append(f.rows, a)
	return a, nil
}

func (f *fakeRepo) Delete(_ context.Context, projectID, userID uuid.UUID, role string) error {
	for i, row := range f.rows {
		if row.ProjectID == projectID && row.UserID == userID && row.Role == role {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("team assignment not found")
}

func (f *fakeRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]repository.Assignment, error) {
	var out []repository.Assignment
	for _, row := range f.rows {
		if row.ProjectID == projectID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]repository.Assignment, error) {
	var out []repository.Assignment
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeRepo) RolesOn(_ context.Context, projectID, userID uuid.UUID) ([]string, error) {
	var out []string
	for _, row := range f.rows {
		if row.ProjectID == projectID && row.UserID == userID {
			out = append(out, row.Role)
		}
	}
	return out, nil
}

func TestAssignRequiresAdmin(t *testing.T) {
	svc := New(&fakeRepo{})
	projectID := uuid.New()
	outsider := domain.Actor{ID: uuid.New(), GlobalRoles: []domain.Role{domain.RoleInspector}}

	_, err := svc.Assign(context.Background(), outsider, projectID, transport.AssignRequest{UserID: uuid.New(), Role: "inspector"})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestAssignAndDuplicate(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo)
	projectID := uuid.New()
	admin := domain.Actor{ID: uuid.New(), GlobalRoles: []domain.Role{domain.RoleAdminLead}}
	req := transport.AssignRequest{UserID: uuid.New(), Role: "inspector"}

	if _, err := svc.Assign(context.Background(), admin, projectID, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Assign(context.Background(), admin, projectID, req); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on duplicate assignment, got %v", err)
	}
}

func TestHeadConsultantIsNotAssignable(t *testing.T) {
	svc := New(&fakeRepo{})
	admin := domain.Actor{ID: uuid.New(), GlobalRoles: []domain.Role{domain.RoleAdminTeam}}

	_, err := svc.Assign(context.Background(), admin, uuid.New(), transport.AssignRequest{UserID: uuid.New(), Role: "head_consultant"})
	if domain.CodeOf(err) != domain.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRolesOnMergesTeamAndProjectWideRoles(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo)
	projectID := uuid.New()
	userID := uuid.New()
	repo.rows = append(repo.rows, repository.Assignment{ProjectID: projectID, UserID: userID, Role: "project_lead"})

	actor := domain.Actor{ID: userID, GlobalRoles: []domain.Role{domain.RoleHeadConsultant, domain.RoleInspector}}
	roles, err := svc.RolesOn(context.Background(), projectID, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(roles, []domain.Role{domain.RoleProjectLead, domain.RoleHeadConsultant}) {
		t.Fatalf("unexpected roles %v", roles)
	}

	other, err := svc.RolesOn(context.Background(), uuid.New(), actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slices.Contains(other, domain.RoleProjectLead) || slices.Contains(other, domain.RoleInspector) {
		t.Fatalf("project-scoped roles leaked to another project: %v", other)
	}
}

func TestRemoveIsExplicit(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo)
	projectID, userID := uuid.New(), uuid.New()
	admin := domain.Actor{ID: uuid.New(), GlobalRoles: []domain.Role{domain.RoleAdminLead}}
	repo.rows = []repository.Assignment{
		{ProjectID: projectID, UserID: userID, Role: "inspector"},
		{ProjectID: projectID, UserID: userID, Role: "drafter"},
	}

	if err := svc.Remove(context.Background(), admin, projectID, userID, "inspector"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.rows) != 1 || repo.rows[0].Role != "drafter" {
		t.Fatalf("expected only the inspector role to be removed, got %+v", repo.rows)
	}
	if err := svc.Remove(context.Background(), admin, projectID, userID, "inspector"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListByProjectRequiresRoleOnProject(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo)
	projectID := uuid.New()
	member := uuid.New()
	repo.rows = []repository.Assignment{
		{ProjectID: projectID, UserID: member, Role: "inspector"},
		{ProjectID: projectID, UserID: uuid.New(), Role: "project_lead"},
	}

	outsider := domain.Actor{ID: uuid.New(), GlobalRoles: []domain.Role{domain.RoleDrafter}}
	if _, err := svc.ListByProject(context.Background(), outsider, projectID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for outsider, got %v", err)
	}

	got, err := svc.ListByProject(context.Background(), domain.Actor{ID: member}, projectID)
	if err != nil {
		t.Fatalf("member: unexpected error: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(got.Items))
	}

	head := domain.Actor{ID: uuid.New(), GlobalRoles: []domain.Role{domain.RoleHeadConsultant}}
	if _, err := svc.ListByProject(context.Background(), head, projectID); err != nil {
		t.Fatalf("head consultant: unexpected error: %v", err)
	}
}
