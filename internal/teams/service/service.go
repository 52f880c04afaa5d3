// Package service implements team assignments and the project role lookup
// the workflow services use to authorize actors.
package service

import (
	"context"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/teams/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/teams/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"

	"github.com/google/uuid"
)

// Repository is the data access the team service needs.
type Repository interface {
	Create(ctx context.Context, a repository.Assignment) (repository.Assignment, error)
	Delete(ctx context.Context, projectID, userID uuid.UUID, role string) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]repository.Assignment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]repository.Assignment, error)
	RolesOn(ctx context.Context, projectID, userID uuid.UUID) ([]string, error)
}

// Service manages project teams.
type Service struct {
	repo Repository
}

// New creates a team service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Assign grants userID a role on projectID. Only admins may change a team.
func (s *Service) Assign(ctx context.Context, actor domain.Actor, projectID uuid.UUID, req transport.AssignRequest) (transport.AssignmentResponse, error) {
	if err := s.requireTeamManager(ctx, actor, projectID); err != nil {
		return transport.AssignmentResponse{}, err
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return transport.AssignmentResponse{}, err
	}
	if !role.IsTeamRole() {
		return transport.AssignmentResponse{}, domain.ErrValidation(string(role) + " cannot be assigned per project")
	}

	created, err := s.repo.Create(ctx, repository.Assignment{
		ProjectID:  projectID,
		UserID:     req.UserID,
		Role:       string(role),
		AssignedBy: actor.ID,
	})
	if err != nil {
		return transport.AssignmentResponse{}, err
	}
	return toResponse(created), nil
}

// Remove deletes one assignment. Nothing else is cascaded.
func (s *Service) Remove(ctx context.Context, actor domain.Actor, projectID, userID uuid.UUID, rawRole string) error {
	if err := s.requireTeamManager(ctx, actor, projectID); err != nil {
		return err
	}
	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, projectID, userID, string(role))
}

// ListByProject returns the team of a project to an actor holding some role
// on it.
func (s *Service) ListByProject(ctx context.Context, actor domain.Actor, projectID uuid.UUID) (transport.AssignmentListResponse, error) {
	roles, err := s.RolesOn(ctx, projectID, actor)
	if err != nil {
		return transport.AssignmentListResponse{}, err
	}
	if len(roles) == 0 {
		return transport.AssignmentListResponse{}, domain.ErrForbidden("no role on this project")
	}

	items, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return transport.AssignmentListResponse{}, err
	}
	return toListResponse(items), nil
}

// ListForUser returns the assignments of a user across projects.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) (transport.AssignmentListResponse, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return transport.AssignmentListResponse{}, err
	}
	return toListResponse(items), nil
}

// TeamRoles returns only the roles userID holds through assignments on projectID.
func (s *Service) TeamRoles(ctx context.Context, projectID, userID uuid.UUID) ([]domain.Role, error) {
	raw, err := s.repo.RolesOn(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	return domain.RolesFromStrings(raw), nil
}

// RolesOn returns every role the actor may act in on projectID: its team
// assignments plus the project-wide roles from its token.
func (s *Service) RolesOn(ctx context.Context, projectID uuid.UUID, actor domain.Actor) ([]domain.Role, error) {
	team, err := s.TeamRoles(ctx, projectID, actor.ID)
	if err != nil {
		return nil, err
	}
	return domain.MergeRoles(team, actor.ProjectWideRoles()), nil
}

func (s *Service) requireTeamManager(ctx context.Context, actor domain.Actor, projectID uuid.UUID) error {
	if actor.IsAdmin() {
		return nil
	}
	team, err := s.TeamRoles(ctx, projectID, actor.ID)
	if err != nil {
		return err
	}
	for _, role := range team {
		if role == domain.RoleAdminLead || role == domain.RoleAdminTeam {
			return nil
		}
	}
	return domain.ErrForbidden("only admin_lead or admin_team may change a project team")
}

func toResponse(a repository.Assignment) transport.AssignmentResponse {
	return transport.AssignmentResponse{
		ProjectID:  a.ProjectID,
		UserID:     a.UserID,
		Role:       a.Role,
		AssignedBy: a.AssignedBy,
		CreatedAt:  a.CreatedAt,
	}
}

func toListResponse(items []repository.Assignment) transport.AssignmentListResponse {
	out := make([]transport.AssignmentResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toResponse(item))
	}
	return transport.AssignmentListResponse{Items: out}
}
