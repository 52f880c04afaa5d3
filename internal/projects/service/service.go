// Package service implements the project registry and the workflow
// orchestrator, the only writer of a project's status.
package service

import (
	"context"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/projects/ports"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/projects/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/projects/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/history"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/sanitize"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Repository is the data access the project service needs.
type Repository interface {
	Create(ctx context.Context, p repository.Project) (repository.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Project, error)
	List(ctx context.Context, params repository.ListParams, visibleTo *uuid.UUID) (repository.ListResult, error)
	Transition(ctx context.Context, p repository.TransitionParams) (repository.Project, error)
}

// HistoryReader reads the audit trail of a project.
type HistoryReader interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]history.Entry, error)
}

// Ports bundles the sub-workflow contexts the orchestrator consults.
type Ports struct {
	Roles     ports.RoleResolver
	Checklist ports.ChecklistReader
	Reports   ports.ReportGateway
	Schedule  ports.ScheduleReader
}

// Service handles projects and their status transitions.
type Service struct {
	repo    Repository
	history HistoryReader
	engine  *domain.Engine
	ports   Ports
	obs     *workflow.Observer
}

// New creates a project service. A nil engine uses the embedded transition table.
func New(repo Repository, hist HistoryReader, engine *domain.Engine, p Ports, obs *workflow.Observer) *Service {
	if engine == nil {
		engine = domain.DefaultEngine()
	}
	return &Service{repo: repo, history: hist, engine: engine, ports: p, obs: obs}
}

// Create registers a project in draft. Only global admins may open projects.
func (s *Service) Create(ctx context.Context, actor domain.Actor, req transport.CreateProjectRequest) (transport.ProjectResponse, error) {
	if !actor.IsAdmin() {
		return transport.ProjectResponse{}, domain.ErrForbidden("only admin_lead or admin_team may create projects")
	}

	name := sanitize.Line(req.Name)
	if name == "" {
		return transport.ProjectResponse{}, domain.ErrValidation("project name is required")
	}

	appType := req.ApplicationType
	if appType == "" {
		appType = "new"
	}

	created, err := s.repo.Create(ctx, repository.Project{
		Name:              name,
		Address:           sanitize.Line(req.Address),
		ApplicationType:   appType,
		IsSpecialFunction: req.IsSpecialFunction,
		ClientID:          req.ClientID,
		CreatedBy:         actor.ID,
	})
	if err != nil {
		return transport.ProjectResponse{}, err
	}
	return toResponse(created), nil
}

// Get returns a project to its team, its client and project-wide roles.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (transport.ProjectResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ProjectResponse{}, err
	}
	if err := s.requireVisible(ctx, actor, p); err != nil {
		return transport.ProjectResponse{}, err
	}
	return toResponse(p), nil
}

// List returns a page of projects visible to the actor.
func (s *Service) List(ctx context.Context, actor domain.Actor, req transport.ListProjectsRequest) (transport.ProjectListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	statuses, err := statusFilter(req.Status, req.Phase)
	if err != nil {
		return transport.ProjectListResponse{}, err
	}
	resp := transport.ProjectListResponse{Items: []transport.ProjectResponse{}, Page: page, PageSize: pageSize}
	if statuses != nil && len(statuses) == 0 {
		return resp, nil
	}

	var visibleTo *uuid.UUID
	if len(actor.ProjectWideRoles()) == 0 {
		visibleTo = &actor.ID
	}

	result, err := s.repo.List(ctx, repository.ListParams{
		Statuses: statuses,
		Search:   req.Search,
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	}, visibleTo)
	if err != nil {
		return transport.ProjectListResponse{}, err
	}

	for _, p := range result.Items {
		resp.Items = append(resp.Items, toResponse(p))
	}
	resp.Total = result.Total
	resp.TotalPages = (result.Total + pageSize - 1) / pageSize
	return resp, nil
}

// History returns the audit trail of a project and its sub-workflows.
func (s *Service) History(ctx context.Context, actor domain.Actor, id uuid.UUID) (transport.HistoryResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.HistoryResponse{}, err
	}
	if err := s.requireVisible(ctx, actor, p); err != nil {
		return transport.HistoryResponse{}, err
	}

	entries, err := s.history.ListByProject(ctx, id)
	if err != nil {
		return transport.HistoryResponse{}, err
	}
	out := make([]transport.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, transport.HistoryEntry{
			ID:         e.ID,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			ActorID:    e.ActorID,
			ActorRole:  e.ActorRole,
			Notes:      e.Notes,
			CreatedAt:  e.CreatedAt,
		})
	}
	return transport.HistoryResponse{Items: out}, nil
}

// AvailableTransitions lists the statuses the actor may request next.
// Preconditions are reported, not evaluated.
func (s *Service) AvailableTransitions(ctx context.Context, actor domain.Actor, id uuid.UUID) (transport.AvailableTransitionsResponse, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.AvailableTransitionsResponse{}, err
	}
	roles, err := s.ports.Roles.RolesOn(ctx, id, actor)
	if err != nil {
		return transport.AvailableTransitionsResponse{}, err
	}

	current := domain.ProjectStatus(p.Status)
	resp := transport.AvailableTransitionsResponse{Current: p.Status, Items: []transport.AvailableTransition{}}
	for _, next := range s.engine.AvailableTransitions(current, roles) {
		d := s.engine.CanTransitionAny(current, next, roles)
		if !d.Allowed {
			continue
		}
		phase, _ := domain.PhaseOf(next)
		item := transport.AvailableTransition{
			Status:        string(next),
			Phase:         int(phase),
			RequiresNotes: d.Edge.RequiresNotes(),
		}
		for _, pre := range d.Edge.Requires {
			item.Requires = append(item.Requires, string(pre))
		}
		resp.Items = append(resp.Items, item)
	}
	return resp, nil
}

func (s *Service) requireVisible(ctx context.Context, actor domain.Actor, p repository.Project) error {
	if p.ClientID != nil && *p.ClientID == actor.ID {
		return nil
	}
	roles, err := s.ports.Roles.RolesOn(ctx, p.ID, actor)
	if err != nil {
		return err
	}
	if len(roles) == 0 {
		return domain.ErrForbidden("no role on this project")
	}
	return nil
}

// statusFilter turns the status and phase query into a status list. nil
// means unfiltered; an empty non-nil slice matches nothing.
func statusFilter(rawStatus string, phase *int) ([]string, error) {
	if rawStatus == "" && phase == nil {
		return nil, nil
	}

	var want domain.ProjectStatus
	if rawStatus != "" {
		parsed, err := domain.ParseProjectStatus(rawStatus)
		if err != nil {
			return nil, err
		}
		want = parsed
	}

	out := []string{}
	for _, status := range domain.AllStatuses() {
		if want != "" && status != want {
			continue
		}
		if phase != nil {
			p, _ := domain.PhaseOf(status)
			if int(p) != *phase {
				continue
			}
		}
		out = append(out, string(status))
	}
	return out, nil
}

func toResponse(p repository.Project) transport.ProjectResponse {
	phase, _ := domain.PhaseOf(domain.ProjectStatus(p.Status))
	return transport.ProjectResponse{
		ID:                p.ID,
		Name:              p.Name,
		Address:           p.Address,
		ApplicationType:   p.ApplicationType,
		IsSpecialFunction: p.IsSpecialFunction,
		ClientID:          p.ClientID,
		Status:            p.Status,
		Phase:             int(phase),
		PhaseName:         phase.String(),
		Version:           p.Version,
		CreatedBy:         p.CreatedBy,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
