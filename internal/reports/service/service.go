// Package service implements the inspection report approval chain:
// drafter, admin team, project lead, head consultant.
package service

import (
	"context"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/events"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/sanitize"

	"github.com/google/uuid"
)

// Repository is the data access the report service needs.
type Repository interface {
	Create(ctx context.Context, rep repository.Report) (repository.Report, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Report, error)
	Latest(ctx context.Context, projectID uuid.UUID) (repository.Report, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]repository.Report, error)
	UpdateDraft(ctx context.Context, id uuid.UUID, title, content string) (repository.Report, error)
	Transition(ctx context.Context, p repository.TransitionParams) (repository.Report, error)
}

// RoleResolver returns the roles an actor holds on a project.
type RoleResolver interface {
	RolesOn(ctx context.Context, projectID uuid.UUID, actor domain.Actor) ([]domain.Role, error)
}

// Service handles inspection reports.
type Service struct {
	repo  Repository
	roles RoleResolver
	obs   *workflow.Observer
}

// New creates a report service.
func New(repo Repository, roles RoleResolver, obs *workflow.Observer) *Service {
	return &Service{repo: repo, roles: roles, obs: obs}
}

// Create opens a draft report. Only a drafter on the project may write one.
func (s *Service) Create(ctx context.Context, actor domain.Actor, projectID uuid.UUID, req transport.CreateReportRequest) (transport.ReportResponse, error) {
	if err := s.requireRole(ctx, projectID, actor, domain.RoleDrafter); err != nil {
		return transport.ReportResponse{}, err
	}

	created, err := s.repo.Create(ctx, repository.Report{
		ProjectID:    projectID,
		InspectionID: req.InspectionID,
		Title:        sanitize.Line(req.Title),
		Content:      req.Content,
		DrafterID:    actor.ID,
	})
	if err != nil {
		return transport.ReportResponse{}, err
	}
	return toResponse(created), nil
}

// Update edits a report that is still with its drafter.
func (s *Service) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.UpdateReportRequest) (transport.ReportResponse, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ReportResponse{}, err
	}
	if err := s.requireRole(ctx, current.ProjectID, actor, domain.RoleDrafter); err != nil {
		return transport.ReportResponse{}, err
	}
	status := domain.ReportStatus(current.Status)
	if status != domain.ReportDraft && status != domain.ReportRejectedByPL {
		return transport.ReportResponse{}, domain.ErrIllegalTransition("report is " + current.Status + "; only drafts can be edited")
	}

	updated, err := s.repo.UpdateDraft(ctx, id, sanitize.Line(req.Title), req.Content)
	if err != nil {
		return transport.ReportResponse{}, err
	}
	return toResponse(updated), nil
}

// Get returns one report to anyone holding a role on its project.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (transport.ReportResponse, error) {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ReportResponse{}, err
	}
	if err := s.requireMember(ctx, rep.ProjectID, actor); err != nil {
		return transport.ReportResponse{}, err
	}
	return toResponse(rep), nil
}

// List returns the reports of a project, newest first.
func (s *Service) List(ctx context.Context, actor domain.Actor, projectID uuid.UUID) (transport.ReportListResponse, error) {
	if err := s.requireMember(ctx, projectID, actor); err != nil {
		return transport.ReportListResponse{}, err
	}
	items, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return transport.ReportListResponse{}, err
	}
	out := make([]transport.ReportResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toResponse(item))
	}
	return transport.ReportListResponse{Items: out}, nil
}

// Scope returns the project and inspection a report belongs to.
func (s *Service) Scope(ctx context.Context, id uuid.UUID) (uuid.UUID, *uuid.UUID, error) {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return rep.ProjectID, rep.InspectionID, nil
}

// LatestSnapshot returns the status and approval time of the newest report
// of a project. found is false when the project has no report yet.
func (s *Service) LatestSnapshot(ctx context.Context, projectID uuid.UUID) (snap domain.ReportSnapshot, found bool, err error) {
	rep, err := s.repo.Latest(ctx, projectID)
	if apperr.Is(err, apperr.KindNotFound) {
		return domain.ReportSnapshot{}, false, nil
	}
	if err != nil {
		return domain.ReportSnapshot{}, false, err
	}
	parsed, err := domain.ParseReportStatus(rep.Status)
	if err != nil {
		return domain.ReportSnapshot{}, false, err
	}
	return domain.ReportSnapshot{Status: parsed, ApprovedAt: rep.ApprovedAt}, true, nil
}

// Submit hands a draft to the admin team. Callers outside this package go
// through the project orchestrator, which checks the checklist first.
func (s *Service) Submit(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.TransitionRequest) (transport.ReportResponse, error) {
	return s.transition(ctx, actor, id, domain.ReportActionSubmit, req.ExpectedStatus, "")
}

// Verify records the admin team check of a submitted report.
func (s *Service) Verify(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.TransitionRequest) (transport.ReportResponse, error) {
	return s.transition(ctx, actor, id, domain.ReportActionVerify, req.ExpectedStatus, "")
}

// Approve advances a report one approval level. The level follows from the
// current status and the caller's role: project lead on a verified report,
// head consultant on one approved by the project lead.
func (s *Service) Approve(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.TransitionRequest) (transport.ReportResponse, error) {
	return s.transition(ctx, actor, id, domain.ReportActionApprove, req.ExpectedStatus, "")
}

// Reject sends a report back to draft with mandatory notes.
func (s *Service) Reject(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.RejectRequest) (transport.ReportResponse, error) {
	return s.transition(ctx, actor, id, domain.ReportActionReject, req.ExpectedStatus, req.Notes)
}

func (s *Service) transition(ctx context.Context, actor domain.Actor, id uuid.UUID, action, rawExpected, notes string) (transport.ReportResponse, error) {
	resp, err := s.apply(ctx, actor, id, action, rawExpected, notes)
	if err != nil {
		return transport.ReportResponse{}, s.obs.Rejected(ctx, events.EntityReport, id, action, err)
	}
	return resp, nil
}

func (s *Service) apply(ctx context.Context, actor domain.Actor, id uuid.UUID, action, rawExpected, notes string) (transport.ReportResponse, error) {
	var expected domain.ReportStatus
	if rawExpected != "" {
		parsed, err := domain.ParseReportStatus(rawExpected)
		if err != nil {
			return transport.ReportResponse{}, err
		}
		expected = parsed
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ReportResponse{}, err
	}
	roles, err := s.roles.RolesOn(ctx, current.ProjectID, actor)
	if err != nil {
		return transport.ReportResponse{}, err
	}

	plan, err := domain.PlanReportStep(action, domain.ReportStatus(current.Status), roles, expected)
	if err != nil {
		return transport.ReportResponse{}, err
	}

	var notesPtr *string
	if plan.Step.RequiresNotes {
		trimmed, err := domain.RequireNotes(action, sanitize.Text(notes))
		if err != nil {
			return transport.ReportResponse{}, err
		}
		notesPtr = &trimmed
	}

	updated, err := s.repo.Transition(ctx, repository.TransitionParams{
		ID:        id,
		From:      string(plan.From),
		To:        string(plan.Step.To),
		ActorID:   actor.ID,
		ActorRole: string(plan.Role),
		Notes:     notesPtr,
	})
	if err != nil {
		return transport.ReportResponse{}, err
	}

	evt := events.WorkflowTransitioned{
		EntityType: events.EntityReport,
		EntityID:   updated.ID,
		ProjectID:  updated.ProjectID,
		FromStatus: string(plan.From),
		ToStatus:   updated.Status,
		ActorID:    actor.ID,
		ActorRole:  string(plan.Role),
	}
	if notesPtr != nil {
		evt.Notes = *notesPtr
	}
	s.obs.Committed(ctx, action, evt)

	return toResponse(updated), nil
}

func (s *Service) requireRole(ctx context.Context, projectID uuid.UUID, actor domain.Actor, role domain.Role) error {
	roles, err := s.roles.RolesOn(ctx, projectID, actor)
	if err != nil {
		return err
	}
	for _, r := range roles {
		if r == role {
			return nil
		}
	}
	return domain.ErrForbidden("requires role " + string(role) + " on the project")
}

func (s *Service) requireMember(ctx context.Context, projectID uuid.UUID, actor domain.Actor) error {
	roles, err := s.roles.RolesOn(ctx, projectID, actor)
	if err != nil {
		return err
	}
	if len(roles) == 0 {
		return domain.ErrForbidden("no role on this project")
	}
	return nil
}

func toResponse(r repository.Report) transport.ReportResponse {
	return transport.ReportResponse{
		ID:             r.ID,
		ProjectID:      r.ProjectID,
		InspectionID:   r.InspectionID,
		Title:          r.Title,
		Content:        r.Content,
		Status:         r.Status,
		DrafterID:      r.DrafterID,
		RejectionNotes: r.RejectionNotes,
		RejectedBy:     r.RejectedBy,
		VerifiedBy:     r.VerifiedBy,
		ApprovedBy:     r.ApprovedBy,
		ApprovedAt:     r.ApprovedAt,
		CompletedBy:    r.CompletedBy,
		Version:        r.Version,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
