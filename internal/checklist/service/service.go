// Package service implements the per-item checklist approval workflow.
package service

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/checklist/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/checklist/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/events"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/sanitize"

	"github.com/google/uuid"
)

// Repository is the data access the checklist service needs.
type Repository interface {
	Create(ctx context.Context, resp repository.Response) (repository.Response, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Response, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, filter repository.ListFilter) ([]repository.Response, error)
	DraftItemIDs(ctx context.Context, projectID uuid.UUID, inspectionID *uuid.UUID) ([]string, error)
	SaveDraft(ctx context.Context, id uuid.UUID, response []byte) (repository.Response, error)
	Transition(ctx context.Context, p repository.TransitionParams) (repository.Response, error)
}

// RoleResolver returns the roles an actor holds on a project.
type RoleResolver interface {
	RolesOn(ctx context.Context, projectID uuid.UUID, actor domain.Actor) ([]domain.Role, error)
}

// Service handles checklist responses.
type Service struct {
	repo  Repository
	roles RoleResolver
	obs   *workflow.Observer
}

// New creates a checklist service.
func New(repo Repository, roles RoleResolver, obs *workflow.Observer) *Service {
	return &Service{repo: repo, roles: roles, obs: obs}
}

// Create opens a draft response owned by the calling inspector.
func (s *Service) Create(ctx context.Context, actor domain.Actor, projectID uuid.UUID, req transport.CreateResponseRequest) (transport.ResponseView, error) {
	roles, err := s.roles.RolesOn(ctx, projectID, actor)
	if err != nil {
		return transport.ResponseView{}, err
	}
	if !containsRole(roles, domain.RoleInspector) {
		return transport.ResponseView{}, domain.ErrForbidden("only an inspector on the project may answer the checklist")
	}

	created, err := s.repo.Create(ctx, repository.Response{
		ProjectID:    projectID,
		InspectionID: req.InspectionID,
		ItemID:       req.ItemID,
		InspectorID:  actor.ID,
		Response:     req.Response,
	})
	if err != nil {
		return transport.ResponseView{}, err
	}
	return toView(created), nil
}

// Save replaces the answer of a draft response.
func (s *Service) Save(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.SaveResponseRequest) (transport.ResponseView, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ResponseView{}, err
	}
	if current.InspectorID != actor.ID {
		return transport.ResponseView{}, domain.ErrForbidden("only the responding inspector may edit this response")
	}
	if domain.ChecklistStatus(current.Status) != domain.ChecklistDraft {
		return transport.ResponseView{}, domain.ErrIllegalTransition(
			"checklist response is " + current.Status + "; reopen it before editing")
	}

	updated, err := s.repo.SaveDraft(ctx, id, req.Response)
	if err != nil {
		return transport.ResponseView{}, err
	}
	return toView(updated), nil
}

// Submit hands a draft response to the project lead for review.
func (s *Service) Submit(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.TransitionRequest) (transport.ResponseView, error) {
	return s.transition(ctx, actor, id, domain.ChecklistActionSubmit, req.ExpectedStatus, "")
}

// Approve accepts a submitted response.
func (s *Service) Approve(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.TransitionRequest) (transport.ResponseView, error) {
	return s.transition(ctx, actor, id, domain.ChecklistActionApprove, req.ExpectedStatus, "")
}

// Reject refuses a submitted response with mandatory notes.
func (s *Service) Reject(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.RejectRequest) (transport.ResponseView, error) {
	return s.transition(ctx, actor, id, domain.ChecklistActionReject, req.ExpectedStatus, req.Notes)
}

// Reopen returns a submitted or rejected response to draft.
func (s *Service) Reopen(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.TransitionRequest) (transport.ResponseView, error) {
	return s.transition(ctx, actor, id, domain.ChecklistActionReopen, req.ExpectedStatus, "")
}

func (s *Service) transition(ctx context.Context, actor domain.Actor, id uuid.UUID, action, rawExpected, notes string) (transport.ResponseView, error) {
	view, err := s.apply(ctx, actor, id, action, rawExpected, notes)
	if err != nil {
		return transport.ResponseView{}, s.obs.Rejected(ctx, events.EntityChecklistResponse, id, action, err)
	}
	return view, nil
}

func (s *Service) apply(ctx context.Context, actor domain.Actor, id uuid.UUID, action, rawExpected, notes string) (transport.ResponseView, error) {
	var expected domain.ChecklistStatus
	if rawExpected != "" {
		parsed, err := domain.ParseChecklistStatus(rawExpected)
		if err != nil {
			return transport.ResponseView{}, err
		}
		expected = parsed
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ResponseView{}, err
	}
	roles, err := s.roles.RolesOn(ctx, current.ProjectID, actor)
	if err != nil {
		return transport.ResponseView{}, err
	}

	plan, err := domain.PlanChecklistStep(action, domain.ChecklistStatus(current.Status), roles, expected)
	if err != nil {
		return transport.ResponseView{}, err
	}
	if plan.Role == domain.RoleInspector && current.InspectorID != actor.ID {
		return transport.ResponseView{}, domain.ErrForbidden("only the responding inspector may " + action + " this response")
	}
	if action == domain.ChecklistActionSubmit && isEmptyResponse(current.Response) {
		return transport.ResponseView{}, domain.ErrValidation("checklist response is empty")
	}

	var notesPtr *string
	if plan.Step.RequiresNotes {
		trimmed, err := domain.RequireNotes(action, sanitize.Text(notes))
		if err != nil {
			return transport.ResponseView{}, err
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
		return transport.ResponseView{}, err
	}

	evt := events.WorkflowTransitioned{
		EntityType: events.EntityChecklistResponse,
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

	return toView(updated), nil
}

// List returns the checklist of a project to anyone holding a role on it.
func (s *Service) List(ctx context.Context, actor domain.Actor, projectID uuid.UUID, filter repository.ListFilter) (transport.ResponseListView, error) {
	roles, err := s.roles.RolesOn(ctx, projectID, actor)
	if err != nil {
		return transport.ResponseListView{}, err
	}
	if len(roles) == 0 {
		return transport.ResponseListView{}, domain.ErrForbidden("no role on this project")
	}

	items, err := s.repo.ListByProject(ctx, projectID, filter)
	if err != nil {
		return transport.ResponseListView{}, err
	}

	out := transport.ResponseListView{Items: make([]transport.ResponseView, 0, len(items))}
	for _, item := range items {
		if domain.ChecklistStatus(item.Status) == domain.ChecklistDraft {
			out.Drafts++
		}
		out.Items = append(out.Items, toView(item))
	}
	return out, nil
}

// DraftItems returns the item ids still in draft for a project, or for one
// inspection of it. An empty result means the checklist is complete.
func (s *Service) DraftItems(ctx context.Context, projectID uuid.UUID, inspectionID *uuid.UUID) ([]string, error) {
	return s.repo.DraftItemIDs(ctx, projectID, inspectionID)
}

func isEmptyResponse(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return true
	}
	var v interface{}
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return false
	}
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return len(bytes.TrimSpace([]byte(val))) == 0
	case map[string]interface{}:
		return len(val) == 0
	case []interface{}:
		return len(val) == 0
	}
	return false
}

func containsRole(roles []domain.Role, want domain.Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}

func toView(r repository.Response) transport.ResponseView {
	resp := json.RawMessage(r.Response)
	if len(resp) == 0 {
		resp = json.RawMessage("{}")
	}
	return transport.ResponseView{
		ID:           r.ID,
		ProjectID:    r.ProjectID,
		InspectionID: r.InspectionID,
		ItemID:       r.ItemID,
		InspectorID:  r.InspectorID,
		Response:     resp,
		Status:       r.Status,
		ReviewNotes:  r.ReviewNotes,
		ReviewedBy:   r.ReviewedBy,
		SubmittedAt:  r.SubmittedAt,
		ReviewedAt:   r.ReviewedAt,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
