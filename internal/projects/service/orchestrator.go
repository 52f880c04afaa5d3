package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/events"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/projects/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/projects/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/sanitize"

	"github.com/google/uuid"
)

// TransitionContext carries the caller's intent alongside a transition request.
type TransitionContext struct {
	// Notes explain the move. Mandatory on rejection edges.
	Notes string
	// ExpectedStatus is the status the caller read. A mismatch is stale.
	ExpectedStatus string
	// RetryOnStale re-reads and re-decides once after a stale transition.
	RetryOnStale bool
}

// RequestTransition moves a project to target on behalf of actor. The
// sequence is load, role and edge check, sub-workflow preconditions, then
// a compare-and-set write with its history row. The WorkflowTransitioned
// event is published only after commit.
func (s *Service) RequestTransition(ctx context.Context, projectID uuid.UUID, rawTarget string, actor domain.Actor, tc TransitionContext) (transport.ProjectResponse, error) {
	action := strings.TrimSpace(rawTarget)

	target, err := domain.ParseProjectStatus(rawTarget)
	if err != nil {
		return transport.ProjectResponse{}, s.obs.Rejected(ctx, events.EntityProject, projectID, action, err)
	}
	var expected domain.ProjectStatus
	if tc.ExpectedStatus != "" {
		if expected, err = domain.ParseProjectStatus(tc.ExpectedStatus); err != nil {
			return transport.ProjectResponse{}, s.obs.Rejected(ctx, events.EntityProject, projectID, action, err)
		}
	}

	resp, err := s.attempt(ctx, projectID, target, expected, actor, tc.Notes)
	if err != nil && tc.RetryOnStale && domain.IsStale(err) {
		resp, err = s.attempt(ctx, projectID, target, expected, actor, tc.Notes)
	}
	if err != nil {
		return transport.ProjectResponse{}, s.obs.Rejected(ctx, events.EntityProject, projectID, action, err)
	}
	return resp, nil
}

func (s *Service) attempt(ctx context.Context, projectID uuid.UUID, target, expected domain.ProjectStatus, actor domain.Actor, rawNotes string) (transport.ProjectResponse, error) {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return transport.ProjectResponse{}, err
	}
	current, err := domain.ParseProjectStatus(p.Status)
	if err != nil {
		return transport.ProjectResponse{}, err
	}
	if expected != "" && expected != current {
		return transport.ProjectResponse{}, domain.ErrStaleTransition("project", string(expected), string(current))
	}

	roles, err := s.ports.Roles.RolesOn(ctx, projectID, actor)
	if err != nil {
		return transport.ProjectResponse{}, err
	}
	decision := s.engine.CanTransitionAny(current, target, roles)
	if !decision.Allowed {
		return transport.ProjectResponse{}, decision.Err
	}

	var notes *string
	if decision.Edge.RequiresNotes() {
		trimmed, err := domain.RequireNotes("returning a project to "+string(target), sanitize.Text(rawNotes))
		if err != nil {
			return transport.ProjectResponse{}, err
		}
		notes = &trimmed
	} else if trimmed := sanitize.Text(rawNotes); trimmed != "" {
		notes = &trimmed
	}

	if err := s.checkPreconditions(ctx, projectID, decision.Edge.Requires); err != nil {
		return transport.ProjectResponse{}, err
	}

	updated, err := s.repo.Transition(ctx, repository.TransitionParams{
		ID:        projectID,
		From:      string(current),
		To:        string(target),
		ActorID:   actor.ID,
		ActorRole: string(decision.Role),
		Notes:     notes,
	})
	if err != nil {
		return transport.ProjectResponse{}, err
	}

	evt := events.WorkflowTransitioned{
		EntityType: events.EntityProject,
		EntityID:   updated.ID,
		ProjectID:  updated.ID,
		FromStatus: string(current),
		ToStatus:   updated.Status,
		ActorID:    actor.ID,
		ActorRole:  string(decision.Role),
	}
	if notes != nil {
		evt.Notes = *notes
	}
	s.obs.Committed(ctx, string(target), evt)

	return toResponse(updated), nil
}

func (s *Service) checkPreconditions(ctx context.Context, projectID uuid.UUID, requires []domain.Precondition) error {
	for _, pre := range requires {
		if err := s.checkPrecondition(ctx, projectID, pre); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) checkPrecondition(ctx context.Context, projectID uuid.UUID, pre domain.Precondition) error {
	switch pre {
	case domain.PreconditionInspectionsCompleted:
		done, err := s.ports.Schedule.HasCompletedRequiredInspections(ctx, projectID)
		if err != nil {
			return err
		}
		if !done {
			return domain.ErrPreconditionNotMet(pre, "required inspections are not completed")
		}
	case domain.PreconditionChecklistComplete:
		drafts, err := s.ports.Checklist.DraftItems(ctx, projectID, nil)
		if err != nil {
			return err
		}
		if len(drafts) > 0 {
			return domain.ErrPreconditionNotMet(pre, fmt.Sprintf("%d checklist responses are still in draft", len(drafts)))
		}
	case domain.PreconditionReportApproved:
		snap, found, err := s.ports.Reports.LatestSnapshot(ctx, projectID)
		if err != nil {
			return err
		}
		if !found || !snap.Status.IsApproved() {
			return domain.ErrPreconditionNotMet(pre, "the latest report is not approved by the project lead")
		}
		return s.requireApprovalAfterRevision(ctx, projectID, pre, snap)
	case domain.PreconditionReportCompleted:
		snap, found, err := s.ports.Reports.LatestSnapshot(ctx, projectID)
		if err != nil {
			return err
		}
		if !found || snap.Status != domain.ReportCompleted {
			return domain.ErrPreconditionNotMet(pre, "the latest report is not completed by the head consultant")
		}
		return s.requireApprovalAfterRevision(ctx, projectID, pre, snap)
	default:
		return apperr.Internal(fmt.Sprintf("unhandled precondition %q", pre))
	}
	return nil
}

// requireApprovalAfterRevision fails when the project was sent back to
// report_draft after the approval the report gate would rely on.
func (s *Service) requireApprovalAfterRevision(ctx context.Context, projectID uuid.UUID, pre domain.Precondition, snap domain.ReportSnapshot) error {
	revisedAt, revised, err := s.lastRevision(ctx, projectID)
	if err != nil {
		return err
	}
	if !revised {
		return nil
	}
	if snap.ApprovedAt == nil || !snap.ApprovedAt.After(revisedAt) {
		return domain.ErrPreconditionNotMet(pre, "the report approval predates the last revision request")
	}
	return nil
}

// lastRevision returns when the project last moved back into report_draft
// from a later status.
func (s *Service) lastRevision(ctx context.Context, projectID uuid.UUID) (time.Time, bool, error) {
	entries, err := s.history.ListByProject(ctx, projectID)
	if err != nil {
		return time.Time{}, false, err
	}
	draftRank := domain.Rank(domain.StatusReportDraft)
	var at time.Time
	found := false
	for _, e := range entries {
		if e.EntityType != events.EntityProject || e.ToStatus != string(domain.StatusReportDraft) {
			continue
		}
		if domain.Rank(domain.ProjectStatus(e.FromStatus)) <= draftRank {
			continue
		}
		if !found || e.CreatedAt.After(at) {
			at, found = e.CreatedAt, true
		}
	}
	return at, found, nil
}

// SubmitReport starts the approval chain of a report once every checklist
// response of its inspection, or of the whole project when the report is
// not tied to one, has left draft.
func (s *Service) SubmitReport(ctx context.Context, actor domain.Actor, reportID uuid.UUID, expectedStatus string) error {
	projectID, inspectionID, err := s.ports.Reports.Scope(ctx, reportID)
	if err != nil {
		return err
	}

	drafts, err := s.ports.Checklist.DraftItems(ctx, projectID, inspectionID)
	if err != nil {
		return err
	}
	if len(drafts) > 0 {
		err := domain.ErrPreconditionNotMet(domain.PreconditionChecklistComplete,
			fmt.Sprintf("%d checklist responses are still in draft", len(drafts)))
		return s.obs.Rejected(ctx, events.EntityReport, reportID, domain.ReportActionSubmit, err)
	}

	return s.ports.Reports.Submit(ctx, actor, reportID, expectedStatus)
}
