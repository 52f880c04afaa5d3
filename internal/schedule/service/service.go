// Package service coordinates schedule events on a project: who may be
// assigned, which status changes are allowed and when inspections count
// as done.
package service

import (
	"context"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/events"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/logger"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/sanitize"

	"github.com/google/uuid"
)

// Actor roles written to the audit trail for event status changes, which
// are authorized by relationship to the event rather than by project role.
const (
	actorRoleAssignee = "assignee"
	actorRoleCreator  = "creator"
)

const entityName = "schedule event"

// Repository is the data access the schedule service needs.
type Repository interface {
	Create(ctx context.Context, e repository.Event) (repository.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Event, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, filter repository.ListFilter) ([]repository.Event, error)
	ListByAssignee(ctx context.Context, userID uuid.UUID, filter repository.ListFilter) ([]repository.Event, error)
	ProjectStatus(ctx context.Context, projectID uuid.UUID) (string, error)
	CountInspections(ctx context.Context, projectID uuid.UUID) (repository.InspectionCounts, error)
	Transition(ctx context.Context, p repository.TransitionParams) (repository.Event, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TeamLookup resolves project roles for the caller and for other users.
type TeamLookup interface {
	RolesOn(ctx context.Context, projectID uuid.UUID, actor domain.Actor) ([]domain.Role, error)
	TeamRoles(ctx context.Context, projectID, userID uuid.UUID) ([]domain.Role, error)
}

// ReminderScheduler enqueues a reminder for an inspection.
type ReminderScheduler interface {
	ScheduleInspectionReminder(ctx context.Context, eventID uuid.UUID, at time.Time) error
}

// Service handles schedule events.
type Service struct {
	repo      Repository
	team      TeamLookup
	obs       *workflow.Observer
	log       *logger.Logger
	reminders ReminderScheduler
	lead      time.Duration
	now       func() time.Time
}

// New creates a schedule service. Reminders are disabled until
// SetReminderScheduler is called.
func New(repo Repository, team TeamLookup, obs *workflow.Observer, log *logger.Logger) *Service {
	return &Service{repo: repo, team: team, obs: obs, log: log, now: time.Now}
}

// SetReminderScheduler enables inspection reminders fired lead before the
// scheduled date.
func (s *Service) SetReminderScheduler(reminders ReminderScheduler, lead time.Duration) {
	s.reminders = reminders
	s.lead = lead
}

// Create schedules an event. The creator needs project_lead, admin_team or
// admin_lead on the project and the assignee a role compatible with the type.
func (s *Service) Create(ctx context.Context, actor domain.Actor, projectID uuid.UUID, req transport.CreateEventRequest) (transport.EventResponse, error) {
	roles, err := s.team.RolesOn(ctx, projectID, actor)
	if err != nil {
		return transport.EventResponse{}, err
	}
	if !holdsAny(roles, domain.ScheduleCreatorRoles) {
		return transport.EventResponse{}, domain.ErrForbidden("only project_lead, admin_team or admin_lead may schedule events")
	}

	eventType, err := domain.ParseEventType(req.EventType)
	if err != nil {
		return transport.EventResponse{}, err
	}
	if req.EndDate != nil && req.EndDate.Before(req.ScheduleDate) {
		return transport.EventResponse{}, domain.ErrValidation("endDate must not be before scheduleDate")
	}

	rawStatus, err := s.repo.ProjectStatus(ctx, projectID)
	if err != nil {
		return transport.EventResponse{}, err
	}
	if domain.IsTerminal(domain.ProjectStatus(rawStatus)) {
		return transport.EventResponse{}, domain.ErrTerminalState("project", rawStatus)
	}

	assigneeRoles, err := s.team.TeamRoles(ctx, projectID, req.AssigneeID)
	if err != nil {
		return transport.EventResponse{}, err
	}
	if err := domain.CheckAssignee(eventType, assigneeRoles); err != nil {
		return transport.EventResponse{}, err
	}

	created, err := s.repo.Create(ctx, repository.Event{
		ProjectID:    projectID,
		EventType:    string(eventType),
		Title:        sanitize.Line(req.Title),
		Description:  sanitize.Text(req.Description),
		ScheduleDate: req.ScheduleDate.UTC(),
		EndDate:      utcPtr(req.EndDate),
		AssigneeID:   req.AssigneeID,
		CreatedBy:    actor.ID,
	})
	if err != nil {
		return transport.EventResponse{}, err
	}

	if eventType == domain.EventInspection {
		s.scheduleReminder(ctx, created)
	}
	return toResponse(created), nil
}

func (s *Service) scheduleReminder(ctx context.Context, e repository.Event) {
	if s.reminders == nil {
		return
	}
	now := s.now()
	if !e.ScheduleDate.After(now) {
		return
	}
	at := e.ScheduleDate.Add(-s.lead)
	if at.Before(now) {
		at = now
	}
	if err := s.reminders.ScheduleInspectionReminder(ctx, e.ID, at); err != nil && s.log != nil {
		s.log.WithContext(ctx).Error("failed to schedule inspection reminder", "event_id", e.ID, "error", err)
	}
}

// UpdateStatus moves an event along scheduled, in_progress, completed, or
// cancels it. Only the assignee or the creator may do so.
func (s *Service) UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.UpdateStatusRequest) (transport.EventResponse, error) {
	resp, err := s.updateStatus(ctx, actor, id, req)
	if err != nil {
		return transport.EventResponse{}, s.obs.Rejected(ctx, events.EntityScheduleEvent, id, req.Status, err)
	}
	return resp, nil
}

func (s *Service) updateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, req transport.UpdateStatusRequest) (transport.EventResponse, error) {
	next, err := domain.ParseEventStatus(req.Status)
	if err != nil {
		return transport.EventResponse{}, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.EventResponse{}, err
	}

	var actorRole string
	switch actor.ID {
	case current.AssigneeID:
		actorRole = actorRoleAssignee
	case current.CreatedBy:
		actorRole = actorRoleCreator
	default:
		return transport.EventResponse{}, domain.ErrForbidden("only the assignee or the creator may change this event")
	}

	if req.ExpectedStatus != "" && req.ExpectedStatus != current.Status {
		return transport.EventResponse{}, domain.ErrStaleTransition(entityName, req.ExpectedStatus, current.Status)
	}

	rawProject, err := s.repo.ProjectStatus(ctx, current.ProjectID)
	if err != nil {
		return transport.EventResponse{}, err
	}
	phase, err := domain.PhaseOf(domain.ProjectStatus(rawProject))
	if err != nil {
		return transport.EventResponse{}, err
	}

	if err := domain.CheckEventTransition(domain.EventStatus(current.Status), next, phase); err != nil {
		return transport.EventResponse{}, err
	}

	updated, err := s.repo.Transition(ctx, repository.TransitionParams{
		ID:        id,
		From:      current.Status,
		To:        string(next),
		ActorID:   actor.ID,
		ActorRole: actorRole,
	})
	if err != nil {
		return transport.EventResponse{}, err
	}

	s.obs.Committed(ctx, string(next), events.WorkflowTransitioned{
		EntityType: events.EntityScheduleEvent,
		EntityID:   updated.ID,
		ProjectID:  updated.ProjectID,
		FromStatus: current.Status,
		ToStatus:   updated.Status,
		ActorID:    actor.ID,
		ActorRole:  actorRole,
	})
	return toResponse(updated), nil
}

// Delete removes an event. The creator or a project admin may delete;
// completed events are kept.
func (s *Service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actor.ID != current.CreatedBy {
		roles, err := s.team.RolesOn(ctx, current.ProjectID, actor)
		if err != nil {
			return err
		}
		if !holdsAny(roles, []domain.Role{domain.RoleAdminLead, domain.RoleAdminTeam}) {
			return domain.ErrForbidden("only the creator or an admin may delete this event")
		}
	}
	if domain.EventStatus(current.Status) == domain.EventCompleted {
		return domain.ErrTerminalState(entityName, current.Status)
	}
	return s.repo.Delete(ctx, id)
}

// List returns the events of a project to anyone holding a role on it.
func (s *Service) List(ctx context.Context, actor domain.Actor, projectID uuid.UUID, filter repository.ListFilter) (transport.EventListResponse, error) {
	roles, err := s.team.RolesOn(ctx, projectID, actor)
	if err != nil {
		return transport.EventListResponse{}, err
	}
	if len(roles) == 0 {
		return transport.EventListResponse{}, domain.ErrForbidden("no role on this project")
	}
	items, err := s.repo.ListByProject(ctx, projectID, filter)
	if err != nil {
		return transport.EventListResponse{}, err
	}
	return toListResponse(items), nil
}

// ListMine returns the events assigned to the caller.
func (s *Service) ListMine(ctx context.Context, actor domain.Actor, filter repository.ListFilter) (transport.EventListResponse, error) {
	items, err := s.repo.ListByAssignee(ctx, actor.ID, filter)
	if err != nil {
		return transport.EventListResponse{}, err
	}
	return toListResponse(items), nil
}

// HasCompletedRequiredInspections reports whether the project has at least
// one completed inspection and none still scheduled or in progress.
func (s *Service) HasCompletedRequiredInspections(ctx context.Context, projectID uuid.UUID) (bool, error) {
	counts, err := s.repo.CountInspections(ctx, projectID)
	if err != nil {
		return false, err
	}
	return counts.Completed > 0 && counts.Open == 0, nil
}

// PendingInspection returns the event when it is an inspection that is
// still scheduled. ok is false for anything else, including deleted events.
func (s *Service) PendingInspection(ctx context.Context, id uuid.UUID) (repository.Event, bool, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return repository.Event{}, false, nil
		}
		return repository.Event{}, false, err
	}
	if domain.EventType(e.EventType) != domain.EventInspection || domain.EventStatus(e.Status) != domain.EventScheduled {
		return repository.Event{}, false, nil
	}
	return e, true, nil
}

func holdsAny(held, allowed []domain.Role) bool {
	for _, h := range held {
		for _, a := range allowed {
			if h == a {
				return true
			}
		}
	}
	return false
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func toResponse(e repository.Event) transport.EventResponse {
	return transport.EventResponse{
		ID:           e.ID,
		ProjectID:    e.ProjectID,
		EventType:    e.EventType,
		Title:        e.Title,
		Description:  e.Description,
		ScheduleDate: e.ScheduleDate,
		EndDate:      e.EndDate,
		AssigneeID:   e.AssigneeID,
		Status:       e.Status,
		Version:      e.Version,
		CreatedBy:    e.CreatedBy,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toListResponse(items []repository.Event) transport.EventListResponse {
	out := make([]transport.EventResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toResponse(item))
	}
	return transport.EventListResponse{Items: out}
}
