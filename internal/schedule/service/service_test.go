package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/schedule/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu            sync.Mutex
	rows          map[uuid.UUID]repository.Event
	projectStatus string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[uuid.UUID]repository.Event{}, projectStatus: string(domain.StatusInspectionScheduled)}
}

func (f *fakeRepo) Create(_ context.Context, e repository.Event) (repository.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.New()
	e.Status = string(domain.EventScheduled)
	e.Version = 1
	f.rows[e.ID] = e
	return e, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.rows[id]
	if !ok {
		return repository.Event{}, apperr.NotFound("schedule event not found")
	}
	return e, nil
}

func (f *fakeRepo) ListByProject(_ context.Context, projectID uuid.UUID, _ repository.ListFilter) ([]repository.Event, error) {
	var out []repository.Event
	for _, e := range f.rows {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByAssignee(_ context.Context, userID uuid.UUID, _ repository.ListFilter) ([]repository.Event, error) {
	var out []repository.Event
	for _, e := range f.rows {
		if e.AssigneeID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) ProjectStatus(_ context.Context, _ uuid.UUID) (string, error) {
	return f.projectStatus, nil
}

func (f *fakeRepo) CountInspections(_ context.Context, projectID uuid.UUID) (repository.InspectionCounts, error) {
	var c repository.InspectionCounts
	for _, e := range f.rows {
		if e.ProjectID != projectID || e.EventType != string(domain.EventInspection) {
			continue
		}
		switch domain.EventStatus(e.Status) {
		case domain.EventCompleted:
			c.Completed++
		case domain.EventScheduled, domain.EventInProgress:
			c.Open++
		}
	}
	return c, nil
}

func (f *fakeRepo) Transition(_ context.Context, p repository.TransitionParams) (repository.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := f.rows[p.ID]
	if e.Status != p.From {
		return repository.Event{}, domain.ErrStaleTransition("schedule event", p.From, e.Status)
	}
	e.Status = p.To
	e.Version++
	f.rows[p.ID] = e
	return e, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.rows, id)
	return nil
}

type fakeTeam map[uuid.UUID][]domain.Role

func (f fakeTeam) RolesOn(_ context.Context, _ uuid.UUID, actor domain.Actor) ([]domain.Role, error) {
	return domain.MergeRoles(f[actor.ID], actor.ProjectWideRoles()), nil
}

func (f fakeTeam) TeamRoles(_ context.Context, _ uuid.UUID, userID uuid.UUID) ([]domain.Role, error) {
	return f[userID], nil
}

type fakeReminders struct {
	calls []time.Time
}

func (f *fakeReminders) ScheduleInspectionReminder(_ context.Context, _ uuid.UUID, at time.Time) error {
	f.calls = append(f.calls, at)
	return nil
}

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	reminders *fakeReminders
	project   uuid.UUID
	lead      domain.Actor
	inspector domain.Actor
	drafter   domain.Actor
	now       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:      newFakeRepo(),
		reminders: &fakeReminders{},
		project:   uuid.New(),
		lead:      domain.Actor{ID: uuid.New()},
		inspector: domain.Actor{ID: uuid.New()},
		drafter:   domain.Actor{ID: uuid.New()},
		now:       time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
	team := fakeTeam{
		f.lead.ID:      {domain.RoleProjectLead},
		f.inspector.ID: {domain.RoleInspector},
		f.drafter.ID:   {domain.RoleDrafter},
	}
	f.svc = New(f.repo, team, nil, logger.Discard())
	f.svc.SetReminderScheduler(f.reminders, 24*time.Hour)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) inspection(t *testing.T) uuid.UUID {
	t.Helper()
	e, err := f.svc.Create(context.Background(), f.lead, f.project, transport.CreateEventRequest{
		EventType:    string(domain.EventInspection),
		Title:        "Site visit",
		ScheduleDate: f.now.Add(72 * time.Hour),
		AssigneeID:   f.inspector.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return e.ID
}

func TestCreateInspectionSchedulesReminder(t *testing.T) {
	f := newFixture()
	f.inspection(t)

	if len(f.reminders.calls) != 1 {
		t.Fatalf("expected one reminder, got %d", len(f.reminders.calls))
	}
	if want := f.now.Add(48 * time.Hour); !f.reminders.calls[0].Equal(want) {
		t.Fatalf("expected reminder at %s, got %s", want, f.reminders.calls[0])
	}
}

func TestCreateRejectsIncompatibleAssignee(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), f.lead, f.project, transport.CreateEventRequest{
		EventType:    string(domain.EventInspection),
		Title:        "Site visit",
		ScheduleDate: f.now.Add(time.Hour),
		AssigneeID:   f.drafter.ID,
	})
	if domain.CodeOf(err) != domain.CodeIncompatibleAssignee {
		t.Fatalf("expected incompatible assignee, got %v", err)
	}
}

func TestCreateRejectsEndBeforeStart(t *testing.T) {
	f := newFixture()
	end := f.now
	_, err := f.svc.Create(context.Background(), f.lead, f.project, transport.CreateEventRequest{
		EventType:    string(domain.EventMeeting),
		Title:        "Kickoff",
		ScheduleDate: f.now.Add(time.Hour),
		EndDate:      &end,
		AssigneeID:   f.drafter.ID,
	})
	if domain.CodeOf(err) != domain.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRequiresCreatorRole(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), f.inspector, f.project, transport.CreateEventRequest{
		EventType:    string(domain.EventMeeting),
		Title:        "Kickoff",
		ScheduleDate: f.now.Add(time.Hour),
		AssigneeID:   f.drafter.ID,
	})
	if domain.CodeOf(err) != domain.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCompletionFlowAndInspectionQuery(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.inspection(t)

	done, _ := f.svc.HasCompletedRequiredInspections(ctx, f.project)
	if done {
		t.Fatalf("expected inspections to be incomplete")
	}

	_, err := f.svc.UpdateStatus(ctx, f.inspector, id, transport.UpdateStatusRequest{Status: "completed"})
	if domain.CodeOf(err) != domain.CodeIllegalTransition {
		t.Fatalf("expected scheduled -> completed to be illegal, got %v", err)
	}

	if _, err := f.svc.UpdateStatus(ctx, f.inspector, id, transport.UpdateStatusRequest{Status: "in_progress"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.lead, id, transport.UpdateStatusRequest{Status: "completed"}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	done, err = f.svc.HasCompletedRequiredInspections(ctx, f.project)
	if err != nil || !done {
		t.Fatalf("expected inspections complete, got %v (%v)", done, err)
	}

	_, err = f.svc.UpdateStatus(ctx, f.inspector, id, transport.UpdateStatusRequest{Status: "cancelled"})
	if domain.CodeOf(err) != domain.CodeTerminalState {
		t.Fatalf("expected terminal state, got %v", err)
	}
	if err := f.svc.Delete(ctx, f.lead, id); domain.CodeOf(err) != domain.CodeTerminalState {
		t.Fatalf("expected completed event to be kept, got %v", err)
	}
}

func TestCompletionRefusedDuringIntake(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.inspection(t)
	if _, err := f.svc.UpdateStatus(ctx, f.inspector, id, transport.UpdateStatusRequest{Status: "in_progress"}); err != nil {
		t.Fatalf("start: %v", err)
	}

	f.repo.projectStatus = string(domain.StatusProjectLeadReview)
	_, err := f.svc.UpdateStatus(ctx, f.inspector, id, transport.UpdateStatusRequest{Status: "completed"})
	if domain.CodeOf(err) != domain.CodePreconditionNotMet {
		t.Fatalf("expected precondition failure, got %v", err)
	}
}

func TestUpdateStatusOnlyByAssigneeOrCreator(t *testing.T) {
	f := newFixture()
	id := f.inspection(t)

	_, err := f.svc.UpdateStatus(context.Background(), f.drafter, id, transport.UpdateStatusRequest{Status: "in_progress"})
	if domain.CodeOf(err) != domain.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateStatusExpectedMismatchIsStale(t *testing.T) {
	f := newFixture()
	id := f.inspection(t)

	_, err := f.svc.UpdateStatus(context.Background(), f.inspector, id, transport.UpdateStatusRequest{
		Status:         "completed",
		ExpectedStatus: "in_progress",
	})
	if !domain.IsStale(err) {
		t.Fatalf("expected stale, got %v", err)
	}
}

func TestPendingInspection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.inspection(t)

	if _, ok, err := f.svc.PendingInspection(ctx, id); err != nil || !ok {
		t.Fatalf("expected pending inspection, got %v (%v)", ok, err)
	}
	if _, err := f.svc.UpdateStatus(ctx, f.inspector, id, transport.UpdateStatusRequest{Status: "cancelled"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, ok, _ := f.svc.PendingInspection(ctx, id); ok {
		t.Fatalf("cancelled inspection must not be pending")
	}
	if _, ok, err := f.svc.PendingInspection(ctx, uuid.New()); err != nil || ok {
		t.Fatalf("missing event must not be pending, got %v (%v)", ok, err)
	}
}
