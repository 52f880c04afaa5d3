package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/repository"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/reports/transport"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/internal/workflow/domain"
	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]repository.Report
	history []repository.TransitionParams
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[uuid.UUID]repository.Report{}}
}

func (f *fakeRepo) Create(_ context.Context, rep repository.Report) (repository.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rep.ID = uuid.New()
	rep.Status = string(domain.ReportDraft)
	rep.Version = 1
	rep.CreatedAt = time.Now().Add(time.Duration(len(f.rows)) * time.Millisecond)
	f.rows[rep.ID] = rep
	return rep, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return repository.Report{}, apperr.NotFound("report not found")
	}
	return row, nil
}

func (f *fakeRepo) Latest(_ context.Context, projectID uuid.UUID) (repository.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest repository.Report
	found := false
	for _, row := range f.rows {
		if row.ProjectID == projectID && (!found || row.CreatedAt.After(latest.CreatedAt)) {
			latest, found = row, true
		}
	}
	if !found {
		return repository.Report{}, apperr.NotFound("project has no report")
	}
	return latest, nil
}

func (f *fakeRepo) ListByProject(_ context.Context, projectID uuid.UUID) ([]repository.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Report
	for _, row := range f.rows {
		if row.ProjectID == projectID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateDraft(_ context.Context, id uuid.UUID, title, content string) (repository.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.rows[id]
	row.Title, row.Content = title, content
	f.rows[id] = row
	return row, nil
}

func (f *fakeRepo) Transition(_ context.Context, p repository.TransitionParams) (repository.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[p.ID]
	if !ok {
		return repository.Report{}, apperr.NotFound("report not found")
	}
	if row.Status != p.From {
		return repository.Report{}, domain.ErrStaleTransition("report", p.From, row.Status)
	}
	row.Status = p.To
	row.Version++
	switch domain.ReportStatus(p.To) {
	case domain.ReportApprovedByPL:
		approvedAt := time.Now().UTC()
		row.ApprovedAt = &approvedAt
	case domain.ReportDraft:
		row.ApprovedAt = nil
	}
	if p.Notes != nil {
		row.RejectionNotes = p.Notes
		actorID := p.ActorID
		row.RejectedBy = &actorID
	}
	f.rows[p.ID] = row
	f.history = append(f.history, p)
	return row, nil
}

func (f *fakeRepo) set(id uuid.UUID, status domain.ReportStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.rows[id]
	row.Status = string(status)
	f.rows[id] = row
}

type fakeRoles map[uuid.UUID][]domain.Role

func (f fakeRoles) RolesOn(_ context.Context, _ uuid.UUID, actor domain.Actor) ([]domain.Role, error) {
	return domain.MergeRoles(f[actor.ID], actor.ProjectWideRoles()), nil
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	project  uuid.UUID
	drafter  domain.Actor
	admin    domain.Actor
	lead     domain.Actor
	head     domain.Actor
	outsider domain.Actor
}

func newFixture() *fixture {
	f := &fixture{
		repo:     newFakeRepo(),
		project:  uuid.New(),
		drafter:  domain.Actor{ID: uuid.New()},
		admin:    domain.Actor{ID: uuid.New(), GlobalRoles: []domain.Role{domain.RoleAdminTeam}},
		lead:     domain.Actor{ID: uuid.New()},
		head:     domain.Actor{ID: uuid.New(), GlobalRoles: []domain.Role{domain.RoleHeadConsultant}},
		outsider: domain.Actor{ID: uuid.New()},
	}
	roles := fakeRoles{
		f.drafter.ID: {domain.RoleDrafter},
		f.lead.ID:    {domain.RoleProjectLead},
	}
	f.svc = New(f.repo, roles, nil)
	return f
}

func (f *fixture) draft(t *testing.T) uuid.UUID {
	t.Helper()
	rep, err := f.svc.Create(context.Background(), f.drafter, f.project, transport.CreateReportRequest{Title: "Structural inspection"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return rep.ID
}

func TestFullApprovalChain(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.draft(t)
	none := transport.TransitionRequest{}

	steps := []struct {
		name string
		run  func() (transport.ReportResponse, error)
		want domain.ReportStatus
	}{
		{"submit", func() (transport.ReportResponse, error) { return f.svc.Submit(ctx, f.drafter, id, none) }, domain.ReportSubmitted},
		{"verify", func() (transport.ReportResponse, error) { return f.svc.Verify(ctx, f.admin, id, none) }, domain.ReportVerified},
		{"pl approve", func() (transport.ReportResponse, error) { return f.svc.Approve(ctx, f.lead, id, none) }, domain.ReportApprovedByPL},
		{"hc approve", func() (transport.ReportResponse, error) { return f.svc.Approve(ctx, f.head, id, none) }, domain.ReportCompleted},
	}
	for _, step := range steps {
		got, err := step.run()
		if err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		if got.Status != string(step.want) {
			t.Fatalf("%s: expected %s, got %s", step.name, step.want, got.Status)
		}
	}

	if len(f.repo.history) != 4 {
		t.Fatalf("expected 4 history rows, got %d", len(f.repo.history))
	}
	if f.repo.history[3].ActorRole != string(domain.RoleHeadConsultant) {
		t.Fatalf("expected head consultant on final step, got %s", f.repo.history[3].ActorRole)
	}

	snap, found, err := f.svc.LatestSnapshot(ctx, f.project)
	if err != nil || !found || snap.Status != domain.ReportCompleted {
		t.Fatalf("expected latest completed, got %s %v %v", snap.Status, found, err)
	}
	if snap.ApprovedAt == nil {
		t.Fatalf("expected approval time to survive completion")
	}
}

func TestProjectLeadCannotSkipVerification(t *testing.T) {
	f := newFixture()
	id := f.draft(t)
	if _, err := f.svc.Submit(context.Background(), f.drafter, id, transport.TransitionRequest{}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	_, err := f.svc.Approve(context.Background(), f.lead, id, transport.TransitionRequest{})
	if domain.CodeOf(err) != domain.CodeIllegalTransition {
		t.Fatalf("expected illegal transition, got %v", err)
	}
}

func TestRejectionReturnsToDraftWithNotes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.draft(t)
	f.repo.set(id, domain.ReportApprovedByPL)

	_, err := f.svc.Reject(ctx, f.head, id, transport.RejectRequest{Notes: "  "})
	if domain.CodeOf(err) != domain.CodeValidation {
		t.Fatalf("expected validation error for blank notes, got %v", err)
	}

	got, err := f.svc.Reject(ctx, f.head, id, transport.RejectRequest{Notes: "missing fire exits"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got.Status != string(domain.ReportDraft) {
		t.Fatalf("expected draft, got %s", got.Status)
	}
	if got.RejectionNotes == nil || *got.RejectionNotes != "missing fire exits" {
		t.Fatalf("expected notes stored, got %v", got.RejectionNotes)
	}

	if _, err := f.svc.Submit(ctx, f.drafter, id, transport.TransitionRequest{}); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
}

func TestConcurrentApprovalOneWins(t *testing.T) {
	f := newFixture()
	id := f.draft(t)
	f.repo.set(id, domain.ReportVerified)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Approve(context.Background(), f.lead, id, transport.TransitionRequest{})
		}(i)
	}
	wg.Wait()

	ok, stale := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case domain.IsStale(err):
			stale++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if ok != 1 || stale != 1 {
		t.Fatalf("expected one success and one stale, got ok=%d stale=%d", ok, stale)
	}
}

func TestExpectedStatusMismatchIsStale(t *testing.T) {
	f := newFixture()
	id := f.draft(t)
	f.repo.set(id, domain.ReportApprovedByPL)

	_, err := f.svc.Approve(context.Background(), f.head, id, transport.TransitionRequest{ExpectedStatus: "verified_by_admin_team"})
	if !domain.IsStale(err) {
		t.Fatalf("expected stale transition, got %v", err)
	}
}

func TestLegacyRejectedStatusCanBeResubmitted(t *testing.T) {
	f := newFixture()
	id := f.draft(t)
	f.repo.set(id, domain.ReportRejectedByPL)

	got, err := f.svc.Submit(context.Background(), f.drafter, id, transport.TransitionRequest{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.Status != string(domain.ReportSubmitted) {
		t.Fatalf("expected submitted, got %s", got.Status)
	}
}

func TestCreateAndReadRequireProjectRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.lead, f.project, transport.CreateReportRequest{Title: "x"})
	if domain.CodeOf(err) != domain.CodeForbidden {
		t.Fatalf("expected forbidden for non-drafter, got %v", err)
	}

	id := f.draft(t)
	if _, err := f.svc.Get(ctx, f.outsider, id); domain.CodeOf(err) != domain.CodeForbidden {
		t.Fatalf("expected forbidden for outsider, got %v", err)
	}
	if _, err := f.svc.Get(ctx, f.head, id); err != nil {
		t.Fatalf("head consultant should read any project: %v", err)
	}
}

func TestUpdateOnlyInDraft(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.draft(t)

	if _, err := f.svc.Update(ctx, f.drafter, id, transport.UpdateReportRequest{Title: "v2"}); err != nil {
		t.Fatalf("update draft: %v", err)
	}
	f.repo.set(id, domain.ReportSubmitted)
	_, err := f.svc.Update(ctx, f.drafter, id, transport.UpdateReportRequest{Title: "v3"})
	if domain.CodeOf(err) != domain.CodeIllegalTransition {
		t.Fatalf("expected illegal transition, got %v", err)
	}
}

func TestLatestSnapshotWithoutReports(t *testing.T) {
	f := newFixture()
	_, found, err := f.svc.LatestSnapshot(context.Background(), uuid.New())
	if err != nil || found {
		t.Fatalf("expected no report, got found=%v err=%v", found, err)
	}
}
