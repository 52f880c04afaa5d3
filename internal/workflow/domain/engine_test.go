package domain

import (
	"slices"
	"testing"
)

var allRoles = []Role{
	RoleAdminLead, RoleAdminTeam, RoleProjectLead, RoleInspector,
	RoleDrafter, RoleHeadConsultant, RoleClient,
}

func TestNoTransitionDecreasesPhaseExceptRejections(t *testing.T) {
	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			for _, role := range allRoles {
				d := CanTransition(from, to, role)
				if !d.Allowed {
					if d.Err == nil {
						t.Fatalf("%s -> %s as %s: denied without error", from, to, role)
					}
					continue
				}
				fromPhase, _ := PhaseOf(from)
				toPhase, _ := PhaseOf(to)
				if to == StatusCancelled {
					if !d.Edge.Cancel {
						t.Fatalf("%s -> cancelled not flagged as cancel", from)
					}
					continue
				}
				if toPhase < fromPhase && !d.Edge.Rejection {
					t.Fatalf("%s -> %s decreases phase without rejection edge", from, to)
				}
				if toPhase-fromPhase > 1 {
					t.Fatalf("%s -> %s skips a phase", from, to)
				}
			}
		}
	}
}

func TestScenarioAIntakeStaysInPhaseOne(t *testing.T) {
	status := StatusDraft
	steps := []struct {
		to   ProjectStatus
		role Role
	}{
		{StatusSubmitted, RoleAdminLead},
		{StatusProjectLeadReview, RoleProjectLead},
	}

	for _, step := range steps {
		edge, err := DefaultEngine().Transition(status, step.to, step.role)
		if err != nil {
			t.Fatalf("%s -> %s as %s: %v", status, step.to, step.role, err)
		}
		status = edge.To
		if phase, _ := PhaseOf(status); phase != PhaseIntake {
			t.Fatalf("expected phase 1 at %s, got %d", status, phase)
		}
	}
}

func TestRoleGating(t *testing.T) {
	d := CanTransition(StatusHeadConsultantReview, StatusClientReview, RoleProjectLead)
	if d.Allowed || CodeOf(d.Err) != CodeIllegalTransition {
		t.Fatalf("expected project_lead to be refused, got %+v", d)
	}

	d = CanTransition(StatusHeadConsultantReview, StatusClientReview, RoleHeadConsultant)
	if !d.Allowed {
		t.Fatalf("expected head_consultant to be allowed: %v", d.Err)
	}
	if !slices.Equal(d.Edge.Requires, []Precondition{PreconditionReportCompleted, PreconditionChecklistComplete}) {
		t.Fatalf("unexpected preconditions %v", d.Edge.Requires)
	}

	d = CanTransition(StatusHeadConsultantReview, StatusReportDraft, RoleHeadConsultant)
	if !d.Allowed || !d.Edge.Rejection || !d.Edge.RequiresNotes() {
		t.Fatalf("expected rejection edge requiring notes, got %+v", d)
	}
}

func TestPhaseSkippingIsIllegalForEveryRole(t *testing.T) {
	for _, role := range allRoles {
		d := CanTransition(StatusProjectLeadReview, StatusReportDraft, role)
		if d.Allowed || CodeOf(d.Err) != CodeIllegalTransition {
			t.Fatalf("expected skip to be illegal for %s, got %+v", role, d)
		}
	}
}

func TestBackwardMoveWithoutRejectionEdge(t *testing.T) {
	d := CanTransition(StatusReportDraft, StatusInspectionInProgress, RoleAdminLead)
	if d.Allowed || CodeOf(d.Err) != CodeIllegalTransition {
		t.Fatalf("expected illegal transition, got %+v", d)
	}
}

func TestTerminalStatesRefuseEverything(t *testing.T) {
	for _, terminal := range []ProjectStatus{StatusCancelled, StatusCompleted, StatusSLFIssued} {
		for _, to := range AllStatuses() {
			d := CanTransition(terminal, to, RoleAdminLead)
			if d.Allowed || CodeOf(d.Err) != CodeTerminalState {
				t.Fatalf("%s -> %s: expected terminal_state, got %+v", terminal, to, d)
			}
		}
	}
}

func TestCancelFromAnyNonTerminalState(t *testing.T) {
	for _, status := range AllStatuses() {
		if IsTerminal(status) {
			continue
		}
		if d := CanTransition(status, StatusCancelled, RoleProjectLead); !d.Allowed {
			t.Fatalf("project_lead should cancel from %s: %v", status, d.Err)
		}
		if d := CanTransition(status, StatusCancelled, RoleInspector); d.Allowed {
			t.Fatalf("inspector must not cancel from %s", status)
		}
	}
}

func TestUnknownStatusesInEngine(t *testing.T) {
	d := CanTransition("archived", StatusSubmitted, RoleAdminLead)
	if CodeOf(d.Err) != CodeUnknownStatus {
		t.Fatalf("expected unknown_status, got %+v", d)
	}
	d = CanTransition(StatusDraft, "archived", RoleAdminLead)
	if CodeOf(d.Err) != CodeUnknownStatus {
		t.Fatalf("expected unknown_status, got %+v", d)
	}
}

func TestCanTransitionAnyReportsMatchedRole(t *testing.T) {
	d := DefaultEngine().CanTransitionAny(StatusProjectLeadReview, StatusInspectionScheduled, []Role{RoleInspector, RoleAdminLead})
	if !d.Allowed || d.Role != RoleAdminLead {
		t.Fatalf("expected admin_lead to authorize the move, got %+v", d)
	}
}

func TestAvailableTransitions(t *testing.T) {
	got := AvailableTransitions(StatusClientReview, []Role{RoleAdminLead})
	want := []ProjectStatus{StatusGovernmentSubmitted, StatusReportDraft, StatusCancelled}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := AvailableTransitions(StatusCompleted, allRoles); len(got) != 0 {
		t.Fatalf("expected no transitions from completed, got %v", got)
	}
}

func TestLoadEngineRejectsBadTables(t *testing.T) {
	tables := map[string]string{
		"phase skip": `
edges:
  - from: draft
    to: report_draft
    roles: [admin_lead]
cancel: {to: cancelled, roles: [admin_lead]}`,
		"backward forward edge": `
edges:
  - from: report_draft
    to: submitted
    roles: [admin_lead]
cancel: {to: cancelled, roles: [admin_lead]}`,
		"unknown status": `
edges:
  - from: draft
    to: archived
    roles: [admin_lead]
cancel: {to: cancelled, roles: [admin_lead]}`,
		"unknown precondition": `
edges:
  - from: draft
    to: submitted
    roles: [admin_lead]
    requires: [paid]
cancel: {to: cancelled, roles: [admin_lead]}`,
		"edge from terminal": `
edges:
  - from: completed
    to: slf_issued
    roles: [admin_lead]
cancel: {to: cancelled, roles: [admin_lead]}`,
		"missing roles": `
edges:
  - from: draft
    to: submitted
cancel: {to: cancelled, roles: [admin_lead]}`,
	}

	for name, table := range tables {
		if _, err := LoadEngine([]byte(table)); err == nil {
			t.Fatalf("%s: expected load error", name)
		}
	}
}
