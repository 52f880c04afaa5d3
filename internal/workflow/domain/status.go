// Package domain holds the certification workflow rules: the project status
// registry, the transition engine and the step tables of the report,
// checklist and schedule sub-workflows. Everything here is pure; persistence
// and authorization lookups live in the services that consume it.
package domain

// ProjectStatus is a stable token for a project lifecycle state.
type ProjectStatus string

const (
	StatusDraft                ProjectStatus = "draft"
	StatusSubmitted            ProjectStatus = "submitted"
	StatusProjectLeadReview    ProjectStatus = "project_lead_review"
	StatusInspectionScheduled  ProjectStatus = "inspection_scheduled"
	StatusInspectionInProgress ProjectStatus = "inspection_in_progress"
	StatusReportDraft          ProjectStatus = "report_draft"
	StatusHeadConsultantReview ProjectStatus = "head_consultant_review"
	StatusClientReview         ProjectStatus = "client_review"
	StatusGovernmentSubmitted  ProjectStatus = "government_submitted"
	StatusSLFIssued            ProjectStatus = "slf_issued"
	StatusCompleted            ProjectStatus = "completed"
	StatusCancelled            ProjectStatus = "cancelled"
)

// Phase groups project statuses. Higher phases are strictly later.
type Phase int

const (
	PhaseCancelled Phase = iota
	PhaseIntake
	PhaseFieldWork
	PhaseReporting
	PhaseClientSignOff
	PhaseCloseout
)

var phaseNames = map[Phase]string{
	PhaseCancelled:     "cancelled",
	PhaseIntake:        "intake",
	PhaseFieldWork:     "field_work",
	PhaseReporting:     "reporting",
	PhaseClientSignOff: "client_sign_off",
	PhaseCloseout:      "closeout",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "unknown"
}

type statusEntry struct {
	status   ProjectStatus
	phase    Phase
	terminal bool
}

// registry is the canonical ordering. Rank is the index in this slice.
var registry = []statusEntry{
	{StatusDraft, PhaseIntake, false},
	{StatusSubmitted, PhaseIntake, false},
	{StatusProjectLeadReview, PhaseIntake, false},
	{StatusInspectionScheduled, PhaseFieldWork, false},
	{StatusInspectionInProgress, PhaseFieldWork, false},
	{StatusReportDraft, PhaseReporting, false},
	{StatusHeadConsultantReview, PhaseReporting, false},
	{StatusClientReview, PhaseClientSignOff, false},
	{StatusGovernmentSubmitted, PhaseCloseout, false},
	{StatusSLFIssued, PhaseCloseout, true},
	{StatusCompleted, PhaseCloseout, true},
	{StatusCancelled, PhaseCancelled, true},
}

var registryIndex = func() map[ProjectStatus]int {
	idx := make(map[ProjectStatus]int, len(registry))
	for i, entry := range registry {
		idx[entry.status] = i
	}
	return idx
}()

// AllStatuses returns every registered status in canonical order.
func AllStatuses() []ProjectStatus {
	out := make([]ProjectStatus, len(registry))
	for i, entry := range registry {
		out[i] = entry.status
	}
	return out
}

// ParseProjectStatus validates a raw token. Tokens match exactly: no case
// folding, no trimming.
func ParseProjectStatus(raw string) (ProjectStatus, error) {
	status := ProjectStatus(raw)
	if _, ok := registryIndex[status]; !ok {
		return "", ErrUnknownStatus(raw)
	}
	return status, nil
}

// Valid reports whether s is a registered status.
func (s ProjectStatus) Valid() bool {
	_, ok := registryIndex[s]
	return ok
}

// PhaseOf maps a status to its phase. cancelled is PhaseCancelled.
func PhaseOf(s ProjectStatus) (Phase, error) {
	i, ok := registryIndex[s]
	if !ok {
		return 0, ErrUnknownStatus(string(s))
	}
	return registry[i].phase, nil
}

// Rank is the position of s in the canonical ordering, or -1 when unknown.
func Rank(s ProjectStatus) int {
	i, ok := registryIndex[s]
	if !ok {
		return -1
	}
	return i
}

// IsTerminal reports whether no transition may leave s.
func IsTerminal(s ProjectStatus) bool {
	i, ok := registryIndex[s]
	return ok && registry[i].terminal
}
