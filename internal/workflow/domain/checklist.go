package domain

// ChecklistStatus is a stable token for a checklist response state.
type ChecklistStatus string

const (
	ChecklistDraft     ChecklistStatus = "draft"
	ChecklistSubmitted ChecklistStatus = "submitted"
	ChecklistApproved  ChecklistStatus = "project_lead_approved"
	ChecklistRejected  ChecklistStatus = "rejected"
)

// Checklist actions.
const (
	ChecklistActionSubmit  = "submit"
	ChecklistActionApprove = "approve"
	ChecklistActionReject  = "reject"
	ChecklistActionReopen  = "reopen"
)

var checklistRank = map[ChecklistStatus]int{
	ChecklistDraft:     0,
	ChecklistSubmitted: 1,
	ChecklistApproved:  2,
	ChecklistRejected:  2,
}

// ParseChecklistStatus validates a raw checklist status token.
func ParseChecklistStatus(raw string) (ChecklistStatus, error) {
	s := ChecklistStatus(raw)
	if _, ok := checklistRank[s]; !ok {
		return "", ErrUnknownStatus(raw)
	}
	return s, nil
}

// ChecklistRank orders checklist statuses, -1 when unknown.
func ChecklistRank(s ChecklistStatus) int {
	if r, ok := checklistRank[s]; ok {
		return r
	}
	return -1
}

// ChecklistSteps is the per-item approval machine. Edits after submission
// need an explicit reopen back to draft.
var ChecklistSteps = []Step[ChecklistStatus]{
	{Action: ChecklistActionSubmit, From: []ChecklistStatus{ChecklistDraft}, To: ChecklistSubmitted, Roles: []Role{RoleInspector}},
	{Action: ChecklistActionApprove, From: []ChecklistStatus{ChecklistSubmitted}, To: ChecklistApproved, Roles: []Role{RoleProjectLead}},
	{Action: ChecklistActionReject, From: []ChecklistStatus{ChecklistSubmitted}, To: ChecklistRejected, Roles: []Role{RoleProjectLead}, RequiresNotes: true},
	{Action: ChecklistActionReopen, From: []ChecklistStatus{ChecklistSubmitted, ChecklistRejected}, To: ChecklistDraft, Roles: []Role{RoleInspector, RoleProjectLead}},
}

var checklistMachine = machine[ChecklistStatus]{entity: "checklist response", steps: ChecklistSteps, rank: ChecklistRank}

// PlanChecklistStep resolves action on a checklist response.
func PlanChecklistStep(action string, current ChecklistStatus, roles []Role, expected ChecklistStatus) (StepPlan[ChecklistStatus], error) {
	return checklistMachine.resolve(action, current, roles, expected)
}
