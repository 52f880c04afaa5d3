package domain

import "time"

// ReportStatus is a stable token for an inspection report state.
type ReportStatus string

const (
	ReportDraft        ReportStatus = "draft"
	ReportSubmitted    ReportStatus = "submitted"
	ReportVerified     ReportStatus = "verified_by_admin_team"
	ReportApprovedByPL ReportStatus = "approved_by_pl"
	ReportRejectedByPL ReportStatus = "rejected_by_pl"
	ReportCompleted    ReportStatus = "completed"
)

// Report actions.
const (
	ReportActionSubmit  = "submit"
	ReportActionVerify  = "verify"
	ReportActionApprove = "approve"
	ReportActionReject  = "reject"
)

// rejected_by_pl is a legacy token: rows carrying it behave like draft.
var reportRank = map[ReportStatus]int{
	ReportDraft:        0,
	ReportRejectedByPL: 0,
	ReportSubmitted:    1,
	ReportVerified:     2,
	ReportApprovedByPL: 3,
	ReportCompleted:    4,
}

// ParseReportStatus validates a raw report status token.
func ParseReportStatus(raw string) (ReportStatus, error) {
	s := ReportStatus(raw)
	if _, ok := reportRank[s]; !ok {
		return "", ErrUnknownStatus(raw)
	}
	return s, nil
}

// ReportRank orders report statuses along the approval chain, -1 when unknown.
func ReportRank(s ReportStatus) int {
	if r, ok := reportRank[s]; ok {
		return r
	}
	return -1
}

// ReportSnapshot is the newest report of a project as the project gates see
// it. ApprovedAt is nil until the project lead signs off and is cleared
// again when the report is sent back to draft.
type ReportSnapshot struct {
	Status     ReportStatus
	ApprovedAt *time.Time
}

// IsApproved reports whether the project lead has signed off on the report.
func (s ReportStatus) IsApproved() bool {
	return s == ReportApprovedByPL || s == ReportCompleted
}

// ReportSteps is the strictly sequential approval chain. Both rejections
// return the report to draft so the drafter has to resubmit.
var ReportSteps = []Step[ReportStatus]{
	{Action: ReportActionSubmit, From: []ReportStatus{ReportDraft, ReportRejectedByPL}, To: ReportSubmitted, Roles: []Role{RoleDrafter}},
	{Action: ReportActionVerify, From: []ReportStatus{ReportSubmitted}, To: ReportVerified, Roles: []Role{RoleAdminTeam}},
	{Action: ReportActionApprove, From: []ReportStatus{ReportVerified}, To: ReportApprovedByPL, Roles: []Role{RoleProjectLead}},
	{Action: ReportActionReject, From: []ReportStatus{ReportVerified}, To: ReportDraft, Roles: []Role{RoleProjectLead}, RequiresNotes: true},
	{Action: ReportActionApprove, From: []ReportStatus{ReportApprovedByPL}, To: ReportCompleted, Roles: []Role{RoleHeadConsultant}},
	{Action: ReportActionReject, From: []ReportStatus{ReportApprovedByPL}, To: ReportDraft, Roles: []Role{RoleHeadConsultant}, RequiresNotes: true},
}

var reportMachine = machine[ReportStatus]{entity: "report", steps: ReportSteps, rank: ReportRank}

// PlanReportStep resolves action on a report in status current for an actor
// holding roles. expected may be empty; when set and different from current
// the call is stale.
func PlanReportStep(action string, current ReportStatus, roles []Role, expected ReportStatus) (StepPlan[ReportStatus], error) {
	return reportMachine.resolve(action, current, roles, expected)
}
