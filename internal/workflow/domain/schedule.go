package domain

import (
	"fmt"
	"slices"
)

// EventType is the kind of a schedule event.
type EventType string

const (
	EventInspection           EventType = "inspection"
	EventMeeting              EventType = "meeting"
	EventDeadline             EventType = "deadline"
	EventDocumentVerification EventType = "document_verification"
)

// EventStatus is a stable token for a schedule event state.
type EventStatus string

const (
	EventScheduled  EventStatus = "scheduled"
	EventInProgress EventStatus = "in_progress"
	EventCompleted  EventStatus = "completed"
	EventCancelled  EventStatus = "cancelled"
)

// compatibleRoles lists the team roles an assignee must hold per event type.
// A nil entry accepts any team role on the project.
var compatibleRoles = map[EventType][]Role{
	EventInspection:           {RoleInspector},
	EventDocumentVerification: {RoleAdminTeam, RoleAdminLead},
	EventMeeting:              nil,
	EventDeadline:             nil,
}

var eventTransitions = map[EventStatus][]EventStatus{
	EventScheduled:  {EventInProgress, EventCancelled},
	EventInProgress: {EventCompleted, EventCancelled},
	EventCompleted:  {},
	EventCancelled:  {},
}

// ScheduleCreatorRoles may create events on a project.
var ScheduleCreatorRoles = []Role{RoleProjectLead, RoleAdminTeam, RoleAdminLead}

// ParseEventType validates a raw event type token.
func ParseEventType(raw string) (EventType, error) {
	t := EventType(raw)
	if _, ok := compatibleRoles[t]; !ok {
		return "", ErrValidation(fmt.Sprintf("unknown event type %q", raw))
	}
	return t, nil
}

// ParseEventStatus validates a raw event status token.
func ParseEventStatus(raw string) (EventStatus, error) {
	s := EventStatus(raw)
	if _, ok := eventTransitions[s]; !ok {
		return "", ErrUnknownStatus(raw)
	}
	return s, nil
}

// IsTerminal reports whether the event can no longer change status.
func (s EventStatus) IsTerminal() bool {
	return s == EventCompleted || s == EventCancelled
}

// CompatibleRoles returns the roles accepted for an assignee of t, nil meaning any.
func CompatibleRoles(t EventType) []Role {
	return slices.Clone(compatibleRoles[t])
}

// CheckAssignee verifies that an assignee holding assigneeRoles on the project
// may be put on an event of type t.
func CheckAssignee(t EventType, assigneeRoles []Role) error {
	required, ok := compatibleRoles[t]
	if !ok {
		return ErrValidation(fmt.Sprintf("unknown event type %q", t))
	}
	if required == nil {
		if len(assigneeRoles) == 0 {
			return ErrIncompatibleAssignee(t, TeamRoles)
		}
		return nil
	}
	if _, ok := hasAnyRole(assigneeRoles, required); !ok {
		return ErrIncompatibleAssignee(t, required)
	}
	return nil
}

// CheckEventTransition validates an event status change. Completion is
// refused while the project is still in intake.
func CheckEventTransition(current, next EventStatus, projectPhase Phase) error {
	allowed, ok := eventTransitions[current]
	if !ok {
		return ErrUnknownStatus(string(current))
	}
	if _, ok := eventTransitions[next]; !ok {
		return ErrUnknownStatus(string(next))
	}
	if current.IsTerminal() {
		return ErrTerminalState("schedule event", string(current))
	}
	if current == next {
		return ErrStaleTransition("schedule event", string(current), string(current))
	}
	if !slices.Contains(allowed, next) {
		return ErrIllegalTransition(fmt.Sprintf("schedule event cannot move from %s to %s", current, next))
	}
	if next == EventCompleted && projectPhase <= PhaseIntake {
		return ErrPreconditionNotMet(PreconditionProjectInFieldWork,
			"events cannot be completed before the project leaves intake")
	}
	return nil
}
