package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Step is one action of a sub-workflow state machine.
type Step[S ~string] struct {
	Action        string
	From          []S
	To            S
	Roles         []Role
	RequiresNotes bool
}

// StepPlan is a resolved step together with the role that authorizes it.
type StepPlan[S ~string] struct {
	Step Step[S]
	Role Role
	From S
}

// machine resolves actions on one kind of entity. rank orders statuses along
// the happy path; a status ranked above a step's sources means the step has
// already been applied by someone else.
type machine[S ~string] struct {
	entity string
	steps  []Step[S]
	rank   func(S) int
}

// resolve picks the step for action given the current status and the roles
// the actor holds. expected, when non-empty, is the status the caller read.
func (m machine[S]) resolve(action string, current S, roles []Role, expected S) (StepPlan[S], error) {
	if m.rank(current) < 0 {
		return StepPlan[S]{}, ErrUnknownStatus(string(current))
	}

	var candidates []Step[S]
	for _, step := range m.steps {
		if step.Action != action {
			continue
		}
		if _, ok := hasAnyRole(roles, step.Roles); ok {
			candidates = append(candidates, step)
		}
	}
	if len(candidates) == 0 {
		return StepPlan[S]{}, m.roleError(action)
	}

	if expected != "" && expected != current {
		return StepPlan[S]{}, ErrStaleTransition(m.entity, string(expected), string(current))
	}

	for _, step := range candidates {
		if slices.Contains(step.From, current) {
			role, _ := hasAnyRole(roles, step.Roles)
			return StepPlan[S]{Step: step, Role: role, From: current}, nil
		}
	}

	step := candidates[0]
	if m.passed(step, current) {
		return StepPlan[S]{}, ErrStaleTransition(m.entity, joinStatuses(step.From), string(current))
	}
	return StepPlan[S]{}, ErrIllegalTransition(fmt.Sprintf(
		"cannot %s a %s in status %s; it must be %s", action, m.entity, current, joinStatuses(step.From)))
}

func (m machine[S]) passed(step Step[S], current S) bool {
	if current == step.To {
		return true
	}
	maxFrom := -1
	for _, from := range step.From {
		if r := m.rank(from); r > maxFrom {
			maxFrom = r
		}
	}
	return m.rank(current) > maxFrom
}

func (m machine[S]) roleError(action string) error {
	var allowed []Role
	for _, step := range m.steps {
		if step.Action == action {
			allowed = MergeRoles(allowed, step.Roles)
		}
	}
	if len(allowed) == 0 {
		return ErrValidation(fmt.Sprintf("unknown %s action %q", m.entity, action))
	}
	return ErrIllegalTransition(fmt.Sprintf("%s on a %s requires role %s", action, m.entity, joinRoles(allowed)))
}

func joinStatuses[S ~string](statuses []S) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, " or ")
}

// RequireNotes trims notes and fails with a validation error when blank.
func RequireNotes(action, notes string) (string, error) {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return "", ErrValidation(action + " requires non-empty notes")
	}
	return trimmed, nil
}
