package domain

import (
	"fmt"
	"strconv"

	"github.com/idanurida/slf-one-manager-full-stack-sub007/platform/apperr"
)

// ErrorCode is the machine-readable reason attached to workflow errors.
type ErrorCode string

const (
	CodeUnknownStatus        ErrorCode = "unknown_status"
	CodeIllegalTransition    ErrorCode = "illegal_transition"
	CodeTerminalState        ErrorCode = "terminal_state"
	CodePreconditionNotMet   ErrorCode = "precondition_not_met"
	CodeStaleTransition      ErrorCode = "stale_transition"
	CodeIncompatibleAssignee ErrorCode = "incompatible_assignee"
	CodeValidation           ErrorCode = "validation"
	CodeForbidden            ErrorCode = "forbidden"
)

// ErrUnknownStatus reports a status token outside the registry.
func ErrUnknownStatus(value string) *apperr.Error {
	return apperr.Validation("unknown status " + quote(value)).
		WithCode(string(CodeUnknownStatus)).
		WithDetails(map[string]string{"status": value})
}

// ErrIllegalTransition reports a role or ordering violation.
func ErrIllegalTransition(reason string) *apperr.Error {
	return apperr.New(apperr.KindUnprocessable, reason).WithCode(string(CodeIllegalTransition))
}

// ErrTerminalState reports an attempt to leave a terminal status.
func ErrTerminalState(entity, status string) *apperr.Error {
	return apperr.Conflict(fmt.Sprintf("%s is in terminal status %s", entity, status)).
		WithCode(string(CodeTerminalState)).
		WithDetails(map[string]string{"status": status})
}

// ErrPreconditionNotMet names the sub-workflow step that is still missing.
func ErrPreconditionNotMet(precondition Precondition, message string) *apperr.Error {
	return apperr.New(apperr.KindPrecondition, message).
		WithCode(string(CodePreconditionNotMet)).
		WithDetails(map[string]string{"precondition": string(precondition)})
}

// ErrStaleTransition reports a lost compare-and-set or an already applied step.
func ErrStaleTransition(entity, expected, actual string) *apperr.Error {
	msg := fmt.Sprintf("%s status changed: expected %s", entity, expected)
	if actual != "" {
		msg += ", found " + actual
	}
	details := map[string]string{"expected": expected}
	if actual != "" {
		details["actual"] = actual
	}
	return apperr.Conflict(msg + "; re-read and retry").
		WithCode(string(CodeStaleTransition)).
		WithDetails(details)
}

// ErrIncompatibleAssignee reports an assignee without a role the event type accepts.
func ErrIncompatibleAssignee(eventType EventType, required []Role) *apperr.Error {
	return apperr.New(apperr.KindUnprocessable,
		fmt.Sprintf("%s events require an assignee with role %s on the project", eventType, joinRoles(required))).
		WithCode(string(CodeIncompatibleAssignee))
}

// ErrValidation reports invalid input such as blank rejection notes.
func ErrValidation(message string) *apperr.Error {
	return apperr.Validation(message).WithCode(string(CodeValidation))
}

// ErrForbidden reports an actor without any role on the project that could act.
func ErrForbidden(message string) *apperr.Error {
	return apperr.Forbidden(message).WithCode(string(CodeForbidden))
}

// CodeOf returns the workflow code carried by err, or "".
func CodeOf(err error) ErrorCode {
	return ErrorCode(apperr.GetCode(err))
}

// IsStale reports whether err is a lost optimistic-concurrency race.
func IsStale(err error) bool {
	return CodeOf(err) == CodeStaleTransition
}

func quote(s string) string {
	return strconv.Quote(s)
}
