package apperr

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusConflict},
		{KindForbidden, http.StatusForbidden},
		{KindUnprocessable, http.StatusUnprocessableEntity},
		{KindPrecondition, http.StatusPreconditionFailed},
		{KindInternal, http.StatusInternalServerError},
		{KindUnknown, http.StatusBadRequest},
	}

	for _, tc := range tests {
		if got := New(tc.kind, "x").HTTPStatus(); got != tc.want {
			t.Errorf("kind %d: expected status %d, got %d", tc.kind, tc.want, got)
		}
	}
}

func TestKindAndCodeSurviveWrapping(t *testing.T) {
	base := Conflict("status changed").WithCode("stale_transition")
	wrapped := fmt.Errorf("approve report: %w", base)

	if !Is(wrapped, KindConflict) {
		t.Fatalf("expected wrapped error to keep KindConflict")
	}
	if got := GetCode(wrapped); got != "stale_transition" {
		t.Fatalf("expected code stale_transition, got %q", got)
	}
	if GetKind(fmt.Errorf("plain")) != KindUnknown {
		t.Fatalf("expected plain errors to report KindUnknown")
	}
}

func TestErrorMessageIncludesOp(t *testing.T) {
	err := Validation("notes are required").WithOp("reports.Reject")
	if err.Error() != "reports.Reject: notes are required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
