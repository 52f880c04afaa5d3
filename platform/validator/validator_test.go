package validator

import "testing"

type rejectRequest struct {
	Notes string `json:"notes" validate:"required,notblank,max=4000"`
}

func TestNotBlank(t *testing.T) {
	val := New()

	if err := val.Struct(rejectRequest{Notes: "   \n\t"}); err == nil {
		t.Fatalf("expected whitespace-only notes to fail")
	}
	if err := val.Struct(rejectRequest{Notes: "missing fire exit signage"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
