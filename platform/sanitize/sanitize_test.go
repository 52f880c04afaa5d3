package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain notes ", "plain notes"},
		{"<b>bold</b> finding", "bold finding"},
		{"&lt;script&gt;alert(1)&lt;/script&gt;missing anchor bolts", "alert(1)missing anchor bolts"},
		{"<p></p>", ""},
		{"ratio 3 &amp; 4", "ratio 3 & 4"},
	}

	for _, tc := range tests {
		if got := Text(tc.in); got != tc.want {
			t.Errorf("Text(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLineCollapsesWhitespace(t *testing.T) {
	if got := Line("Site \n\t inspection   block B"); got != "Site inspection block B" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestTextPtr(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatalf("expected nil to stay nil")
	}
	in := "<i>x</i>"
	if got := TextPtr(&in); got == nil || *got != "x" {
		t.Fatalf("unexpected %v", got)
	}
}
