package priority

import "testing"

func TestFromVisitType(t *testing.T) {
	tests := []struct {
		visitType string
		want      int
	}{
		{"emergency", 0},
		{"EMERGENCY", 0},
		{"follow_up", 1},
		{"follow-up", 1},
		{"consultation", 2},
		{"routine", 3},
		{"anything_else", 3},
		{"", 3},
	}
	for _, tt := range tests {
		if got := FromVisitType(tt.visitType); got != tt.want {
			t.Errorf("FromVisitType(%q) = %d, want %d", tt.visitType, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		priority int
		want     string
	}{
		{0, "Emergency"},
		{1, "High"},
		{2, "Medium"},
		{3, "Low"},
		{7, "Low"},
		{-1, "Emergency"},
	}
	for _, tt := range tests {
		if got := Label(tt.priority); got != tt.want {
			t.Errorf("Label(%d) = %q, want %q", tt.priority, got, tt.want)
		}
	}
}

func TestStyleIsTotal(t *testing.T) {
	for p := -1; p <= 5; p++ {
		if Style(p) == "" {
			t.Errorf("Style(%d) returned empty class", p)
		}
	}
	if got := StyleForLabel("Emergency"); got != "badge-danger" {
		t.Errorf("StyleForLabel(Emergency) = %q", got)
	}
	if got := StyleForLabel("nonsense"); got != "badge-neutral" {
		t.Errorf("StyleForLabel(nonsense) = %q, want badge-neutral", got)
	}
}

func TestStyleAgreesWithLabel(t *testing.T) {
	for p := 0; p <= 3; p++ {
		if Style(p) != StyleForLabel(Label(p)) {
			t.Errorf("Style(%d) disagrees with StyleForLabel(Label(%d))", p, p)
		}
	}
}
