package contest

import "testing"

func TestTemplates(t *testing.T) {
	t.Parallel()

	templates := Templates()
	if len(templates) != 5 {
		t.Fatalf("expected 5 templates, got %d", len(templates))
	}

	wantOrder := []string{"mega", "h2h", "small", "grand", "practice"}
	for i, code := range wantOrder {
		if templates[i].Code != code {
			t.Fatalf("template %d code = %q, want %q", i, templates[i].Code, code)
		}
	}

	if templates[1].MaxEntries != 2 {
		t.Fatalf("head to head max entries = %d, want 2", templates[1].MaxEntries)
	}
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusUpcoming, StatusLive, true},
		{StatusUpcoming, StatusCompleted, true},
		{StatusLive, StatusCompleted, true},
		{StatusLive, StatusUpcoming, false},
		{StatusCompleted, StatusLive, false},
		{StatusCompleted, StatusUpcoming, false},
		{StatusUpcoming, StatusUpcoming, false},
	}

	for _, tc := range tests {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []string{StatusUpcoming, StatusLive, StatusCompleted} {
		if !ValidStatus(status) {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	if ValidStatus("cancelled") {
		t.Fatal("expected cancelled to be invalid")
	}
}
