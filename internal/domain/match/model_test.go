package match

import (
	"testing"
	"time"
)

func TestCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		m    Match
		want string
	}{
		{"not started", Match{}, CategoryUpcoming},
		{"started", Match{Started: true}, CategoryLive},
		{"ended", Match{Started: true, Ended: true}, CategoryCompleted},
		{"ended without started flag", Match{Ended: true}, CategoryCompleted},
	}

	for _, tc := range tests {
		if got := Category(tc.m); got != tc.want {
			t.Fatalf("%s: Category = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSortForCategory(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	matches := []Match{
		{ID: "b", StartAt: base.Add(2 * time.Hour)},
		{ID: "a", StartAt: base},
		{ID: "c", StartAt: base.Add(4 * time.Hour)},
	}

	upcoming := append([]Match(nil), matches...)
	SortForCategory(upcoming, CategoryUpcoming)
	if upcoming[0].ID != "a" || upcoming[1].ID != "b" || upcoming[2].ID != "c" {
		t.Fatalf("upcoming not sorted soonest first: %v %v %v", upcoming[0].ID, upcoming[1].ID, upcoming[2].ID)
	}

	completed := append([]Match(nil), matches...)
	SortForCategory(completed, CategoryCompleted)
	if completed[0].ID != "c" || completed[1].ID != "b" || completed[2].ID != "a" {
		t.Fatalf("completed not sorted most recent first: %v %v %v", completed[0].ID, completed[1].ID, completed[2].ID)
	}
}

func TestFormatIST(t *testing.T) {
	t.Parallel()

	// 14:30 UTC is 20:00 IST.
	ts := time.Date(2026, 3, 7, 14, 30, 0, 0, time.UTC)
	if got, want := FormatIST(ts), "07 Mar 2026, 08:00 PM"; got != want {
		t.Fatalf("FormatIST = %q, want %q", got, want)
	}

	if got := FormatIST(time.Time{}); got != "" {
		t.Fatalf("expected empty string for zero time, got %q", got)
	}
}
