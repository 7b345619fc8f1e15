package vacation

import (
	"errors"
	"testing"
	"time"

	"github.com/tempohq/leave-engine/internal/core/calendar"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"PENDING", "APPROVED", "REJECTED"} {
		status, err := ParseStatus(raw)
		if err != nil {
			t.Fatalf("ParseStatus(%q) returned error: %v", raw, err)
		}
		if string(status) != raw {
			t.Errorf("ParseStatus(%q) = %s", raw, status)
		}
	}
}

func TestParseStatus_UnknownFailsLoudly(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "pending", "CANCELLATION_REQUESTED", "UNKNOWN"} {
		if _, err := ParseStatus(raw); !errors.Is(err, ErrUnknownStatus) {
			t.Errorf("ParseStatus(%q): expected ErrUnknownStatus, got %v", raw, err)
		}
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	t.Parallel()

	if StatusPending.IsTerminal() {
		t.Error("PENDING must not be terminal")
	}
	if !StatusApproved.IsTerminal() || !StatusRejected.IsTerminal() {
		t.Error("APPROVED and REJECTED must be terminal")
	}
}

func TestFindConflict_OverlapRule(t *testing.T) {
	t.Parallel()

	existing := []*Request{
		{
			ID:        1,
			StartDate: calendar.Date(2024, time.July, 8),
			EndDate:   calendar.Date(2024, time.July, 12),
			Status:    StatusApproved,
		},
	}

	cases := []struct {
		name     string
		start    time.Time
		end      time.Time
		conflict bool
	}{
		{"fully before", calendar.Date(2024, time.July, 1), calendar.Date(2024, time.July, 5), false},
		{"touching start", calendar.Date(2024, time.July, 5), calendar.Date(2024, time.July, 8), true},
		{"contained", calendar.Date(2024, time.July, 9), calendar.Date(2024, time.July, 10), true},
		{"containing", calendar.Date(2024, time.July, 1), calendar.Date(2024, time.July, 31), true},
		{"touching end", calendar.Date(2024, time.July, 12), calendar.Date(2024, time.July, 15), true},
		{"fully after", calendar.Date(2024, time.July, 15), calendar.Date(2024, time.July, 19), false},
	}

	for _, tc := range cases {
		got := findConflict(existing, tc.start, tc.end)
		if tc.conflict && got == nil {
			t.Errorf("%s: expected conflict", tc.name)
		}
		if !tc.conflict && got != nil {
			t.Errorf("%s: unexpected conflict with request %d", tc.name, got.ID)
		}
	}
}
