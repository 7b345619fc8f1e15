package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/tempohq/leave-engine/internal/core/vacation"
)

func TestLogPublisher_Publish(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	publisher := NewLogPublisher(zerolog.New(&buf))

	publisher.Publish(context.Background(), vacation.Event{
		ID:         "evt-1",
		RequestID:  10,
		UserID:     7,
		OldStatus:  vacation.StatusPending,
		NewStatus:  vacation.StatusApproved,
		ActionedBy: 99,
		OccurredAt: time.Date(2025, 8, 2, 11, 0, 0, 0, time.UTC),
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}

	if entry["event_id"] != "evt-1" {
		t.Errorf("expected event_id evt-1, got %v", entry["event_id"])
	}
	if entry["old_status"] != string(vacation.StatusPending) {
		t.Errorf("expected old_status PENDING, got %v", entry["old_status"])
	}
	if entry["new_status"] != string(vacation.StatusApproved) {
		t.Errorf("expected new_status APPROVED, got %v", entry["new_status"])
	}
	if entry["request_id"] != float64(10) {
		t.Errorf("expected request_id 10, got %v", entry["request_id"])
	}
}
