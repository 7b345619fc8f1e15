package vacation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event は申請の状態遷移を通知系へ伝えるレコードです。
// 配送はコアの責務外で、コミット後に fire-and-forget で発行されます。
type Event struct {
	ID         string
	RequestID  int64
	UserID     int64
	OldStatus  Status
	NewStatus  Status
	ActionedBy int64
	OccurredAt time.Time
}

// EventPublisher は通知側コラボレーターの抽象です。
// 発行の失敗はコミット済みトランザクションへ波及させてはいけません。
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

// NopPublisher は何も発行しない EventPublisher です。
type NopPublisher struct{}

// Publish は何もしません。
func (NopPublisher) Publish(context.Context, Event) {}

func newEvent(clock Clock, requestID, userID int64, oldStatus, newStatus Status, actionedBy int64) Event {
	return Event{
		ID:         uuid.NewString(),
		RequestID:  requestID,
		UserID:     userID,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		ActionedBy: actionedBy,
		OccurredAt: clock.Now(),
	}
}
