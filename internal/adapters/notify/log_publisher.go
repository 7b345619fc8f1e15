package notify

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/tempohq/leave-engine/internal/core/vacation"
)

// LogPublisher は状態変化イベントを構造化ログとして記録する通知実装です。
// メール等の外部チャネルが導入されるまでの既定の実装として利用します。
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher は LogPublisher を生成します。
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish はイベントを記録します。失敗しても呼び出し元の処理には影響しません。
func (p *LogPublisher) Publish(_ context.Context, event vacation.Event) {
	p.logger.Info().
		Str("event_id", event.ID).
		Int64("request_id", event.RequestID).
		Int64("user_id", event.UserID).
		Str("old_status", string(event.OldStatus)).
		Str("new_status", string(event.NewStatus)).
		Int64("actioned_by", event.ActionedBy).
		Time("occurred_at", event.OccurredAt).
		Msg("vacation request status changed")
}
