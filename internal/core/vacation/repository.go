package vacation

import (
	"context"
	"time"
)

// Repository は休暇申請永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, request *Request) (*Request, error)
	FindByID(ctx context.Context, id int64) (*Request, error)
	ListByUser(ctx context.Context, userID int64) ([]*Request, error)
	ListPending(ctx context.Context) ([]*Request, error)
	ApprovedRangesInYear(ctx context.Context, userID int64, year int) ([]DateRange, error)
	// UpdateIfPending は行が未だ PENDING の場合に限り状態遷移を適用する
	// 比較交換更新です。更新できた場合のみ true を返します。
	UpdateIfPending(ctx context.Context, id int64, status Status, adminID int64, adminNotes *string, actionedAt time.Time) (bool, error)
}

// AllowanceStore は利用者の年間休暇日数ビューへの抽象です。
// 本サブシステムは残日数を減算するのみで、加算は行いません。
type AllowanceStore interface {
	AllowanceDays(ctx context.Context, userID int64) (int, error)
	// DeductDays は残日数が days 以上ある場合に限り減算する比較交換更新です。
	// 減算できた場合のみ true を返します。
	DeductDays(ctx context.Context, userID int64, days int) (bool, error)
}
