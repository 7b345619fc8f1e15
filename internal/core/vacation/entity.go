package vacation

import (
	"fmt"
	"time"
)

// Status は休暇申請の状態を表します。永続化された未知のトークンは
// ParseStatus で明示的に失敗させ、暗黙のフォールバックは行いません。
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ParseStatus は永続化表現から Status を復元します。
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
	}
}

// IsTerminal は承認・却下のいずれかの終端状態であるかを返します。
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected:
		return true
	case StatusPending:
		return false
	default:
		return false
	}
}

// Request は休暇申請エンティティです。start/end は UTC 0 時の日付で、
// 両端を含む範囲を表します。
type Request struct {
	ID          int64
	UserID      int64
	StartDate   time.Time
	EndDate     time.Time
	Status      Status
	Notes       *string
	AdminNotes  *string
	RequestedAt time.Time
	ApprovedBy  *int64
	ActionedAt  *time.Time
}

// Balance はある年における利用者の休暇残高ビューです。
// PendingRequested は表示用の参考値で、Remaining には影響しません。
type Balance struct {
	Year             int
	TotalAllocated   int
	ApprovedTaken    int
	PendingRequested int
	Remaining        int
}

// DateRange は承認済み申請の日付範囲です。残高集計に使用します。
type DateRange struct {
	Start time.Time
	End   time.Time
}
