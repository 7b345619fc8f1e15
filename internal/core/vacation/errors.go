package vacation

import "errors"

var (
	ErrInvalidRange        = errors.New("vacation: invalid date range")
	ErrSchedulingConflict  = errors.New("vacation: scheduling conflict")
	ErrInsufficientBalance = errors.New("vacation: insufficient balance")
	ErrRequestNotFound     = errors.New("vacation: request not found")
	ErrUserNotFound        = errors.New("vacation: user not found")
	ErrInvalidTransition   = errors.New("vacation: invalid status transition")
	ErrUnknownStatus       = errors.New("vacation: unknown status")
	ErrInvalidYear         = errors.New("vacation: invalid year")

	// ErrAlreadyActioned は二人の管理者が同一申請を同時に処理した際の
	// 敗者側に返る良性の結果です。呼び出し側は失敗ではなく
	// 「変更なし」として提示します。
	ErrAlreadyActioned = errors.New("vacation: request already actioned")

	// ErrTransient はストアのタイムアウトや競合など再試行可能な失敗です。
	ErrTransient = errors.New("vacation: transient store failure")
)
