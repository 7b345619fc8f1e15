package vacation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tempohq/leave-engine/internal/core/calendar"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service は休暇申請に関するユースケースをまとめます。
// 同一申請への並行した管理者操作の直列化はストアのトランザクション分離と
// UpdateIfPending の比較交換更新に委ねます。
type Service struct {
	requests   Repository
	allowances AllowanceStore
	clock      Clock
	tx         TransactionManager
	publisher  EventPublisher
	logger     zerolog.Logger
}

// UseCase は休暇申請ユースケースの公開インターフェースです。
type UseCase interface {
	CreateRequest(ctx context.Context, in CreateRequestInput) (*Request, error)
	RequestsForUser(ctx context.Context, in RequestsForUserInput) ([]*Request, error)
	RemainingBalance(ctx context.Context, in RemainingBalanceInput) (*Balance, error)
	PendingRequests(ctx context.Context) ([]*Request, error)
	ActionRequest(ctx context.Context, in ActionRequestInput) (*Request, error)
}

// NewService は Service を生成します。
func NewService(requests Repository, allowances AllowanceStore, clock Clock, tx TransactionManager, publisher EventPublisher, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Service{
		requests:   requests,
		allowances: allowances,
		clock:      clock,
		tx:         tx,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateRequestInput は申請作成時の入力です。
type CreateRequestInput struct {
	UserID    int64
	StartDate time.Time
	EndDate   time.Time
	Notes     *string
}

// RequestsForUserInput は利用者の申請一覧取得時の入力です。
// Year を指定すると開始または終了がその年に掛かる申請のみ返します。
type RequestsForUserInput struct {
	UserID int64
	Year   *int
}

// RemainingBalanceInput は残高取得時の入力です。Year が 0 の場合は現在年を使います。
type RemainingBalanceInput struct {
	UserID int64
	Year   int
}

// ActionRequestInput は管理者による申請処理の入力です。
// 操作権限の検証はセッション層の責務で、ここでは行いません。
type ActionRequestInput struct {
	RequestID  int64
	AdminID    int64
	Status     Status
	AdminNotes *string
}

// CreateRequest は新しい休暇申請を PENDING で登録します。
// 範囲検証、同一利用者の重複検査、残高検査を単一トランザクション内で行います。
func (s *Service) CreateRequest(ctx context.Context, in CreateRequestInput) (*Request, error) {
	start := calendar.Normalize(in.StartDate)
	end := calendar.Normalize(in.EndDate)

	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s after end %s", ErrInvalidRange, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	if calendar.CountWorkingDays(start, end) == 0 {
		return nil, fmt.Errorf("%w: no working days between %s and %s", ErrInvalidRange, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	notes := normalizeNotes(in.Notes)

	var created *Request
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.requests.ListByUser(txCtx, in.UserID)
		if err != nil {
			return err
		}
		if conflict := findConflict(existing, start, end); conflict != nil {
			return fmt.Errorf("%w: overlaps %s request %d", ErrSchedulingConflict, conflict.Status, conflict.ID)
		}

		if err := s.checkAllowance(txCtx, in.UserID, start, end); err != nil {
			return err
		}

		request := &Request{
			UserID:      in.UserID,
			StartDate:   start,
			EndDate:     end,
			Status:      StatusPending,
			Notes:       notes,
			RequestedAt: s.clock.Now(),
		}

		result, err := s.requests.Create(txCtx, request)
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, newEvent(s.clock, created.ID, created.UserID, "", StatusPending, 0))
	s.logger.Info().
		Int64("request_id", created.ID).
		Int64("user_id", created.UserID).
		Str("start_date", start.Format(time.DateOnly)).
		Str("end_date", end.Format(time.DateOnly)).
		Msg("vacation request created")

	return created, nil
}

// RequestsForUser は利用者自身の申請一覧を取得します。
func (s *Service) RequestsForUser(ctx context.Context, in RequestsForUserInput) ([]*Request, error) {
	var requests []*Request
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.requests.ListByUser(txCtx, in.UserID)
		if err != nil {
			return err
		}
		requests = found
		return nil
	}); err != nil {
		return nil, err
	}

	if in.Year == nil {
		return requests, nil
	}

	year := *in.Year
	filtered := make([]*Request, 0, len(requests))
	for _, r := range requests {
		if r.StartDate.Year() == year || r.EndDate.Year() == year {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// RemainingBalance は指定年の休暇残高ビューを計算します。
func (s *Service) RemainingBalance(ctx context.Context, in RemainingBalanceInput) (*Balance, error) {
	year := in.Year
	if year == 0 {
		year = s.clock.Now().Year()
	}
	if year < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}

	var balance *Balance
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		remaining, err := s.allowances.AllowanceDays(txCtx, in.UserID)
		if err != nil {
			return err
		}

		ranges, err := s.requests.ApprovedRangesInYear(txCtx, in.UserID, year)
		if err != nil {
			return err
		}
		approved := approvedDaysInYear(ranges, year)

		all, err := s.requests.ListByUser(txCtx, in.UserID)
		if err != nil {
			return err
		}
		pending := pendingWorkingDaysInYear(all, year)

		balance = &Balance{
			Year:             year,
			TotalAllocated:   remaining + approved,
			ApprovedTaken:    approved,
			PendingRequested: pending,
			Remaining:        remaining,
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return balance, nil
}

// PendingRequests は処理待ちの申請を申請日時の古い順で返します。
func (s *Service) PendingRequests(ctx context.Context) ([]*Request, error) {
	var requests []*Request
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.requests.ListPending(txCtx)
		if err != nil {
			return err
		}
		requests = found
		return nil
	}); err != nil {
		return nil, err
	}
	return requests, nil
}

// ActionRequest は管理者による承認・却下を単一トランザクションで適用します。
// 行が既に処理済みの場合は ErrAlreadyActioned を返し、何も変更しません。
// 承認時のみ暦日数分を残高から減算します。却下は残高に触れません。
func (s *Service) ActionRequest(ctx context.Context, in ActionRequestInput) (*Request, error) {
	switch in.Status {
	case StatusApproved, StatusRejected:
	case StatusPending:
		return nil, fmt.Errorf("%w: cannot set status back to %s", ErrInvalidTransition, StatusPending)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidTransition, in.Status)
	}

	adminNotes := normalizeNotes(in.AdminNotes)

	var actioned *Request
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		request, err := s.requests.FindByID(txCtx, in.RequestID)
		if err != nil {
			return err
		}

		if request.Status != StatusPending {
			return fmt.Errorf("%w: request %d is %s", ErrAlreadyActioned, request.ID, request.Status)
		}

		if in.Status == StatusApproved {
			span := calendar.CalendarDays(request.StartDate, request.EndDate)

			remaining, err := s.allowances.AllowanceDays(txCtx, request.UserID)
			if err != nil {
				return err
			}
			if span > remaining {
				return fmt.Errorf("%w: available %d, requested %d", ErrInsufficientBalance, remaining, span)
			}

			deducted, err := s.allowances.DeductDays(txCtx, request.UserID, span)
			if err != nil {
				return err
			}
			if !deducted {
				return fmt.Errorf("%w: available %d, requested %d", ErrInsufficientBalance, remaining, span)
			}
		}

		now := s.clock.Now()
		updated, err := s.requests.UpdateIfPending(txCtx, request.ID, in.Status, in.AdminID, adminNotes, now)
		if err != nil {
			return err
		}
		if !updated {
			// 読み取りから更新までの間に別の管理者が処理した。
			// ここでエラーを返すことで減算ごとロールバックされる。
			return fmt.Errorf("%w: request %d lost the update race", ErrAlreadyActioned, request.ID)
		}

		result := *request
		result.Status = in.Status
		result.AdminNotes = adminNotes
		adminID := in.AdminID
		result.ApprovedBy = &adminID
		actionedAt := now
		result.ActionedAt = &actionedAt
		actioned = &result
		return nil
	}); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, newEvent(s.clock, actioned.ID, actioned.UserID, StatusPending, actioned.Status, in.AdminID))
	s.logger.Info().
		Int64("request_id", actioned.ID).
		Int64("user_id", actioned.UserID).
		Int64("admin_id", in.AdminID).
		Str("status", string(actioned.Status)).
		Msg("vacation request actioned")

	return actioned, nil
}

// checkAllowance は作成時の残高検査を行います。すでに承認済みの暦日数と
// 申請中の暦日数の合計が年間割当を超える場合は失敗します。
func (s *Service) checkAllowance(ctx context.Context, userID int64, start, end time.Time) error {
	year := start.Year()

	remaining, err := s.allowances.AllowanceDays(ctx, userID)
	if err != nil {
		return err
	}

	ranges, err := s.requests.ApprovedRangesInYear(ctx, userID, year)
	if err != nil {
		return err
	}
	approved := approvedDaysInYear(ranges, year)

	requested := calendar.CalendarDays(start, end)
	totalAllocated := remaining + approved

	if approved+requested > totalAllocated {
		return fmt.Errorf("%w: available %d, requested %d, already approved %d", ErrInsufficientBalance, remaining, requested, approved)
	}
	return nil
}

func normalizeNotes(notes *string) *string {
	if notes == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*notes)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
