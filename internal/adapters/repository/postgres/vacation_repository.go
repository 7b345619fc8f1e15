package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tempohq/leave-engine/internal/core/vacation"
	pgdb "github.com/tempohq/leave-engine/internal/platform/db/postgres"
)

const (
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

// VacationRepository は PostgreSQL を利用した休暇申請永続化の実装です。
type VacationRepository struct {
	pool pgdb.Queryer
}

// NewVacationRepository は VacationRepository を生成します。
func NewVacationRepository(pool pgdb.Queryer) *VacationRepository {
	return &VacationRepository{pool: pool}
}

const requestColumns = `id, user_id, start_date, end_date, status, notes, admin_notes, requested_at, approved_by, actioned_at`

// Create は申請を新規作成します。
func (r *VacationRepository) Create(ctx context.Context, request *vacation.Request) (*vacation.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO vacation_requests (user_id, start_date, end_date, status, notes, requested_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING `+requestColumns+`
    `,
		request.UserID,
		request.StartDate,
		request.EndDate,
		string(request.Status),
		nullableString(request.Notes),
		request.RequestedAt,
	)

	created, err := scanRequest(row)
	if err != nil {
		return nil, translateRequestPgError(err)
	}
	return created, nil
}

// FindByID は ID で申請を取得します。
func (r *VacationRepository) FindByID(ctx context.Context, id int64) (*vacation.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+requestColumns+`
          FROM vacation_requests
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanRequest(row)
	if err != nil {
		return nil, translateRequestPgError(err)
	}
	return found, nil
}

// ListByUser は利用者の申請一覧を開始日の新しい順で取得します。
func (r *VacationRepository) ListByUser(ctx context.Context, userID int64) ([]*vacation.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+requestColumns+`
          FROM vacation_requests
         WHERE user_id = $1
         ORDER BY start_date DESC, id DESC
    `, userID)
	if err != nil {
		return nil, translateRequestPgError(err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListPending は処理待ちの申請を申請日時の古い順で取得します。
func (r *VacationRepository) ListPending(ctx context.Context) ([]*vacation.Request, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+requestColumns+`
          FROM vacation_requests
         WHERE status = $1
         ORDER BY requested_at ASC, id ASC
    `, string(vacation.StatusPending))
	if err != nil {
		return nil, translateRequestPgError(err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ApprovedRangesInYear は対象年に交差する承認済み申請の日付範囲を返します。
func (r *VacationRepository) ApprovedRangesInYear(ctx context.Context, userID int64, year int) ([]vacation.DateRange, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT start_date, end_date
          FROM vacation_requests
         WHERE user_id = $1
           AND status = $2
           AND start_date <= $3
           AND end_date >= $4
    `, userID, string(vacation.StatusApproved), yearEnd, yearStart)
	if err != nil {
		return nil, translateRequestPgError(err)
	}
	defer rows.Close()

	var ranges []vacation.DateRange
	for rows.Next() {
		var start, end time.Time
		if err := rows.Scan(&start, &end); err != nil {
			return nil, translateRequestPgError(err)
		}
		ranges = append(ranges, vacation.DateRange{Start: toDate(start), End: toDate(end)})
	}
	if err := rows.Err(); err != nil {
		return nil, translateRequestPgError(err)
	}
	return ranges, nil
}

// UpdateIfPending は行が未だ PENDING の場合に限り状態遷移を適用します。
// WHERE 句で事前状態を再検査することで、読み取りから更新までの競合窓を閉じます。
func (r *VacationRepository) UpdateIfPending(ctx context.Context, id int64, status vacation.Status, adminID int64, adminNotes *string, actionedAt time.Time) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE vacation_requests
           SET status = $1,
               approved_by = $2,
               admin_notes = $3,
               actioned_at = $4
         WHERE id = $5
           AND status = $6
    `,
		string(status),
		adminID,
		nullableString(adminNotes),
		actionedAt,
		id,
		string(vacation.StatusPending),
	)
	if err != nil {
		return false, translateRequestPgError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func collectRequests(rows pgx.Rows) ([]*vacation.Request, error) {
	var requests []*vacation.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, translateRequestPgError(err)
		}
		requests = append(requests, request)
	}
	if err := rows.Err(); err != nil {
		return nil, translateRequestPgError(err)
	}
	return requests, nil
}

func scanRequest(row pgx.Row) (*vacation.Request, error) {
	var (
		id          int64
		userID      int64
		startDate   time.Time
		endDate     time.Time
		rawStatus   string
		notes       sql.NullString
		adminNotes  sql.NullString
		requestedAt time.Time
		approvedBy  sql.NullInt64
		actionedAt  sql.NullTime
	)

	if err := row.Scan(
		&id,
		&userID,
		&startDate,
		&endDate,
		&rawStatus,
		&notes,
		&adminNotes,
		&requestedAt,
		&approvedBy,
		&actionedAt,
	); err != nil {
		return nil, err
	}

	status, err := vacation.ParseStatus(rawStatus)
	if err != nil {
		return nil, fmt.Errorf("request %d: %w", id, err)
	}

	request := &vacation.Request{
		ID:          id,
		UserID:      userID,
		StartDate:   toDate(startDate),
		EndDate:     toDate(endDate),
		Status:      status,
		RequestedAt: requestedAt,
	}
	if notes.Valid {
		value := notes.String
		request.Notes = &value
	}
	if adminNotes.Valid {
		value := adminNotes.String
		request.AdminNotes = &value
	}
	if approvedBy.Valid {
		value := approvedBy.Int64
		request.ApprovedBy = &value
	}
	if actionedAt.Valid {
		value := actionedAt.Time
		request.ActionedAt = &value
	}
	return request, nil
}

func translateRequestPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return vacation.ErrRequestNotFound
	}
	if pgdb.IsTransient(err) {
		return fmt.Errorf("%w: %v", vacation.ErrTransient, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			return vacation.ErrUserNotFound
		case checkViolationCode:
			return vacation.ErrInvalidRange
		}
	}

	return err
}

func toDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
