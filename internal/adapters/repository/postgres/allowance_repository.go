package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tempohq/leave-engine/internal/core/vacation"
	pgdb "github.com/tempohq/leave-engine/internal/platform/db/postgres"
)

// AllowanceRepository は users テーブルの年間休暇日数ビューへの実装です。
// 残日数は承認時に減算されるのみで、このサブシステムから加算されることはありません。
type AllowanceRepository struct {
	pool pgdb.Queryer
}

// NewAllowanceRepository は AllowanceRepository を生成します。
func NewAllowanceRepository(pool pgdb.Queryer) *AllowanceRepository {
	return &AllowanceRepository{pool: pool}
}

// AllowanceDays は利用者の現在の残日数を取得します。
func (r *AllowanceRepository) AllowanceDays(ctx context.Context, userID int64) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT vacation_days_current_year
          FROM users
         WHERE id = $1
         LIMIT 1
    `, userID)

	var days int
	if err := row.Scan(&days); err != nil {
		return 0, translateAllowancePgError(err)
	}
	return days, nil
}

// DeductDays は残日数が days 以上ある場合に限り減算します。
// WHERE 句の再検査により残高が負になることはありません。
func (r *AllowanceRepository) DeductDays(ctx context.Context, userID int64, days int) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE users
           SET vacation_days_current_year = vacation_days_current_year - $2
         WHERE id = $1
           AND vacation_days_current_year >= $2
    `, userID, days)
	if err != nil {
		return false, translateAllowancePgError(err)
	}
	return tag.RowsAffected() == 1, nil
}

func translateAllowancePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return vacation.ErrUserNotFound
	}
	if pgdb.IsTransient(err) {
		return fmt.Errorf("%w: %v", vacation.ErrTransient, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == checkViolationCode {
		return vacation.ErrInsufficientBalance
	}

	return err
}
