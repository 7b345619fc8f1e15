package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/tempohq/leave-engine/internal/core/vacation"
)

func TestAllowanceRepository_AllowanceDays(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAllowanceRepository(mock)

	query := regexp.QuoteMeta(`
        SELECT vacation_days_current_year
          FROM users
         WHERE id = $1
         LIMIT 1
    `)

	mock.ExpectQuery(query).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows([]string{"vacation_days_current_year"}).AddRow(15))

	days, err := repo.AllowanceDays(context.Background(), 7)
	if err != nil {
		t.Fatalf("AllowanceDays returned error: %v", err)
	}
	if days != 15 {
		t.Fatalf("expected 15 days, got %d", days)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAllowanceRepository_AllowanceDays_UnknownUser(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewAllowanceRepository(mock)

	query := regexp.QuoteMeta(`
        SELECT vacation_days_current_year
          FROM users
         WHERE id = $1
         LIMIT 1
    `)

	mock.ExpectQuery(query).
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows([]string{"vacation_days_current_year"}))

	_, err = repo.AllowanceDays(context.Background(), 404)
	if !errors.Is(err, vacation.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAllowanceRepository_DeductDays(t *testing.T) {
	t.Parallel()

	query := regexp.QuoteMeta(`
        UPDATE users
           SET vacation_days_current_year = vacation_days_current_year - $2
         WHERE id = $1
           AND vacation_days_current_year >= $2
    `)

	t.Run("deducts when balance covers the span", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		if err != nil {
			t.Fatalf("failed to create mock pool: %v", err)
		}
		defer mock.Close()

		repo := NewAllowanceRepository(mock)

		mock.ExpectExec(query).
			WithArgs(int64(7), 5).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		ok, err := repo.DeductDays(context.Background(), 7, 5)
		if err != nil {
			t.Fatalf("DeductDays returned error: %v", err)
		}
		if !ok {
			t.Fatal("expected deduction to apply")
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	t.Run("refuses when balance is short", func(t *testing.T) {
		t.Parallel()

		mock, err := pgxmock.NewPool()
		if err != nil {
			t.Fatalf("failed to create mock pool: %v", err)
		}
		defer mock.Close()

		repo := NewAllowanceRepository(mock)

		mock.ExpectExec(query).
			WithArgs(int64(7), 30).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		ok, err := repo.DeductDays(context.Background(), 7, 30)
		if err != nil {
			t.Fatalf("DeductDays returned error: %v", err)
		}
		if ok {
			t.Fatal("expected deduction to be refused")
		}

		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})
}

func TestTranslateAllowancePgError(t *testing.T) {
	t.Parallel()

	checkErr := &pgconn.PgError{Code: checkViolationCode}
	if !errors.Is(translateAllowancePgError(checkErr), vacation.ErrInsufficientBalance) {
		t.Fatalf("expected check violation to map to ErrInsufficientBalance")
	}

	deadlockErr := &pgconn.PgError{Code: "40P01"}
	if !errors.Is(translateAllowancePgError(deadlockErr), vacation.ErrTransient) {
		t.Fatalf("expected deadlock to map to ErrTransient")
	}

	other := errors.New("other")
	if translateAllowancePgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}
