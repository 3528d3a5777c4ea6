package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-engine/internal/domain/loan"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	if db == nil {
		panic("DBPool cannot be nil for LoanRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewLoanRepository, using default stderr handler")
	}
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

const loanColumns = `id, customer_id, loan_amount, tenure_months, interest_rate, monthly_repayment, emis_paid_on_time, start_date, end_date, created_at, updated_at`

func scanLoan(row pgx.Row, l *loan.Loan) error {
	return row.Scan(
		&l.LoanID,
		&l.CustomerID,
		&l.LoanAmount,
		&l.TenureMonths,
		&l.InterestRate,
		&l.MonthlyRepayment,
		&l.EMIsPaidOnTime,
		&l.StartDate,
		&l.EndDate,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
}

func (r *LoanRepository) CreateLoan(ctx context.Context, newLoan *loan.Loan) (*loan.Loan, error) {
	query := `
	INSERT INTO loans (customer_id, loan_amount, tenure_months, interest_rate, monthly_repayment, emis_paid_on_time, start_date, end_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	RETURNING ` + loanColumns

	var createdLoan loan.Loan
	startTime := time.Now()
	err := scanLoan(r.db.QueryRow(ctx, query,
		newLoan.CustomerID,
		newLoan.LoanAmount,
		newLoan.TenureMonths,
		newLoan.InterestRate,
		newLoan.MonthlyRepayment,
		newLoan.EMIsPaidOnTime,
		newLoan.StartDate,
		newLoan.EndDate,
	), &createdLoan)

	if err != nil {
		monitoring.RecordDBQuery("CreateLoan", "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to insert loan", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to insert loan: %w", apperrors.ErrDatabase, err)
	}
	monitoring.RecordDBQuery("CreateLoan", "success", time.Since(startTime))

	r.logger.InfoContext(ctx, "Loan created in DB", slog.Int64("loan_id", createdLoan.LoanID))
	return &createdLoan, nil
}

func (r *LoanRepository) FindByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var l loan.Loan
	startTime := time.Now()
	err := scanLoan(r.db.QueryRow(ctx, query, loanID), &l)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			monitoring.RecordDBQuery("FindLoanByID", "not_found", time.Since(startTime))
			r.logger.WarnContext(ctx, "Loan not found in DB", slog.Int64("loan_id", loanID))
			return nil, fmt.Errorf("%w: loan %d", apperrors.ErrNotFound, loanID)
		}
		monitoring.RecordDBQuery("FindLoanByID", "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to query loan", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query loan %d: %w", apperrors.ErrDatabase, loanID, err)
	}
	monitoring.RecordDBQuery("FindLoanByID", "success", time.Since(startTime))

	return &l, nil
}

func (r *LoanRepository) ListByCustomer(ctx context.Context, customerID int64, activeOnly bool, asOf time.Time) ([]loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1`
	args := []any{customerID}
	if activeOnly {
		query += ` AND end_date >= $2`
		args = append(args, asOf)
	}
	query += ` ORDER BY start_date, id`

	startTime := time.Now()
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		monitoring.RecordDBQuery("ListLoansByCustomer", "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to query loans", slog.Int64("customer_id", customerID), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query loans for customer %d: %w", apperrors.ErrDatabase, customerID, err)
	}
	defer rows.Close()

	var loans []loan.Loan
	for rows.Next() {
		var l loan.Loan
		if err := scanLoan(rows, &l); err != nil {
			monitoring.RecordDBQuery("ListLoansByCustomer", "error", time.Since(startTime))
			r.logger.ErrorContext(ctx, "Failed to scan loan row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan loan row: %w", apperrors.ErrDatabase, err)
		}
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		monitoring.RecordDBQuery("ListLoansByCustomer", "error", time.Since(startTime))
		return nil, fmt.Errorf("%w: loan row iteration failed: %w", apperrors.ErrDatabase, err)
	}
	monitoring.RecordDBQuery("ListLoansByCustomer", "success", time.Since(startTime))

	return loans, nil
}

func (r *LoanRepository) Upsert(ctx context.Context, l *loan.Loan) error {
	query := `
	INSERT INTO loans (id, customer_id, loan_amount, tenure_months, interest_rate, monthly_repayment, emis_paid_on_time, start_date, end_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	ON CONFLICT (id) DO UPDATE SET
		customer_id = EXCLUDED.customer_id,
		loan_amount = EXCLUDED.loan_amount,
		tenure_months = EXCLUDED.tenure_months,
		interest_rate = EXCLUDED.interest_rate,
		monthly_repayment = EXCLUDED.monthly_repayment,
		emis_paid_on_time = EXCLUDED.emis_paid_on_time,
		start_date = EXCLUDED.start_date,
		end_date = EXCLUDED.end_date,
		updated_at = NOW()`

	startTime := time.Now()
	_, err := r.db.Exec(ctx, query,
		l.LoanID,
		l.CustomerID,
		l.LoanAmount,
		l.TenureMonths,
		l.InterestRate,
		l.MonthlyRepayment,
		l.EMIsPaidOnTime,
		l.StartDate,
		l.EndDate,
	)

	if err != nil {
		monitoring.RecordDBQuery("UpsertLoan", "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to upsert loan", slog.Int64("loan_id", l.LoanID), slog.Any("error", err))
		return fmt.Errorf("%w: failed to upsert loan %d: %w", apperrors.ErrDatabase, l.LoanID, err)
	}
	monitoring.RecordDBQuery("UpsertLoan", "success", time.Since(startTime))

	return nil
}

// SyncIDSequence moves the loans identity sequence past the highest explicit id
// written by Upsert, so subsequent CreateLoan inserts cannot collide with
// ingested rows.
func (r *LoanRepository) SyncIDSequence(ctx context.Context) error {
	query := `SELECT setval(pg_get_serial_sequence('loans', 'id'), COALESCE((SELECT MAX(id) FROM loans), 0) + 1, false)`

	startTime := time.Now()
	if _, err := r.db.Exec(ctx, query); err != nil {
		monitoring.RecordDBQuery("SyncLoanIDSequence", "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to sync loans id sequence", slog.Any("error", err))
		return fmt.Errorf("%w: failed to sync loans id sequence: %w", apperrors.ErrDatabase, err)
	}
	monitoring.RecordDBQuery("SyncLoanIDSequence", "success", time.Since(startTime))

	return nil
}
