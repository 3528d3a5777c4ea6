package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

const customerColumns = `id, first_name, last_name, age, phone_number, monthly_salary, approved_limit, created_at, updated_at`

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	query := `
	INSERT INTO customers (first_name, last_name, age, phone_number, monthly_salary, approved_limit, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	RETURNING id, created_at, updated_at`

	startTime := time.Now()
	err := r.db.QueryRow(ctx, query,
		cust.FirstName,
		cust.LastName,
		cust.Age,
		cust.PhoneNumber,
		cust.MonthlySalary,
		cust.ApprovedLimit,
	).Scan(&cust.CustomerID, &cust.CreatedAt, &cust.UpdatedAt)

	if err != nil {
		monitoring.RecordDBQuery("SaveCustomer", "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}
	monitoring.RecordDBQuery("SaveCustomer", "success", time.Since(startTime))

	r.logger.InfoContext(ctx, "Customer created in DB", slog.Int64("customer_id", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	var cust customer.Customer
	startTime := time.Now()
	err := r.db.QueryRow(ctx, query, customerID).Scan(
		&cust.CustomerID,
		&cust.FirstName,
		&cust.LastName,
		&cust.Age,
		&cust.PhoneNumber,
		&cust.MonthlySalary,
		&cust.ApprovedLimit,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			monitoring.RecordDBQuery("FindCustomerByID", "not_found", time.Since(startTime))
			r.logger.WarnContext(ctx, "Customer not found in DB", slog.Int64("customer_id", customerID))
			return nil, fmt.Errorf("%w: customer %d", apperrors.ErrNotFound, customerID)
		}
		monitoring.RecordDBQuery("FindCustomerByID", "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to query customer", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customer %d: %w", apperrors.ErrDatabase, customerID, err)
	}
	monitoring.RecordDBQuery("FindCustomerByID", "success", time.Since(startTime))

	return &cust, nil
}

func (r *CustomerRepository) Upsert(ctx context.Context, cust *customer.Customer) error {
	query := `
	INSERT INTO customers (id, first_name, last_name, age, phone_number, monthly_salary, approved_limit, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	ON CONFLICT (id) DO UPDATE SET
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		age = EXCLUDED.age,
		phone_number = EXCLUDED.phone_number,
		monthly_salary = EXCLUDED.monthly_salary,
		approved_limit = EXCLUDED.approved_limit,
		updated_at = NOW()`

	startTime := time.Now()
	_, err := r.db.Exec(ctx, query,
		cust.CustomerID,
		cust.FirstName,
		cust.LastName,
		cust.Age,
		cust.PhoneNumber,
		cust.MonthlySalary,
		cust.ApprovedLimit,
	)

	if err != nil {
		monitoring.RecordDBQuery("UpsertCustomer", "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to upsert customer", slog.Int64("customer_id", cust.CustomerID), slog.Any("error", err))
		return fmt.Errorf("%w: failed to upsert customer %d: %w", apperrors.ErrDatabase, cust.CustomerID, err)
	}
	monitoring.RecordDBQuery("UpsertCustomer", "success", time.Since(startTime))

	return nil
}

// SyncIDSequence moves the customers identity sequence past the highest
// explicit id written by Upsert, so subsequent Save calls cannot collide with
// ingested rows.
func (r *CustomerRepository) SyncIDSequence(ctx context.Context) error {
	query := `SELECT setval(pg_get_serial_sequence('customers', 'id'), COALESCE((SELECT MAX(id) FROM customers), 0) + 1, false)`

	startTime := time.Now()
	if _, err := r.db.Exec(ctx, query); err != nil {
		monitoring.RecordDBQuery("SyncCustomerIDSequence", "error", time.Since(startTime))
		r.logger.ErrorContext(ctx, "Failed to sync customers id sequence", slog.Any("error", err))
		return fmt.Errorf("%w: failed to sync customers id sequence: %w", apperrors.ErrDatabase, err)
	}
	monitoring.RecordDBQuery("SyncCustomerIDSequence", "success", time.Since(startTime))

	return nil
}
