package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"credit-engine/internal/config"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"

	"github.com/xuri/excelize/v2"
)

const (
	customerWorkbook = "customer_data.xlsx"
	loanWorkbook     = "loan_data.xlsx"
)

// IngestJob loads customer and loan rows from spreadsheets in the configured
// data directory into the store. Rows are keyed by their spreadsheet id and
// upserted, so re-running the job over the same files updates records in place
// instead of duplicating them.
type IngestJob struct {
	customerRepo customer.CustomerRepository
	loanRepo     loan.Repository
	cfg          config.IngestionConfig
	logger       *slog.Logger
}

func NewIngestJob(customerRepo customer.CustomerRepository, loanRepo loan.Repository, cfg config.IngestionConfig, logger *slog.Logger) *IngestJob {
	if customerRepo == nil || loanRepo == nil || logger == nil {
		panic("IngestJob dependencies cannot be nil")
	}
	return &IngestJob{
		customerRepo: customerRepo,
		loanRepo:     loanRepo,
		cfg:          cfg,
		logger:       logger.With("job", "SpreadsheetIngest"),
	}
}

func (j *IngestJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting spreadsheet ingestion job.", slog.String("dataDir", j.cfg.DataDir))

	customers, err := j.ingestCustomers(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Customer ingestion failed, aborting job.", slog.Any("error", err))
		return fmt.Errorf("customer ingestion failed: %w", err)
	}
	j.logger.InfoContext(ctx, "Customer ingestion finished.", slog.Int("imported", customers))

	loans, skipped, err := j.ingestLoans(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Loan ingestion failed.", slog.Any("error", err))
		return fmt.Errorf("loan ingestion failed: %w", err)
	}
	j.logger.InfoContext(ctx, "Loan ingestion finished.",
		slog.Int("imported", loans),
		slog.Int("skipped_missing_customer", skipped))

	// Upserted rows carry explicit ids that bypass the identity sequences, so
	// advance them or API inserts will collide with ingested ids.
	if err := j.customerRepo.SyncIDSequence(ctx); err != nil {
		return fmt.Errorf("customer id sequence sync failed: %w", err)
	}
	if err := j.loanRepo.SyncIDSequence(ctx); err != nil {
		return fmt.Errorf("loan id sequence sync failed: %w", err)
	}

	j.logger.InfoContext(ctx, "Spreadsheet ingestion job finished.", slog.Duration("duration", time.Since(startTime)))
	return nil
}

// Customer sheet columns: id, first_name, last_name, age, phone_number,
// monthly_salary, approved_limit. The approved limit comes from the sheet
// untouched; it is only derived for customers registered through the API.
func (j *IngestJob) ingestCustomers(ctx context.Context) (int, error) {
	rows, closeFn, err := j.openSheet(customerWorkbook)
	if err != nil {
		return 0, err
	}
	defer closeFn()

	count := 0
	for i, row := range rows {
		if i == 0 || len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return count, err
		}

		id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			j.logger.WarnContext(ctx, "Skipping customer row with invalid id", slog.Int("row", i+1), slog.Any("error", err))
			continue
		}

		cust := &customer.Customer{
			CustomerID:    id,
			FirstName:     cell(row, 1),
			LastName:      cell(row, 2),
			Age:           optionalInt(cell(row, 3)),
			PhoneNumber:   parseInt64(cell(row, 4)),
			MonthlySalary: parseFloat(cell(row, 5)),
			ApprovedLimit: parseFloat(cell(row, 6)),
		}

		if err := j.customerRepo.Upsert(ctx, cust); err != nil {
			return count, fmt.Errorf("failed to upsert customer %d (row %d): %w", id, i+1, err)
		}
		count++
	}

	return count, nil
}

// Loan sheet columns: customer_id, loan_id, loan_amount, tenure, interest_rate,
// monthly_repayment, emis_paid_on_time, start_date, end_date. Loans whose
// customer is absent from the store are counted and skipped.
func (j *IngestJob) ingestLoans(ctx context.Context) (int, int, error) {
	rows, closeFn, err := j.openSheet(loanWorkbook)
	if err != nil {
		return 0, 0, err
	}
	defer closeFn()

	imported, skipped := 0, 0
	for i, row := range rows {
		if i == 0 || len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return imported, skipped, err
		}

		customerID, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			j.logger.WarnContext(ctx, "Skipping loan row with invalid customer id", slog.Int("row", i+1), slog.Any("error", err))
			continue
		}
		loanID, err := strconv.ParseInt(strings.TrimSpace(cell(row, 1)), 10, 64)
		if err != nil {
			j.logger.WarnContext(ctx, "Skipping loan row with invalid loan id", slog.Int("row", i+1), slog.Any("error", err))
			continue
		}

		if _, err := j.customerRepo.FindByID(ctx, customerID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				skipped++
				continue
			}
			return imported, skipped, fmt.Errorf("failed to check customer %d for loan %d: %w", customerID, loanID, err)
		}

		l := &loan.Loan{
			LoanID:           loanID,
			CustomerID:       customerID,
			LoanAmount:       parseFloat(cell(row, 2)),
			TenureMonths:     int(parseInt64(cell(row, 3))),
			InterestRate:     parseFloat(cell(row, 4)),
			MonthlyRepayment: parseFloat(cell(row, 5)),
			EMIsPaidOnTime:   int(parseInt64(cell(row, 6))),
			StartDate:        parseDate(cell(row, 7)),
			EndDate:          parseDate(cell(row, 8)),
		}

		if err := j.loanRepo.Upsert(ctx, l); err != nil {
			return imported, skipped, fmt.Errorf("failed to upsert loan %d (row %d): %w", loanID, i+1, err)
		}
		imported++
	}

	return imported, skipped, nil
}

func (j *IngestJob) openSheet(filename string) ([][]string, func(), error) {
	path := filepath.Join(j.cfg.DataDir, filename)
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	closeFn := func() {
		if err := wb.Close(); err != nil {
			j.logger.Warn("Failed to close workbook", slog.String("path", path), slog.Any("error", err))
		}
	}

	sheet := wb.GetSheetName(0)
	rows, err := wb.GetRows(sheet)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, path, err)
	}
	return rows, closeFn, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseInt64(s string) int64 {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	// Numeric cells sometimes render with a fractional part.
	return int64(parseFloat(s))
}

func optionalInt(s string) *int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01-02-06",
	"1/2/06 15:04",
	"1/2/2006",
}

func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
