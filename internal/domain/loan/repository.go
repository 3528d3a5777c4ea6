package loan

import (
	"context"
	"time"
)

type Repository interface {
	// CreateLoan atomically inserts the loan and returns it with its assigned
	// identifier and timestamps populated.
	CreateLoan(ctx context.Context, loan *Loan) (*Loan, error)

	FindByID(ctx context.Context, loanID int64) (*Loan, error)

	// ListByCustomer returns the customer's loans, optionally filtered to those
	// still active as of the given date (end_date >= asOf).
	ListByCustomer(ctx context.Context, customerID int64, activeOnly bool, asOf time.Time) ([]Loan, error)

	// Upsert writes a loan row keyed by an externally supplied LoanID. Used by
	// the ingestion job; re-ingesting the same row updates in place.
	Upsert(ctx context.Context, loan *Loan) error

	// SyncIDSequence advances the id sequence past the highest upserted id so
	// later CreateLoan inserts do not collide with ingested rows.
	SyncIDSequence(ctx context.Context) error
}
