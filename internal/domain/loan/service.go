package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"
)

const (
	msgLoanApproved = "Loan approved"
	msgLoanRejected = "Loan not approved based on credit score or EMI limit"
)

// LoanDetail pairs a loan with its owning customer for read projections.
type LoanDetail struct {
	Loan     *Loan
	Customer *customer.Customer
}

// CreateLoanResult reports the outcome of a create-loan request. LoanID is nil
// on rejection; the would-be installment is still included for the caller.
type CreateLoanResult struct {
	LoanID             *int64
	CustomerID         int64
	Approved           bool
	Message            string
	MonthlyInstallment Money
}

type LoanService interface {
	CheckEligibility(ctx context.Context, customerID int64, amount Money, interestRate float64, tenureMonths int) (*Eligibility, error)

	CreateLoan(ctx context.Context, customerID int64, amount Money, interestRate float64, tenureMonths int) (*CreateLoanResult, error)

	GetLoan(ctx context.Context, loanID int64) (*LoanDetail, error)

	ListActiveLoans(ctx context.Context, customerID int64) ([]Loan, error)

	// LoanCounts returns the customer's total and currently active loan counts.
	LoanCounts(ctx context.Context, customerID int64) (total int, active int, err error)
}

type loanServiceImpl struct {
	repo            Repository
	customerService customer.CustomerService
	pub             event.EventPublisher
	logger          *slog.Logger
}

func NewLoanService(r Repository, cs customer.CustomerService, eventPublisher event.EventPublisher, logger *slog.Logger) LoanService {
	if r == nil {
		panic("loan repository cannot be nil")
	}
	if cs == nil {
		panic("customer service cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewLoanService, using default stderr handler")
	}
	if eventPublisher == nil {
		eventPublisher = event.NoopPublisher{}
		logger.Warn("Warning: No event publisher provided to NewLoanService, events will be dropped")
	}
	return &loanServiceImpl{
		repo:            r,
		customerService: cs,
		pub:             eventPublisher,
		logger:          logger.With(slog.String("component", "loanService")),
	}
}

func validateLoanRequest(customerID int64, amount Money, interestRate float64, tenureMonths int) error {
	if customerID <= 0 {
		return apperrors.NewValidationError("customer_id", "must be a positive number")
	}
	if amount <= 0 {
		return apperrors.NewValidationError("loan_amount", "must be greater than zero")
	}
	if interestRate < 0 {
		return apperrors.NewValidationError("interest_rate", "cannot be negative")
	}
	if tenureMonths <= 0 {
		return apperrors.NewValidationError("tenure", "must be a positive number of months")
	}
	return nil
}

// evaluate fetches the customer snapshot and full loan history, then runs the
// pure eligibility evaluation over them.
func (s *loanServiceImpl) evaluate(ctx context.Context, customerID int64, amount Money, interestRate float64, tenureMonths int, asOf time.Time) (*customer.Customer, Eligibility, error) {
	cust, err := s.customerService.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, Eligibility{}, err
	}

	history, err := s.repo.ListByCustomer(ctx, customerID, false, asOf)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load loan history", slog.Int64("customerID", customerID), slog.Any("error", err))
		return nil, Eligibility{}, fmt.Errorf("failed to load loan history for customer %d: %w", customerID, err)
	}

	result := Evaluate(cust, history, amount, interestRate, tenureMonths, asOf)
	monitoring.RecordEligibilityDecision(result.Approved, result.Score)
	return cust, result, nil
}

func (s *loanServiceImpl) CheckEligibility(ctx context.Context, customerID int64, amount Money, interestRate float64, tenureMonths int) (*Eligibility, error) {
	s.logger.InfoContext(ctx, "Checking loan eligibility",
		slog.Int64("customerID", customerID),
		slog.Float64("amount", amount),
		slog.Float64("interestRate", interestRate),
		slog.Int("tenureMonths", tenureMonths))

	if err := validateLoanRequest(customerID, amount, interestRate, tenureMonths); err != nil {
		return nil, err
	}

	_, result, err := s.evaluate(ctx, customerID, amount, interestRate, tenureMonths, today())
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Eligibility evaluated",
		slog.Int64("customerID", customerID),
		slog.Bool("approved", result.Approved),
		slog.Int("score", result.Score),
		slog.Float64("correctedRate", result.CorrectedRate))
	return &result, nil
}

func (s *loanServiceImpl) CreateLoan(ctx context.Context, customerID int64, amount Money, interestRate float64, tenureMonths int) (*CreateLoanResult, error) {
	s.logger.InfoContext(ctx, "Creating new loan", slog.Int64("customerID", customerID))

	if err := validateLoanRequest(customerID, amount, interestRate, tenureMonths); err != nil {
		return nil, err
	}

	startDate := today()
	_, result, err := s.evaluate(ctx, customerID, amount, interestRate, tenureMonths, startDate)
	if err != nil {
		return nil, err
	}

	if !result.Approved {
		s.logger.InfoContext(ctx, "Loan request rejected",
			slog.Int64("customerID", customerID),
			slog.Int("score", result.Score))
		return &CreateLoanResult{
			CustomerID:         customerID,
			Approved:           false,
			Message:            msgLoanRejected,
			MonthlyInstallment: result.MonthlyInstallment,
		}, nil
	}

	newLoan := NewLoan(customerID, amount, tenureMonths, result.CorrectedRate, result.MonthlyInstallment, startDate)

	createdLoan, err := s.repo.CreateLoan(ctx, newLoan)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist approved loan", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to persist loan: %v", apperrors.ErrInternalServer, err)
	}
	monitoring.RecordLoanCreated()

	s.publishApprovedEvent(ctx, createdLoan, result.Score)

	s.logger.InfoContext(ctx, "Loan created successfully",
		slog.Int64("loanID", createdLoan.LoanID),
		slog.Int64("customerID", customerID))

	return &CreateLoanResult{
		LoanID:             &createdLoan.LoanID,
		CustomerID:         customerID,
		Approved:           true,
		Message:            msgLoanApproved,
		MonthlyInstallment: createdLoan.MonthlyRepayment,
	}, nil
}

func (s *loanServiceImpl) GetLoan(ctx context.Context, loanID int64) (*LoanDetail, error) {
	s.logger.DebugContext(ctx, "Fetching loan", slog.Int64("loanID", loanID))

	if loanID <= 0 {
		return nil, fmt.Errorf("%w: loan ID must be positive", apperrors.ErrInvalidArgument)
	}

	l, err := s.repo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Loan not found", slog.Int64("loanID", loanID))
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrLoanNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to fetch loan", slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch loan %d: %w", loanID, err)
	}

	cust, err := s.customerService.GetCustomer(ctx, l.CustomerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to fetch loan owner", slog.Int64("customerID", l.CustomerID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch owner of loan %d: %w", loanID, err)
	}

	return &LoanDetail{Loan: l, Customer: cust}, nil
}

func (s *loanServiceImpl) ListActiveLoans(ctx context.Context, customerID int64) ([]Loan, error) {
	s.logger.DebugContext(ctx, "Listing active loans", slog.Int64("customerID", customerID))

	// Existence check first so an unknown customer surfaces as 404, not an
	// empty list.
	if _, err := s.customerService.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	loans, err := s.repo.ListByCustomer(ctx, customerID, true, today())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list active loans", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list active loans for customer %d: %w", customerID, err)
	}
	return loans, nil
}

func (s *loanServiceImpl) LoanCounts(ctx context.Context, customerID int64) (int, int, error) {
	loans, err := s.repo.ListByCustomer(ctx, customerID, false, today())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to count loans", slog.Any("error", err))
		return 0, 0, fmt.Errorf("failed to count loans for customer %d: %w", customerID, err)
	}

	asOf := today()
	active := 0
	for i := range loans {
		if loans[i].IsActive(asOf) {
			active++
		}
	}
	return len(loans), active, nil
}

func (s *loanServiceImpl) publishApprovedEvent(ctx context.Context, l *Loan, score int) {
	evt := event.LoanApprovedEvent{
		LoanID:             l.LoanID,
		CustomerID:         l.CustomerID,
		LoanAmount:         l.LoanAmount,
		InterestRate:       l.InterestRate,
		TenureMonths:       l.TenureMonths,
		MonthlyInstallment: l.MonthlyRepayment,
		CreditScore:        score,
		Timestamp:          time.Now(),
	}

	if err := s.pub.PublishLoanApproved(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish loan approved event", slog.Any("error", err))
	}
}

// today is the current calendar date in the local zone; loan dates carry no
// time-of-day part. Truncate is unsuitable here: it cuts on the UTC epoch grid,
// which near midnight lands on the wrong day outside UTC.
func today() time.Time {
	return startOfDay(time.Now())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
