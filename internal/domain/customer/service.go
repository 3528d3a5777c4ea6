package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"credit-engine/internal/event"
	"credit-engine/internal/infrastructure/monitoring"
	"credit-engine/internal/pkg/apperrors"
)

type CustomerService interface {
	RegisterCustomer(ctx context.Context, firstName, lastName string, age int, monthlyIncome float64, phoneNumber int64) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo   CustomerRepository
	pub    event.EventPublisher
	logger *slog.Logger
}

func NewCustomerService(repo CustomerRepository, eventPublisher event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	if eventPublisher == nil {
		eventPublisher = event.NoopPublisher{}
		logger.Warn("Warning: No event publisher provided to NewCustomerService, events will be dropped")
	}

	return &customerService{
		repo:   repo,
		pub:    eventPublisher,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func (s *customerService) RegisterCustomer(ctx context.Context, firstName, lastName string, age int, monthlyIncome float64, phoneNumber int64) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to register new customer")

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		s.logger.WarnContext(ctx, "Validation failed: first name is empty")
		return nil, apperrors.NewValidationError("first_name", "cannot be empty")
	}
	if lastName == "" {
		s.logger.WarnContext(ctx, "Validation failed: last name is empty")
		return nil, apperrors.NewValidationError("last_name", "cannot be empty")
	}
	if age <= 0 {
		s.logger.WarnContext(ctx, "Validation failed: age must be positive", slog.Int("age", age))
		return nil, apperrors.NewValidationError("age", "must be a positive number")
	}
	if monthlyIncome <= 0 {
		s.logger.WarnContext(ctx, "Validation failed: monthly income must be positive")
		return nil, apperrors.NewValidationError("monthly_income", "must be a positive number")
	}
	if phoneNumber <= 0 {
		s.logger.WarnContext(ctx, "Validation failed: phone number must be positive")
		return nil, apperrors.NewValidationError("phone_number", "must be a positive number")
	}

	cust := NewCustomer(firstName, lastName, age, phoneNumber, monthlyIncome)
	s.logger.InfoContext(ctx, "Customer domain object created",
		slog.Float64("monthlyIncome", monthlyIncome),
		slog.Float64("approvedLimit", cust.ApprovedLimit))

	if err := s.repo.Save(ctx, cust); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}
	monitoring.RecordCustomerRegistered()

	s.publishRegisteredEvent(ctx, cust)

	s.logger.InfoContext(ctx, "Customer registered successfully", slog.Int64("customerID", cust.CustomerID))
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	s.logger.DebugContext(ctx, "Fetching customer", slog.Int64("customerID", customerID))

	if customerID <= 0 {
		return nil, fmt.Errorf("%w: customer ID must be positive", apperrors.ErrInvalidArgument)
	}

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository", slog.Int64("customerID", customerID))
			return nil, fmt.Errorf("%w: id %d", apperrors.ErrCustomerNotFound, customerID)
		}
		s.logger.ErrorContext(ctx, "Failed to fetch customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to fetch customer %d: %w", customerID, err)
	}

	return cust, nil
}

func (s *customerService) publishRegisteredEvent(ctx context.Context, cust *Customer) {
	evt := event.CustomerRegisteredEvent{
		CustomerID:    cust.CustomerID,
		Name:          cust.FullName(),
		MonthlySalary: cust.MonthlySalary,
		ApprovedLimit: cust.ApprovedLimit,
		Timestamp:     time.Now(),
	}

	if err := s.pub.PublishCustomerRegistered(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish customer registered event", slog.Any("error", err))
	}
}
