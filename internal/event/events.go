package event

import (
	"context"
	"time"
)

type CustomerRegisteredEvent struct {
	CustomerID    int64     `json:"customerId"`
	Name          string    `json:"name"`
	MonthlySalary float64   `json:"monthlySalary"`
	ApprovedLimit float64   `json:"approvedLimit"`
	Timestamp     time.Time `json:"timestamp"`
}

type LoanApprovedEvent struct {
	LoanID             int64     `json:"loanId"`
	CustomerID         int64     `json:"customerId"`
	LoanAmount         float64   `json:"loanAmount"`
	InterestRate       float64   `json:"interestRate"`
	TenureMonths       int       `json:"tenureMonths"`
	MonthlyInstallment float64   `json:"monthlyInstallment"`
	CreditScore        int       `json:"creditScore"`
	Timestamp          time.Time `json:"timestamp"`
}

type EventPublisher interface {
	PublishCustomerRegistered(ctx context.Context, event CustomerRegisteredEvent) error
	PublishLoanApproved(ctx context.Context, event LoanApprovedEvent) error
}

// NoopPublisher is injected when RabbitMQ is disabled in configuration.
type NoopPublisher struct{}

func (NoopPublisher) PublishCustomerRegistered(context.Context, CustomerRegisteredEvent) error {
	return nil
}

func (NoopPublisher) PublishLoanApproved(context.Context, LoanApprovedEvent) error {
	return nil
}
