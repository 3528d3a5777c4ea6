package loan

import (
	"time"
)

type Money = float64

type Loan struct {
	LoanID           int64
	CustomerID       int64
	LoanAmount       Money
	TenureMonths     int
	InterestRate     float64
	MonthlyRepayment Money
	EMIsPaidOnTime   int
	StartDate        time.Time
	EndDate          time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewLoan builds a loan starting on startDate. The end date is startDate plus
// the tenure in calendar months, not a fixed number of days.
func NewLoan(customerID int64, amount Money, tenureMonths int, interestRate float64, monthlyRepayment Money, startDate time.Time) *Loan {
	return &Loan{
		CustomerID:       customerID,
		LoanAmount:       amount,
		TenureMonths:     tenureMonths,
		InterestRate:     interestRate,
		MonthlyRepayment: monthlyRepayment,
		EMIsPaidOnTime:   0,
		StartDate:        startDate,
		EndDate:          startDate.AddDate(0, tenureMonths, 0),
	}
}

// IsActive reports whether the loan is still running: end_date >= asOf.
func (l *Loan) IsActive(asOf time.Time) bool {
	return !l.EndDate.Before(asOf)
}

// RepaymentsLeft is the number of EMIs still owed, floored at zero.
func (l *Loan) RepaymentsLeft() int {
	remaining := l.TenureMonths - l.EMIsPaidOnTime
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}
