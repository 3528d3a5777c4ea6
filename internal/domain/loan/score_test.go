package loan

import (
	"testing"
	"time"

	"credit-engine/internal/domain/customer"

	"github.com/stretchr/testify/assert"
)

var scoreAsOf = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func custWithLimit(limit float64) *customer.Customer {
	return &customer.Customer{
		CustomerID:    1,
		FirstName:     "Asha",
		LastName:      "Verma",
		MonthlySalary: 100000,
		ApprovedLimit: limit,
	}
}

func pastLoan(amount Money, tenure, paidOnTime int, start time.Time) Loan {
	return Loan{
		CustomerID:       1,
		LoanAmount:       amount,
		TenureMonths:     tenure,
		EMIsPaidOnTime:   paidOnTime,
		StartDate:        start,
		EndDate:          start.AddDate(0, tenure, 0),
		MonthlyRepayment: CalculateEMI(amount, 10, tenure),
	}
}

func TestCreditScore(t *testing.T) {
	t.Run("no history yields the neutral score", func(t *testing.T) {
		score := CreditScore(custWithLimit(1000000), nil, scoreAsOf)
		assert.Equal(t, NeutralScore, score)
	})

	t.Run("active debt beyond the approved limit zeroes the score", func(t *testing.T) {
		running := pastLoan(600000, 24, 6, scoreAsOf.AddDate(0, -6, 0))
		score := CreditScore(custWithLimit(500000), []Loan{running}, scoreAsOf)
		assert.Equal(t, 0, score)
	})

	t.Run("single fully repaid old loan scores high", func(t *testing.T) {
		repaid := pastLoan(100000, 12, 12, scoreAsOf.AddDate(-2, 0, 0))
		// 100 - 5 (one loan) - 0 (none this year) - 0 (perfect payments) - 1 (10% utilization)
		score := CreditScore(custWithLimit(1000000), []Loan{repaid}, scoreAsOf)
		assert.Equal(t, 94, score)
	})

	t.Run("missed payments and recent activity cut the score", func(t *testing.T) {
		thisYear := pastLoan(200000, 12, 3, scoreAsOf.AddDate(0, -2, 0))
		lastYear := pastLoan(200000, 12, 6, scoreAsOf.AddDate(-1, -3, 0))
		// volume: 2*5=10, this year: 10, payments: int((1-9/24)*30)=18, utilization: int(0.4*10)=4
		score := CreditScore(custWithLimit(1000000), []Loan{thisYear, lastYear}, scoreAsOf)
		assert.Equal(t, 58, score)
	})

	t.Run("penalties are individually capped", func(t *testing.T) {
		var history []Loan
		for i := 0; i < 8; i++ {
			history = append(history, pastLoan(50000, 12, 12, scoreAsOf.AddDate(0, -i, 0)))
		}
		// volume and recency penalties both cap at 20, utilization at int(0.4*10)=4
		score := CreditScore(custWithLimit(1000000), history, scoreAsOf)
		assert.Equal(t, 56, score)
	})

	t.Run("score never drops below zero", func(t *testing.T) {
		var history []Loan
		for i := 0; i < 10; i++ {
			history = append(history, pastLoan(95000, 12, 0, scoreAsOf.AddDate(0, -i*13, 0)))
		}
		score := CreditScore(custWithLimit(1000000), history, scoreAsOf)
		assert.GreaterOrEqual(t, score, 0)
	})
}

func TestCorrectedRate(t *testing.T) {
	t.Run("scores above 50 keep the requested rate", func(t *testing.T) {
		assert.Equal(t, 8.5, CorrectedRate(60, 8.5))
	})

	t.Run("scores in the 30-50 band get a 12 percent floor", func(t *testing.T) {
		assert.Equal(t, 12.0, CorrectedRate(40, 8))
		assert.Equal(t, 14.0, CorrectedRate(40, 14))
	})

	t.Run("scores in the 10-30 band get a 16 percent floor", func(t *testing.T) {
		assert.Equal(t, 16.0, CorrectedRate(20, 10))
		assert.Equal(t, 18.0, CorrectedRate(20, 18))
	})

	t.Run("scores of 10 and below pass the rate through", func(t *testing.T) {
		assert.Equal(t, 8.0, CorrectedRate(10, 8))
		assert.Equal(t, 8.0, CorrectedRate(0, 8))
	})
}
