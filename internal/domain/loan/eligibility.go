package loan

import (
	"time"

	"credit-engine/internal/domain/customer"
)

// affordabilityCap limits total EMI obligations to half of monthly salary.
const affordabilityCap = 0.5

// Eligibility is the full outcome of an approval evaluation. CorrectedRate and
// MonthlyInstallment are reported to the caller even on rejection.
type Eligibility struct {
	Approved           bool
	Score              int
	RequestedRate      float64
	CorrectedRate      float64
	TenureMonths       int
	MonthlyInstallment Money
	CurrentEMITotal    Money
}

// Evaluate decides approval for a requested loan against the customer snapshot
// and their complete loan history. It is a pure function: no state is mutated,
// and persistence of an approved loan is the caller's concern.
//
// The affordability cap overrides the score: whenever existing active EMIs plus
// the proposed installment exceed half the monthly salary, the request is
// rejected no matter how good the score is.
func Evaluate(cust *customer.Customer, history []Loan, amount Money, requestedRate float64, tenureMonths int, asOf time.Time) Eligibility {
	score := CreditScore(cust, history, asOf)
	correctedRate := CorrectedRate(score, requestedRate)
	proposedEMI := CalculateEMI(amount, correctedRate, tenureMonths)

	var currentEMITotal Money
	for i := range history {
		if history[i].IsActive(asOf) {
			currentEMITotal += history[i].MonthlyRepayment
		}
	}

	result := Eligibility{
		Score:              score,
		RequestedRate:      requestedRate,
		CorrectedRate:      correctedRate,
		TenureMonths:       tenureMonths,
		MonthlyInstallment: proposedEMI,
		CurrentEMITotal:    currentEMITotal,
	}

	if currentEMITotal+proposedEMI > affordabilityCap*cust.MonthlySalary {
		return result
	}

	// The 30-50 tier approves regardless of the requested rate; the rate floor
	// has already been applied through CorrectedRate.
	switch {
	case score > 50:
		result.Approved = true
	case score > 30:
		result.Approved = true
	case score > 10:
		result.Approved = true
	}

	return result
}
