package loan

import (
	"math"
	"time"

	"credit-engine/internal/domain/customer"
)

// NeutralScore is assigned to customers with no loan history at all.
const NeutralScore = 50

// CreditScore derives a 0-100 creditworthiness score from the customer's full
// loan history as of the given date. Pure function: it reads the snapshot it is
// handed and touches nothing else.
//
// A customer whose active loans together exceed the approved limit scores 0
// outright; every other adjustment is a penalty subtracted from 100.
func CreditScore(cust *customer.Customer, history []Loan, asOf time.Time) int {
	if len(history) == 0 {
		return NeutralScore
	}

	var (
		loansThisYear int
		totalTenure   int
		paidOnTime    int
		totalBorrowed Money
		outstanding   Money
	)
	for i := range history {
		l := &history[i]
		if l.StartDate.Year() == asOf.Year() {
			loansThisYear++
		}
		totalTenure += l.TenureMonths
		paidOnTime += l.EMIsPaidOnTime
		totalBorrowed += l.LoanAmount
		if l.IsActive(asOf) {
			outstanding += l.LoanAmount
		}
	}

	limit := cust.ApprovedLimit
	if outstanding > limit {
		return 0
	}

	paymentRatio := 0.0
	if totalTenure > 0 {
		paymentRatio = float64(paidOnTime) / float64(totalTenure)
	}

	score := 100
	score -= min(len(history)*5, 20)
	score -= min(loansThisYear*10, 20)
	score -= int((1 - paymentRatio) * 30)

	if limit > 0 {
		utilization := totalBorrowed / limit
		score -= min(int(utilization*10), 20)
	}

	return max(0, min(100, score))
}

// CorrectedRate maps a credit score and a requested annual interest rate to the
// minimum permissible rate. Scores of 10 and below pass the rate through
// unchanged; that tier is rejected by the evaluator anyway.
func CorrectedRate(score int, requestedRate float64) float64 {
	switch {
	case score > 50:
		return requestedRate
	case score > 30:
		return math.Max(requestedRate, 12)
	case score > 10:
		return math.Max(requestedRate, 16)
	}
	return requestedRate
}
