package loan

import (
	"math"

	"github.com/shopspring/decimal"
)

// CalculateEMI computes the fixed monthly installment for a loan using the
// standard reducing-balance amortization formula. A zero interest rate
// degenerates to a plain principal split across the tenure. The caller
// guarantees tenureMonths > 0.
func CalculateEMI(principal Money, annualRatePercent float64, tenureMonths int) Money {
	if annualRatePercent == 0 {
		return principal / float64(tenureMonths)
	}

	r := annualRatePercent / 12 / 100
	compounded := math.Pow(1+r, float64(tenureMonths))
	emi := principal * r * compounded / (compounded - 1)
	return roundMoney(emi)
}

// roundMoney rounds to two decimal places, the precision money is stored at.
func roundMoney(v float64) float64 {
	rounded, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return rounded
}
