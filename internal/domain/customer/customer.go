package customer

import (
	"fmt"
	"math"
	"time"
)

// limitRoundingUnit is the granularity of the approved credit limit (one lakh).
const limitRoundingUnit = 100_000

type Customer struct {
	CustomerID    int64
	FirstName     string
	LastName      string
	Age           *int
	PhoneNumber   int64
	MonthlySalary float64
	ApprovedLimit float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ApprovedLimitFor derives the credit ceiling assigned at registration:
// 36x monthly income, rounded to the nearest multiple of 100,000. Exact
// half-lakh amounts round to the even multiple. The limit is computed once here
// and never recalculated afterwards.
func ApprovedLimitFor(monthlyIncome float64) float64 {
	return math.RoundToEven(monthlyIncome*36/limitRoundingUnit) * limitRoundingUnit
}

func NewCustomer(firstName, lastName string, age int, phoneNumber int64, monthlyIncome float64) *Customer {
	return &Customer{
		FirstName:     firstName,
		LastName:      lastName,
		Age:           &age,
		PhoneNumber:   phoneNumber,
		MonthlySalary: monthlyIncome,
		ApprovedLimit: ApprovedLimitFor(monthlyIncome),
	}
}

func (c *Customer) FullName() string {
	return fmt.Sprintf("%s %s", c.FirstName, c.LastName)
}
