package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApprovedLimitFor(t *testing.T) {
	tests := []struct {
		name          string
		monthlyIncome float64
		expected      float64
	}{
		{"rounds up to the next lakh", 55000, 2000000},
		{"rounds down to the nearest lakh", 27778, 1000000},
		{"exact multiple stays as is", 50000, 1800000},
		{"half-lakh tie rounds to the even lakh below", 12500, 400000},
		{"half-lakh tie rounds to the even lakh above", 37500, 1400000},
		{"tiny income rounds to zero", 1000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ApprovedLimitFor(tt.monthlyIncome))
		})
	}
}

func TestNewCustomer(t *testing.T) {
	cust := NewCustomer("Asha", "Verma", 32, 9876543210, 55000)

	assert.Equal(t, "Asha", cust.FirstName)
	assert.Equal(t, "Verma", cust.LastName)
	if assert.NotNil(t, cust.Age) {
		assert.Equal(t, 32, *cust.Age)
	}
	assert.Equal(t, int64(9876543210), cust.PhoneNumber)
	assert.Equal(t, 55000.0, cust.MonthlySalary)
	assert.Equal(t, 2000000.0, cust.ApprovedLimit)
}

func TestFullName(t *testing.T) {
	cust := &Customer{FirstName: "Asha", LastName: "Verma"}
	assert.Equal(t, "Asha Verma", cust.FullName())
}
