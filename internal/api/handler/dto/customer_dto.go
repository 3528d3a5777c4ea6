package dto

import (
	"fmt"
	"strings"

	"credit-engine/internal/domain/customer"
)

type RegisterCustomerRequest struct {
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Age           int     `json:"age"`
	MonthlyIncome float64 `json:"monthly_income"`
	PhoneNumber   int64   `json:"phone_number"`
}

func (r *RegisterCustomerRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return fmt.Errorf("first_name cannot be empty")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return fmt.Errorf("last_name cannot be empty")
	}
	if r.Age <= 0 {
		return fmt.Errorf("age must be a positive number")
	}
	if r.MonthlyIncome <= 0 {
		return fmt.Errorf("monthly_income must be greater than zero")
	}
	if r.PhoneNumber <= 0 {
		return fmt.Errorf("phone_number must be a positive number")
	}
	return nil
}

type RegisterCustomerResponse struct {
	CustomerID    int64   `json:"customer_id"`
	Name          string  `json:"name"`
	Age           *int    `json:"age"`
	MonthlyIncome float64 `json:"monthly_income"`
	ApprovedLimit float64 `json:"approved_limit"`
	PhoneNumber   int64   `json:"phone_number"`
}

func NewRegisterCustomerResponse(cust *customer.Customer) RegisterCustomerResponse {
	if cust == nil {
		return RegisterCustomerResponse{}
	}
	return RegisterCustomerResponse{
		CustomerID:    cust.CustomerID,
		Name:          cust.FullName(),
		Age:           cust.Age,
		MonthlyIncome: cust.MonthlySalary,
		ApprovedLimit: cust.ApprovedLimit,
		PhoneNumber:   cust.PhoneNumber,
	}
}

type CustomerDetailResponse struct {
	ID            int64   `json:"id"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Age           *int    `json:"age"`
	PhoneNumber   int64   `json:"phone_number"`
	MonthlySalary float64 `json:"monthly_salary"`
	ApprovedLimit float64 `json:"approved_limit"`
	TotalLoans    int     `json:"total_loans"`
	ActiveLoans   int     `json:"active_loans"`
}

func NewCustomerDetailResponse(cust *customer.Customer, totalLoans, activeLoans int) CustomerDetailResponse {
	if cust == nil {
		return CustomerDetailResponse{}
	}
	return CustomerDetailResponse{
		ID:            cust.CustomerID,
		FirstName:     cust.FirstName,
		LastName:      cust.LastName,
		Age:           cust.Age,
		PhoneNumber:   cust.PhoneNumber,
		MonthlySalary: cust.MonthlySalary,
		ApprovedLimit: cust.ApprovedLimit,
		TotalLoans:    totalLoans,
		ActiveLoans:   activeLoans,
	}
}
