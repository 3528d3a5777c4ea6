package dto

import (
	"fmt"

	"credit-engine/internal/domain/loan"
)

// LoanRequest is shared by check-eligibility and create-loan, which take the
// same fields.
type LoanRequest struct {
	CustomerID   int64   `json:"customer_id"`
	LoanAmount   float64 `json:"loan_amount"`
	InterestRate float64 `json:"interest_rate"`
	Tenure       int     `json:"tenure"`
}

func (r *LoanRequest) Validate() error {
	if r.CustomerID <= 0 {
		return fmt.Errorf("customer_id must be a positive number")
	}
	if r.LoanAmount <= 0 {
		return fmt.Errorf("loan_amount must be greater than zero")
	}
	if r.InterestRate < 0 {
		return fmt.Errorf("interest_rate cannot be negative")
	}
	if r.Tenure <= 0 {
		return fmt.Errorf("tenure must be a positive number of months")
	}
	return nil
}

type EligibilityResponse struct {
	CustomerID            int64   `json:"customer_id"`
	Approval              bool    `json:"approval"`
	InterestRate          float64 `json:"interest_rate"`
	CorrectedInterestRate float64 `json:"corrected_interest_rate"`
	Tenure                int     `json:"tenure"`
	MonthlyInstallment    float64 `json:"monthly_installment"`
}

func NewEligibilityResponse(customerID int64, result *loan.Eligibility) EligibilityResponse {
	return EligibilityResponse{
		CustomerID:            customerID,
		Approval:              result.Approved,
		InterestRate:          result.RequestedRate,
		CorrectedInterestRate: result.CorrectedRate,
		Tenure:                result.TenureMonths,
		MonthlyInstallment:    result.MonthlyInstallment,
	}
}

type CreateLoanResponse struct {
	LoanID             *int64  `json:"loan_id"`
	CustomerID         int64   `json:"customer_id"`
	LoanApproved       bool    `json:"loan_approved"`
	Message            string  `json:"message"`
	MonthlyInstallment float64 `json:"monthly_installment"`
}

func NewCreateLoanResponse(result *loan.CreateLoanResult) CreateLoanResponse {
	return CreateLoanResponse{
		LoanID:             result.LoanID,
		CustomerID:         result.CustomerID,
		LoanApproved:       result.Approved,
		Message:            result.Message,
		MonthlyInstallment: result.MonthlyInstallment,
	}
}

type LoanCustomerResponse struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber int64  `json:"phone_number"`
	Age         *int   `json:"age"`
}

type LoanDetailResponse struct {
	LoanID             int64                `json:"loan_id"`
	Customer           LoanCustomerResponse `json:"customer"`
	LoanAmount         float64              `json:"loan_amount"`
	InterestRate       float64              `json:"interest_rate"`
	MonthlyInstallment float64              `json:"monthly_installment"`
	Tenure             int                  `json:"tenure"`
}

func NewLoanDetailResponse(detail *loan.LoanDetail) LoanDetailResponse {
	l, c := detail.Loan, detail.Customer
	return LoanDetailResponse{
		LoanID: l.LoanID,
		Customer: LoanCustomerResponse{
			ID:          c.CustomerID,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			PhoneNumber: c.PhoneNumber,
			Age:         c.Age,
		},
		LoanAmount:         l.LoanAmount,
		InterestRate:       l.InterestRate,
		MonthlyInstallment: l.MonthlyRepayment,
		Tenure:             l.TenureMonths,
	}
}

type ActiveLoanResponse struct {
	LoanID             int64   `json:"loan_id"`
	LoanAmount         float64 `json:"loan_amount"`
	InterestRate       float64 `json:"interest_rate"`
	MonthlyInstallment float64 `json:"monthly_installment"`
	RepaymentsLeft     int     `json:"repayments_left"`
}

func NewActiveLoanResponse(l *loan.Loan) ActiveLoanResponse {
	return ActiveLoanResponse{
		LoanID:             l.LoanID,
		LoanAmount:         l.LoanAmount,
		InterestRate:       l.InterestRate,
		MonthlyInstallment: l.MonthlyRepayment,
		RepaymentsLeft:     l.RepaymentsLeft(),
	}
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}
