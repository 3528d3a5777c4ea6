package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"credit-engine/internal/api/handler/dto"
	"credit-engine/internal/domain/customer"
	"credit-engine/internal/domain/loan"
	"credit-engine/internal/pkg/apperrors"
)

type CustomerHandler struct {
	service     customer.CustomerService
	loanService loan.LoanService
	logger      *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, ls loan.LoanService, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if ls == nil {
		panic("loan service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service:     s,
		loanService: ls,
		logger:      l.With("component", "CustomerHandler"),
	}
}

// Register handles POST /register
// @Summary Register a new customer
// @Description Creates a customer and assigns an approved credit limit of 36x monthly income rounded to the nearest 100,000.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.RegisterCustomerRequest true "Customer registration request"
// @Success 201 {object} dto.RegisterCustomerResponse "Customer successfully registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /register [post]
func (h *CustomerHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received register customer request")

	var req dto.RegisterCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Request validation failed", slog.Any("error", err))
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	h.logger.DebugContext(r.Context(), "Request validation passed")

	createdCustomer, err := h.service.RegisterCustomer(r.Context(), req.FirstName, req.LastName, req.Age, req.MonthlyIncome, req.PhoneNumber)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to register customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewRegisterCustomerResponse(createdCustomer)
	h.logger.InfoContext(r.Context(), "Customer registered successfully", slog.Int64("customerID", resp.CustomerID))
	respondJSON(w, http.StatusCreated, resp)
}

// ViewCustomer handles GET /view-customer/{customerID}
// @Summary Retrieve customer details
// @Description Returns the customer record with total and active loan counts.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CustomerDetailResponse "Customer details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /view-customer/{customerID} [get]
func (h *CustomerHandler) ViewCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := idFromURL(r, "customerID")
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	domainCustomer, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		level := slog.LevelWarn
		if !errors.Is(err, apperrors.ErrNotFound) {
			level = slog.LevelError
		}
		h.logger.Log(r.Context(), level, "Service failed to get customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	total, active, err := h.loanService.LoanCounts(r.Context(), customerID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to count loans", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewCustomerDetailResponse(domainCustomer, total, active)
	h.logger.InfoContext(r.Context(), "Customer retrieved successfully", slog.Int64("customerID", customerID))
	respondJSON(w, http.StatusOK, resp)
}
