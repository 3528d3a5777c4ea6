package loan

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"credit-engine/internal/domain/customer"
	"credit-engine/internal/event"
	"credit-engine/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, nil))

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) CreateLoan(ctx context.Context, l *Loan) (*Loan, error) {
	ret := _m.Called(ctx, l)

	var r0 *Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) FindByID(ctx context.Context, loanID int64) (*Loan, error) {
	ret := _m.Called(ctx, loanID)

	var r0 *Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) ListByCustomer(ctx context.Context, customerID int64, activeOnly bool, asOf time.Time) ([]Loan, error) {
	ret := _m.Called(ctx, customerID, activeOnly, asOf)

	var r0 []Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) Upsert(ctx context.Context, l *Loan) error {
	ret := _m.Called(ctx, l)
	return ret.Error(0)
}

func (_m *MockRepository) SyncIDSequence(ctx context.Context) error {
	ret := _m.Called(ctx)
	return ret.Error(0)
}

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) RegisterCustomer(ctx context.Context, firstName, lastName string, age int, monthlyIncome float64, phoneNumber int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, firstName, lastName, age, monthlyIncome, phoneNumber)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) GetCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func newTestService(repo *MockRepository, cs *MockCustomerService) LoanService {
	return NewLoanService(repo, cs, event.NoopPublisher{}, logger)
}

func TestCheckEligibility(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomerService := new(MockCustomerService)
	service := newTestService(mockRepo, mockCustomerService)

	ctx := context.Background()
	cust := &customer.Customer{CustomerID: 1, MonthlySalary: 100000, ApprovedLimit: 2000000}

	mockCustomerService.On("GetCustomer", ctx, int64(1)).Return(cust, nil)
	mockRepo.On("ListByCustomer", ctx, int64(1), false, mock.AnythingOfType("time.Time")).Return([]Loan{}, nil)

	result, err := service.CheckEligibility(ctx, 1, 300000, 8, 24)

	assert.NoError(t, err)
	assert.True(t, result.Approved)
	assert.Equal(t, NeutralScore, result.Score)
	assert.Equal(t, 12.0, result.CorrectedRate, "first-time borrowers get the 12 percent floor")
	mockRepo.AssertExpectations(t)
	mockCustomerService.AssertExpectations(t)
}

func TestCheckEligibilityValidation(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomerService := new(MockCustomerService)
	service := newTestService(mockRepo, mockCustomerService)

	ctx := context.Background()

	_, err := service.CheckEligibility(ctx, 0, 300000, 8, 24)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = service.CheckEligibility(ctx, 1, -5, 8, 24)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = service.CheckEligibility(ctx, 1, 300000, 8, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	mockRepo.AssertNotCalled(t, "ListByCustomer")
}

func TestCheckEligibilityUnknownCustomer(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomerService := new(MockCustomerService)
	service := newTestService(mockRepo, mockCustomerService)

	ctx := context.Background()
	mockCustomerService.On("GetCustomer", ctx, int64(99)).Return(nil, apperrors.ErrCustomerNotFound)

	_, err := service.CheckEligibility(ctx, 99, 300000, 8, 24)

	assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
	mockRepo.AssertNotCalled(t, "ListByCustomer")
}

func TestCreateLoanApproved(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomerService := new(MockCustomerService)
	service := newTestService(mockRepo, mockCustomerService)

	ctx := context.Background()
	cust := &customer.Customer{CustomerID: 1, MonthlySalary: 100000, ApprovedLimit: 2000000}

	mockCustomerService.On("GetCustomer", ctx, int64(1)).Return(cust, nil)
	mockRepo.On("ListByCustomer", ctx, int64(1), false, mock.AnythingOfType("time.Time")).Return([]Loan{}, nil)
	mockRepo.On("CreateLoan", ctx, mock.AnythingOfType("*loan.Loan")).Return(&Loan{LoanID: 42, CustomerID: 1, MonthlyRepayment: 14123.44}, nil)

	result, err := service.CreateLoan(ctx, 1, 300000, 8, 24)

	assert.NoError(t, err)
	assert.True(t, result.Approved)
	assert.Equal(t, msgLoanApproved, result.Message)
	if assert.NotNil(t, result.LoanID) {
		assert.Equal(t, int64(42), *result.LoanID)
	}
	mockRepo.AssertExpectations(t)
}

func TestCreateLoanPersistsCorrectedTerms(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomerService := new(MockCustomerService)
	service := newTestService(mockRepo, mockCustomerService)

	ctx := context.Background()
	cust := &customer.Customer{CustomerID: 1, MonthlySalary: 100000, ApprovedLimit: 2000000}

	mockCustomerService.On("GetCustomer", ctx, int64(1)).Return(cust, nil)
	mockRepo.On("ListByCustomer", ctx, int64(1), false, mock.AnythingOfType("time.Time")).Return([]Loan{}, nil)

	var persisted *Loan
	mockRepo.On("CreateLoan", ctx, mock.AnythingOfType("*loan.Loan")).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*Loan)
		}).
		Return(&Loan{LoanID: 7}, nil)

	_, err := service.CreateLoan(ctx, 1, 300000, 8, 24)

	assert.NoError(t, err)
	if assert.NotNil(t, persisted) {
		assert.Equal(t, 12.0, persisted.InterestRate, "corrected rate must be persisted, not the requested one")
		assert.Equal(t, 0, persisted.EMIsPaidOnTime)
		assert.Equal(t, persisted.StartDate.AddDate(0, 24, 0), persisted.EndDate)
	}
}

func TestCreateLoanRejected(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomerService := new(MockCustomerService)
	service := newTestService(mockRepo, mockCustomerService)

	ctx := context.Background()
	cust := &customer.Customer{CustomerID: 1, MonthlySalary: 20000, ApprovedLimit: 5000000}

	mockCustomerService.On("GetCustomer", ctx, int64(1)).Return(cust, nil)
	mockRepo.On("ListByCustomer", ctx, int64(1), false, mock.AnythingOfType("time.Time")).Return([]Loan{}, nil)

	result, err := service.CreateLoan(ctx, 1, 2000000, 10, 36)

	assert.NoError(t, err)
	assert.False(t, result.Approved)
	assert.Nil(t, result.LoanID)
	assert.Equal(t, msgLoanRejected, result.Message)
	assert.Greater(t, result.MonthlyInstallment, Money(0), "the would-be installment is still reported")
	mockRepo.AssertNotCalled(t, "CreateLoan")
}

func TestGetLoan(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomerService := new(MockCustomerService)
	service := newTestService(mockRepo, mockCustomerService)

	ctx := context.Background()
	expectedLoan := &Loan{LoanID: 5, CustomerID: 3}
	expectedCustomer := &customer.Customer{CustomerID: 3}

	mockRepo.On("FindByID", ctx, int64(5)).Return(expectedLoan, nil)
	mockCustomerService.On("GetCustomer", ctx, int64(3)).Return(expectedCustomer, nil)

	detail, err := service.GetLoan(ctx, 5)

	assert.NoError(t, err)
	assert.Equal(t, expectedLoan, detail.Loan)
	assert.Equal(t, expectedCustomer, detail.Customer)
	mockRepo.AssertExpectations(t)
}

func TestGetLoanNotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomerService := new(MockCustomerService)
	service := newTestService(mockRepo, mockCustomerService)

	ctx := context.Background()
	mockRepo.On("FindByID", ctx, int64(404)).Return(nil, apperrors.ErrNotFound)

	_, err := service.GetLoan(ctx, 404)

	assert.ErrorIs(t, err, apperrors.ErrLoanNotFound)
}

func TestListActiveLoans(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomerService := new(MockCustomerService)
	service := newTestService(mockRepo, mockCustomerService)

	ctx := context.Background()
	cust := &customer.Customer{CustomerID: 1}
	active := []Loan{{LoanID: 1, CustomerID: 1}, {LoanID: 2, CustomerID: 1}}

	mockCustomerService.On("GetCustomer", ctx, int64(1)).Return(cust, nil)
	mockRepo.On("ListByCustomer", ctx, int64(1), true, mock.AnythingOfType("time.Time")).Return(active, nil)

	loans, err := service.ListActiveLoans(ctx, 1)

	assert.NoError(t, err)
	assert.Len(t, loans, 2)
}

func TestListActiveLoansUnknownCustomer(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomerService := new(MockCustomerService)
	service := newTestService(mockRepo, mockCustomerService)

	ctx := context.Background()
	mockCustomerService.On("GetCustomer", ctx, int64(99)).Return(nil, apperrors.ErrCustomerNotFound)

	_, err := service.ListActiveLoans(ctx, 99)

	assert.ErrorIs(t, err, apperrors.ErrCustomerNotFound)
	mockRepo.AssertNotCalled(t, "ListByCustomer")
}

func TestLoanCounts(t *testing.T) {
	mockRepo := new(MockRepository)
	mockCustomerService := new(MockCustomerService)
	service := newTestService(mockRepo, mockCustomerService)

	ctx := context.Background()
	now := time.Now()
	history := []Loan{
		{LoanID: 1, EndDate: now.AddDate(1, 0, 0)},
		{LoanID: 2, EndDate: now.AddDate(0, 0, -30)},
		{LoanID: 3, EndDate: now.AddDate(0, 6, 0)},
	}

	mockRepo.On("ListByCustomer", ctx, int64(1), false, mock.AnythingOfType("time.Time")).Return(history, nil)

	total, active, err := service.LoanCounts(ctx, 1)

	assert.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, active)
}
