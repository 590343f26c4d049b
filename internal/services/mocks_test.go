package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"medbill/internal/client"
	"medbill/internal/models"
)

// MockCashierClient mocks the CashierClient interface for testing
type MockCashierClient struct {
	mock.Mock
}

func (m *MockCashierClient) GetBill(ctx context.Context, billUUID string) (*models.Invoice, error) {
	args := m.Called(ctx, billUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockCashierClient) ListBills(ctx context.Context, query client.BillQuery) (*client.BillPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.BillPage), args.Error(1)
}

func (m *MockCashierClient) UpdateBill(ctx context.Context, billUUID string, payload any) error {
	args := m.Called(ctx, billUUID, payload)
	return args.Error(0)
}

func (m *MockCashierClient) CreateBill(ctx context.Context, payload *models.CreateBillRequest) (*models.Invoice, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockCashierClient) ListPaymentModes(ctx context.Context) ([]models.PaymentMode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentMode), args.Error(1)
}

func (m *MockCashierClient) ListBillableServices(ctx context.Context) ([]models.BillableService, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BillableService), args.Error(1)
}

// MockCacheService mocks the CacheService interface for testing
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetBill(ctx context.Context, billUUID string) (*models.ComputedBill, error) {
	args := m.Called(ctx, billUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ComputedBill), args.Error(1)
}

func (m *MockCacheService) SetBill(ctx context.Context, bill *models.ComputedBill, ttl time.Duration) error {
	args := m.Called(ctx, bill, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteBill(ctx context.Context, billUUID string) error {
	args := m.Called(ctx, billUUID)
	return args.Error(0)
}

func (m *MockCacheService) GetMetrics(ctx context.Context, key string) (*models.BillMetrics, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillMetrics), args.Error(1)
}

func (m *MockCacheService) SetMetrics(ctx context.Context, key string, metrics *models.BillMetrics, ttl time.Duration) error {
	args := m.Called(ctx, key, metrics, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetPaymentModes(ctx context.Context) ([]models.PaymentMode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentMode), args.Error(1)
}

func (m *MockCacheService) SetPaymentModes(ctx context.Context, modes []models.PaymentMode, ttl time.Duration) error {
	args := m.Called(ctx, modes, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateMetrics(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func f64(v float64) *float64 { return &v }

// testInvoice is a two-item, one-payment bill used across the service tests.
func testInvoice() *models.Invoice {
	return &models.Invoice{
		UUID: "11111111-1111-4111-8111-111111111111",
		Patient: models.Patient{
			UUID:    "22222222-2222-4222-8222-222222222222",
			Display: "MRN001 - Mary Wanjiku",
		},
		CashPoint:   models.CashPoint{UUID: "33333333-3333-4333-8333-333333333333", Name: "Main Till"},
		Cashier:     models.Provider{UUID: "44444444-4444-4444-8444-444444444444", Display: "Peter Kamau"},
		DateCreated: "2026-08-30T08:00:00.000+0300",
		Status:      models.StatusPending,
		LineItems: []models.LineItem{
			{UUID: "li-1", Item: "Consultation", Quantity: 1, Price: 60, PaymentStatus: models.StatusPending},
			{UUID: "li-2", Item: "Pharmacy", Quantity: 1, Price: 40, PaymentStatus: models.StatusPending},
		},
		Payments: []models.Payment{
			{
				UUID:           "pay-1",
				InstanceType:   models.PaymentModeRef{UUID: "mode-cash", Name: "Cash"},
				Amount:         20,
				AmountTendered: 20,
				DateCreated:    "2026-08-30T08:30:00.000+0300",
			},
		},
		Balance:             f64(100),
		TotalActualPayments: 20,
	}
}
