package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"medbill/internal/client"
	"medbill/internal/config"
	"medbill/internal/models"
)

type MetricsServiceTestSuite struct {
	suite.Suite
	mockCashier *MockCashierClient
	mockCache   *MockCacheService
	service     MetricsServiceInterface
}

func (suite *MetricsServiceTestSuite) SetupTest() {
	suite.mockCashier = &MockCashierClient{}
	suite.mockCache = &MockCacheService{}
	suite.service = NewMetricsService(suite.mockCashier, suite.mockCache,
		config.BillingRules{TaxRecognitionPolicy: "paid-only"},
		config.MetricsConfig{CacheTTLSeconds: 300, WindowDays: 1, ListPageSize: 50},
	)

	suite.mockCashier.Test(suite.T())
	suite.mockCache.Test(suite.T())
}

func (suite *MetricsServiceTestSuite) TearDownTest() {
	suite.mockCashier.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
}

func TestMetricsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MetricsServiceTestSuite))
}

func metricsWindow() (time.Time, time.Time) {
	start := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	return start, start.Add(24*time.Hour - time.Nanosecond)
}

func (suite *MetricsServiceTestSuite) TestDashboardMetrics_Aggregates() {
	ctx := context.Background()
	start, end := metricsWindow()

	paid := *testInvoice()
	paid.UUID = "paid"
	for i := range paid.LineItems {
		paid.LineItems[i].PaymentStatus = models.StatusPaid
	}
	paid.TotalActualPayments = 100
	paid.TotalTax = 10
	paid.Balance = f64(0)

	pending := *testInvoice()
	pending.UUID = "pending"
	pending.Balance = f64(50)
	pending.TotalActualPayments = 0

	suite.mockCache.On("GetMetrics", ctx, "20260830:20260830").Return(nil, nil)
	suite.mockCashier.On("ListBills", ctx, mock.AnythingOfType("client.BillQuery")).
		Return(&client.BillPage{Results: []models.Invoice{paid, pending}}, nil)
	suite.mockCache.On("SetMetrics", ctx, "20260830:20260830",
		mock.AnythingOfType("*models.BillMetrics"), 300*time.Second).Return(nil)

	metrics, err := suite.service.DashboardMetrics(ctx, start, end)
	assert.NoError(suite.T(), err)
	assert.InDelta(suite.T(), 100.0, metrics.Collection, 1e-9)
	assert.InDelta(suite.T(), 50.0, metrics.Pending, 1e-9)
	assert.InDelta(suite.T(), 10.0, metrics.TaxCollected, 1e-9)
	assert.Equal(suite.T(), 2, metrics.BillCount)
}

func (suite *MetricsServiceTestSuite) TestDashboardMetrics_ServesCachedRollup() {
	ctx := context.Background()
	start, end := metricsWindow()
	cached := &models.BillMetrics{Collection: 42, BillCount: 3}

	suite.mockCache.On("GetMetrics", ctx, "20260830:20260830").Return(cached, nil)

	metrics, err := suite.service.DashboardMetrics(ctx, start, end)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), cached, metrics)
	suite.mockCashier.AssertNotCalled(suite.T(), "ListBills")
}

func (suite *MetricsServiceTestSuite) TestDashboardMetrics_RejectsBadRange() {
	ctx := context.Background()
	start, end := metricsWindow()

	_, err := suite.service.DashboardMetrics(ctx, end, start)
	assert.Error(suite.T(), err)

	_, err = suite.service.DashboardMetrics(ctx, start, start.AddDate(2, 0, 0))
	assert.Error(suite.T(), err)
}

func (suite *MetricsServiceTestSuite) TestDashboardMetrics_PagesThroughListing() {
	ctx := context.Background()
	start, end := metricsWindow()

	fullPage := make([]models.Invoice, 50)
	for i := range fullPage {
		fullPage[i] = *testInvoice()
	}
	totalCount := 60

	suite.mockCache.On("GetMetrics", ctx, "20260830:20260830").Return(nil, nil)
	suite.mockCashier.On("ListBills", ctx, mock.MatchedBy(func(q client.BillQuery) bool {
		return q.StartIndex == 0
	})).Return(&client.BillPage{Results: fullPage, TotalCount: &totalCount}, nil).Once()
	suite.mockCashier.On("ListBills", ctx, mock.MatchedBy(func(q client.BillQuery) bool {
		return q.StartIndex == 50
	})).Return(&client.BillPage{Results: fullPage[:10], TotalCount: &totalCount}, nil).Once()
	suite.mockCache.On("SetMetrics", ctx, "20260830:20260830",
		mock.AnythingOfType("*models.BillMetrics"), 300*time.Second).Return(nil)

	metrics, err := suite.service.DashboardMetrics(ctx, start, end)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 60, metrics.BillCount)
}

func (suite *MetricsServiceTestSuite) TestRefreshDashboardMetrics() {
	ctx := context.Background()

	suite.mockCashier.On("ListBills", ctx, mock.AnythingOfType("client.BillQuery")).
		Return(&client.BillPage{Results: []models.Invoice{*testInvoice()}}, nil)
	suite.mockCache.On("SetMetrics", ctx, mock.AnythingOfType("string"),
		mock.AnythingOfType("*models.BillMetrics"), 300*time.Second).Return(nil)

	err := suite.service.RefreshDashboardMetrics(ctx)
	assert.NoError(suite.T(), err)
}
