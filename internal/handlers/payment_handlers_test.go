package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"medbill/internal/billing"
	"medbill/internal/client"
	"medbill/internal/models"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, billUUID string, selectedLineItemUUIDs []string, rows []billing.PaymentRow) (*billing.ValidationResult, error) {
	args := m.Called(ctx, billUUID, selectedLineItemUUIDs, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ValidationResult), args.Error(1)
}

func (m *MockPaymentService) DeletePayment(ctx context.Context, billUUID, paymentUUID, voidReason, actorUUID string) error {
	args := m.Called(ctx, billUUID, paymentUUID, voidReason, actorUUID)
	return args.Error(0)
}

func (m *MockPaymentService) ListPaymentModes(ctx context.Context, includeExcluded bool) ([]models.PaymentMode, error) {
	args := m.Called(ctx, includeExcluded)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentMode), args.Error(1)
}

type PaymentHandlersTestSuite struct {
	suite.Suite
	mockPayments *MockPaymentService
	handlers     *PaymentHandlers
	echo         *echo.Echo
}

func (suite *PaymentHandlersTestSuite) SetupTest() {
	suite.mockPayments = new(MockPaymentService)
	suite.mockPayments.Test(suite.T())
	suite.handlers = NewPaymentHandlers(suite.mockPayments)
	suite.echo = echo.New()
}

func (suite *PaymentHandlersTestSuite) TearDownTest() {
	suite.mockPayments.AssertExpectations(suite.T())
}

func TestPaymentHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentHandlersTestSuite))
}

const testBillUUID = "22222222-2222-4222-8222-222222222222"

func (suite *PaymentHandlersTestSuite) recordPayment(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := suite.echo.NewContext(req, rec)
	c.SetParamNames("uuid")
	c.SetParamValues(testBillUUID)
	require.NoError(suite.T(), suite.handlers.RecordPayment(c))
	return rec
}

func (suite *PaymentHandlersTestSuite) TestRecordPayment_BlockingViolationIs422() {
	result := &billing.ValidationResult{
		AmountDue: 100,
		Violations: []billing.Violation{
			{Kind: billing.ViolationBlocking, Row: -1, Message: "incomplete payment: total 60.00 must equal the selected items' amount due 100.00"},
		},
	}
	suite.mockPayments.On("RecordPayment", mock.Anything, testBillUUID, mock.Anything, mock.Anything).Return(result, nil)

	rec := suite.recordPayment(`{"payments":[{"method":"mode-cash","amount":60}]}`)
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Error struct {
			Code       string              `json:"code"`
			Violations []billing.Violation `json:"violations"`
			AmountDue  float64             `json:"amountDue"`
		} `json:"error"`
	}
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(suite.T(), "BLOCKING_NOTICE", body.Error.Code)
	require.Len(suite.T(), body.Error.Violations, 1)
	assert.Equal(suite.T(), billing.ViolationBlocking, body.Error.Violations[0].Kind)
	assert.InDelta(suite.T(), 100.0, body.Error.AmountDue, 1e-9)
}

func (suite *PaymentHandlersTestSuite) TestRecordPayment_FieldViolationIs400() {
	result := &billing.ValidationResult{
		AmountDue: 100,
		Violations: []billing.Violation{
			{Kind: billing.ViolationField, Row: 0, Field: "amount", Message: "amount must be greater than zero"},
		},
	}
	suite.mockPayments.On("RecordPayment", mock.Anything, testBillUUID, mock.Anything, mock.Anything).Return(result, nil)

	rec := suite.recordPayment(`{"payments":[{"method":"mode-cash","amount":0}]}`)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(suite.T(), "VALIDATION_ERROR", body.Error.Code)
}

func (suite *PaymentHandlersTestSuite) TestRecordPayment_WarningStillSucceeds() {
	result := &billing.ValidationResult{
		AmountDue: 50,
		Violations: []billing.Violation{
			{Kind: billing.ViolationWarning, Row: -1, Message: "amount paid 80.00 is greater than the amount due 50.00"},
		},
	}
	suite.mockPayments.On("RecordPayment", mock.Anything, testBillUUID, mock.Anything, mock.Anything).Return(result, nil)

	rec := suite.recordPayment(`{"payments":[{"method":"mode-cash","amount":80}]}`)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(suite.T(), body, "warnings")
}

func (suite *PaymentHandlersTestSuite) TestRecordPayment_RemoteNotFoundIs404() {
	suite.mockPayments.On("RecordPayment", mock.Anything, testBillUUID, mock.Anything, mock.Anything).
		Return(nil, &client.SubmissionError{StatusCode: http.StatusNotFound, Body: "not found"})

	rec := suite.recordPayment(`{"payments":[{"method":"mode-cash","amount":10}]}`)
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(suite.T(), "NOT_FOUND", body.Error.Code)
}

func (suite *PaymentHandlersTestSuite) TestRecordPayment_RejectsEmptyPayments() {
	rec := suite.recordPayment(`{"payments":[]}`)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	suite.mockPayments.AssertNotCalled(suite.T(), "RecordPayment")
}
