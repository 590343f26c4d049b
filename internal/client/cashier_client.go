package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"medbill/internal/config"
	"medbill/internal/models"
)

// billListProjection is the custom field projection requested when listing
// bills, kept narrow to avoid pulling full nested resources.
const billListProjection = "custom:(uuid,display,voided,voidReason,adjustedBy,cashPoint:(uuid,name),cashier:(uuid,display),dateCreated,lineItems,payments,patient:(uuid,display),balance,totalPayments,totalDeposits,totalExempted,totalWaivers,totalActualPayments,totalTax,totalDiscount,closed,status,receiptNumber)"

const billableServiceProjection = "custom:(uuid,name,shortName,serviceStatus,serviceType:(display),servicePrices:(uuid,name,price,paymentMode))"

// SubmissionError reports a payload the remote store rejected. The caller may
// re-invoke the builder with refreshed input; no automatic retry is
// performed.
type SubmissionError struct {
	StatusCode int
	Body       string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("cashier API returned status %d: %s", e.StatusCode, e.Body)
}

// BillQuery narrows a bill listing.
type BillQuery struct {
	PatientUUID       string
	Status            models.PaymentStatus
	CreatedOnOrAfter  time.Time
	CreatedOnOrBefore time.Time
	Limit             int
	StartIndex        int
	WithTotalCount    bool
}

// BillPage is one page of a bill listing. TotalCount is nil when the server
// did not report one.
type BillPage struct {
	Results    []models.Invoice
	TotalCount *int
}

// CashierClient is the REST client for the remote cashier resource that owns
// all bill state. It performs no retries and holds no state beyond the
// connection settings.
type CashierClient interface {
	GetBill(ctx context.Context, billUUID string) (*models.Invoice, error)
	ListBills(ctx context.Context, query BillQuery) (*BillPage, error)
	UpdateBill(ctx context.Context, billUUID string, payload any) error
	CreateBill(ctx context.Context, payload *models.CreateBillRequest) (*models.Invoice, error)
	ListPaymentModes(ctx context.Context) ([]models.PaymentMode, error)
	ListBillableServices(ctx context.Context) ([]models.BillableService, error)
}

type cashierClient struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

// NewCashierClient creates a new cashier REST client.
func NewCashierClient(cfg config.RemoteConfig) CashierClient {
	return &cashierClient{
		baseURL:  cfg.BaseURL,
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

func (c *cashierClient) doRequest(ctx context.Context, method, endpoint string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return &SubmissionError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// GetBill fetches one bill with voided payments excluded; voided line items
// still arrive and are filtered by the bill mapper.
func (c *cashierClient) GetBill(ctx context.Context, billUUID string) (*models.Invoice, error) {
	var invoice models.Invoice
	endpoint := fmt.Sprintf("/cashier/bill/%s?includeVoided=false", billUUID)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

type billListResponse struct {
	Results    []models.Invoice `json:"results"`
	Length     *int             `json:"length,omitempty"`
	TotalCount *int             `json:"totalCount,omitempty"`
}

// ListBills fetches a page of bills matching the query.
func (c *cashierClient) ListBills(ctx context.Context, query BillQuery) (*BillPage, error) {
	params := url.Values{}
	params.Set("v", billListProjection)
	if query.Status != "" {
		params.Set("status", string(query.Status))
	}
	if !query.CreatedOnOrAfter.IsZero() {
		params.Set("createdOnOrAfter", query.CreatedOnOrAfter.UTC().Format(time.RFC3339))
	}
	if !query.CreatedOnOrBefore.IsZero() {
		params.Set("createdOnOrBefore", query.CreatedOnOrBefore.UTC().Format(time.RFC3339))
	}
	if query.PatientUUID != "" {
		params.Set("patientUuid", query.PatientUUID)
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
		params.Set("startIndex", strconv.Itoa(query.StartIndex))
	}
	if query.WithTotalCount {
		params.Set("totalCount", "true")
	}

	var resp billListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/cashier/bill?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	page := &BillPage{Results: resp.Results}
	// Paged listings report the total as "length"; fall back to "totalCount".
	if resp.Length != nil {
		page.TotalCount = resp.Length
	} else if resp.TotalCount != nil {
		page.TotalCount = resp.TotalCount
	}
	return page, nil
}

// UpdateBill submits a full bill replacement payload.
func (c *cashierClient) UpdateBill(ctx context.Context, billUUID string, payload any) error {
	return c.doRequest(ctx, http.MethodPost, "/cashier/bill/"+billUUID, payload, nil)
}

// CreateBill opens a new bill.
func (c *cashierClient) CreateBill(ctx context.Context, payload *models.CreateBillRequest) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := c.doRequest(ctx, http.MethodPost, "/cashier/bill", payload, &invoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

type paymentModeListResponse struct {
	Results []models.PaymentMode `json:"results"`
}

// ListPaymentModes fetches every payment mode, including retired ones;
// filtering is the payment service's concern.
func (c *cashierClient) ListPaymentModes(ctx context.Context) ([]models.PaymentMode, error) {
	var resp paymentModeListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/cashier/paymentMode?v=full", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

type billableServiceListResponse struct {
	Results []models.BillableService `json:"results"`
}

// ListBillableServices fetches the chargeable service catalog.
func (c *cashierClient) ListBillableServices(ctx context.Context) ([]models.BillableService, error) {
	endpoint := "/cashier/billableService?v=" + url.QueryEscape(billableServiceProjection)
	var resp billableServiceListResponse
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
