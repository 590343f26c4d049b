package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"medbill/internal/billing"
	"medbill/internal/caching"
	"medbill/internal/client"
	"medbill/internal/common"
	"medbill/internal/config"
	"medbill/internal/models"
)

// billCacheTTL bounds how stale a cached computed bill may get between
// mutations performed by other cashiers.
const billCacheTTL = 60 * time.Second

// BillListQuery narrows a bill listing request.
type BillListQuery struct {
	PatientUUID string
	Status      models.PaymentStatus
	StartDate   time.Time
	EndDate     time.Time
	Page        int
	PageSize    int
}

// BillServiceInterface defines the interface for the bill service
type BillServiceInterface interface {
	GetBill(ctx context.Context, billUUID string) (*models.ComputedBill, error)
	ListBills(ctx context.Context, query BillListQuery) ([]models.ComputedBill, *int, error)
	CreateBill(ctx context.Context, req *models.CreateBillRequest) (*models.ComputedBill, error)
	GenerateReceiptNumber(ctx context.Context) (string, error)
	SearchBillableServices(ctx context.Context, term string) ([]models.BillableService, error)
}

type billService struct {
	cashier client.CashierClient
	cache   caching.CacheService
	rules   config.BillingRules
}

// NewBillService creates a new bill service
func NewBillService(cashier client.CashierClient, cache caching.CacheService, rules config.BillingRules) BillServiceInterface {
	return &billService{
		cashier: cashier,
		cache:   cache,
		rules:   rules,
	}
}

// GetBill fetches a bill snapshot from the remote store and computes its
// summary. Cached snapshots are served until they expire or a mutation
// invalidates them.
func (s *billService) GetBill(ctx context.Context, billUUID string) (*models.ComputedBill, error) {
	if cached, err := s.cache.GetBill(ctx, billUUID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("WARN: bill cache read failed for %s: %v", billUUID, err)
	}

	invoice, err := s.cashier.GetBill(ctx, billUUID)
	if err != nil {
		return nil, common.SecureErrorMessage("fetch bill", err)
	}

	bill := billing.MapBill(*invoice)
	if err := s.cache.SetBill(ctx, &bill, billCacheTTL); err != nil {
		log.Printf("WARN: bill cache write failed for %s: %v", billUUID, err)
	}
	return &bill, nil
}

// ListBills fetches a page of bills, computes each summary and returns them
// newest first. The total count is nil when the server did not report one.
func (s *billService) ListBills(ctx context.Context, query BillListQuery) ([]models.ComputedBill, *int, error) {
	if !query.StartDate.IsZero() && !query.EndDate.IsZero() {
		if err := common.ValidateDateRange(query.StartDate, query.EndDate); err != nil {
			return nil, nil, err
		}
	}

	remoteQuery := client.BillQuery{
		PatientUUID:       query.PatientUUID,
		Status:            query.Status,
		CreatedOnOrAfter:  query.StartDate,
		CreatedOnOrBefore: query.EndDate,
	}
	if query.PageSize > 0 {
		page := query.Page
		if page < 1 {
			page = 1
		}
		remoteQuery.Limit = query.PageSize
		remoteQuery.StartIndex = (page - 1) * query.PageSize
		remoteQuery.WithTotalCount = true
	}

	result, err := s.cashier.ListBills(ctx, remoteQuery)
	if err != nil {
		return nil, nil, common.SecureErrorMessage("list bills", err)
	}

	bills := make([]models.ComputedBill, 0, len(result.Results))
	for _, invoice := range result.Results {
		bill := billing.MapBill(invoice)
		if query.Status != "" && bill.Status != query.Status {
			continue
		}
		bills = append(bills, bill)
	}
	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].DateCreatedRaw > bills[j].DateCreatedRaw
	})

	return bills, result.TotalCount, nil
}

// CreateBill validates and opens a new bill, assigning a receipt number when
// the caller did not provide one.
func (s *billService) CreateBill(ctx context.Context, req *models.CreateBillRequest) (*models.ComputedBill, error) {
	if err := s.validateCreateBill(req); err != nil {
		return nil, err
	}

	if req.ReceiptNumber == "" {
		receiptNumber, err := s.GenerateReceiptNumber(ctx)
		if err != nil {
			return nil, common.SecureErrorMessage("generate receipt number", err)
		}
		req.ReceiptNumber = receiptNumber
	}

	invoice, err := s.cashier.CreateBill(ctx, req)
	if err != nil {
		return nil, common.SecureErrorMessage("create bill", err)
	}

	bill := billing.MapBill(*invoice)
	return &bill, nil
}

func (s *billService) validateCreateBill(req *models.CreateBillRequest) error {
	if _, err := common.ValidateUUID(req.CashPoint, "cashPoint"); err != nil {
		return err
	}
	if _, err := common.ValidateUUID(req.Cashier, "cashier"); err != nil {
		return err
	}
	if _, err := common.ValidateUUID(req.Patient, "patient"); err != nil {
		return err
	}
	if len(req.LineItems) == 0 {
		return fmt.Errorf("at least one line item is required")
	}
	for i, li := range req.LineItems {
		if li.Quantity < 1 {
			return fmt.Errorf("line item %d: quantity must be at least 1", i)
		}
		if li.Price < 0 {
			return fmt.Errorf("line item %d: price must not be negative", i)
		}
	}
	if req.Status == "" {
		req.Status = models.StatusPending
	}
	if req.Status != models.StatusPending {
		return fmt.Errorf("new bills must open with status %s", models.StatusPending)
	}
	if req.Payments == nil {
		req.Payments = []models.PaymentRequest{}
	}
	return nil
}

// GenerateReceiptNumber produces the next YYYYMMDD-NNN receipt number from
// today's bill count, falling back to a timestamp suffix when the remote
// store cannot be reached.
func (s *billService) GenerateReceiptNumber(ctx context.Context) (string, error) {
	now := time.Now()
	dateString := now.Format("20060102")
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	page, err := s.cashier.ListBills(ctx, client.BillQuery{
		CreatedOnOrAfter:  startOfDay,
		CreatedOnOrBefore: startOfDay.Add(24*time.Hour - time.Nanosecond),
	})
	if err != nil {
		log.Printf("WARN: receipt number lookup failed, using timestamp fallback: %v", err)
		timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
		return fmt.Sprintf("%s-%s", dateString, timestamp[len(timestamp)-3:]), nil
	}

	sequence := 1
	if len(page.Results) > 0 {
		parts := strings.Split(page.Results[0].ReceiptNumber, "-")
		if len(parts) == 2 {
			if previous, parseErr := strconv.Atoi(parts[1]); parseErr == nil {
				sequence = previous + 1
			}
		}
	}

	return fmt.Sprintf("%s-%03d", dateString, sequence), nil
}

// SearchBillableServices lists the chargeable service catalog, filtered by a
// case-insensitive name match when a search term is given.
func (s *billService) SearchBillableServices(ctx context.Context, term string) ([]models.BillableService, error) {
	services, err := s.cashier.ListBillableServices(ctx)
	if err != nil {
		return nil, common.SecureErrorMessage("list billable services", err)
	}
	if term == "" {
		return services, nil
	}

	needle := strings.ToLower(term)
	matched := make([]models.BillableService, 0, len(services))
	for _, svc := range services {
		if strings.Contains(strings.ToLower(svc.Name), needle) {
			matched = append(matched, svc)
		}
	}
	return matched, nil
}
