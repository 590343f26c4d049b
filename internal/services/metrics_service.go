package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"medbill/internal/billing"
	"medbill/internal/caching"
	"medbill/internal/client"
	"medbill/internal/common"
	"medbill/internal/config"
	"medbill/internal/models"
)

// MetricsServiceInterface defines the interface for dashboard metrics
type MetricsServiceInterface interface {
	DashboardMetrics(ctx context.Context, startDate, endDate time.Time) (*models.BillMetrics, error)
	RefreshDashboardMetrics(ctx context.Context) error
}

type metricsService struct {
	cashier client.CashierClient
	cache   caching.CacheService
	rules   config.BillingRules
	cfg     config.MetricsConfig
}

// NewMetricsService creates a new metrics service
func NewMetricsService(cashier client.CashierClient, cache caching.CacheService, rules config.BillingRules, cfg config.MetricsConfig) MetricsServiceInterface {
	return &metricsService{
		cashier: cashier,
		cache:   cache,
		rules:   rules,
		cfg:     cfg,
	}
}

// DashboardMetrics aggregates every bill created in the date range into the
// dashboard counters, serving a cached rollup when one is fresh.
func (s *metricsService) DashboardMetrics(ctx context.Context, startDate, endDate time.Time) (*models.BillMetrics, error) {
	if err := common.ValidateDateRange(startDate, endDate); err != nil {
		return nil, common.SecureErrorMessage("validate metrics date range", err)
	}

	cacheKey := fmt.Sprintf("%s:%s", startDate.Format("20060102"), endDate.Format("20060102"))
	if cached, err := s.cache.GetMetrics(ctx, cacheKey); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("WARN: metrics cache read failed: %v", err)
	}

	metrics, err := s.aggregate(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(s.cfg.CacheTTLSeconds) * time.Second
	if err := s.cache.SetMetrics(ctx, cacheKey, metrics, ttl); err != nil {
		log.Printf("WARN: metrics cache write failed: %v", err)
	}
	return metrics, nil
}

// RefreshDashboardMetrics recomputes and re-caches the rolling dashboard
// window, bypassing any cached value. Run from the background scheduler.
func (s *metricsService) RefreshDashboardMetrics(ctx context.Context) error {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -s.cfg.WindowDays)

	metrics, err := s.aggregate(ctx, startDate, endDate)
	if err != nil {
		return err
	}

	cacheKey := fmt.Sprintf("%s:%s", startDate.Format("20060102"), endDate.Format("20060102"))
	ttl := time.Duration(s.cfg.CacheTTLSeconds) * time.Second
	if err := s.cache.SetMetrics(ctx, cacheKey, metrics, ttl); err != nil {
		return common.SecureErrorMessage("cache refreshed metrics", err)
	}

	log.Printf("Dashboard metrics refreshed: collection=%.2f pending=%.2f exempted=%.2f waived=%.2f tax=%.2f bills=%d",
		metrics.Collection, metrics.Pending, metrics.Exempted, metrics.Waived, metrics.TaxCollected, metrics.BillCount)
	return nil
}

// aggregate pages through the remote listing and folds every computed bill
// into the accumulator.
func (s *metricsService) aggregate(ctx context.Context, startDate, endDate time.Time) (*models.BillMetrics, error) {
	policy := billing.TaxRecognitionPolicy(s.rules.TaxRecognitionPolicy)

	var bills []models.ComputedBill
	startIndex := 0
	for {
		page, err := s.cashier.ListBills(ctx, client.BillQuery{
			CreatedOnOrAfter:  startDate,
			CreatedOnOrBefore: endDate,
			Limit:             s.cfg.ListPageSize,
			StartIndex:        startIndex,
			WithTotalCount:    true,
		})
		if err != nil {
			return nil, common.SecureErrorMessage("list bills for metrics", err)
		}
		for _, invoice := range page.Results {
			bills = append(bills, billing.MapBill(invoice))
		}

		startIndex += len(page.Results)
		if len(page.Results) < s.cfg.ListPageSize {
			break
		}
		if page.TotalCount != nil && startIndex >= *page.TotalCount {
			break
		}
	}

	metrics := billing.AggregateBills(bills, policy)
	return &metrics, nil
}
