package services

import (
	"context"
	"fmt"
	"log"

	"medbill/internal/billing"
	"medbill/internal/caching"
	"medbill/internal/client"
	"medbill/internal/common"
	"medbill/internal/models"
)

// AdjustmentServiceInterface defines the interface for bill adjustments
type AdjustmentServiceInterface interface {
	EditLineItem(ctx context.Context, billUUID, lineItemUUID string, form billing.EditLineItemForm, adjustmentReason string) error
	LineItemDiscountForm(ctx context.Context, billUUID, lineItemUUID string) (*billing.DiscountForm, error)
}

type adjustmentService struct {
	cashier client.CashierClient
	cache   caching.CacheService
}

// NewAdjustmentService creates a new adjustment service
func NewAdjustmentService(cashier client.CashierClient, cache caching.CacheService) AdjustmentServiceInterface {
	return &adjustmentService{
		cashier: cashier,
		cache:   cache,
	}
}

// EditLineItem replaces one line item's price, quantity and discount on the
// remote store while reproducing every other record as fetched.
func (s *adjustmentService) EditLineItem(ctx context.Context, billUUID, lineItemUUID string, form billing.EditLineItemForm, adjustmentReason string) error {
	if err := common.ValidateRequiredString(adjustmentReason, "adjustmentReason"); err != nil {
		return err
	}

	invoice, err := s.cashier.GetBill(ctx, billUUID)
	if err != nil {
		return common.SecureErrorMessage("fetch bill for adjustment", err)
	}
	bill := billing.MapBill(*invoice)

	target, err := findLineItem(bill.LineItems, lineItemUUID)
	if err != nil {
		return err
	}

	payload, err := billing.BuildEditLineItemPayload(*target, form, bill, adjustmentReason)
	if err != nil {
		return err
	}
	if err := s.cashier.UpdateBill(ctx, billUUID, payload); err != nil {
		return common.SecureErrorMessage("submit bill adjustment", err)
	}

	if err := s.cache.DeleteBill(ctx, billUUID); err != nil {
		log.Printf("WARN: bill cache invalidation failed for %s: %v", billUUID, err)
	}
	if err := s.cache.InvalidateMetrics(ctx); err != nil {
		log.Printf("WARN: metrics cache invalidation failed after adjusting bill %s: %v", billUUID, err)
	}
	return nil
}

// LineItemDiscountForm reads a line item's existing discount back into
// editable method and value for pre-filling an adjustment form.
func (s *adjustmentService) LineItemDiscountForm(ctx context.Context, billUUID, lineItemUUID string) (*billing.DiscountForm, error) {
	invoice, err := s.cashier.GetBill(ctx, billUUID)
	if err != nil {
		return nil, common.SecureErrorMessage("fetch bill", err)
	}
	bill := billing.MapBill(*invoice)

	target, err := findLineItem(bill.LineItems, lineItemUUID)
	if err != nil {
		return nil, err
	}

	form := billing.ReadDiscountForm(target.Discounts)
	return &form, nil
}

func findLineItem(lineItems []models.LineItem, lineItemUUID string) (*models.LineItem, error) {
	for i := range lineItems {
		if lineItems[i].UUID == lineItemUUID {
			return &lineItems[i], nil
		}
	}
	return nil, fmt.Errorf("line item %s not found on bill", lineItemUUID)
}
