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

const paymentModeCacheTTL = 10 * time.Minute

// referenceNumberAttributeDescription identifies the attribute type a payment
// mode uses for external transaction references.
const referenceNumberAttributeDescription = "Reference Number"

// PaymentServiceInterface defines the interface for the payment service
type PaymentServiceInterface interface {
	RecordPayment(ctx context.Context, billUUID string, selectedLineItemUUIDs []string, rows []billing.PaymentRow) (*billing.ValidationResult, error)
	DeletePayment(ctx context.Context, billUUID, paymentUUID, voidReason, actorUUID string) error
	ListPaymentModes(ctx context.Context, includeExcluded bool) ([]models.PaymentMode, error)
}

type paymentService struct {
	cashier client.CashierClient
	cache   caching.CacheService
	rules   config.BillingRules
}

// NewPaymentService creates a new payment service
func NewPaymentService(cashier client.CashierClient, cache caching.CacheService, rules config.BillingRules) PaymentServiceInterface {
	return &paymentService{
		cashier: cashier,
		cache:   cache,
		rules:   rules,
	}
}

// RecordPayment validates the proposed payment rows against the bill and,
// when they pass, submits the full replacement payload with the new rows
// appended. A result carrying violations is returned without submission; the
// error return is reserved for fetch/submission failures.
func (s *paymentService) RecordPayment(ctx context.Context, billUUID string, selectedLineItemUUIDs []string, rows []billing.PaymentRow) (*billing.ValidationResult, error) {
	invoice, err := s.cashier.GetBill(ctx, billUUID)
	if err != nil {
		return nil, common.SecureErrorMessage("fetch bill for payment", err)
	}
	bill := billing.MapBill(*invoice)

	selected := selectLineItems(bill.LineItems, selectedLineItemUUIDs)
	if len(selectedLineItemUUIDs) > 0 && len(selected) != len(selectedLineItemUUIDs) {
		return nil, fmt.Errorf("one or more selected line items are not on bill %s", billUUID)
	}

	if err := s.fillReferenceAttributeTypes(ctx, rows); err != nil {
		log.Printf("WARN: payment mode lookup failed, reference attributes may be incomplete: %v", err)
	}

	result := billing.ValidatePayments(bill.Balance, selected, rows, billing.ValidatorConfig{
		ReferenceCodeRequiredModes: s.rules.ReferenceCodeRequiredSet(),
	})
	if !result.OK() {
		return &result, nil
	}

	payload, err := billing.BuildRecordPaymentPayload(bill, rows)
	if err != nil {
		return nil, err
	}
	if err := s.cashier.UpdateBill(ctx, billUUID, payload); err != nil {
		return nil, common.SecureErrorMessage("submit payment", err)
	}

	s.invalidateBill(ctx, billUUID)
	return &result, nil
}

// DeletePayment voids one payment on a bill, leaving every other record as
// fetched.
func (s *paymentService) DeletePayment(ctx context.Context, billUUID, paymentUUID, voidReason, actorUUID string) error {
	if err := common.ValidateRequiredString(voidReason, "voidReason"); err != nil {
		return err
	}

	invoice, err := s.cashier.GetBill(ctx, billUUID)
	if err != nil {
		return common.SecureErrorMessage("fetch bill for payment deletion", err)
	}
	bill := billing.MapBill(*invoice)

	var target *models.Payment
	for i := range bill.Payments {
		if bill.Payments[i].UUID == paymentUUID {
			target = &bill.Payments[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("payment %s is not on bill %s", paymentUUID, billUUID)
	}

	payload, err := billing.BuildDeletePaymentPayload(bill, *target, voidReason, actorUUID)
	if err != nil {
		return err
	}
	if err := s.cashier.UpdateBill(ctx, billUUID, payload); err != nil {
		return common.SecureErrorMessage("submit payment deletion", err)
	}

	s.invalidateBill(ctx, billUUID)
	return nil
}

// ListPaymentModes lists payment modes with retired modes dropped and the
// configured exclusions (e.g. the Waiver mode) applied unless the caller asks
// for the full set.
func (s *paymentService) ListPaymentModes(ctx context.Context, includeExcluded bool) ([]models.PaymentMode, error) {
	modes, err := s.cachedPaymentModes(ctx)
	if err != nil {
		return nil, common.SecureErrorMessage("list payment modes", err)
	}

	excluded := s.rules.ExcludedPaymentModeSet()
	allowed := make([]models.PaymentMode, 0, len(modes))
	for _, mode := range modes {
		if mode.Retired {
			continue
		}
		if !includeExcluded && excluded[mode.UUID] {
			continue
		}
		allowed = append(allowed, mode)
	}
	return allowed, nil
}

func (s *paymentService) cachedPaymentModes(ctx context.Context) ([]models.PaymentMode, error) {
	if cached, err := s.cache.GetPaymentModes(ctx); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("WARN: payment mode cache read failed: %v", err)
	}

	modes, err := s.cashier.ListPaymentModes(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetPaymentModes(ctx, modes, paymentModeCacheTTL); err != nil {
		log.Printf("WARN: payment mode cache write failed: %v", err)
	}
	return modes, nil
}

// fillReferenceAttributeTypes resolves each row's reference attribute type
// from the payment mode catalog when the caller did not supply one.
func (s *paymentService) fillReferenceAttributeTypes(ctx context.Context, rows []billing.PaymentRow) error {
	needed := false
	for _, row := range rows {
		if row.ReferenceCode != "" && row.ReferenceAttributeTypeUUID == "" {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	modes, err := s.cachedPaymentModes(ctx)
	if err != nil {
		return err
	}

	refTypeByMode := make(map[string]string, len(modes))
	for _, mode := range modes {
		for _, attrType := range mode.AttributeTypes {
			if attrType.Description == referenceNumberAttributeDescription {
				refTypeByMode[mode.UUID] = attrType.UUID
				break
			}
		}
	}

	for i := range rows {
		if rows[i].ReferenceCode != "" && rows[i].ReferenceAttributeTypeUUID == "" {
			rows[i].ReferenceAttributeTypeUUID = refTypeByMode[rows[i].ModeUUID]
		}
	}
	return nil
}

// invalidateBill drops the cached bill snapshot and every metrics rollup so
// reads after the mutation refetch.
func (s *paymentService) invalidateBill(ctx context.Context, billUUID string) {
	if err := s.cache.DeleteBill(ctx, billUUID); err != nil {
		log.Printf("WARN: bill cache invalidation failed for %s: %v", billUUID, err)
	}
	if err := s.cache.InvalidateMetrics(ctx); err != nil {
		log.Printf("WARN: metrics cache invalidation failed after mutating bill %s: %v", billUUID, err)
	}
}

func selectLineItems(lineItems []models.LineItem, uuids []string) []models.LineItem {
	if len(uuids) == 0 {
		return lineItems
	}
	wanted := make(map[string]bool, len(uuids))
	for _, id := range uuids {
		wanted[id] = true
	}
	selected := make([]models.LineItem, 0, len(uuids))
	for _, li := range lineItems {
		if wanted[li.UUID] {
			selected = append(selected, li)
		}
	}
	return selected
}
