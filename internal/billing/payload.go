package billing

import (
	"errors"
	"fmt"
	"time"

	"medbill/internal/models"
)

// ErrInvalidInput signals that a payload builder was called without the
// identifiers or collections it needs. It is fatal to the call and never
// recovered silently.
var ErrInvalidInput = errors.New("invalid input")

// EditLineItemForm carries the user-entered values for a line item
// adjustment. Price, Quantity and DiscountValue arrive as raw form text and
// are parsed leniently; unparseable text falls back to the line item's
// current value.
type EditLineItemForm struct {
	Price               string
	Quantity            string
	DiscountValue       string
	DiscountMethod      DiscountMethod
	DiscountDescription string
	SponsorUUID         string
}

// BuildEditLineItemPayload builds the full bill replacement payload for a
// line item edit. The target line item gets the parsed price and quantity and
// a freshly computed discount list when a positive discount value was
// supplied; with no new discount value the target keeps its existing
// discounts, and every other line item is reproduced with its existing values
// and discounts. The bill status is included only when the source bill
// carried one.
func BuildEditLineItemPayload(lineItem models.LineItem, form EditLineItemForm, bill models.ComputedBill, adjustmentReason string) (*models.EditLineItemRequest, error) {
	if lineItem.UUID == "" || len(bill.LineItems) == 0 {
		return nil, fmt.Errorf("%w: line item and bill with line items are required", ErrInvalidInput)
	}
	if !containsLineItem(bill.LineItems, lineItem.UUID) {
		return nil, fmt.Errorf("%w: line item %s is not on bill %s", ErrInvalidInput, lineItem.UUID, bill.UUID)
	}

	quantity := ParseQuantityOr(form.Quantity, lineItem.Quantity)
	price := ParseAmountOr(form.Price, lineItem.Price)
	discounts := ComputeDiscounts(form.DiscountMethod, form.DiscountValue, price*float64(quantity), form.DiscountDescription, form.SponsorUUID)

	lineItems := make([]models.LineItemRequest, 0, len(bill.LineItems))
	for _, li := range bill.LineItems {
		req := lineItemRequest(li, true)
		if li.UUID == lineItem.UUID {
			req.Quantity = quantity
			req.Price = price
			if len(discounts) > 0 {
				req.Discounts = discounts
			}
		}
		lineItems = append(lineItems, req)
	}

	payload := &models.EditLineItemRequest{
		BillUpdateRequest: models.BillUpdateRequest{
			CashPoint: bill.CashPointUUID,
			Cashier:   bill.Cashier.UUID,
			Patient:   bill.PatientUUID,
			Status:    bill.ServerStatus,
			LineItems: lineItems,
			Payments:  paymentRequests(bill.Payments),
		},
		BillAdjusted:     bill.UUID,
		AdjustmentReason: adjustmentReason,
	}
	return payload, nil
}

// BuildDeletePaymentPayload builds the full bill replacement payload that
// voids one payment. The targeted payment is marked voided with the supplied
// reason, a fresh dateChanged and, when known, the voiding actor; every other
// payment keeps its original voided state and creation date. Line items are
// reproduced without their status so the server keeps its own values.
func BuildDeletePaymentPayload(bill models.ComputedBill, payment models.Payment, voidReason, actorUUID string) (*models.DeletePaymentRequest, error) {
	if payment.UUID == "" || len(bill.Payments) == 0 {
		return nil, fmt.Errorf("%w: payment and bill with payments are required", ErrInvalidInput)
	}

	payments := make([]models.PaymentRequest, 0, len(bill.Payments))
	for _, p := range bill.Payments {
		req := models.PaymentRequest{
			Amount:          p.Amount,
			AmountTendered:  p.AmountTendered,
			Attributes:      []models.AttributeRequest{},
			InstanceType:    p.InstanceType.UUID,
			Voided:          p.Voided,
			ResourceVersion: p.ResourceVersion,
		}
		if p.UUID == payment.UUID {
			req.Voided = true
			req.VoidReason = voidReason
			req.DateChanged = time.Now().UTC().Format(time.RFC3339)
			if actorUUID != "" {
				req.VoidedBy = &models.ActorRef{UUID: actorUUID}
			}
		} else if p.DateCreated != "" {
			req.DateCreated = p.DateCreated
		}
		payments = append(payments, req)
	}

	lineItems := make([]models.LineItemRequest, 0, len(bill.LineItems))
	for _, li := range bill.LineItems {
		req := lineItemRequest(li, true)
		req.PaymentStatus = ""
		lineItems = append(lineItems, req)
	}

	return &models.DeletePaymentRequest{
		BillUpdateRequest: models.BillUpdateRequest{
			CashPoint: bill.CashPointUUID,
			Cashier:   bill.Cashier.UUID,
			Patient:   bill.PatientUUID,
			LineItems: lineItems,
			Payments:  payments,
		},
	}, nil
}

// BuildRecordPaymentPayload builds the full bill replacement payload that
// appends new payment rows. Existing payments and line items are reproduced
// unchanged; rows must already have passed ValidatePayments.
func BuildRecordPaymentPayload(bill models.ComputedBill, rows []PaymentRow) (*models.RecordPaymentRequest, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: at least one payment row is required", ErrInvalidInput)
	}
	if len(bill.LineItems) == 0 {
		return nil, fmt.Errorf("%w: bill has no line items", ErrInvalidInput)
	}

	payments := paymentRequests(bill.Payments)
	for _, row := range rows {
		req := models.PaymentRequest{
			Amount:         row.Amount,
			AmountTendered: row.Amount,
			Attributes:     []models.AttributeRequest{},
			InstanceType:   row.ModeUUID,
		}
		if row.ReferenceCode != "" && row.ReferenceAttributeTypeUUID != "" {
			req.Attributes = append(req.Attributes, models.AttributeRequest{
				AttributeType: row.ReferenceAttributeTypeUUID,
				Value:         row.ReferenceCode,
			})
		}
		payments = append(payments, req)
	}

	lineItems := make([]models.LineItemRequest, 0, len(bill.LineItems))
	for _, li := range bill.LineItems {
		lineItems = append(lineItems, lineItemRequest(li, true))
	}

	return &models.RecordPaymentRequest{
		BillUpdateRequest: models.BillUpdateRequest{
			CashPoint: bill.CashPointUUID,
			Cashier:   bill.Cashier.UUID,
			Patient:   bill.PatientUUID,
			Status:    bill.ServerStatus,
			LineItems: lineItems,
			Payments:  payments,
		},
	}, nil
}

// lineItemRequest reproduces a fetched line item in request shape. Existing
// discounts are normalized to the replace-only request fields; a missing
// baseAmount falls back to the line's own subtotal.
func lineItemRequest(li models.LineItem, withDiscounts bool) models.LineItemRequest {
	req := models.LineItemRequest{
		UUID:          li.UUID,
		Item:          li.Item,
		Quantity:      li.Quantity,
		Price:         li.Price,
		PriceName:     li.PriceName,
		PriceUUID:     li.PriceUUID,
		LineItemOrder: li.LineItemOrder,
		PaymentStatus: li.PaymentStatus,
	}
	if withDiscounts && len(li.Discounts) > 0 {
		req.Discounts = make([]models.DiscountRequest, 0, len(li.Discounts))
		for _, d := range li.Discounts {
			dr := models.DiscountRequest{
				Amount:      d.Amount,
				BaseAmount:  d.BaseAmount,
				Rate:        d.Rate,
				Description: d.Description,
				Sponsor:     d.Sponsor,
			}
			if dr.BaseAmount == 0 {
				dr.BaseAmount = li.Subtotal()
			}
			req.Discounts = append(req.Discounts, dr)
		}
	}
	return req
}

func paymentRequests(payments []models.Payment) []models.PaymentRequest {
	reqs := make([]models.PaymentRequest, 0, len(payments))
	for _, p := range payments {
		attrs := make([]models.AttributeRequest, 0, len(p.Attributes))
		for _, a := range p.Attributes {
			attrs = append(attrs, models.AttributeRequest{
				AttributeType: a.AttributeType.UUID,
				Value:         a.Value,
			})
		}
		reqs = append(reqs, models.PaymentRequest{
			DateCreated:     p.DateCreated,
			Voided:          p.Voided,
			ResourceVersion: p.ResourceVersion,
			Amount:          p.Amount,
			AmountTendered:  p.AmountTendered,
			Attributes:      attrs,
			InstanceType:    p.InstanceType.UUID,
		})
	}
	return reqs
}

func containsLineItem(items []models.LineItem, uuid string) bool {
	for _, li := range items {
		if li.UUID == uuid {
			return true
		}
	}
	return false
}
