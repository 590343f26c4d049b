package billing

import (
	"math"
	"strings"
	"time"

	"medbill/internal/models"
)

// referenceNumberDescription marks the payment attribute type that carries an
// external transaction reference (e.g. a mobile-money code).
const referenceNumberDescription = "Reference Number"

// dateCreatedLayouts are the timestamp formats the remote cashier resource is
// known to emit.
var dateCreatedLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

const displayDateLayout = "02 Jan 2006, 15:04"

// MapBill turns a raw invoice into a computed bill summary. It is total over
// well-formed invoices: voided line items are dropped before any aggregate is
// computed, missing collections are treated as empty, and an empty line-item
// set yields zero totals with a PENDING status.
func MapBill(inv models.Invoice) models.ComputedBill {
	lineItems := nonVoidedLineItems(inv.LineItems)
	identifier, patientName := splitPatientDisplay(inv.Patient.Display)

	bill := models.ComputedBill{
		UUID:           inv.UUID,
		ID:             inv.ID,
		ReceiptNumber:  inv.ReceiptNumber,
		PatientUUID:    inv.Patient.UUID,
		PatientName:    patientName,
		Identifier:     identifier,
		CashPointUUID:  inv.CashPoint.UUID,
		CashPointName:  inv.CashPoint.Name,
		CashPointSite:  inv.CashPoint.Location,
		Cashier:        inv.Cashier,
		DateCreated:    formatDisplayDate(inv.DateCreated),
		DateCreatedRaw: inv.DateCreated,
		Status:         DeriveBillStatus(lineItems),
		ServerStatus:   inv.Status,
		LineItems:      lineItems,
		Payments:       inv.Payments,
		BillingService: joinServiceNames(lineItems),
		ReferenceCodes: referenceCodes(inv.Payments),

		TotalPayments:       inv.TotalPayments,
		TotalDeposits:       inv.TotalDeposits,
		TotalExempted:       inv.TotalExempted,
		TotalWaived:         inv.TotalWaivers,
		TotalActualPayments: inv.TotalActualPayments,
		TotalTax:            inv.TotalTax,
		LineItemDiscounts:   inv.TotalDiscount,
		AdjustmentReason:    inv.AdjustmentReason,
		Closed:              inv.Closed,
	}

	for _, li := range lineItems {
		// The line item's own price and quantity are authoritative for the
		// bill total; a discount's stored baseAmount is informational only.
		bill.TotalAmount += li.AmountDue()
		bill.TotalAmountWithoutTaxAndDiscount += li.Subtotal()
	}
	for _, p := range inv.Payments {
		bill.TenderedAmount += p.AmountTendered
	}
	bill.TotalDiscounts = bill.LineItemDiscounts + bill.TotalWaived

	// A reported balance is honored even at zero, e.g. when deposits cover
	// the bill; the shortfall fallback applies only when the server omitted
	// the field.
	if inv.Balance != nil {
		bill.Balance = *inv.Balance
	} else {
		bill.Balance = math.Max(0, bill.TotalAmount-bill.TotalActualPayments)
	}

	return bill
}

// DeriveBillStatus reports PAID only when the non-voided line-item set is
// non-empty and every item is PAID; everything else is PENDING. Other line
// item statuses (EXEMPTED, CANCELLED, ADJUSTED, CREDITED, POSTED) do not by
// themselves flip the bill status.
func DeriveBillStatus(lineItems []models.LineItem) models.PaymentStatus {
	if len(lineItems) == 0 {
		return models.StatusPending
	}
	for _, li := range lineItems {
		if li.PaymentStatus != models.StatusPaid {
			return models.StatusPending
		}
	}
	return models.StatusPaid
}

func nonVoidedLineItems(items []models.LineItem) []models.LineItem {
	kept := make([]models.LineItem, 0, len(items))
	for _, li := range items {
		if !li.Voided {
			kept = append(kept, li)
		}
	}
	return kept
}

// referenceCodes joins "<paymentModeName>: <referenceValue>" pairs from
// payment attributes whose type is a reference number.
func referenceCodes(payments []models.Payment) string {
	var codes []string
	for _, p := range payments {
		for _, attr := range p.Attributes {
			if attr.AttributeType.Description == referenceNumberDescription {
				codes = append(codes, p.InstanceType.Name+": "+attr.Value)
			}
		}
	}
	return strings.Join(codes, ", ")
}

func joinServiceNames(lineItems []models.LineItem) string {
	names := make([]string, 0, len(lineItems))
	for _, li := range lineItems {
		switch {
		case li.Item != "":
			names = append(names, li.Item)
		case li.BillableService != "":
			names = append(names, li.BillableService)
		default:
			names = append(names, "--")
		}
	}
	return strings.Join(names, "  ")
}

// splitPatientDisplay separates the "<identifier>-<name>" form the remote
// service uses for patient display values.
func splitPatientDisplay(display string) (identifier, name string) {
	parts := strings.SplitN(display, "-", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return "", strings.TrimSpace(display)
}

func formatDisplayDate(raw string) string {
	if raw == "" {
		return "--"
	}
	for _, layout := range dateCreatedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(displayDateLayout)
		}
	}
	return "--"
}
