package models

// PaymentStatus is the status enumeration shared by bills and line items.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "PENDING"
	StatusPaid      PaymentStatus = "PAID"
	StatusExempted  PaymentStatus = "EXEMPTED"
	StatusCancelled PaymentStatus = "CANCELLED"
	StatusAdjusted  PaymentStatus = "ADJUSTED"
	StatusCredited  PaymentStatus = "CREDITED"
	StatusPosted    PaymentStatus = "POSTED"
)

// Invoice is the raw bill record as returned by the remote cashier resource.
// Identifiers and timestamps are kept as the strings the server sent so that
// untouched records survive re-serialization without drift.
type Invoice struct {
	UUID             string        `json:"uuid"`
	ID               int           `json:"id,omitempty"`
	Display          string        `json:"display,omitempty"`
	ReceiptNumber    string        `json:"receiptNumber,omitempty"`
	Voided           bool          `json:"voided,omitempty"`
	VoidReason       *string       `json:"voidReason,omitempty"`
	AdjustmentReason string        `json:"adjustmentReason,omitempty"`
	Patient          Patient       `json:"patient"`
	CashPoint        CashPoint     `json:"cashPoint"`
	Cashier          Provider      `json:"cashier"`
	DateCreated      string        `json:"dateCreated"`
	Status           PaymentStatus `json:"status,omitempty"`
	LineItems        []LineItem    `json:"lineItems"`
	Payments         []Payment     `json:"payments"`

	// Server-computed aggregates. Balance is a pointer so a reported zero
	// stays distinguishable from the field being absent.
	Balance             *float64 `json:"balance,omitempty"`
	TotalPayments       float64  `json:"totalPayments,omitempty"`
	TotalDeposits       float64  `json:"totalDeposits,omitempty"`
	TotalExempted       float64  `json:"totalExempted,omitempty"`
	TotalWaivers        float64  `json:"totalWaivers,omitempty"`
	TotalActualPayments float64  `json:"totalActualPayments,omitempty"`
	TotalTax            float64  `json:"totalTax,omitempty"`
	TotalDiscount       float64  `json:"totalDiscount,omitempty"`
	Closed              bool     `json:"closed,omitempty"`

	ResourceVersion string `json:"resourceVersion,omitempty"`
}

// LineItem is one chargeable entry on a bill.
type LineItem struct {
	UUID            string        `json:"uuid"`
	Display         string        `json:"display,omitempty"`
	Item            string        `json:"item,omitempty"`
	BillableService string        `json:"billableService,omitempty"`
	Quantity        int           `json:"quantity"`
	Price           float64       `json:"price"`
	PriceName       string        `json:"priceName,omitempty"`
	PriceUUID       string        `json:"priceUuid,omitempty"`
	LineItemOrder   int           `json:"lineItemOrder"`
	PaymentStatus   PaymentStatus `json:"paymentStatus,omitempty"`
	Discounts       []Discount    `json:"discounts,omitempty"`
	Taxes           []Tax         `json:"taxes,omitempty"`
	Voided          bool          `json:"voided,omitempty"`
	VoidReason      *string       `json:"voidReason,omitempty"`
	Order           string        `json:"order,omitempty"`
	ResourceVersion string        `json:"resourceVersion,omitempty"`
}

// Subtotal is the line item's pre-tax, pre-discount contribution.
func (li LineItem) Subtotal() float64 {
	return li.Price * float64(li.Quantity)
}

// TaxTotal sums the line item's tax amounts.
func (li LineItem) TaxTotal() float64 {
	var total float64
	for _, t := range li.Taxes {
		total += t.Amount
	}
	return total
}

// DiscountTotal sums the line item's discount amounts.
func (li LineItem) DiscountTotal() float64 {
	var total float64
	for _, d := range li.Discounts {
		total += d.Amount
	}
	return total
}

// AmountDue is what the line item contributes to the bill total.
func (li LineItem) AmountDue() float64 {
	return li.Subtotal() + li.TaxTotal() - li.DiscountTotal()
}

// Discount is a reduction applied to a line item's subtotal. BaseAmount is the
// pre-discount subtotal the amount was computed against; Rate is only present
// when the discount was percentage-based.
type Discount struct {
	UUID        string   `json:"uuid,omitempty"`
	Amount      float64  `json:"amount"`
	BaseAmount  float64  `json:"baseAmount"`
	Rate        *float64 `json:"rate,omitempty"`
	Description string   `json:"description,omitempty"`
	Sponsor     string   `json:"sponsor,omitempty"`
}

// Tax is an amount added to a line item's contribution to the bill total.
type Tax struct {
	UUID   string  `json:"uuid,omitempty"`
	Name   string  `json:"name,omitempty"`
	Amount float64 `json:"amount"`
}

// CashPoint is the till a bill was created at.
type CashPoint struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name,omitempty"`
	Location string `json:"location,omitempty"`
}

// Provider references a staff member (cashier, voiding user, discount sponsor).
type Provider struct {
	UUID    string `json:"uuid"`
	Display string `json:"display,omitempty"`
}

// Patient references the billed patient. Display carries
// "<identifier>-<name>" as formatted by the remote service.
type Patient struct {
	UUID    string `json:"uuid"`
	Display string `json:"display,omitempty"`
}
