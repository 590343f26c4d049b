package models

// BillUpdateRequest is the common base shape of every bill mutation payload.
// The remote store has no partial-update semantics for nested collections, so
// each request carries the full line-item and payment lists; records not
// targeted by the operation must be reproduced with the same identifiers and
// monetary fields they were fetched with.
//
// Status is omitted when empty. Submitting a locally derived status over a
// differing authoritative one triggers server-side status recalculation, so
// builders only set it when the source bill carried one.
type BillUpdateRequest struct {
	CashPoint string            `json:"cashPoint"`
	Cashier   string            `json:"cashier"`
	Patient   string            `json:"patient"`
	Status    PaymentStatus     `json:"status,omitempty"`
	LineItems []LineItemRequest `json:"lineItems"`
	Payments  []PaymentRequest  `json:"payments"`
}

// EditLineItemRequest adjusts one line item on an existing bill.
type EditLineItemRequest struct {
	BillUpdateRequest
	BillAdjusted     string `json:"billAdjusted"`
	AdjustmentReason string `json:"adjustmentReason"`
}

// DeletePaymentRequest voids one payment on an existing bill.
type DeletePaymentRequest struct {
	BillUpdateRequest
}

// RecordPaymentRequest appends new payment rows to an existing bill.
type RecordPaymentRequest struct {
	BillUpdateRequest
}

// LineItemRequest is the request shape of a line item. PaymentStatus is left
// empty in delete-payment payloads so the server keeps its own value.
type LineItemRequest struct {
	UUID            string            `json:"uuid,omitempty"`
	Item            string            `json:"item,omitempty"`
	BillableService string            `json:"billableService,omitempty"`
	Quantity        int               `json:"quantity"`
	Price           float64           `json:"price"`
	PriceName       string            `json:"priceName,omitempty"`
	PriceUUID       string            `json:"priceUuid,omitempty"`
	LineItemOrder   int               `json:"lineItemOrder"`
	PaymentStatus   PaymentStatus     `json:"paymentStatus,omitempty"`
	Discounts       []DiscountRequest `json:"discounts,omitempty"`
}

// DiscountRequest is the request shape of a discount. Discounts are
// replace-only at the remote store, so no server-assigned uuid is ever sent.
type DiscountRequest struct {
	Amount      float64  `json:"amount"`
	BaseAmount  float64  `json:"baseAmount"`
	Rate        *float64 `json:"rate,omitempty"`
	Description string   `json:"description,omitempty"`
	Sponsor     string   `json:"sponsor,omitempty"`
}

// PaymentRequest is the request shape of a payment. Attributes are flattened
// to attribute-type uuid plus value.
type PaymentRequest struct {
	DateCreated     string             `json:"dateCreated,omitempty"`
	Voided          bool               `json:"voided"`
	ResourceVersion string             `json:"resourceVersion,omitempty"`
	Amount          float64            `json:"amount"`
	AmountTendered  float64            `json:"amountTendered"`
	Attributes      []AttributeRequest `json:"attributes"`
	InstanceType    string             `json:"instanceType"`
	VoidReason      string             `json:"voidReason,omitempty"`
	VoidedBy        *ActorRef          `json:"voidedBy,omitempty"`
	DateChanged     string             `json:"dateChanged,omitempty"`
}

// AttributeRequest is the flattened request shape of a payment attribute.
type AttributeRequest struct {
	AttributeType string `json:"attributeType"`
	Value         string `json:"value"`
}

// ActorRef references the user performing a void.
type ActorRef struct {
	UUID string `json:"uuid"`
}

// CreateBillRequest opens a new bill for a patient.
type CreateBillRequest struct {
	CashPoint     string            `json:"cashPoint"`
	Cashier       string            `json:"cashier"`
	Patient       string            `json:"patient"`
	Status        PaymentStatus     `json:"status"`
	ReceiptNumber string            `json:"receiptNumber,omitempty"`
	LineItems     []LineItemRequest `json:"lineItems"`
	Payments      []PaymentRequest  `json:"payments"`
}
