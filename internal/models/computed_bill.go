package models

// ComputedBill is the read-only summary derived from a raw Invoice. It is
// rebuilt on every fetch and never mutated in place; all state changes go
// through a full replacement payload submitted to the remote store.
type ComputedBill struct {
	UUID          string   `json:"uuid"`
	ID            int      `json:"id,omitempty"`
	ReceiptNumber string   `json:"receiptNumber,omitempty"`
	PatientUUID   string   `json:"patientUuid"`
	PatientName   string   `json:"patientName,omitempty"`
	Identifier    string   `json:"identifier,omitempty"`
	CashPointUUID string   `json:"cashPointUuid"`
	CashPointName string   `json:"cashPointName,omitempty"`
	CashPointSite string   `json:"cashPointLocation,omitempty"`
	Cashier       Provider `json:"cashier"`

	// DateCreated is display-formatted; DateCreatedRaw keeps the server value.
	DateCreated    string `json:"dateCreated"`
	DateCreatedRaw string `json:"dateCreatedUnformatted,omitempty"`

	Status         PaymentStatus `json:"status"`
	ServerStatus   PaymentStatus `json:"-"`
	LineItems      []LineItem    `json:"lineItems"`
	Payments       []Payment     `json:"payments"`
	BillingService string        `json:"billingService,omitempty"`

	TotalAmount                      float64 `json:"totalAmount"`
	TotalAmountWithoutTaxAndDiscount float64 `json:"totalAmountWithoutTaxAndDiscount"`
	TenderedAmount                   float64 `json:"tenderedAmount"`
	ReferenceCodes                   string  `json:"referenceCodes,omitempty"`

	Balance             float64 `json:"balance"`
	TotalPayments       float64 `json:"totalPayments"`
	TotalDeposits       float64 `json:"totalDeposits"`
	TotalExempted       float64 `json:"totalExempted"`
	TotalWaived         float64 `json:"totalWaived"`
	TotalActualPayments float64 `json:"totalActualPayments"`
	TotalTax            float64 `json:"totalTax"`
	LineItemDiscounts   float64 `json:"billLineItemDiscounts"`
	TotalDiscounts      float64 `json:"totalDiscounts"`

	AdjustmentReason string `json:"adjustmentReason,omitempty"`
	Closed           bool   `json:"closed,omitempty"`
}

// BillMetrics holds the dashboard counters aggregated over a set of
// computed bills.
type BillMetrics struct {
	Collection      float64 `json:"collection"`
	Pending         float64 `json:"pending"`
	Exempted        float64 `json:"exempted"`
	Waived          float64 `json:"waived"`
	TaxCollected    float64 `json:"taxCollected"`
	CumulativeTotal float64 `json:"cumulativeTotal"`
	BillCount       int     `json:"billCount"`
}
