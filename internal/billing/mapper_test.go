package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"medbill/internal/models"
)

func f64(v float64) *float64 { return &v }

func sampleInvoice() models.Invoice {
	return models.Invoice{
		UUID:          "7f1d1a52-9f7a-4a8e-b1d0-0f6c2af1a001",
		ReceiptNumber: "20260830-004",
		Patient: models.Patient{
			UUID:    "b2c3d4e5-0000-4a8e-b1d0-0f6c2af1a002",
			Display: "MRN10231 - Jane Achieng",
		},
		CashPoint: models.CashPoint{
			UUID: "c3d4e5f6-0000-4a8e-b1d0-0f6c2af1a003",
			Name: "OPD Till",
		},
		Cashier:     models.Provider{UUID: "d4e5f6a7-0000-4a8e-b1d0-0f6c2af1a004", Display: "John Otieno"},
		DateCreated: "2026-08-30T09:15:00.000+0300",
		Status:      models.StatusPending,
		LineItems: []models.LineItem{
			{
				UUID:          "li-1",
				Item:          "Consultation",
				Quantity:      1,
				Price:         500,
				PaymentStatus: models.StatusPaid,
			},
			{
				UUID:          "li-2",
				Item:          "Lab Panel",
				Quantity:      2,
				Price:         250,
				PaymentStatus: models.StatusPending,
				Taxes:         []models.Tax{{Name: "VAT", Amount: 80}},
				Discounts:     []models.Discount{{Amount: 100, BaseAmount: 500}},
			},
			{
				UUID:     "li-3",
				Item:     "Cancelled Item",
				Quantity: 1,
				Price:    999,
				Voided:   true,
			},
		},
		Payments: []models.Payment{
			{
				UUID:           "pay-1",
				InstanceType:   models.PaymentModeRef{UUID: "mode-mpesa", Name: "Mobile Money"},
				Amount:         300,
				AmountTendered: 300,
				Attributes: []models.Attribute{
					{
						Value: "QX12AB34CD",
						AttributeType: models.AttributeType{
							UUID:        "attr-ref",
							Description: "Reference Number",
						},
					},
				},
			},
			{
				UUID:           "pay-2",
				InstanceType:   models.PaymentModeRef{UUID: "mode-cash", Name: "Cash"},
				Amount:         200,
				AmountTendered: 200,
				DateCreated:    "2026-08-30T09:20:00.000+0300",
			},
		},
		Balance:             f64(480),
		TotalActualPayments: 500,
		TotalTax:            80,
		TotalDiscount:       100,
		TotalWaivers:        50,
	}
}

func TestMapBill_Totals(t *testing.T) {
	bill := MapBill(sampleInvoice())

	// 500 + (2*250 + 80 - 100); the voided item contributes nothing.
	assert.InDelta(t, 980.0, bill.TotalAmount, 1e-9)
	assert.InDelta(t, 1000.0, bill.TotalAmountWithoutTaxAndDiscount, 1e-9)
	assert.InDelta(t, 500.0, bill.TenderedAmount, 1e-9)
	assert.InDelta(t, 150.0, bill.TotalDiscounts, 1e-9) // line item discounts + waivers
	assert.Len(t, bill.LineItems, 2)
}

func TestMapBill_PatientAndDates(t *testing.T) {
	bill := MapBill(sampleInvoice())

	assert.Equal(t, "MRN10231", bill.Identifier)
	assert.Equal(t, "Jane Achieng", bill.PatientName)
	assert.Equal(t, "30 Aug 2026, 09:15", bill.DateCreated)
	assert.Equal(t, "2026-08-30T09:15:00.000+0300", bill.DateCreatedRaw)
}

func TestMapBill_BalanceResolution(t *testing.T) {
	inv := sampleInvoice()
	bill := MapBill(inv)
	assert.InDelta(t, 480.0, bill.Balance, 1e-9)

	// A reported zero balance survives, it is not a missing value.
	inv.Balance = f64(0)
	bill = MapBill(inv)
	assert.Zero(t, bill.Balance)

	// Absent balance falls back to the computed shortfall, floored at zero.
	inv.Balance = nil
	bill = MapBill(inv)
	assert.InDelta(t, 480.0, bill.Balance, 1e-9) // 980 total - 500 paid

	inv.TotalActualPayments = 2000
	bill = MapBill(inv)
	assert.Zero(t, bill.Balance)
}

func TestMapBill_ReferenceCodes(t *testing.T) {
	bill := MapBill(sampleInvoice())
	assert.Equal(t, "Mobile Money: QX12AB34CD", bill.ReferenceCodes)
}

func TestMapBill_ServerStatusPreserved(t *testing.T) {
	inv := sampleInvoice()
	bill := MapBill(inv)

	assert.Equal(t, models.StatusPending, bill.Status)
	assert.Equal(t, inv.Status, bill.ServerStatus)

	inv.Status = ""
	bill = MapBill(inv)
	assert.Equal(t, models.PaymentStatus(""), bill.ServerStatus)
}

func TestMapBill_Idempotent(t *testing.T) {
	inv := sampleInvoice()
	first := MapBill(inv)
	second := MapBill(inv)
	assert.Equal(t, first, second)
}

func TestMapBill_EmptyInvoice(t *testing.T) {
	bill := MapBill(models.Invoice{UUID: "empty"})

	assert.Equal(t, models.StatusPending, bill.Status)
	assert.Zero(t, bill.TotalAmount)
	assert.Empty(t, bill.LineItems)
	assert.Equal(t, "--", bill.DateCreated)
	assert.Empty(t, bill.ReferenceCodes)
}

func TestDeriveBillStatus(t *testing.T) {
	paid := models.LineItem{PaymentStatus: models.StatusPaid}
	pending := models.LineItem{PaymentStatus: models.StatusPending}
	exempted := models.LineItem{PaymentStatus: models.StatusExempted}

	assert.Equal(t, models.StatusPending, DeriveBillStatus(nil))
	assert.Equal(t, models.StatusPaid, DeriveBillStatus([]models.LineItem{paid, paid}))
	assert.Equal(t, models.StatusPending, DeriveBillStatus([]models.LineItem{paid, pending}))
	// Other statuses never promote a bill to PAID.
	assert.Equal(t, models.StatusPending, DeriveBillStatus([]models.LineItem{paid, exempted}))
}

func TestSplitPatientDisplay(t *testing.T) {
	id, name := splitPatientDisplay("MRN10231 - Jane Achieng")
	assert.Equal(t, "MRN10231", id)
	assert.Equal(t, "Jane Achieng", name)

	id, name = splitPatientDisplay("Jane Achieng")
	assert.Equal(t, "", id)
	assert.Equal(t, "Jane Achieng", name)
}

func TestFormatDisplayDate_UnknownFormat(t *testing.T) {
	assert.Equal(t, "--", formatDisplayDate("not a date"))
	assert.Equal(t, "--", formatDisplayDate(""))
}

func TestLineItemAmountDue(t *testing.T) {
	li := models.LineItem{
		Quantity:  2,
		Price:     250,
		Taxes:     []models.Tax{{Amount: 80}},
		Discounts: []models.Discount{{Amount: 100}},
	}
	assert.InDelta(t, 480.0, li.AmountDue(), 1e-9)
}
