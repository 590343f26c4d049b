package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"

	"medbill/internal/common"
	"medbill/internal/models"
	"medbill/internal/services"
)

// ReceiptHandlers renders printable bill receipts
type ReceiptHandlers struct {
	billService  services.BillServiceInterface
	facilityName string
	currency     string
}

// NewReceiptHandlers creates a new receipt handlers instance
func NewReceiptHandlers(billService services.BillServiceInterface, facilityName, currency string) *ReceiptHandlers {
	return &ReceiptHandlers{
		billService:  billService,
		facilityName: facilityName,
		currency:     currency,
	}
}

// GetReceipt handles GET /bills/:uuid/receipt
func (h *ReceiptHandlers) GetReceipt(c echo.Context) error {
	ctx := c.Request().Context()

	billUUID, err := common.ValidateUUID(c.Param("uuid"), "bill uuid")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	bill, err := h.billService.GetBill(ctx, billUUID.String())
	if err != nil {
		return sendBillingError(c, err)
	}

	pdfBytes, err := h.generateReceiptPDF(bill)
	if err != nil {
		return common.SendServerError(c, fmt.Sprintf("Failed to generate receipt: %v", err))
	}
	if len(pdfBytes) == 0 {
		return common.SendServerError(c, "Generated receipt is empty")
	}

	c.Response().Header().Set("Content-Disposition",
		fmt.Sprintf(`inline; filename="receipt-%s.pdf"`, bill.ReceiptNumber))
	return c.Blob(http.StatusOK, "application/pdf", pdfBytes)
}

// generateReceiptPDF creates a printable receipt for a bill
func (h *ReceiptHandlers) generateReceiptPDF(bill *models.ComputedBill) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	// Facility header
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, h.facilityName)
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, "PAYMENT RECEIPT")
	pdf.Ln(12)

	// Bill details
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Receipt Number: %s", bill.ReceiptNumber))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", bill.DateCreated))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Patient: %s", bill.PatientName))
	pdf.Ln(6)
	if bill.Identifier != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Identifier: %s", bill.Identifier))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Cash Point: %s", bill.CashPointName))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Cashier: %s", bill.Cashier.Display))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", bill.Status))
	pdf.Ln(10)

	// Line items table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)

	headers := []string{"Item", "Qty", "Price", "Amount"}
	colWidths := []float64{80, 20, 30, 40}
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(255, 255, 255)
	for _, li := range bill.LineItems {
		if li.Voided {
			continue
		}
		name := li.Item
		if name == "" {
			name = li.BillableService
		}
		if name == "" {
			name = li.Display
		}
		pdf.CellFormat(colWidths[0], 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%d", li.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%.2f", li.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("%.2f", li.AmountDue()), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}
	pdf.Ln(5)

	// Totals
	pdf.SetFont("Arial", "", 9)
	if bill.TotalDiscounts > 0 {
		pdf.CellFormat(130, 5, "Discounts & Waivers:", "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 5, fmt.Sprintf("%s %.2f", h.currency, bill.TotalDiscounts), "", 0, "R", false, 0, "")
		pdf.Ln(5)
	}
	pdf.CellFormat(130, 5, "Amount Paid:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 5, fmt.Sprintf("%s %.2f", h.currency, bill.TenderedAmount), "", 0, "R", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(130, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%s %.2f", h.currency, bill.TotalAmount), "", 0, "R", false, 0, "")
	pdf.Ln(10)

	// Payment references
	if bill.ReferenceCodes != "" {
		pdf.SetFont("Arial", "B", 9)
		pdf.Cell(0, 6, "Payment References:")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		pdf.Cell(0, 5, bill.ReferenceCodes)
		pdf.Ln(8)
	}

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Cell(0, 5, "This is a computer generated receipt")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
