package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"medbill/internal/billing"
	"medbill/internal/common"
	"medbill/internal/services"
)

// PaymentHandlers handles HTTP requests for payments and payment modes
type PaymentHandlers struct {
	paymentService services.PaymentServiceInterface
}

// NewPaymentHandlers creates a new payment handlers instance
func NewPaymentHandlers(paymentService services.PaymentServiceInterface) *PaymentHandlers {
	return &PaymentHandlers{paymentService: paymentService}
}

type paymentRowRequest struct {
	Method        string  `json:"method"`
	ModeName      string  `json:"modeName"`
	Amount        float64 `json:"amount"`
	ReferenceCode string  `json:"referenceCode"`
}

type recordPaymentRequest struct {
	LineItems []string            `json:"lineItems"`
	Payments  []paymentRowRequest `json:"payments"`
}

// RecordPayment handles POST /bills/:uuid/payments
func (h *PaymentHandlers) RecordPayment(c echo.Context) error {
	ctx := c.Request().Context()

	billUUID, err := common.ValidateUUID(c.Param("uuid"), "bill uuid")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req recordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if len(req.Payments) == 0 {
		return common.SendValidationError(c, "payments", "At least one payment entry is required")
	}

	rows := make([]billing.PaymentRow, 0, len(req.Payments))
	for _, p := range req.Payments {
		rows = append(rows, billing.PaymentRow{
			ModeUUID:      p.Method,
			ModeName:      p.ModeName,
			Amount:        p.Amount,
			ReferenceCode: p.ReferenceCode,
		})
	}

	result, err := h.paymentService.RecordPayment(ctx, billUUID.String(), req.LineItems, rows)
	if err != nil {
		return sendBillingError(c, err)
	}
	if result != nil && !result.OK() {
		return sendValidationResult(c, result)
	}

	resp := map[string]interface{}{
		"message": "Bill payment processing has been successful",
	}
	if result != nil && len(result.Violations) > 0 {
		// warnings only, the payment still went through
		resp["warnings"] = result.Violations
	}
	return c.JSON(http.StatusOK, resp)
}

type deletePaymentRequest struct {
	Reason   string `json:"reason"`
	VoidedBy string `json:"voidedBy"`
}

// DeletePayment handles DELETE /bills/:uuid/payments/:paymentUuid
func (h *PaymentHandlers) DeletePayment(c echo.Context) error {
	ctx := c.Request().Context()

	billUUID, err := common.ValidateUUID(c.Param("uuid"), "bill uuid")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	paymentUUID, err := common.ValidateUUID(c.Param("paymentUuid"), "payment uuid")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req deletePaymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Reason == "" {
		return common.SendValidationError(c, "reason", "Void reason is required")
	}

	if err := h.paymentService.DeletePayment(ctx, billUUID.String(), paymentUUID.String(), req.Reason, req.VoidedBy); err != nil {
		return sendBillingError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Payment deleted successfully",
	})
}

// ListPaymentModes handles GET /payment-modes
func (h *PaymentHandlers) ListPaymentModes(c echo.Context) error {
	ctx := c.Request().Context()

	includeExcluded := c.QueryParam("includeExcluded") == "true"
	modes, err := h.paymentService.ListPaymentModes(ctx, includeExcluded)
	if err != nil {
		return sendBillingError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"results": modes,
	})
}

// sendValidationResult reports a failed payment validation. Blocking rule
// failures use 422 so callers can distinguish them from per-field mistakes.
func sendValidationResult(c echo.Context, result *billing.ValidationResult) error {
	for _, v := range result.Violations {
		if v.Kind == billing.ViolationBlocking {
			return common.SendBlockingNotice(c, "Payment validation failed", result.Violations, result.AmountDue)
		}
	}
	resp := common.CreateErrorResponse("VALIDATION_ERROR", "Payment validation failed", nil)
	resp.Error.Violations = result.Violations
	resp.Error.AmountDue = &result.AmountDue
	return c.JSON(http.StatusBadRequest, resp)
}
