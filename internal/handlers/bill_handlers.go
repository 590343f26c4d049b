package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"medbill/internal/billing"
	"medbill/internal/client"
	"medbill/internal/common"
	"medbill/internal/models"
	"medbill/internal/services"
)

// BillHandlers handles HTTP requests for bills
type BillHandlers struct {
	billService       services.BillServiceInterface
	adjustmentService services.AdjustmentServiceInterface
}

// NewBillHandlers creates a new bill handlers instance
func NewBillHandlers(billService services.BillServiceInterface, adjustmentService services.AdjustmentServiceInterface) *BillHandlers {
	return &BillHandlers{
		billService:       billService,
		adjustmentService: adjustmentService,
	}
}

// ListBills handles GET /bills
func (h *BillHandlers) ListBills(c echo.Context) error {
	ctx := c.Request().Context()

	query := services.BillListQuery{
		PatientUUID: c.QueryParam("patientUuid"),
		Status:      models.PaymentStatus(c.QueryParam("status")),
	}

	if startParam := c.QueryParam("startDate"); startParam != "" {
		if err := common.ValidateDateFormat(startParam, "startDate"); err != nil {
			return common.SendValidationError(c, "startDate", err.Error())
		}
		query.StartDate, _ = time.Parse("2006-01-02", startParam)
	}
	if endParam := c.QueryParam("endDate"); endParam != "" {
		if err := common.ValidateDateFormat(endParam, "endDate"); err != nil {
			return common.SendValidationError(c, "endDate", err.Error())
		}
		endDate, _ := time.Parse("2006-01-02", endParam)
		query.EndDate = endDate.Add(24*time.Hour - time.Nanosecond)
	}
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
			query.Page = p
		}
	}
	if sizeParam := c.QueryParam("pageSize"); sizeParam != "" {
		if s, err := strconv.Atoi(sizeParam); err == nil && s > 0 {
			query.PageSize = s
		}
	}

	bills, totalCount, err := h.billService.ListBills(ctx, query)
	if err != nil {
		return sendBillingError(c, err)
	}

	resp := map[string]interface{}{
		"bills":    bills,
		"page":     query.Page,
		"pageSize": query.PageSize,
	}
	if totalCount != nil {
		resp["totalCount"] = *totalCount
	}
	return c.JSON(http.StatusOK, resp)
}

// GetBill handles GET /bills/:uuid
func (h *BillHandlers) GetBill(c echo.Context) error {
	ctx := c.Request().Context()

	billUUID, err := common.ValidateUUID(c.Param("uuid"), "bill uuid")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	bill, err := h.billService.GetBill(ctx, billUUID.String())
	if err != nil {
		return sendBillingError(c, err)
	}
	return c.JSON(http.StatusOK, bill)
}

// CreateBill handles POST /bills
func (h *BillHandlers) CreateBill(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateBillRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	bill, err := h.billService.CreateBill(ctx, &req)
	if err != nil {
		return sendBillingError(c, err)
	}
	return c.JSON(http.StatusCreated, bill)
}

// editLineItemRequest is the request body for a line item adjustment. The
// numeric fields arrive as form text and are parsed leniently downstream.
type editLineItemRequest struct {
	Price               string `json:"price"`
	Quantity            string `json:"quantity"`
	DiscountValue       string `json:"discountValue"`
	DiscountMethod      string `json:"discountMethod"`
	DiscountDescription string `json:"discountDescription"`
	Sponsor             string `json:"sponsor"`
	AdjustmentReason    string `json:"adjustmentReason"`
}

// EditLineItem handles PUT /bills/:uuid/line-items/:lineItemUuid
func (h *BillHandlers) EditLineItem(c echo.Context) error {
	ctx := c.Request().Context()

	billUUID, err := common.ValidateUUID(c.Param("uuid"), "bill uuid")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	lineItemUUID, err := common.ValidateUUID(c.Param("lineItemUuid"), "line item uuid")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req editLineItemRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.AdjustmentReason == "" {
		return common.SendValidationError(c, "adjustmentReason", "Adjustment reason is required")
	}

	form := billing.EditLineItemForm{
		Price:               req.Price,
		Quantity:            req.Quantity,
		DiscountValue:       req.DiscountValue,
		DiscountMethod:      billing.DiscountMethod(req.DiscountMethod),
		DiscountDescription: req.DiscountDescription,
		SponsorUUID:         req.Sponsor,
	}

	if err := h.adjustmentService.EditLineItem(ctx, billUUID.String(), lineItemUUID.String(), form, req.AdjustmentReason); err != nil {
		return sendBillingError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Bill update was successful",
	})
}

// GetLineItemDiscount handles GET /bills/:uuid/line-items/:lineItemUuid/discount
func (h *BillHandlers) GetLineItemDiscount(c echo.Context) error {
	ctx := c.Request().Context()

	billUUID, err := common.ValidateUUID(c.Param("uuid"), "bill uuid")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	lineItemUUID, err := common.ValidateUUID(c.Param("lineItemUuid"), "line item uuid")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	form, err := h.adjustmentService.LineItemDiscountForm(ctx, billUUID.String(), lineItemUUID.String())
	if err != nil {
		return sendBillingError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"method": form.Method,
		"value":  form.Value,
	})
}

// SearchBillableServices handles GET /billable-services
func (h *BillHandlers) SearchBillableServices(c echo.Context) error {
	ctx := c.Request().Context()

	results, err := h.billService.SearchBillableServices(ctx, c.QueryParam("q"))
	if err != nil {
		return sendBillingError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"results": results,
	})
}

// sendBillingError maps service failures onto the response taxonomy: bad
// builder input is the caller's fault, a remote 404 means the resource does
// not exist, any other rejected submission is the remote store's answer,
// anything else is internal.
func sendBillingError(c echo.Context, err error) error {
	var submissionErr *client.SubmissionError
	switch {
	case errors.Is(err, billing.ErrInvalidInput):
		return common.SendClientError(c, err.Error())
	case errors.As(err, &submissionErr):
		if submissionErr.StatusCode == http.StatusNotFound {
			return common.SendNotFoundError(c, "Bill")
		}
		return common.SendUpstreamError(c, err.Error())
	default:
		return common.SendServerError(c, err.Error())
	}
}
