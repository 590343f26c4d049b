package billing

import (
	"math"
	"strings"

	"medbill/internal/models"
)

// DiscountMethod selects how a discount value is interpreted.
type DiscountMethod string

const (
	DiscountPercentage DiscountMethod = "percentage"
	DiscountFixed      DiscountMethod = "fixed"
)

// DiscountForm is an existing discount read back into editable form values.
type DiscountForm struct {
	Method      DiscountMethod
	Value       float64
	Description string
	Sponsor     string
}

// ComputeDiscounts computes the discount entries for a line item from a
// chosen method and user-entered value. Non-numeric or non-positive input
// yields no discount rather than an error. For fixed discounts against a zero
// base the rate is omitted.
func ComputeDiscounts(method DiscountMethod, rawValue string, baseAmount float64, description, sponsor string) []models.DiscountRequest {
	value := ParseAmountOr(rawValue, 0)
	if value <= 0 {
		return nil
	}
	if method == "" {
		method = DiscountPercentage
	}

	var amount float64
	var rate *float64
	switch method {
	case DiscountFixed:
		amount = value
		if baseAmount != 0 {
			r := amount / baseAmount
			rate = &r
		}
	default:
		amount = baseAmount * value / 100
		r := value / 100
		rate = &r
	}

	discount := models.DiscountRequest{
		Amount:     amount,
		BaseAmount: baseAmount,
		Rate:       rate,
	}
	if d := strings.TrimSpace(description); d != "" {
		discount.Description = d
	}
	if sponsor != "" {
		discount.Sponsor = sponsor
	}
	return []models.DiscountRequest{discount}
}

// ReadDiscountForm reconstructs method and value from a line item's first
// discount for editing. A discount with a positive rate reads back as a
// percentage with value = round(rate * 100); anything else reads back as a
// fixed amount. The round trip is lossy for percentages that were not whole
// numbers.
func ReadDiscountForm(discounts []models.Discount) DiscountForm {
	if len(discounts) == 0 {
		return DiscountForm{Method: DiscountPercentage}
	}
	first := discounts[0]
	form := DiscountForm{
		Description: first.Description,
		Sponsor:     first.Sponsor,
	}
	if first.Rate != nil && *first.Rate > 0 {
		form.Method = DiscountPercentage
		form.Value = math.Round(*first.Rate * 100)
		return form
	}
	form.Method = DiscountFixed
	form.Value = first.Amount
	return form
}
