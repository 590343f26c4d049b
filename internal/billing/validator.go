package billing

import (
	"fmt"
	"math"

	"medbill/internal/models"
)

// amountTolerance absorbs float drift when comparing monetary sums.
const amountTolerance = 1e-6

// PaymentRow is one proposed payment entry.
type PaymentRow struct {
	ModeUUID                   string
	ModeName                   string
	Amount                     float64
	ReferenceCode              string
	ReferenceAttributeTypeUUID string
}

// ViolationKind separates field-level failures, which disable the offending
// row, from cross-field failures, which block submission as a whole, and
// warnings, which do neither.
type ViolationKind string

const (
	ViolationField    ViolationKind = "field"
	ViolationBlocking ViolationKind = "blocking"
	ViolationWarning  ViolationKind = "warning"
)

// Violation is one payment validation rule failure. Row is the index of the
// offending payment row, or -1 for cross-field violations.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	Row     int           `json:"row"`
	Field   string        `json:"field,omitempty"`
	Message string        `json:"message"`
}

// ValidationResult collects the violations for a proposed payment set.
type ValidationResult struct {
	Violations []Violation `json:"violations,omitempty"`

	// AmountDue is the selected unpaid line items' total amount due,
	// reported so callers can surface the expected total.
	AmountDue float64 `json:"amountDue"`
}

// OK reports whether submission may proceed; warnings do not block.
func (r ValidationResult) OK() bool {
	for _, v := range r.Violations {
		if v.Kind != ViolationWarning {
			return false
		}
	}
	return true
}

// ValidatorConfig is the configuration the validator needs, threaded in
// explicitly rather than read from ambient state.
type ValidatorConfig struct {
	// ReferenceCodeRequiredModes lists payment mode uuids that must carry a
	// non-empty reference code.
	ReferenceCodeRequiredModes map[string]bool
}

// ValidatePayments checks a proposed set of payment rows against the bill's
// outstanding balance and the selected line items' amounts due. Rules apply
// in order: each row's amount must be positive and within the balance, modes
// that require a reference code must have one, and when more than one line
// item is selected the rows must pay the selection in full. A single selected
// item may be part-paid.
func ValidatePayments(balance float64, selected []models.LineItem, rows []PaymentRow, cfg ValidatorConfig) ValidationResult {
	result := ValidationResult{AmountDue: SelectedAmountDue(selected)}

	var total float64
	for i, row := range rows {
		total += row.Amount
		if row.Amount <= 0 {
			result.Violations = append(result.Violations, Violation{
				Kind:    ViolationField,
				Row:     i,
				Field:   "amount",
				Message: "amount must be greater than zero",
			})
		} else if row.Amount > balance+amountTolerance {
			result.Violations = append(result.Violations, Violation{
				Kind:    ViolationField,
				Row:     i,
				Field:   "amount",
				Message: fmt.Sprintf("amount %.2f exceeds the outstanding balance %.2f", row.Amount, balance),
			})
		}
		if cfg.ReferenceCodeRequiredModes[row.ModeUUID] && row.ReferenceCode == "" {
			result.Violations = append(result.Violations, Violation{
				Kind:    ViolationField,
				Row:     i,
				Field:   "referenceCode",
				Message: fmt.Sprintf("payment mode %s requires a reference code", row.ModeName),
			})
		}
	}

	// Partial payment across multiple line items has no unambiguous per-item
	// allocation, so the selection must be paid in full.
	if len(selected) > 1 && len(rows) > 0 && math.Abs(total-result.AmountDue) > amountTolerance {
		result.Violations = append(result.Violations, Violation{
			Kind:    ViolationBlocking,
			Row:     -1,
			Message: fmt.Sprintf("incomplete payment: total %.2f must equal the selected items' amount due %.2f", total, result.AmountDue),
		})
	}

	if total > result.AmountDue+amountTolerance {
		result.Violations = append(result.Violations, Violation{
			Kind:    ViolationWarning,
			Row:     -1,
			Message: fmt.Sprintf("amount paid %.2f is greater than the amount due %.2f", total, result.AmountDue),
		})
	}

	return result
}

// SelectedAmountDue is the amount still owed on the selected line items,
// skipping items already paid.
func SelectedAmountDue(selected []models.LineItem) float64 {
	var due float64
	for _, li := range selected {
		if li.PaymentStatus == models.StatusPaid {
			continue
		}
		due += li.AmountDue()
	}
	return due
}
