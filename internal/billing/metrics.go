package billing

import (
	"medbill/internal/models"
)

// TaxRecognitionPolicy names the rule controlling when a bill's tax amount is
// counted as collected. The inherited behavior recognizes tax only on fully
// paid bills even though collection counts partial payments; keeping it a
// named policy makes the asymmetry changeable in one place.
type TaxRecognitionPolicy string

const (
	// TaxRecognitionPaidOnly counts tax only for bills whose derived status
	// is PAID.
	TaxRecognitionPaidOnly TaxRecognitionPolicy = "paid-only"
	// TaxRecognitionAll counts every bill's tax amount.
	TaxRecognitionAll TaxRecognitionPolicy = "all"
)

// AggregateBills rolls a collection of computed bills up into dashboard
// counters in a single pass. Collection and waived amounts accrue for every
// bill regardless of status; pending accrues the outstanding balance of
// PENDING bills; exempted accrues the full amount of EXEMPTED bills.
func AggregateBills(bills []models.ComputedBill, policy TaxRecognitionPolicy) models.BillMetrics {
	var m models.BillMetrics
	for _, bill := range bills {
		m.BillCount++
		m.CumulativeTotal += bill.TotalAmount
		m.Collection += bill.TotalActualPayments
		m.Waived += bill.TotalWaived

		switch bill.Status {
		case models.StatusPaid:
			if policy != TaxRecognitionAll {
				m.TaxCollected += bill.TotalTax
			}
		case models.StatusPending:
			// MapBill already resolved a missing server balance to the
			// computed shortfall; a reported zero stays zero.
			m.Pending += bill.Balance
		case models.StatusExempted:
			m.Exempted += bill.TotalAmount
		}

		if policy == TaxRecognitionAll {
			m.TaxCollected += bill.TotalTax
		}
	}
	return m
}
