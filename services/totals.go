// Package services provides the quotation computation and document export
// logic, independent of the HTTP layer.
package services

import "math"

// Discount type values stored on a quotation.
const (
	DiscountAmount     = "amount"
	DiscountPercentage = "percentage"
)

// QuotationTotals holds the derived financials of a quotation.
type QuotationTotals struct {
	Subtotal       float64
	DiscountAmount float64
	TaxableBase    float64
	Tax            float64
	TotalAmount    float64
	ExpectedIncome float64
	TotalQuantity  float64
}

// Round2 rounds to 2 decimal places (money precision).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CalcLineTotal computes a single line item total.
// Negative inputs are coerced to zero rather than rejected.
func CalcLineTotal(qty, price float64) float64 {
	if qty < 0 || math.IsNaN(qty) {
		qty = 0
	}
	if price < 0 || math.IsNaN(price) {
		price = 0
	}
	return Round2(qty * price)
}

// CalcQuotationTotals derives subtotal, discount, tax and total from the
// given line items and discount/tax configuration.
//
// The discount is clamped so the taxable base never goes negative: a flat
// discount larger than the subtotal, or a percentage above 100, both yield
// discountAmount == subtotal.
//
// ExpectedIncome currently duplicates TotalAmount. Line items still carry a
// normal_price for a future margin computation.
func CalcQuotationTotals(items []LineItem, discountType string, discountValue, taxRate float64) QuotationTotals {
	var t QuotationTotals

	var subtotal float64
	for _, it := range items {
		subtotal += CalcLineTotal(it.QtyValue(), it.PriceValue())
		t.TotalQuantity += clampNonNegative(it.QtyValue())
	}
	t.Subtotal = Round2(subtotal)

	if discountValue < 0 || math.IsNaN(discountValue) {
		discountValue = 0
	}
	switch discountType {
	case DiscountPercentage:
		t.DiscountAmount = Round2(t.Subtotal * discountValue / 100)
	default:
		t.DiscountAmount = Round2(discountValue)
	}
	if t.DiscountAmount > t.Subtotal {
		t.DiscountAmount = t.Subtotal
	}

	t.TaxableBase = Round2(t.Subtotal - t.DiscountAmount)

	if taxRate < 0 || math.IsNaN(taxRate) {
		taxRate = 0
	}
	t.Tax = Round2(t.TaxableBase * taxRate / 100)
	t.TotalAmount = Round2(t.TaxableBase + t.Tax)
	t.ExpectedIncome = t.TotalAmount

	return t
}

func clampNonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
