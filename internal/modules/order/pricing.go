package order

import "github.com/shopspring/decimal"

// PricedLine is the pricing calculator's view of one order line.
type PricedLine struct {
	UnitPrice decimal.Decimal
	Quantity  int
	Modifiers []decimal.Decimal
}

// DiscountSpec is an order-level discount.
type DiscountSpec struct {
	Type  DiscountType
	Value decimal.Decimal
}

// Totals holds the computed monetary fields of an order.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// ComputeTotals derives an order's monetary fields from its lines, discount,
// and tax rate. Pure and deterministic: identical inputs produce identical
// outputs.
//
// Each line's effective unit price is its base price plus the sum of all
// selected modifier prices. Modifiers contribute unconditionally; group
// selection bounds are not validated here. The discount is clamped to
// [0, subtotal] and tax applies to the post-discount amount, so every field
// is non-negative and total == subtotal - discount + tax holds exactly.
func ComputeTotals(lines []PricedLine, discount DiscountSpec, taxRatePercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		effective := l.UnitPrice
		for _, m := range l.Modifiers {
			effective = effective.Add(m)
		}
		subtotal = subtotal.Add(effective.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = subtotal.Round(2)

	var discountAmount decimal.Decimal
	switch discount.Type {
	case DiscountPercentage:
		discountAmount = subtotal.Mul(discount.Value).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountFixed:
		discountAmount = discount.Value.Round(2)
	default:
		discountAmount = decimal.Zero
	}
	if discountAmount.IsNegative() {
		discountAmount = decimal.Zero
	}
	if discountAmount.GreaterThan(subtotal) {
		discountAmount = subtotal
	}

	taxable := subtotal.Sub(discountAmount)
	taxAmount := taxable.Mul(taxRatePercent).Div(decimal.NewFromInt(100)).Round(2)
	if taxAmount.IsNegative() {
		taxAmount = decimal.Zero
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		TaxAmount:      taxAmount,
		Total:          subtotal.Sub(discountAmount).Add(taxAmount),
	}
}
