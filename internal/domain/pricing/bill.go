package pricing

import "github.com/shopspring/decimal"

// LineAmounts are the per-line figures that feed the bill totals
type LineAmounts struct {
	Taxable decimal.Decimal
	Final   decimal.Decimal
}

// Totals are the bill-level figures of a purchase
type Totals struct {
	TaxableAmount   decimal.Decimal
	SubtotalAmount  decimal.Decimal
	Discount3Amount decimal.Decimal
	// TotalAmount is not floored at zero; a discount3 larger than the
	// subtotal produces a negative total.
	TotalAmount decimal.Decimal
}

// SumTotals adds up line amounts and subtracts the bill-level discount3 amount
func SumTotals(amounts []LineAmounts, discount3Amount decimal.Decimal) Totals {
	taxable := decimal.Zero
	subtotal := decimal.Zero
	for _, a := range amounts {
		taxable = taxable.Add(a.Taxable)
		subtotal = subtotal.Add(a.Final)
	}
	return Totals{
		TaxableAmount:   taxable,
		SubtotalAmount:  subtotal,
		Discount3Amount: discount3Amount,
		TotalAmount:     subtotal.Sub(discount3Amount),
	}
}

// BillTotals computes the bill totals of the given lines for a flat discount3 amount
func BillTotals(lines []PurchaseLine, discount3Amount decimal.Decimal) Totals {
	return SumTotals(lineAmounts(lines), discount3Amount)
}

// Summarize computes the bill totals with discount3 resolved against the subtotal
func Summarize(lines []PurchaseLine, discount BillDiscount) Totals {
	amounts := lineAmounts(lines)
	subtotal := SumTotals(amounts, decimal.Zero).SubtotalAmount
	return SumTotals(amounts, discount.Resolve(subtotal))
}

func lineAmounts(lines []PurchaseLine) []LineAmounts {
	amounts := make([]LineAmounts, len(lines))
	for i, l := range lines {
		amounts[i] = l.Amounts()
	}
	return amounts
}

// BillDiscount is discount3, expressed either as a percentage of the subtotal
// or as a flat amount. Setting one representation zeroes the other; unlike the
// line discounts the two are not kept in sync.
type BillDiscount struct {
	Percent decimal.Decimal
	Amount  decimal.Decimal
}

// WithPercent sets the percentage and clears the flat amount
func (d BillDiscount) WithPercent(pct decimal.Decimal) BillDiscount {
	return BillDiscount{Percent: pct, Amount: decimal.Zero}
}

// WithAmount sets the flat amount and clears the percentage
func (d BillDiscount) WithAmount(amount decimal.Decimal) BillDiscount {
	return BillDiscount{Percent: decimal.Zero, Amount: amount}
}

// IsPercent reports whether the discount is expressed as a percentage
func (d BillDiscount) IsPercent() bool {
	return !d.Percent.IsZero()
}

// Resolve returns the discount amount for the given subtotal
func (d BillDiscount) Resolve(subtotal decimal.Decimal) decimal.Decimal {
	if d.IsPercent() {
		return percentOf(subtotal, d.Percent)
	}
	return d.Amount
}
