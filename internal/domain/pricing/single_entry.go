package pricing

import "github.com/shopspring/decimal"

// SingleEntryInput is the stand-alone edit form of one stored purchase line.
// Quantity and price are already in sub-units.
type SingleEntryInput struct {
	TotalPurchasedUnit decimal.Decimal
	PricePerUnit       decimal.Decimal
	DiscountPercentage decimal.Decimal
	Tax                TaxMode
}

// SingleEntryResult holds the figures derived from a SingleEntryInput
type SingleEntryResult struct {
	TotalPrice     decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	TaxAmount      decimal.Decimal
	GrandTotal     decimal.Decimal
}

// CalculateSingleEntry prices a single stored line. Unlike the bill total,
// the taxable amount and the grand total are floored at zero.
func CalculateSingleEntry(in SingleEntryInput) SingleEntryResult {
	total := in.TotalPurchasedUnit.Mul(in.PricePerUnit)
	discount := percentOf(total, in.DiscountPercentage)
	taxable := decimal.Max(decimal.Zero, total.Sub(discount))
	tax := orNone(in.Tax).Amount(taxable)
	return SingleEntryResult{
		TotalPrice:     total,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		GrandTotal:     decimal.Max(decimal.Zero, taxable.Add(tax)),
	}
}

// Amounts returns the figures that feed the bill totals
func (r SingleEntryResult) Amounts() LineAmounts {
	return LineAmounts{Taxable: r.TaxableAmount, Final: r.GrandTotal}
}
