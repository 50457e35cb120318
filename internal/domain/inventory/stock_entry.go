package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ayurcare/backend/internal/domain/pricing"
	"github.com/ayurcare/backend/internal/domain/shared"
)

var batchCaser = cases.Lower(language.Und)

// NormalizeBatchNumber trims and lower-cases a batch number so the same
// batch entered in different cases is recorded once
func NormalizeBatchNumber(batch string) string {
	return batchCaser.String(strings.TrimSpace(batch))
}

// StockEntry is the stock recorded for one purchased batch of a medicine.
// Quantities and prices are in sub-units, the unit stock is counted in.
type StockEntry struct {
	shared.BaseAggregateRoot
	MedicineID      uuid.UUID
	PurchaseID      uuid.UUID
	PurchaseItemID  uuid.UUID
	BatchNumber     string
	SubUnitsPerUnit decimal.Decimal
	Quantity        decimal.Decimal // Sub-units in stock
	PricePerUnit    decimal.Decimal // Purchase price per sub-unit
	MRP             decimal.Decimal // Per sub-unit
	SellingPrice    decimal.Decimal // Per sub-unit

	DiscountPercentage  decimal.Decimal
	Discount2Percentage decimal.Decimal
	TaxPercentage       decimal.Decimal
	TaxableAmount       decimal.Decimal
	Amount              decimal.Decimal // Final price of the batch including tax

	ManufacturingDate *time.Time
	ExpiryDate        time.Time
}

// Line returns the main-unit view of the entry shown by the stock edit modal.
// Tax is carried as its effective flat rate.
func (e *StockEntry) Line() pricing.PurchaseLine {
	line := pricing.NewPurchaseLine(e.MedicineID, e.SubUnitsPerUnit).
		OnSubUnitsChange(e.Quantity).
		OnSubUnitPriceChange(e.PricePerUnit).
		OnDiscount1PercentChange(e.DiscountPercentage).
		OnDiscount2PercentChange(e.Discount2Percentage).
		OnTaxChange(pricing.FlatTax{Percentage: e.TaxPercentage})
	line.MRP = e.MRP.Mul(e.SubUnitsPerUnit)
	line.SellingPrice = e.SellingPrice.Mul(e.SubUnitsPerUnit)
	line.BatchNumber = e.BatchNumber
	line.ManufacturingDate = e.ManufacturingDate
	line.ExpiryDate = e.ExpiryDate
	return line
}

// Reprice stores the result of re-running the calculator on an edited line
func (e *StockEntry) Reprice(line pricing.PurchaseLine) error {
	if line.MedicineID != e.MedicineID {
		return shared.NewDomainError("MEDICINE_MISMATCH", "Stock entry belongs to a different medicine")
	}
	e.apply(line)
	e.IncrementVersion()
	return nil
}

// ApplySingleEntry stores the result of a single-entry edit of the purchase line
// this entry was recorded from. Discount2 does not exist in that form and is cleared.
func (e *StockEntry) ApplySingleEntry(in pricing.SingleEntryInput, result pricing.SingleEntryResult) {
	e.Quantity = in.TotalPurchasedUnit
	e.PricePerUnit = in.PricePerUnit
	e.DiscountPercentage = in.DiscountPercentage
	e.Discount2Percentage = decimal.Zero
	e.TaxPercentage = pricing.RateOf(in.Tax)
	e.TaxableAmount = result.TaxableAmount
	e.Amount = result.GrandTotal
	e.IncrementVersion()
}

// IsExpired reports whether the batch has expired at the given time
func (e *StockEntry) IsExpired(at time.Time) bool {
	return !e.ExpiryDate.IsZero() && !at.Before(e.ExpiryDate)
}

func (e *StockEntry) apply(line pricing.PurchaseLine) {
	factor := line.SubUnitsPerUnit
	e.SubUnitsPerUnit = factor
	e.BatchNumber = NormalizeBatchNumber(line.BatchNumber)
	e.Quantity = line.TotalPurchasedUnit()
	e.PricePerUnit = line.PricePerSubUnit()
	e.MRP = pricing.PerSubUnit(line.MRP, factor)
	e.SellingPrice = pricing.PerSubUnit(line.SellingPrice, factor)
	e.DiscountPercentage = line.DiscountPercentage
	e.Discount2Percentage = line.Discount2Percentage
	e.TaxPercentage = line.TaxPercentage()
	amounts := line.Amounts()
	e.TaxableAmount = amounts.Taxable
	e.Amount = amounts.Final
	e.ManufacturingDate = line.ManufacturingDate
	e.ExpiryDate = line.ExpiryDate
}
