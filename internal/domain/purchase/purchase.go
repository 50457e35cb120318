package purchase

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayurcare/backend/internal/domain/inventory"
	"github.com/ayurcare/backend/internal/domain/pricing"
	"github.com/ayurcare/backend/internal/domain/shared"
	"github.com/ayurcare/backend/internal/domain/shared/valueobject"
)

// Domain errors of the purchase aggregate
var (
	ErrPurchaseNotFound = shared.NewDomainError("NOT_FOUND", "Purchase not found")
	ErrItemNotFound     = shared.NewDomainError("NOT_FOUND", "Purchase item not found")
	ErrDuplicateInvoice = shared.NewDomainError("ALREADY_EXISTS", "Invoice number already recorded for this distributor")
	ErrDuplicateSubmit  = shared.NewDomainError("ALREADY_EXISTS", "Purchase with this idempotency key was already submitted")
)

// PurchaseItem is a stored purchase line. Quantities and prices are in
// sub-units, exactly as they were submitted.
type PurchaseItem struct {
	ID                  uuid.UUID
	PurchaseID          uuid.UUID
	MedicineID          uuid.UUID
	SubUnitsPerUnit     decimal.Decimal
	TotalPurchasedUnit  decimal.Decimal
	PricePerUnit        decimal.Decimal
	PurchasePrice       decimal.Decimal
	MRP                 decimal.Decimal
	SellingPrice        decimal.Decimal
	BatchNumber         string
	HSNCode             string
	ManufacturingDate   *time.Time
	ExpiryDate          time.Time
	DiscountPercentage  decimal.Decimal
	DiscountPrice       decimal.Decimal
	Discount2Percentage decimal.Decimal
	Discount2Price      decimal.Decimal
	Tax                 pricing.TaxSpec
	TaxPercentage       decimal.Decimal
	TaxableAmount       decimal.Decimal
	TaxAmount           decimal.Decimal
	FinalPrice          decimal.Decimal
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func newPurchaseItem(purchaseID uuid.UUID, line pricing.PurchaseLine) PurchaseItem {
	wire := LineToPayload(line)
	amounts := line.Amounts()
	now := time.Now()
	return PurchaseItem{
		ID:                  uuid.New(),
		PurchaseID:          purchaseID,
		MedicineID:          line.MedicineID,
		SubUnitsPerUnit:     line.SubUnitsPerUnit,
		TotalPurchasedUnit:  wire.TotalPurchasedUnit,
		PricePerUnit:        wire.PricePerUnit,
		PurchasePrice:       wire.PurchasePrice,
		MRP:                 wire.MRP,
		SellingPrice:        wire.SellingPrice,
		BatchNumber:         wire.BatchNumber,
		HSNCode:             wire.HSNCode,
		ManufacturingDate:   line.ManufacturingDate,
		ExpiryDate:          line.ExpiryDate,
		DiscountPercentage:  wire.DiscountPercentage,
		DiscountPrice:       wire.DiscountPrice,
		Discount2Percentage: wire.Discount2Percentage,
		Discount2Price:      wire.Discount2Price,
		Tax:                 *wire.Tax,
		TaxPercentage:       wire.TaxPercentage,
		TaxableAmount:       amounts.Taxable,
		TaxAmount:           amounts.Final.Sub(amounts.Taxable),
		FinalPrice:          amounts.Final,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// TaxMode returns the stored tax mode. A spec that no longer resolves falls
// back to its effective flat rate.
func (i PurchaseItem) TaxMode() pricing.TaxMode {
	mode, err := i.Tax.ToMode()
	if err != nil {
		return pricing.FlatTax{Percentage: i.TaxPercentage}
	}
	return mode
}

// Line rebuilds the main-unit calculator line of the item
func (i PurchaseItem) Line() pricing.PurchaseLine {
	factor := i.SubUnitsPerUnit
	line := pricing.NewPurchaseLine(i.MedicineID, factor).
		OnSubUnitsChange(i.TotalPurchasedUnit).
		OnSubUnitPriceChange(i.PricePerUnit).
		OnDiscount1PercentChange(i.DiscountPercentage).
		OnDiscount2PercentChange(i.Discount2Percentage).
		OnTaxChange(i.TaxMode())
	line.MRP = i.MRP.Mul(factor)
	line.SellingPrice = i.SellingPrice.Mul(factor)
	line.BatchNumber = i.BatchNumber
	line.HSNCode = i.HSNCode
	line.ManufacturingDate = i.ManufacturingDate
	line.ExpiryDate = i.ExpiryDate
	return line
}

// SingleEntryInput returns the item as shown on the single-entry edit form
func (i PurchaseItem) SingleEntryInput() pricing.SingleEntryInput {
	return pricing.SingleEntryInput{
		TotalPurchasedUnit: i.TotalPurchasedUnit,
		PricePerUnit:       i.PricePerUnit,
		DiscountPercentage: i.DiscountPercentage,
		Tax:                i.TaxMode(),
	}
}

// Amounts returns the figures the item contributes to the bill totals
func (i PurchaseItem) Amounts() pricing.LineAmounts {
	return pricing.LineAmounts{Taxable: i.TaxableAmount, Final: i.FinalPrice}
}

// StockEntry returns the stock received through this item. The sub-unit
// figures are copied as stored so the recorded count matches the invoice.
func (i PurchaseItem) StockEntry() inventory.StockEntry {
	return inventory.StockEntry{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		MedicineID:          i.MedicineID,
		PurchaseID:          i.PurchaseID,
		PurchaseItemID:      i.ID,
		BatchNumber:         i.BatchNumber,
		SubUnitsPerUnit:     i.SubUnitsPerUnit,
		Quantity:            i.TotalPurchasedUnit,
		PricePerUnit:        i.PricePerUnit,
		MRP:                 i.MRP,
		SellingPrice:        i.SellingPrice,
		DiscountPercentage:  i.DiscountPercentage,
		Discount2Percentage: i.Discount2Percentage,
		TaxPercentage:       i.TaxPercentage,
		TaxableAmount:       i.TaxableAmount,
		Amount:              i.FinalPrice,
		ManufacturingDate:   i.ManufacturingDate,
		ExpiryDate:          i.ExpiryDate,
	}
}

// Payload returns the wire form of the stored item
func (i PurchaseItem) Payload() LinePayload {
	spec := i.Tax
	return LinePayload{
		Medicine:            i.MedicineID,
		TotalPurchasedUnit:  i.TotalPurchasedUnit,
		PricePerUnit:        i.PricePerUnit,
		PurchasePrice:       i.PurchasePrice,
		MRP:                 i.MRP,
		SellingPrice:        i.SellingPrice,
		BatchNumber:         i.BatchNumber,
		HSNCode:             i.HSNCode,
		ManufacturingDate:   formatOptional(i.ManufacturingDate),
		ExpiryDate:          FormatTimestamp(i.ExpiryDate),
		DiscountPercentage:  i.DiscountPercentage,
		DiscountPrice:       i.DiscountPrice,
		Discount2Percentage: i.Discount2Percentage,
		Discount2Price:      i.Discount2Price,
		TaxPercentage:       i.TaxPercentage,
		Tax:                 &spec,
	}
}

// Purchase is a submitted purchase invoice from a distributor
type Purchase struct {
	shared.BaseAggregateRoot
	InvoiceNumber    string
	DistributorID    uuid.UUID
	PurchaseDate     time.Time
	Items            []PurchaseItem
	Discount3Percent decimal.Decimal
	Discount3Amount  decimal.Decimal
	TaxableAmount    decimal.Decimal
	SubtotalAmount   decimal.Decimal
	TotalAmount      decimal.Decimal
	IdempotencyKey   string
}

// NewPurchase builds a purchase from a bulk purchase draft. The draft is
// converted to its payload and validated first; the first failing field is
// returned as a VALIDATION_ERROR.
func NewPurchase(d Draft) (*Purchase, error) {
	if err := ValidatePayload(ToPayload(d)); err != nil {
		return nil, err
	}

	p := &Purchase{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     strings.TrimSpace(d.InvoiceNumber),
		DistributorID:     d.DistributorID,
		PurchaseDate:      d.PurchaseDate.UTC(),
		Items:             make([]PurchaseItem, 0, len(d.Lines)),
		Discount3Percent:  d.Discount.Percent,
		Discount3Amount:   d.Discount.Amount,
		IdempotencyKey:    d.IdempotencyKey,
	}
	for _, line := range d.Lines {
		p.Items = append(p.Items, newPurchaseItem(p.ID, line))
	}
	p.recalculateTotals()
	return p, nil
}

// Discount returns the bill-level discount3
func (p *Purchase) Discount() pricing.BillDiscount {
	return pricing.BillDiscount{Percent: p.Discount3Percent, Amount: p.Discount3Amount}
}

// Discount3 returns the effective discount3 amount
func (p *Purchase) Discount3() decimal.Decimal {
	return p.SubtotalAmount.Sub(p.TotalAmount)
}

// Item returns the item with the given ID
func (p *Purchase) Item(itemID uuid.UUID) (*PurchaseItem, error) {
	for i := range p.Items {
		if p.Items[i].ID == itemID {
			return &p.Items[i], nil
		}
	}
	return nil, ErrItemNotFound
}

// ApplySingleEntry re-prices one stored item from the single-entry edit form
// and refreshes the bill totals. The form has no discount2, so it is cleared.
// The purchase is left untouched when the result fails validation.
func (p *Purchase) ApplySingleEntry(itemID uuid.UUID, in pricing.SingleEntryInput) (pricing.SingleEntryResult, error) {
	current, err := p.Item(itemID)
	if err != nil {
		return pricing.SingleEntryResult{}, err
	}

	result := pricing.CalculateSingleEntry(in)
	tax := pricing.SpecOf(in.Tax)

	updated := *current
	updated.TotalPurchasedUnit = in.TotalPurchasedUnit
	updated.PricePerUnit = in.PricePerUnit
	updated.PurchasePrice = result.TotalPrice
	updated.DiscountPercentage = in.DiscountPercentage
	updated.DiscountPrice = result.DiscountAmount
	updated.Discount2Percentage = decimal.Zero
	updated.Discount2Price = decimal.Zero
	updated.Tax = tax
	updated.TaxPercentage = pricing.RateOf(in.Tax)
	updated.TaxableAmount = result.TaxableAmount
	updated.TaxAmount = result.TaxAmount
	updated.FinalPrice = result.GrandTotal
	updated.UpdatedAt = time.Now()

	candidate := *p
	candidate.Items = append([]PurchaseItem(nil), p.Items...)
	for i := range candidate.Items {
		if candidate.Items[i].ID == itemID {
			candidate.Items[i] = updated
		}
	}
	if err := ValidatePayload(candidate.Payload()); err != nil {
		return pricing.SingleEntryResult{}, err
	}

	*current = updated
	p.recalculateTotals()
	p.IncrementVersion()
	return result, nil
}

// StockEntries returns the stock recorded by each item of the purchase
func (p *Purchase) StockEntries() []inventory.StockEntry {
	entries := make([]inventory.StockEntry, len(p.Items))
	for i, item := range p.Items {
		entries[i] = item.StockEntry()
	}
	return entries
}

// Payload returns the wire form of the stored purchase
func (p *Purchase) Payload() Payload {
	payload := Payload{
		InvoiceNumber:    p.InvoiceNumber,
		Distributor:      p.DistributorID,
		TotalAmount:      p.TotalAmount,
		PurchaseDate:     FormatTimestamp(p.PurchaseDate),
		TaxableAmount:    p.TaxableAmount,
		Discount3Percent: p.Discount3Percent,
		Discount3Amount:  p.Discount3Amount,
		Medicines:        make([]LinePayload, len(p.Items)),
	}
	for i, item := range p.Items {
		payload.Medicines[i] = item.Payload()
	}
	return payload
}

// GetTotalMoney returns the bill total as Money in currency, INR when empty
func (p *Purchase) GetTotalMoney(currency valueobject.Currency) valueobject.Money {
	m, err := valueobject.NewMoney(p.TotalAmount, currency)
	if err != nil {
		return valueobject.NewMoneyINR(p.TotalAmount)
	}
	return m
}

func (p *Purchase) recalculateTotals() {
	amounts := make([]pricing.LineAmounts, len(p.Items))
	for i, item := range p.Items {
		amounts[i] = item.Amounts()
	}
	subtotal := pricing.SumTotals(amounts, decimal.Zero).SubtotalAmount
	totals := pricing.SumTotals(amounts, p.Discount().Resolve(subtotal))
	p.TaxableAmount = totals.TaxableAmount
	p.SubtotalAmount = totals.SubtotalAmount
	p.TotalAmount = totals.TotalAmount
}
