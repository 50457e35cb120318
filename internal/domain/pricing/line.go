package pricing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayurcare/backend/internal/domain/shared"
)

// PurchaseLine is one medicine row of a purchase, denominated in main units.
//
// Quantity, price and both discounts are stored once (main units, main-unit
// price, percentages). Sub-unit figures and discount amounts are derived on
// read, and the setters for them solve for the stored value, so the two
// representations cannot drift apart. A sub-unit quantity or price that was
// entered directly is also kept as entered, so a count the conversion factor
// does not divide comes back unchanged.
type PurchaseLine struct {
	MedicineID uuid.UUID

	// SubUnitsPerUnit comes from the medicine master and is read-only here
	SubUnitsPerUnit     decimal.Decimal
	PurchasedUnits      decimal.Decimal
	PricePerMainUnit    decimal.Decimal
	DiscountPercentage  decimal.Decimal
	Discount2Percentage decimal.Decimal
	Tax                 TaxMode

	// Main-unit prices, tracked independently of the purchase price
	MRP          decimal.Decimal
	SellingPrice decimal.Decimal

	BatchNumber       string
	HSNCode           string
	ManufacturingDate *time.Time
	ExpiryDate        time.Time

	subUnits     decimal.NullDecimal
	subUnitPrice decimal.NullDecimal
}

// NewPurchaseLine creates the empty row added to a purchase form
func NewPurchaseLine(medicineID uuid.UUID, subUnitsPerUnit decimal.Decimal) PurchaseLine {
	return PurchaseLine{
		MedicineID:      medicineID,
		SubUnitsPerUnit: subUnitsPerUnit,
		Tax:             NoTax{},
	}
}

// TotalPurchasedUnit is the quantity in sub-units
func (l PurchaseLine) TotalPurchasedUnit() decimal.Decimal {
	if l.subUnits.Valid {
		return l.subUnits.Decimal
	}
	return l.PurchasedUnits.Mul(l.SubUnitsPerUnit)
}

// PricePerSubUnit is the main-unit price spread over the conversion factor
func (l PurchaseLine) PricePerSubUnit() decimal.Decimal {
	if l.subUnitPrice.Valid {
		return l.subUnitPrice.Decimal
	}
	return PerSubUnit(l.PricePerMainUnit, l.SubUnitsPerUnit)
}

// PurchasePrice is the gross price of the line before any discount
func (l PurchaseLine) PurchasePrice() decimal.Decimal {
	switch {
	case l.subUnits.Valid && l.subUnitPrice.Valid:
		return l.subUnitPrice.Decimal.Mul(l.subUnits.Decimal)
	case l.subUnits.Valid:
		return safeDiv(l.PricePerMainUnit.Mul(l.subUnits.Decimal), l.SubUnitsPerUnit)
	default:
		return l.PricePerMainUnit.Mul(l.PurchasedUnits)
	}
}

// DiscountPrice is the discount1 amount
func (l PurchaseLine) DiscountPrice() decimal.Decimal {
	return percentOf(l.PurchasePrice(), l.DiscountPercentage)
}

// AfterDiscount1 is the purchase price less discount1
func (l PurchaseLine) AfterDiscount1() decimal.Decimal {
	return remainingAfter(l.PurchasePrice(), l.DiscountPercentage)
}

// Discount2Price is the discount2 amount, charged on what remains after discount1
func (l PurchaseLine) Discount2Price() decimal.Decimal {
	return percentOf(l.AfterDiscount1(), l.Discount2Percentage)
}

// AfterDiscount2 is the taxable amount of the line
func (l PurchaseLine) AfterDiscount2() decimal.Decimal {
	return remainingAfter(l.AfterDiscount1(), l.Discount2Percentage)
}

// TaxPercentage is the effective tax rate of the line
func (l PurchaseLine) TaxPercentage() decimal.Decimal {
	return RateOf(l.Tax)
}

// TaxAmount is the tax charged on the taxable amount
func (l PurchaseLine) TaxAmount() decimal.Decimal {
	return orNone(l.Tax).Amount(l.AfterDiscount2())
}

// FinalPrice is the taxable amount plus tax
func (l PurchaseLine) FinalPrice() decimal.Decimal {
	return l.AfterDiscount2().Add(l.TaxAmount())
}

// Amounts returns the figures that feed the bill totals
func (l PurchaseLine) Amounts() LineAmounts {
	taxable := l.AfterDiscount2()
	return LineAmounts{
		Taxable: taxable,
		Final:   taxable.Add(orNone(l.Tax).Amount(taxable)),
	}
}

// OnUnitsChange sets the quantity in main units
func (l PurchaseLine) OnUnitsChange(units decimal.Decimal) PurchaseLine {
	l.PurchasedUnits = units
	l.subUnits = decimal.NullDecimal{}
	return l
}

// OnSubUnitsChange sets the quantity from a sub-unit count.
// A zero conversion factor yields zero main units.
func (l PurchaseLine) OnSubUnitsChange(totalSubUnits decimal.Decimal) PurchaseLine {
	l.PurchasedUnits = safeDiv(totalSubUnits, l.SubUnitsPerUnit)
	l.subUnits = enteredIfConvertible(totalSubUnits, l.SubUnitsPerUnit)
	return l
}

// OnMainUnitPriceChange sets the price per main unit
func (l PurchaseLine) OnMainUnitPriceChange(price decimal.Decimal) PurchaseLine {
	l.PricePerMainUnit = price
	l.subUnitPrice = decimal.NullDecimal{}
	return l
}

// OnSubUnitPriceChange sets the price from a per sub-unit price
func (l PurchaseLine) OnSubUnitPriceChange(price decimal.Decimal) PurchaseLine {
	l.PricePerMainUnit = price.Mul(l.SubUnitsPerUnit)
	l.subUnitPrice = enteredIfConvertible(price, l.SubUnitsPerUnit)
	return l
}

// enteredIfConvertible keeps a sub-unit figure only while a conversion factor
// exists. Without one every sub-unit figure reads as zero.
func enteredIfConvertible(v, subUnitsPerUnit decimal.Decimal) decimal.NullDecimal {
	if subUnitsPerUnit.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: v, Valid: true}
}

// OnDiscount1PercentChange sets the discount1 percentage
func (l PurchaseLine) OnDiscount1PercentChange(pct decimal.Decimal) PurchaseLine {
	l.DiscountPercentage = pct
	return l
}

// OnDiscount1AmountChange back-derives the discount1 percentage from an amount.
// The percentage becomes zero while the purchase price is not positive.
func (l PurchaseLine) OnDiscount1AmountChange(amount decimal.Decimal) PurchaseLine {
	l.DiscountPercentage = percentageFor(amount, l.PurchasePrice())
	return l
}

// OnDiscount2PercentChange sets the discount2 percentage
func (l PurchaseLine) OnDiscount2PercentChange(pct decimal.Decimal) PurchaseLine {
	l.Discount2Percentage = pct
	return l
}

// OnDiscount2AmountChange back-derives the discount2 percentage against the
// amount remaining after discount1.
func (l PurchaseLine) OnDiscount2AmountChange(amount decimal.Decimal) PurchaseLine {
	l.Discount2Percentage = percentageFor(amount, l.AfterDiscount1())
	return l
}

// OnTaxChange replaces the tax mode
func (l PurchaseLine) OnTaxChange(mode TaxMode) PurchaseLine {
	l.Tax = orNone(mode)
	return l
}

// Field names an editable input of a purchase line
type Field string

const (
	FieldUnits            Field = "units"
	FieldSubUnits         Field = "subUnits"
	FieldMainUnitPrice    Field = "mainUnitPrice"
	FieldSubUnitPrice     Field = "subUnitPrice"
	FieldDiscount1Percent Field = "discount1Percent"
	FieldDiscount1Amount  Field = "discount1Amount"
	FieldDiscount2Percent Field = "discount2Percent"
	FieldDiscount2Amount  Field = "discount2Amount"
)

// Fields lists every editable field accepted by Apply
var Fields = []Field{
	FieldUnits, FieldSubUnits, FieldMainUnitPrice, FieldSubUnitPrice,
	FieldDiscount1Percent, FieldDiscount1Amount, FieldDiscount2Percent, FieldDiscount2Amount,
}

// ErrUnknownField is returned by Apply for a field it does not recognise
var ErrUnknownField = shared.NewDomainError("INVALID_FIELD", "Unknown purchase line field")

// Apply dispatches a single field edit to the matching On*Change setter
func (l PurchaseLine) Apply(field Field, value decimal.Decimal) (PurchaseLine, error) {
	switch field {
	case FieldUnits:
		return l.OnUnitsChange(value), nil
	case FieldSubUnits:
		return l.OnSubUnitsChange(value), nil
	case FieldMainUnitPrice:
		return l.OnMainUnitPriceChange(value), nil
	case FieldSubUnitPrice:
		return l.OnSubUnitPriceChange(value), nil
	case FieldDiscount1Percent:
		return l.OnDiscount1PercentChange(value), nil
	case FieldDiscount1Amount:
		return l.OnDiscount1AmountChange(value), nil
	case FieldDiscount2Percent:
		return l.OnDiscount2PercentChange(value), nil
	case FieldDiscount2Amount:
		return l.OnDiscount2AmountChange(value), nil
	default:
		return l, shared.NewDomainError(ErrUnknownField.Code, fmt.Sprintf("%s: %q", ErrUnknownField.Message, field))
	}
}
