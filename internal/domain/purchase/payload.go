package purchase

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayurcare/backend/internal/domain/inventory"
	"github.com/ayurcare/backend/internal/domain/pricing"
)

// TimestampLayout is the ISO-8601 form dates take on the wire
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout; the zero time renders empty
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses an ISO-8601 timestamp or a plain YYYY-MM-DD date.
// Empty input yields the zero time.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatTimestamp(*t)
}

// Payload is the purchase as submitted to the purchase and stock API.
// Every quantity and price in it is denominated in sub-units.
//
// The datetime validators parse RFC 3339, which accepts the fractional
// seconds TimestampLayout writes.
type Payload struct {
	InvoiceNumber    string          `json:"invoiceNumber" validate:"required"`
	Distributor      uuid.UUID       `json:"distributor" validate:"required"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PurchaseDate     string          `json:"purchaseDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	TaxableAmount    decimal.Decimal `json:"taxableAmount"`
	Discount3Percent decimal.Decimal `json:"discount3Percent" validate:"gte=0,lte=100"`
	Discount3Amount  decimal.Decimal `json:"discount3Amount" validate:"gte=0"`
	Medicines        []LinePayload   `json:"medicines" validate:"required,min=1,dive"`
}

// LinePayload is one purchased medicine of a Payload
type LinePayload struct {
	Medicine            uuid.UUID        `json:"medicine" validate:"required"`
	TotalPurchasedUnit  decimal.Decimal  `json:"totalPurchasedUnit" validate:"gt=0"`
	PricePerUnit        decimal.Decimal  `json:"pricePerUnit" validate:"gt=0"`
	PurchasePrice       decimal.Decimal  `json:"purchasePrice"`
	MRP                 decimal.Decimal  `json:"mrp"`
	SellingPrice        decimal.Decimal  `json:"sellingPrice"`
	BatchNumber         string           `json:"batchNumber" validate:"required"`
	HSNCode             string           `json:"hsnCode"`
	ManufacturingDate   string           `json:"manufacturingDate,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	ExpiryDate          string           `json:"expiryDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	DiscountPercentage  decimal.Decimal  `json:"discountPercentage" validate:"gte=0,lte=100"`
	DiscountPrice       decimal.Decimal  `json:"discountPrice"`
	Discount2Percentage decimal.Decimal  `json:"discount2Percentage" validate:"gte=0,lte=100"`
	Discount2Price      decimal.Decimal  `json:"discount2Price"`
	TaxPercentage       decimal.Decimal  `json:"taxPercentage" validate:"gte=0,lte=100"`
	Tax                 *pricing.TaxSpec `json:"tax,omitempty"`
}

// Draft is a purchase as entered on the bulk purchase form, in main units
type Draft struct {
	InvoiceNumber  string
	DistributorID  uuid.UUID
	PurchaseDate   time.Time
	Lines          []pricing.PurchaseLine
	Discount       pricing.BillDiscount
	IdempotencyKey string
}

// Totals computes the bill totals of the draft
func (d Draft) Totals() pricing.Totals {
	return pricing.Summarize(d.Lines, d.Discount)
}

// ToPayload converts a main-unit draft into the sub-unit payload.
// Quantities are multiplied and prices divided by each line's conversion factor.
func ToPayload(d Draft) Payload {
	totals := d.Totals()
	p := Payload{
		InvoiceNumber:    strings.TrimSpace(d.InvoiceNumber),
		Distributor:      d.DistributorID,
		TotalAmount:      totals.TotalAmount,
		PurchaseDate:     FormatTimestamp(d.PurchaseDate),
		TaxableAmount:    totals.TaxableAmount,
		Discount3Percent: d.Discount.Percent,
		Discount3Amount:  d.Discount.Amount,
		Medicines:        make([]LinePayload, len(d.Lines)),
	}
	for i, line := range d.Lines {
		p.Medicines[i] = LineToPayload(line)
	}
	return p
}

// LineToPayload converts one main-unit line into its sub-unit wire form
func LineToPayload(l pricing.PurchaseLine) LinePayload {
	factor := l.SubUnitsPerUnit
	spec := pricing.SpecOf(l.Tax)
	return LinePayload{
		Medicine:            l.MedicineID,
		TotalPurchasedUnit:  l.TotalPurchasedUnit(),
		PricePerUnit:        l.PricePerSubUnit(),
		PurchasePrice:       l.PurchasePrice(),
		MRP:                 pricing.PerSubUnit(l.MRP, factor),
		SellingPrice:        pricing.PerSubUnit(l.SellingPrice, factor),
		BatchNumber:         inventory.NormalizeBatchNumber(l.BatchNumber),
		HSNCode:             strings.TrimSpace(l.HSNCode),
		ManufacturingDate:   formatOptional(l.ManufacturingDate),
		ExpiryDate:          FormatTimestamp(l.ExpiryDate),
		DiscountPercentage:  l.DiscountPercentage,
		DiscountPrice:       l.DiscountPrice(),
		Discount2Percentage: l.Discount2Percentage,
		Discount2Price:      l.Discount2Price(),
		TaxPercentage:       l.TaxPercentage(),
		Tax:                 &spec,
	}
}
