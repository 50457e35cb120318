package purchase

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayurcare/backend/internal/domain/pricing"
	"github.com/ayurcare/backend/internal/domain/shared"
	"github.com/ayurcare/backend/internal/domain/shared/valueobject"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var expiry = time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)

// lineA has a final price of 957.6: 10 strips of 10 tablets at 100,
// discount1 10%, discount2 5%, flat tax 12%
func lineA() pricing.PurchaseLine {
	l := pricing.NewPurchaseLine(uuid.New(), dec("10")).
		OnUnitsChange(dec("10")).
		OnMainUnitPriceChange(dec("100")).
		OnDiscount1PercentChange(dec("10")).
		OnDiscount2PercentChange(dec("5")).
		OnTaxChange(pricing.FlatTax{Percentage: dec("12")})
	l.MRP = dec("150")
	l.SellingPrice = dec("140")
	l.BatchNumber = " B-001 "
	l.HSNCode = "3004"
	l.ExpiryDate = expiry
	return l
}

// lineB has a final price of 200: 4 bottles at 50, no discount or tax
func lineB() pricing.PurchaseLine {
	l := pricing.NewPurchaseLine(uuid.New(), dec("1")).
		OnUnitsChange(dec("4")).
		OnMainUnitPriceChange(dec("50"))
	l.BatchNumber = "oil-7"
	l.ExpiryDate = expiry
	return l
}

func draft() Draft {
	return Draft{
		InvoiceNumber: " INV-1001 ",
		DistributorID: uuid.New(),
		PurchaseDate:  time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
		Lines:         []pricing.PurchaseLine{lineA(), lineB()},
		Discount:      pricing.BillDiscount{}.WithAmount(dec("50")),
	}
}

func requireValidationError(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	assert.Equal(t, message, domainErr.Message)
}

func TestNewPurchase(t *testing.T) {
	d := draft()
	p, err := NewPurchase(d)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, "INV-1001", p.InvoiceNumber)
	assert.Equal(t, d.DistributorID, p.DistributorID)
	require.Len(t, p.Items, 2)

	assert.True(t, p.TaxableAmount.Equal(dec("1055")), p.TaxableAmount.String())
	assert.True(t, p.SubtotalAmount.Equal(dec("1157.6")), p.SubtotalAmount.String())
	assert.True(t, p.TotalAmount.Equal(dec("1107.6")), p.TotalAmount.String())
	assert.True(t, p.Discount3().Equal(dec("50")))
	assert.Equal(t, "INR 1107.60", p.GetTotalMoney(valueobject.INR).String())

	item := p.Items[0]
	assert.Equal(t, p.ID, item.PurchaseID)
	assert.True(t, item.TotalPurchasedUnit.Equal(dec("100")))
	assert.True(t, item.PricePerUnit.Equal(dec("10")))
	assert.True(t, item.MRP.Equal(dec("15")))
	assert.True(t, item.SellingPrice.Equal(dec("14")))
	assert.Equal(t, "b-001", item.BatchNumber)
	assert.True(t, item.TaxableAmount.Equal(dec("855")))
	assert.True(t, item.TaxAmount.Equal(dec("102.6")))
	assert.True(t, item.FinalPrice.Equal(dec("957.6")))
	assert.Equal(t, pricing.TaxKindFlat, item.Tax.Type)
}

func TestNewPurchaseTotalsMatchPayload(t *testing.T) {
	d := draft()
	d.Discount = pricing.BillDiscount{}.WithPercent(dec("10"))

	p, err := NewPurchase(d)
	require.NoError(t, err)

	payload := ToPayload(d)
	assert.True(t, p.TotalAmount.Equal(payload.TotalAmount))
	assert.True(t, p.TaxableAmount.Equal(payload.TaxableAmount))
	assert.True(t, p.TotalAmount.Equal(dec("1041.84")), p.TotalAmount.String())
}

func TestNewPurchaseValidation(t *testing.T) {
	t.Run("first failing field wins", func(t *testing.T) {
		d := draft()
		d.InvoiceNumber = "  "
		d.Lines[0].BatchNumber = ""
		_, err := NewPurchase(d)
		requireValidationError(t, err, "invoiceNumber is required")
	})

	t.Run("missing distributor", func(t *testing.T) {
		d := draft()
		d.DistributorID = uuid.Nil
		_, err := NewPurchase(d)
		requireValidationError(t, err, "distributor is required")
	})

	t.Run("missing purchase date", func(t *testing.T) {
		d := draft()
		d.PurchaseDate = time.Time{}
		_, err := NewPurchase(d)
		requireValidationError(t, err, "purchaseDate is required")
	})

	t.Run("no lines", func(t *testing.T) {
		d := draft()
		d.Lines = nil
		_, err := NewPurchase(d)
		requireValidationError(t, err, "medicines must contain at least 1 item(s)")
	})

	t.Run("zero quantity", func(t *testing.T) {
		d := draft()
		d.Lines[1] = d.Lines[1].OnUnitsChange(decimal.Zero)
		_, err := NewPurchase(d)
		requireValidationError(t, err, "medicines[1].totalPurchasedUnit must be greater than 0")
	})

	t.Run("zero price", func(t *testing.T) {
		d := draft()
		d.Lines[0] = d.Lines[0].OnMainUnitPriceChange(decimal.Zero)
		_, err := NewPurchase(d)
		requireValidationError(t, err, "medicines[0].pricePerUnit must be greater than 0")
	})

	t.Run("blank batch", func(t *testing.T) {
		d := draft()
		d.Lines[0].BatchNumber = "   "
		_, err := NewPurchase(d)
		requireValidationError(t, err, "medicines[0].batchNumber is required")
	})

	t.Run("missing expiry", func(t *testing.T) {
		d := draft()
		d.Lines[1].ExpiryDate = time.Time{}
		_, err := NewPurchase(d)
		requireValidationError(t, err, "medicines[1].expiryDate is required")
	})

	t.Run("discount out of range", func(t *testing.T) {
		d := draft()
		d.Lines[0] = d.Lines[0].OnDiscount1PercentChange(dec("120"))
		_, err := NewPurchase(d)
		requireValidationError(t, err, "medicines[0].discountPercentage must be less than or equal to 100")
	})

	t.Run("negative discount2", func(t *testing.T) {
		d := draft()
		d.Lines[0] = d.Lines[0].OnDiscount2PercentChange(dec("-1"))
		_, err := NewPurchase(d)
		requireValidationError(t, err, "medicines[0].discount2Percentage must be greater than or equal to 0")
	})

	t.Run("tax out of range", func(t *testing.T) {
		d := draft()
		d.Lines[1] = d.Lines[1].OnTaxChange(pricing.StateTax{CGST: dec("60"), SGST: dec("60")})
		_, err := NewPurchase(d)
		requireValidationError(t, err, "medicines[1].taxPercentage must be less than or equal to 100")
	})

	t.Run("discount3 percent out of range", func(t *testing.T) {
		d := draft()
		d.Discount = d.Discount.WithPercent(dec("101"))
		_, err := NewPurchase(d)
		requireValidationError(t, err, "discount3Percent must be less than or equal to 100")
	})
}

func TestPurchaseItemLine(t *testing.T) {
	p, err := NewPurchase(draft())
	require.NoError(t, err)

	line := p.Items[0].Line()
	original := lineA()
	assert.True(t, line.PurchasedUnits.Equal(original.PurchasedUnits))
	assert.True(t, line.PricePerMainUnit.Equal(original.PricePerMainUnit))
	assert.True(t, line.MRP.Equal(original.MRP))
	assert.True(t, line.FinalPrice().Equal(original.FinalPrice()))
	assert.Equal(t, pricing.TaxKindFlat, line.Tax.Kind())
}

func TestApplySingleEntry(t *testing.T) {
	t.Run("re-prices the item and the bill", func(t *testing.T) {
		p, err := NewPurchase(draft())
		require.NoError(t, err)
		itemID := p.Items[1].ID

		result, err := p.ApplySingleEntry(itemID, pricing.SingleEntryInput{
			TotalPurchasedUnit: dec("50"),
			PricePerUnit:       dec("10"),
			DiscountPercentage: dec("20"),
			Tax:                pricing.StateTax{CGST: dec("6"), SGST: dec("6")},
		})
		require.NoError(t, err)
		assert.True(t, result.GrandTotal.Equal(dec("448")))

		item, err := p.Item(itemID)
		require.NoError(t, err)
		assert.True(t, item.PurchasePrice.Equal(dec("500")))
		assert.True(t, item.DiscountPrice.Equal(dec("100")))
		assert.True(t, item.TaxableAmount.Equal(dec("400")))
		assert.True(t, item.TaxAmount.Equal(dec("48")))
		assert.True(t, item.FinalPrice.Equal(dec("448")))
		assert.True(t, item.TaxPercentage.Equal(dec("12")))
		assert.Equal(t, pricing.TaxKindState, item.Tax.Type)

		assert.True(t, p.SubtotalAmount.Equal(dec("1405.6")), p.SubtotalAmount.String())
		assert.True(t, p.TotalAmount.Equal(dec("1355.6")), p.TotalAmount.String())
		assert.Equal(t, 2, p.Version)
	})

	t.Run("clears discount2", func(t *testing.T) {
		p, err := NewPurchase(draft())
		require.NoError(t, err)
		itemID := p.Items[0].ID

		_, err = p.ApplySingleEntry(itemID, p.Items[0].SingleEntryInput())
		require.NoError(t, err)
		item, _ := p.Item(itemID)
		assert.True(t, item.Discount2Percentage.IsZero())
		assert.True(t, item.Discount2Price.IsZero())
		assert.True(t, item.FinalPrice.Equal(dec("1008")), item.FinalPrice.String())
	})

	t.Run("unknown item", func(t *testing.T) {
		p, err := NewPurchase(draft())
		require.NoError(t, err)
		_, err = p.ApplySingleEntry(uuid.New(), pricing.SingleEntryInput{})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("invalid edit leaves purchase untouched", func(t *testing.T) {
		p, err := NewPurchase(draft())
		require.NoError(t, err)
		before := p.TotalAmount

		_, err = p.ApplySingleEntry(p.Items[0].ID, pricing.SingleEntryInput{
			TotalPurchasedUnit: decimal.Zero,
			PricePerUnit:       dec("10"),
		})
		requireValidationError(t, err, "medicines[0].totalPurchasedUnit must be greater than 0")
		assert.True(t, p.TotalAmount.Equal(before))
		assert.True(t, p.Items[0].TotalPurchasedUnit.Equal(dec("100")))
		assert.Equal(t, 1, p.Version)
	})
}

func TestStockEntries(t *testing.T) {
	p, err := NewPurchase(draft())
	require.NoError(t, err)

	entries := p.StockEntries()
	require.Len(t, entries, 2)
	for i, entry := range entries {
		assert.Equal(t, p.ID, entry.PurchaseID)
		assert.Equal(t, p.Items[i].ID, entry.PurchaseItemID)
		assert.Equal(t, p.Items[i].MedicineID, entry.MedicineID)
		assert.True(t, entry.Quantity.Equal(p.Items[i].TotalPurchasedUnit))
		assert.True(t, entry.Amount.Equal(p.Items[i].FinalPrice))
	}
	assert.Equal(t, "b-001", entries[0].BatchNumber)
}

func TestPurchasePayloadMatchesDraftPayload(t *testing.T) {
	d := draft()
	p, err := NewPurchase(d)
	require.NoError(t, err)

	stored := p.Payload()
	submitted := ToPayload(d)
	require.Len(t, stored.Medicines, len(submitted.Medicines))
	assert.Equal(t, submitted.InvoiceNumber, stored.InvoiceNumber)
	assert.Equal(t, submitted.PurchaseDate, stored.PurchaseDate)
	assert.True(t, submitted.TotalAmount.Equal(stored.TotalAmount))
	for i := range stored.Medicines {
		assert.True(t, submitted.Medicines[i].PricePerUnit.Equal(stored.Medicines[i].PricePerUnit))
		assert.Equal(t, submitted.Medicines[i].ExpiryDate, stored.Medicines[i].ExpiryDate)
	}
}
