package pricing

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayurcare/backend/internal/domain/shared"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !dec(expected).Equal(actual) {
		assert.Fail(t, fmt.Sprintf("expected %s, got %s", expected, actual), msgAndArgs...)
	}
}

// line returns a line with a purchase price of 1000 (10 units at 100)
func line() PurchaseLine {
	return NewPurchaseLine(uuid.New(), dec("10")).
		OnUnitsChange(dec("10")).
		OnMainUnitPriceChange(dec("100"))
}

func TestParseNumber(t *testing.T) {
	assertDecimal(t, "12.5", ParseNumber("12.5"))
	assertDecimal(t, "7", ParseNumber("  7 "))
	assertDecimal(t, "0", ParseNumber(""))
	assertDecimal(t, "0", ParseNumber("abc"))
	assertDecimal(t, "-3", ParseNumber("-3"))
}

func TestNewPurchaseLine(t *testing.T) {
	medicineID := uuid.New()
	l := NewPurchaseLine(medicineID, dec("10"))

	assert.Equal(t, medicineID, l.MedicineID)
	assert.Equal(t, TaxKindNone, l.Tax.Kind())
	assert.True(t, l.PurchasePrice().IsZero())
	assert.True(t, l.FinalPrice().IsZero())
	assert.True(t, l.TotalPurchasedUnit().IsZero())
}

func TestUnitConversion(t *testing.T) {
	t.Run("units change derives sub-unit figures", func(t *testing.T) {
		l := NewPurchaseLine(uuid.New(), dec("10")).
			OnMainUnitPriceChange(dec("50")).
			OnUnitsChange(dec("3"))

		assertDecimal(t, "30", l.TotalPurchasedUnit())
		assertDecimal(t, "5", l.PricePerSubUnit())
		assertDecimal(t, "150", l.PurchasePrice())
	})

	t.Run("sub-units change derives main units", func(t *testing.T) {
		l := NewPurchaseLine(uuid.New(), dec("12")).OnSubUnitsChange(dec("30"))
		assertDecimal(t, "2.5", l.PurchasedUnits)
		assertDecimal(t, "30", l.TotalPurchasedUnit())
	})

	t.Run("sub-unit count the factor does not divide is kept exactly", func(t *testing.T) {
		l := NewPurchaseLine(uuid.New(), dec("3")).
			OnSubUnitsChange(dec("10")).
			OnSubUnitPriceChange(dec("2.5")).
			OnDiscount1PercentChange(dec("5"))

		assertDecimal(t, "10", l.TotalPurchasedUnit())
		assertDecimal(t, "2.5", l.PricePerSubUnit())
		assertDecimal(t, "25", l.PurchasePrice())
		assertDecimal(t, "23.75", l.AfterDiscount2())
	})

	t.Run("sub-unit count with a main-unit price", func(t *testing.T) {
		l := NewPurchaseLine(uuid.New(), dec("3")).
			OnMainUnitPriceChange(dec("30")).
			OnSubUnitsChange(dec("10"))

		assertDecimal(t, "10", l.TotalPurchasedUnit())
		assertDecimal(t, "100", l.PurchasePrice())
	})

	t.Run("units edit replaces an entered sub-unit count", func(t *testing.T) {
		l := NewPurchaseLine(uuid.New(), dec("3")).
			OnSubUnitsChange(dec("10")).
			OnUnitsChange(dec("4"))

		assertDecimal(t, "12", l.TotalPurchasedUnit())
	})

	t.Run("sub-unit price change derives main-unit price", func(t *testing.T) {
		l := NewPurchaseLine(uuid.New(), dec("10")).
			OnUnitsChange(dec("2")).
			OnSubUnitPriceChange(dec("4.5"))

		assertDecimal(t, "45", l.PricePerMainUnit)
		assertDecimal(t, "4.5", l.PricePerSubUnit())
		assertDecimal(t, "90", l.PurchasePrice())
	})

	t.Run("zero factor degrades to zero", func(t *testing.T) {
		l := NewPurchaseLine(uuid.New(), decimal.Zero).
			OnMainUnitPriceChange(dec("50")).
			OnSubUnitsChange(dec("30"))

		assert.True(t, l.PricePerSubUnit().IsZero())
		assert.True(t, l.PurchasedUnits.IsZero())
		assert.True(t, l.TotalPurchasedUnit().IsZero())
	})

	t.Run("units round trip through sub-units", func(t *testing.T) {
		for _, factor := range []string{"1", "7", "10", "12.5"} {
			for _, units := range []string{"0", "1", "2.5", "3", "144"} {
				l := NewPurchaseLine(uuid.New(), dec(factor)).OnUnitsChange(dec(units))
				back := l.OnSubUnitsChange(l.TotalPurchasedUnit())
				assertDecimal(t, units, back.PurchasedUnits, "factor %s", factor)
			}
		}
	})

	t.Run("sub-unit price times factor equals main-unit price", func(t *testing.T) {
		tolerance := dec("0.000000000001")
		for _, factor := range []string{"1", "3", "7", "10"} {
			for _, price := range []string{"0", "10", "99.99", "250"} {
				l := NewPurchaseLine(uuid.New(), dec(factor)).OnMainUnitPriceChange(dec(price))
				diff := l.PricePerSubUnit().Mul(dec(factor)).Sub(dec(price)).Abs()
				assert.True(t, diff.LessThan(tolerance), "factor %s price %s diff %s", factor, price, diff)

				viaSub := l.OnSubUnitPriceChange(l.PricePerSubUnit())
				diff = viaSub.PricePerMainUnit.Sub(dec(price)).Abs()
				assert.True(t, diff.LessThan(tolerance), "factor %s price %s diff %s", factor, price, diff)
			}
		}
	})
}

func TestDiscounts(t *testing.T) {
	t.Run("discount1 percent derives amount", func(t *testing.T) {
		l := line().OnDiscount1PercentChange(dec("10"))
		assertDecimal(t, "100", l.DiscountPrice())
		assertDecimal(t, "900", l.AfterDiscount1())
	})

	t.Run("discount1 amount back-derives percent", func(t *testing.T) {
		l := line().OnDiscount1AmountChange(dec("250"))
		assertDecimal(t, "25", l.DiscountPercentage)
		assertDecimal(t, "250", l.DiscountPrice())
	})

	t.Run("discount1 amount with zero purchase price", func(t *testing.T) {
		l := NewPurchaseLine(uuid.New(), dec("10")).OnDiscount1AmountChange(dec("50"))
		assert.True(t, l.DiscountPercentage.IsZero())
	})

	t.Run("discount2 applies after discount1", func(t *testing.T) {
		l := line().OnDiscount1PercentChange(dec("10")).OnDiscount2PercentChange(dec("5"))
		assertDecimal(t, "45", l.Discount2Price())
		assertDecimal(t, "855", l.AfterDiscount2())
	})

	t.Run("discount2 amount back-derives percent against after discount1", func(t *testing.T) {
		l := line().OnDiscount1PercentChange(dec("10"))
		assertDecimal(t, "900", l.AfterDiscount1())

		l = l.OnDiscount2AmountChange(dec("45"))
		assertDecimal(t, "5", l.Discount2Percentage)
		assertDecimal(t, "45", l.Discount2Price())
	})

	t.Run("discount2 amount with nothing left after discount1", func(t *testing.T) {
		l := line().OnDiscount1PercentChange(dec("100")).OnDiscount2AmountChange(dec("10"))
		assert.True(t, l.Discount2Percentage.IsZero())
	})

	t.Run("amount follows percent when price changes", func(t *testing.T) {
		l := line().OnDiscount1PercentChange(dec("10")).OnMainUnitPriceChange(dec("200"))
		assertDecimal(t, "200", l.DiscountPrice())
	})

	t.Run("percentages are not clamped", func(t *testing.T) {
		l := line().OnDiscount1PercentChange(dec("150"))
		assertDecimal(t, "-500", l.AfterDiscount1())
		assertDecimal(t, "-500", l.FinalPrice())
	})
}

func TestFinalPrice(t *testing.T) {
	t.Run("cascading discounts with flat tax", func(t *testing.T) {
		l := line().
			OnDiscount1PercentChange(dec("10")).
			OnDiscount2PercentChange(dec("5")).
			OnTaxChange(FlatTax{Percentage: dec("12")})

		assertDecimal(t, "1000", l.PurchasePrice())
		assertDecimal(t, "900", l.AfterDiscount1())
		assertDecimal(t, "855", l.AfterDiscount2())
		assertDecimal(t, "102.6", l.TaxAmount())
		assertDecimal(t, "957.6", l.FinalPrice())
		assertDecimal(t, "12", l.TaxPercentage())
	})

	t.Run("nil tax behaves as no tax", func(t *testing.T) {
		l := line()
		l.Tax = nil
		assertDecimal(t, "1000", l.FinalPrice())
		assert.True(t, l.TaxPercentage().IsZero())
	})

	t.Run("amounts match final price", func(t *testing.T) {
		l := line().OnDiscount1PercentChange(dec("10")).OnTaxChange(StateTax{CGST: dec("6"), SGST: dec("6")})
		amounts := l.Amounts()
		assertDecimal(t, "900", amounts.Taxable)
		assertDecimal(t, l.FinalPrice().String(), amounts.Final)
	})

	t.Run("monotonic in discounts and tax", func(t *testing.T) {
		base := line().OnTaxChange(FlatTax{Percentage: dec("12")})
		steps := []string{"0", "5", "10", "25", "50", "75", "100"}

		prev := base.OnDiscount1PercentChange(dec(steps[0])).FinalPrice()
		for _, pct := range steps[1:] {
			cur := base.OnDiscount1PercentChange(dec(pct)).FinalPrice()
			assert.True(t, cur.LessThanOrEqual(prev), "discount1 %s", pct)
			prev = cur
		}

		prev = base.OnDiscount2PercentChange(dec(steps[0])).FinalPrice()
		for _, pct := range steps[1:] {
			cur := base.OnDiscount2PercentChange(dec(pct)).FinalPrice()
			assert.True(t, cur.LessThanOrEqual(prev), "discount2 %s", pct)
			prev = cur
		}

		prev = base.OnTaxChange(FlatTax{Percentage: dec(steps[0])}).FinalPrice()
		for _, pct := range steps[1:] {
			cur := base.OnTaxChange(FlatTax{Percentage: dec(pct)}).FinalPrice()
			assert.True(t, cur.GreaterThanOrEqual(prev), "tax %s", pct)
			prev = cur
		}
	})
}

func TestRecomputeIsIdempotent(t *testing.T) {
	base := line().OnDiscount1PercentChange(dec("10")).OnDiscount2PercentChange(dec("5"))
	value := dec("45")

	for _, field := range Fields {
		t.Run(string(field), func(t *testing.T) {
			once, err := base.Apply(field, value)
			require.NoError(t, err)
			twice, err := once.Apply(field, value)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}
}

func TestRecomputeDoesNotMutateReceiver(t *testing.T) {
	base := line()
	_ = base.OnUnitsChange(dec("99"))
	_ = base.OnDiscount1AmountChange(dec("10"))
	assertDecimal(t, "10", base.PurchasedUnits)
	assert.True(t, base.DiscountPercentage.IsZero())
}

func TestApplyUnknownField(t *testing.T) {
	_, err := line().Apply(Field("price"), dec("1"))
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_FIELD", domainErr.Code)
	assert.Contains(t, domainErr.Message, "price")
}
