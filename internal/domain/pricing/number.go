// Package pricing holds the purchase line calculator shared by the bulk purchase
// drawer, the single-entry edit form and the stock edit modal.
//
// Every function is pure. Numeric edge cases (empty input, division by zero)
// degrade to zero; nothing in this package rejects a value.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseNumber converts raw form input into a decimal.
// Empty or non-numeric input yields zero.
func ParseNumber(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// PerSubUnit converts a main-unit denominated amount into its sub-unit
// equivalent. A zero factor yields zero.
func PerSubUnit(amount, subUnitsPerUnit decimal.Decimal) decimal.Decimal {
	return safeDiv(amount, subUnitsPerUnit)
}

// percentOf returns base × pct / 100.
func percentOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// remainingAfter returns base × (1 − pct/100).
func remainingAfter(base, pct decimal.Decimal) decimal.Decimal {
	return base.Sub(percentOf(base, pct))
}

// percentageFor solves amount = base × pct / 100 for pct.
// A non-positive base yields zero.
func percentageFor(amount, base decimal.Decimal) decimal.Decimal {
	if !base.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(hundred).Div(base)
}

func safeDiv(n, d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return n.Div(d)
}
