package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ayurcare/backend/internal/domain/shared"
)

// TaxKind identifies one of the supported tax modes
type TaxKind string

const (
	TaxKindNone    TaxKind = "noTax"
	TaxKindCentral TaxKind = "central"
	TaxKindState   TaxKind = "state"
	TaxKindFlat    TaxKind = "flat"
)

// TaxMode is the tax applied to a line after both discounts.
// Implementations are NoTax, CentralTax, StateTax and FlatTax.
type TaxMode interface {
	Kind() TaxKind
	// Rate is the effective percentage charged on the taxable amount
	Rate() decimal.Decimal
	// Amount is the tax charged on the given taxable amount
	Amount(taxable decimal.Decimal) decimal.Decimal
}

// NoTax charges nothing
type NoTax struct{}

func (NoTax) Kind() TaxKind                          { return TaxKindNone }
func (NoTax) Rate() decimal.Decimal                  { return decimal.Zero }
func (NoTax) Amount(decimal.Decimal) decimal.Decimal { return decimal.Zero }

// CentralTax is inter-state GST charged as IGST
type CentralTax struct {
	IGST decimal.Decimal
}

func (CentralTax) Kind() TaxKind           { return TaxKindCentral }
func (t CentralTax) Rate() decimal.Decimal { return t.IGST }
func (t CentralTax) Amount(taxable decimal.Decimal) decimal.Decimal {
	return percentOf(taxable, t.IGST)
}

// StateTax is intra-state GST split into CGST and SGST
type StateTax struct {
	CGST decimal.Decimal
	SGST decimal.Decimal
}

func (StateTax) Kind() TaxKind           { return TaxKindState }
func (t StateTax) Rate() decimal.Decimal { return t.CGST.Add(t.SGST) }

// Amount charges each component separately and sums them
func (t StateTax) Amount(taxable decimal.Decimal) decimal.Decimal {
	return percentOf(taxable, t.CGST).Add(percentOf(taxable, t.SGST))
}

// FlatTax is the single taxPercentage used by the bulk purchase drawer
type FlatTax struct {
	Percentage decimal.Decimal
}

func (FlatTax) Kind() TaxKind           { return TaxKindFlat }
func (t FlatTax) Rate() decimal.Decimal { return t.Percentage }
func (t FlatTax) Amount(taxable decimal.Decimal) decimal.Decimal {
	return percentOf(taxable, t.Percentage)
}

// RateOf returns the effective rate of mode; a nil mode has rate zero
func RateOf(mode TaxMode) decimal.Decimal {
	return orNone(mode).Rate()
}

// orNone maps a nil mode to NoTax
func orNone(mode TaxMode) TaxMode {
	if mode == nil {
		return NoTax{}
	}
	return mode
}

// ErrUnknownTaxType is returned when a TaxSpec names an unsupported mode
var ErrUnknownTaxType = shared.NewDomainError("INVALID_TAX_TYPE", "Tax type must be one of noTax, central, state, flat")

// TaxSpec is the wire form of a TaxMode
type TaxSpec struct {
	Type       TaxKind         `json:"type" binding:"omitempty,oneof=noTax central state flat" jsonschema:"enum=noTax,enum=central,enum=state,enum=flat"`
	IGST       decimal.Decimal `json:"igst,omitzero"`
	CGST       decimal.Decimal `json:"cgst,omitzero"`
	SGST       decimal.Decimal `json:"sgst,omitzero"`
	Percentage decimal.Decimal `json:"percentage,omitzero"`
}

// ToMode resolves the spec into its TaxMode. An empty type means no tax.
func (s TaxSpec) ToMode() (TaxMode, error) {
	switch s.Type {
	case "", TaxKindNone:
		return NoTax{}, nil
	case TaxKindCentral:
		return CentralTax{IGST: s.IGST}, nil
	case TaxKindState:
		return StateTax{CGST: s.CGST, SGST: s.SGST}, nil
	case TaxKindFlat:
		return FlatTax{Percentage: s.Percentage}, nil
	default:
		return nil, shared.NewDomainError(ErrUnknownTaxType.Code, fmt.Sprintf("%s, got %q", ErrUnknownTaxType.Message, s.Type))
	}
}

// SpecOf returns the wire form of a TaxMode
func SpecOf(mode TaxMode) TaxSpec {
	switch m := orNone(mode).(type) {
	case CentralTax:
		return TaxSpec{Type: TaxKindCentral, IGST: m.IGST}
	case StateTax:
		return TaxSpec{Type: TaxKindState, CGST: m.CGST, SGST: m.SGST}
	case FlatTax:
		return TaxSpec{Type: TaxKindFlat, Percentage: m.Percentage}
	default:
		return TaxSpec{Type: TaxKindNone}
	}
}
