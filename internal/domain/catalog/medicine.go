package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayurcare/backend/internal/domain/pricing"
	"github.com/ayurcare/backend/internal/domain/shared"
)

// Medicine is the master record of a medicine that can be purchased.
// TotalQuantityInAUnit is the number of sub-units (tablets, ml) in one
// main unit (strip, bottle) and is fixed for the medicine.
type Medicine struct {
	shared.BaseAggregateRoot
	Name                 string
	HSNCode              string
	UnitName             string
	SubUnitName          string
	TotalQuantityInAUnit decimal.Decimal
}

// NewMedicine creates a new medicine master record
func NewMedicine(name, hsnCode, unitName, subUnitName string, totalQuantityInAUnit decimal.Decimal) (*Medicine, error) {
	name = strings.TrimSpace(name)
	if err := validateMedicineName(name); err != nil {
		return nil, err
	}
	if err := validateHSNCode(hsnCode); err != nil {
		return nil, err
	}
	if err := validateConversionFactor(totalQuantityInAUnit); err != nil {
		return nil, err
	}

	return &Medicine{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		Name:                 name,
		HSNCode:              strings.TrimSpace(hsnCode),
		UnitName:             strings.TrimSpace(unitName),
		SubUnitName:          strings.TrimSpace(subUnitName),
		TotalQuantityInAUnit: totalQuantityInAUnit,
	}, nil
}

// Update changes the descriptive fields of the medicine.
// The conversion factor is immutable once stock has been recorded against it.
func (m *Medicine) Update(name, hsnCode, unitName, subUnitName string) error {
	name = strings.TrimSpace(name)
	if err := validateMedicineName(name); err != nil {
		return err
	}
	if err := validateHSNCode(hsnCode); err != nil {
		return err
	}

	m.Name = name
	m.HSNCode = strings.TrimSpace(hsnCode)
	m.UnitName = strings.TrimSpace(unitName)
	m.SubUnitName = strings.TrimSpace(subUnitName)
	m.IncrementVersion()
	return nil
}

// NewPurchaseLine starts an empty purchase line for this medicine
func (m *Medicine) NewPurchaseLine() pricing.PurchaseLine {
	line := pricing.NewPurchaseLine(m.ID, m.TotalQuantityInAUnit)
	line.HSNCode = m.HSNCode
	return line
}

// Index maps medicines by ID
func Index(medicines []Medicine) map[uuid.UUID]*Medicine {
	index := make(map[uuid.UUID]*Medicine, len(medicines))
	for i := range medicines {
		index[medicines[i].ID] = &medicines[i]
	}
	return index
}

func validateMedicineName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Medicine name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Medicine name cannot exceed 200 characters")
	}
	return nil
}

func validateHSNCode(code string) error {
	if len(strings.TrimSpace(code)) > 20 {
		return shared.NewDomainError("INVALID_HSN_CODE", "HSN code cannot exceed 20 characters")
	}
	return nil
}

func validateConversionFactor(factor decimal.Decimal) error {
	if !factor.IsPositive() {
		return shared.NewDomainError("INVALID_CONVERSION_FACTOR", "Total quantity in a unit must be positive")
	}
	return nil
}
