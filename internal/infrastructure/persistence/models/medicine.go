package models

import (
	"github.com/shopspring/decimal"

	"github.com/ayurcare/backend/internal/domain/catalog"
)

// MedicineModel is the persistence model for the Medicine aggregate root.
type MedicineModel struct {
	AggregateModel
	Name                 string          `gorm:"type:varchar(200);not null;uniqueIndex"`
	HSNCode              string          `gorm:"column:hsn_code;type:varchar(20)"`
	UnitName             string          `gorm:"type:varchar(30)"`
	SubUnitName          string          `gorm:"type:varchar(30)"`
	TotalQuantityInAUnit decimal.Decimal `gorm:"column:total_quantity_in_a_unit;type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (MedicineModel) TableName() string {
	return "medicines"
}

// ToDomain converts the persistence model to a domain Medicine
func (m *MedicineModel) ToDomain() *catalog.Medicine {
	return &catalog.Medicine{
		BaseAggregateRoot:    m.ToAggregateRoot(),
		Name:                 m.Name,
		HSNCode:              m.HSNCode,
		UnitName:             m.UnitName,
		SubUnitName:          m.SubUnitName,
		TotalQuantityInAUnit: m.TotalQuantityInAUnit,
	}
}

// FromDomain populates the persistence model from a domain Medicine
func (m *MedicineModel) FromDomain(med *catalog.Medicine) {
	m.FromDomainAggregateRoot(med.BaseAggregateRoot)
	m.Name = med.Name
	m.HSNCode = med.HSNCode
	m.UnitName = med.UnitName
	m.SubUnitName = med.SubUnitName
	m.TotalQuantityInAUnit = med.TotalQuantityInAUnit
}

// MedicineModelFromDomain creates a persistence model from a domain Medicine
func MedicineModelFromDomain(med *catalog.Medicine) *MedicineModel {
	m := &MedicineModel{}
	m.FromDomain(med)
	return m
}
