package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayurcare/backend/internal/domain/inventory"
)

// StockEntryModel is the persistence model for the StockEntry aggregate root.
type StockEntryModel struct {
	AggregateModel
	MedicineID          uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_entry_medicine_batch,priority:1"`
	PurchaseID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchaseItemID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	BatchNumber         string          `gorm:"type:varchar(50);not null;index:idx_stock_entry_medicine_batch,priority:2"`
	SubUnitsPerUnit     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity            decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PricePerUnit        decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	MRP                 decimal.Decimal `gorm:"column:mrp;type:decimal(18,6);not null;default:0"`
	SellingPrice        decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	DiscountPercentage  decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	Discount2Percentage decimal.Decimal `gorm:"column:discount2_percentage;type:decimal(9,4);not null;default:0"`
	TaxPercentage       decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	TaxableAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Amount              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ManufacturingDate   *time.Time
	ExpiryDate          time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockEntryModel) TableName() string {
	return "stock_entries"
}

// ToDomain converts the persistence model to a domain StockEntry
func (m *StockEntryModel) ToDomain() *inventory.StockEntry {
	return &inventory.StockEntry{
		BaseAggregateRoot:   m.ToAggregateRoot(),
		MedicineID:          m.MedicineID,
		PurchaseID:          m.PurchaseID,
		PurchaseItemID:      m.PurchaseItemID,
		BatchNumber:         m.BatchNumber,
		SubUnitsPerUnit:     m.SubUnitsPerUnit,
		Quantity:            m.Quantity,
		PricePerUnit:        m.PricePerUnit,
		MRP:                 m.MRP,
		SellingPrice:        m.SellingPrice,
		DiscountPercentage:  m.DiscountPercentage,
		Discount2Percentage: m.Discount2Percentage,
		TaxPercentage:       m.TaxPercentage,
		TaxableAmount:       m.TaxableAmount,
		Amount:              m.Amount,
		ManufacturingDate:   utcPtr(m.ManufacturingDate),
		ExpiryDate:          m.ExpiryDate.UTC(),
	}
}

// FromDomain populates the persistence model from a domain StockEntry
func (m *StockEntryModel) FromDomain(e *inventory.StockEntry) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.MedicineID = e.MedicineID
	m.PurchaseID = e.PurchaseID
	m.PurchaseItemID = e.PurchaseItemID
	m.BatchNumber = e.BatchNumber
	m.SubUnitsPerUnit = e.SubUnitsPerUnit
	m.Quantity = e.Quantity
	m.PricePerUnit = e.PricePerUnit
	m.MRP = e.MRP
	m.SellingPrice = e.SellingPrice
	m.DiscountPercentage = e.DiscountPercentage
	m.Discount2Percentage = e.Discount2Percentage
	m.TaxPercentage = e.TaxPercentage
	m.TaxableAmount = e.TaxableAmount
	m.Amount = e.Amount
	m.ManufacturingDate = e.ManufacturingDate
	m.ExpiryDate = e.ExpiryDate
}

// StockEntryModelFromDomain creates a persistence model from a domain StockEntry
func StockEntryModelFromDomain(e *inventory.StockEntry) *StockEntryModel {
	m := &StockEntryModel{}
	m.FromDomain(e)
	return m
}

// All returns every persistence model, in dependency order, for AutoMigrate
func All() []any {
	return []any{
		&MedicineModel{},
		&PurchaseModel{},
		&PurchaseItemModel{},
		&StockEntryModel{},
	}
}
