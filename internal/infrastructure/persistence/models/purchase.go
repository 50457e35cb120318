package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayurcare/backend/internal/domain/pricing"
	"github.com/ayurcare/backend/internal/domain/purchase"
)

// PurchaseModel is the persistence model for the Purchase aggregate root.
type PurchaseModel struct {
	AggregateModel
	InvoiceNumber    string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_purchase_distributor_invoice,priority:2"`
	DistributorID    uuid.UUID           `gorm:"type:uuid;not null;uniqueIndex:idx_purchase_distributor_invoice,priority:1"`
	PurchaseDate     time.Time           `gorm:"not null;index"`
	Items            []PurchaseItemModel `gorm:"foreignKey:PurchaseID;references:ID"`
	Discount3Percent decimal.Decimal     `gorm:"column:discount3_percent;type:decimal(9,4);not null;default:0"`
	Discount3Amount  decimal.Decimal     `gorm:"column:discount3_amount;type:decimal(18,4);not null;default:0"`
	TaxableAmount    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	SubtotalAmount   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	IdempotencyKey   string              `gorm:"type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (PurchaseModel) TableName() string {
	return "purchases"
}

// ToDomain converts the persistence model to a domain Purchase
func (m *PurchaseModel) ToDomain() *purchase.Purchase {
	p := &purchase.Purchase{
		BaseAggregateRoot: m.ToAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		DistributorID:     m.DistributorID,
		PurchaseDate:      m.PurchaseDate.UTC(),
		Discount3Percent:  m.Discount3Percent,
		Discount3Amount:   m.Discount3Amount,
		TaxableAmount:     m.TaxableAmount,
		SubtotalAmount:    m.SubtotalAmount,
		TotalAmount:       m.TotalAmount,
		IdempotencyKey:    m.IdempotencyKey,
		Items:             make([]purchase.PurchaseItem, len(m.Items)),
	}
	for i, item := range m.Items {
		p.Items[i] = *item.ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain Purchase
func (m *PurchaseModel) FromDomain(p *purchase.Purchase) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.InvoiceNumber = p.InvoiceNumber
	m.DistributorID = p.DistributorID
	m.PurchaseDate = p.PurchaseDate
	m.Discount3Percent = p.Discount3Percent
	m.Discount3Amount = p.Discount3Amount
	m.TaxableAmount = p.TaxableAmount
	m.SubtotalAmount = p.SubtotalAmount
	m.TotalAmount = p.TotalAmount
	m.IdempotencyKey = p.IdempotencyKey
	m.Items = make([]PurchaseItemModel, len(p.Items))
	for i := range p.Items {
		m.Items[i] = *PurchaseItemModelFromDomain(&p.Items[i])
	}
}

// PurchaseModelFromDomain creates a persistence model from a domain Purchase
func PurchaseModelFromDomain(p *purchase.Purchase) *PurchaseModel {
	m := &PurchaseModel{}
	m.FromDomain(p)
	return m
}

// PurchaseItemModel is the persistence model for the PurchaseItem entity.
// Quantities and prices are stored per sub-unit.
type PurchaseItemModel struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key"`
	PurchaseID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	MedicineID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	SubUnitsPerUnit     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPurchasedUnit  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PricePerUnit        decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	PurchasePrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MRP                 decimal.Decimal `gorm:"column:mrp;type:decimal(18,6);not null;default:0"`
	SellingPrice        decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	BatchNumber         string          `gorm:"type:varchar(50);not null"`
	HSNCode             string          `gorm:"column:hsn_code;type:varchar(20)"`
	ManufacturingDate   *time.Time
	ExpiryDate          time.Time       `gorm:"not null"`
	DiscountPercentage  decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	DiscountPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Discount2Percentage decimal.Decimal `gorm:"column:discount2_percentage;type:decimal(9,4);not null;default:0"`
	Discount2Price      decimal.Decimal `gorm:"column:discount2_price;type:decimal(18,4);not null;default:0"`
	TaxType             string          `gorm:"type:varchar(10);not null;default:'noTax'"`
	IGST                decimal.Decimal `gorm:"column:igst;type:decimal(9,4);not null;default:0"`
	CGST                decimal.Decimal `gorm:"column:cgst;type:decimal(9,4);not null;default:0"`
	SGST                decimal.Decimal `gorm:"column:sgst;type:decimal(9,4);not null;default:0"`
	TaxPercentage       decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0"`
	TaxableAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FinalPrice          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt           time.Time       `gorm:"not null"`
	UpdatedAt           time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseItemModel) TableName() string {
	return "purchase_items"
}

// ToDomain converts the persistence model to a domain PurchaseItem
func (m *PurchaseItemModel) ToDomain() *purchase.PurchaseItem {
	return &purchase.PurchaseItem{
		ID:                  m.ID,
		PurchaseID:          m.PurchaseID,
		MedicineID:          m.MedicineID,
		SubUnitsPerUnit:     m.SubUnitsPerUnit,
		TotalPurchasedUnit:  m.TotalPurchasedUnit,
		PricePerUnit:        m.PricePerUnit,
		PurchasePrice:       m.PurchasePrice,
		MRP:                 m.MRP,
		SellingPrice:        m.SellingPrice,
		BatchNumber:         m.BatchNumber,
		HSNCode:             m.HSNCode,
		ManufacturingDate:   utcPtr(m.ManufacturingDate),
		ExpiryDate:          m.ExpiryDate.UTC(),
		DiscountPercentage:  m.DiscountPercentage,
		DiscountPrice:       m.DiscountPrice,
		Discount2Percentage: m.Discount2Percentage,
		Discount2Price:      m.Discount2Price,
		Tax: pricing.TaxSpec{
			Type:       pricing.TaxKind(m.TaxType),
			IGST:       m.IGST,
			CGST:       m.CGST,
			SGST:       m.SGST,
			Percentage: flatPercentage(pricing.TaxKind(m.TaxType), m.TaxPercentage),
		},
		TaxPercentage: m.TaxPercentage,
		TaxableAmount: m.TaxableAmount,
		TaxAmount:     m.TaxAmount,
		FinalPrice:    m.FinalPrice,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain PurchaseItem
func (m *PurchaseItemModel) FromDomain(i *purchase.PurchaseItem) {
	m.ID = i.ID
	m.PurchaseID = i.PurchaseID
	m.MedicineID = i.MedicineID
	m.SubUnitsPerUnit = i.SubUnitsPerUnit
	m.TotalPurchasedUnit = i.TotalPurchasedUnit
	m.PricePerUnit = i.PricePerUnit
	m.PurchasePrice = i.PurchasePrice
	m.MRP = i.MRP
	m.SellingPrice = i.SellingPrice
	m.BatchNumber = i.BatchNumber
	m.HSNCode = i.HSNCode
	m.ManufacturingDate = i.ManufacturingDate
	m.ExpiryDate = i.ExpiryDate
	m.DiscountPercentage = i.DiscountPercentage
	m.DiscountPrice = i.DiscountPrice
	m.Discount2Percentage = i.Discount2Percentage
	m.Discount2Price = i.Discount2Price
	m.TaxType = string(i.Tax.Type)
	if m.TaxType == "" {
		m.TaxType = string(pricing.TaxKindNone)
	}
	m.IGST = i.Tax.IGST
	m.CGST = i.Tax.CGST
	m.SGST = i.Tax.SGST
	m.TaxPercentage = i.TaxPercentage
	m.TaxableAmount = i.TaxableAmount
	m.TaxAmount = i.TaxAmount
	m.FinalPrice = i.FinalPrice
	m.CreatedAt = i.CreatedAt
	m.UpdatedAt = i.UpdatedAt
}

// PurchaseItemModelFromDomain creates a persistence model from a domain PurchaseItem
func PurchaseItemModelFromDomain(i *purchase.PurchaseItem) *PurchaseItemModel {
	m := &PurchaseItemModel{}
	m.FromDomain(i)
	return m
}

// flat rates live in tax_percentage, so the TaxSpec percentage is only restored for flat tax
func flatPercentage(kind pricing.TaxKind, rate decimal.Decimal) decimal.Decimal {
	if kind == pricing.TaxKindFlat {
		return rate
	}
	return decimal.Zero
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
