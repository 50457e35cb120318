package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayurcare/backend/internal/domain/inventory"
)

// FieldEdit is one keystroke-level edit of a main-unit stock line
type FieldEdit struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// RepriceRequest represents an edit made in the stock edit modal.
// Prices are per main unit; edits are applied in order.
type RepriceRequest struct {
	Edits         []FieldEdit      `json:"edits" binding:"dive"`
	TaxPercentage *decimal.Decimal `json:"taxPercentage"`
	MRP           *decimal.Decimal `json:"mrp"`
	SellingPrice  *decimal.Decimal `json:"sellingPrice"`
	BatchNumber   *string          `json:"batchNumber"`
	ExpiryDate    *string          `json:"expiryDate"`
}

// StockListFilter represents filter options for the stock list
type StockListFilter struct {
	MedicineID  *uuid.UUID `form:"medicine_id"`
	BatchNumber string     `form:"batch_number"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StockEntryResponse represents a stock entry in API responses. Stored
// figures are per sub-unit; Units and PricePerMainUnit are the main-unit view.
type StockEntryResponse struct {
	ID                  uuid.UUID       `json:"id"`
	MedicineID          uuid.UUID       `json:"medicineId"`
	PurchaseID          uuid.UUID       `json:"purchaseId"`
	PurchaseItemID      uuid.UUID       `json:"purchaseItemId"`
	BatchNumber         string          `json:"batchNumber"`
	SubUnitsPerUnit     decimal.Decimal `json:"subUnitsPerUnit"`
	Quantity            decimal.Decimal `json:"quantity"`
	PricePerUnit        decimal.Decimal `json:"pricePerUnit"`
	MRP                 decimal.Decimal `json:"mrp"`
	SellingPrice        decimal.Decimal `json:"sellingPrice"`
	Units               decimal.Decimal `json:"units"`
	PricePerMainUnit    decimal.Decimal `json:"pricePerMainUnit"`
	DiscountPercentage  decimal.Decimal `json:"discountPercentage"`
	Discount2Percentage decimal.Decimal `json:"discount2Percentage"`
	TaxPercentage       decimal.Decimal `json:"taxPercentage"`
	TaxableAmount       decimal.Decimal `json:"taxableAmount"`
	Amount              decimal.Decimal `json:"amount"`
	ManufacturingDate   *time.Time      `json:"manufacturingDate,omitempty"`
	ExpiryDate          time.Time       `json:"expiryDate"`
	Expired             bool            `json:"expired"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	Version             int             `json:"version"`
}

// ToStockEntryResponse converts a domain StockEntry to StockEntryResponse
func ToStockEntryResponse(e *inventory.StockEntry, now time.Time) StockEntryResponse {
	line := e.Line()
	return StockEntryResponse{
		ID:                  e.ID,
		MedicineID:          e.MedicineID,
		PurchaseID:          e.PurchaseID,
		PurchaseItemID:      e.PurchaseItemID,
		BatchNumber:         e.BatchNumber,
		SubUnitsPerUnit:     e.SubUnitsPerUnit,
		Quantity:            e.Quantity,
		PricePerUnit:        e.PricePerUnit,
		MRP:                 e.MRP,
		SellingPrice:        e.SellingPrice,
		Units:               line.PurchasedUnits,
		PricePerMainUnit:    line.PricePerMainUnit,
		DiscountPercentage:  e.DiscountPercentage,
		Discount2Percentage: e.Discount2Percentage,
		TaxPercentage:       e.TaxPercentage,
		TaxableAmount:       e.TaxableAmount,
		Amount:              e.Amount,
		ManufacturingDate:   e.ManufacturingDate,
		ExpiryDate:          e.ExpiryDate,
		Expired:             e.IsExpired(now),
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
		Version:             e.Version,
	}
}
