package purchase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayurcare/backend/internal/domain/pricing"
	"github.com/ayurcare/backend/internal/domain/purchase"
	"github.com/ayurcare/backend/internal/domain/shared/valueobject"
)

// LineRequest is one medicine row of the bulk purchase form, in main units.
// A discount given as an amount takes precedence over its percentage.
type LineRequest struct {
	Medicine            uuid.UUID        `json:"medicine"`
	Units               decimal.Decimal  `json:"units"`
	PricePerMainUnit    decimal.Decimal  `json:"pricePerMainUnit"`
	DiscountPercentage  decimal.Decimal  `json:"discountPercentage"`
	DiscountPrice       *decimal.Decimal `json:"discountPrice,omitempty"`
	Discount2Percentage decimal.Decimal  `json:"discount2Percentage"`
	Discount2Price      *decimal.Decimal `json:"discount2Price,omitempty"`
	Tax                 *pricing.TaxSpec `json:"tax,omitempty"`
	MRP                 decimal.Decimal  `json:"mrp"`
	SellingPrice        decimal.Decimal  `json:"sellingPrice"`
	BatchNumber         string           `json:"batchNumber"`
	HSNCode             string           `json:"hsnCode"`
	ManufacturingDate   string           `json:"manufacturingDate,omitempty"`
	ExpiryDate          string           `json:"expiryDate"`
}

// DraftRequest is the bulk purchase form. Discount3 is given either as a
// percentage of the subtotal or as a flat amount, never both.
type DraftRequest struct {
	InvoiceNumber    string          `json:"invoiceNumber"`
	Distributor      uuid.UUID       `json:"distributor"`
	PurchaseDate     string          `json:"purchaseDate"`
	Discount3Percent decimal.Decimal `json:"discount3Percent"`
	Discount3Amount  decimal.Decimal `json:"discount3Amount"`
	Medicines        []LineRequest   `json:"medicines"`
}

// RecomputeRequest applies one field edit to a line. Value is the raw form
// input; empty or non-numeric input counts as zero.
type RecomputeRequest struct {
	Line  LineRequest `json:"line"`
	Field string      `json:"field" binding:"required"`
	Value string      `json:"value"`
}

// SingleEntryRequest is the single-entry edit form. Quantity and price are in sub-units.
type SingleEntryRequest struct {
	TotalPurchasedUnit decimal.Decimal  `json:"totalPurchasedUnit"`
	PricePerUnit       decimal.Decimal  `json:"pricePerUnit"`
	DiscountPercentage decimal.Decimal  `json:"discountPercentage"`
	Tax                *pricing.TaxSpec `json:"tax,omitempty"`
}

// PurchaseListFilter represents filter options for the purchase list
type PurchaseListFilter struct {
	Search        string     `form:"search"`
	DistributorID *uuid.UUID `form:"distributor_id"`
	FromDate      string     `form:"from_date"`
	ToDate        string     `form:"to_date"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LineResponse is a main-unit line with every derived figure
type LineResponse struct {
	Medicine            uuid.UUID       `json:"medicine"`
	SubUnitsPerUnit     decimal.Decimal `json:"subUnitsPerUnit"`
	Units               decimal.Decimal `json:"units"`
	TotalPurchasedUnit  decimal.Decimal `json:"totalPurchasedUnit"`
	PricePerMainUnit    decimal.Decimal `json:"pricePerMainUnit"`
	PricePerSubUnit     decimal.Decimal `json:"pricePerSubUnit"`
	PurchasePrice       decimal.Decimal `json:"purchasePrice"`
	DiscountPercentage  decimal.Decimal `json:"discountPercentage"`
	DiscountPrice       decimal.Decimal `json:"discountPrice"`
	AfterDiscount1      decimal.Decimal `json:"afterDiscount1"`
	Discount2Percentage decimal.Decimal `json:"discount2Percentage"`
	Discount2Price      decimal.Decimal `json:"discount2Price"`
	TaxableAmount       decimal.Decimal `json:"taxableAmount"`
	Tax                 pricing.TaxSpec `json:"tax"`
	TaxPercentage       decimal.Decimal `json:"taxPercentage"`
	TaxAmount           decimal.Decimal `json:"taxAmount"`
	FinalPrice          decimal.Decimal `json:"finalPrice"`
	MRP                 decimal.Decimal `json:"mrp"`
	SellingPrice        decimal.Decimal `json:"sellingPrice"`
	BatchNumber         string          `json:"batchNumber"`
	HSNCode             string          `json:"hsnCode"`
}

// QuoteResponse holds the priced lines, the bill totals and the payload
// that submitting the draft would send
type QuoteResponse struct {
	Lines           []LineResponse   `json:"lines"`
	TaxableAmount   decimal.Decimal  `json:"taxableAmount"`
	SubtotalAmount  decimal.Decimal  `json:"subtotalAmount"`
	Discount3Amount decimal.Decimal  `json:"discount3Amount"`
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
	Payload         purchase.Payload `json:"payload"`
}

// SingleEntryResponse holds the single-entry figures
type SingleEntryResponse struct {
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxableAmount  decimal.Decimal `json:"taxableAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
}

// PurchaseItemResponse is a stored purchase line, in sub-units
type PurchaseItemResponse struct {
	ID uuid.UUID `json:"id"`
	purchase.LinePayload
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	FinalPrice    decimal.Decimal `json:"finalPrice"`
}

// PurchaseResponse represents a stored purchase in API responses
type PurchaseResponse struct {
	ID               uuid.UUID              `json:"id"`
	InvoiceNumber    string                 `json:"invoiceNumber"`
	Distributor      uuid.UUID              `json:"distributor"`
	PurchaseDate     string                 `json:"purchaseDate"`
	Discount3Percent decimal.Decimal        `json:"discount3Percent"`
	Discount3Amount  decimal.Decimal        `json:"discount3Amount"`
	TaxableAmount    decimal.Decimal        `json:"taxableAmount"`
	SubtotalAmount   decimal.Decimal        `json:"subtotalAmount"`
	TotalAmount      decimal.Decimal        `json:"totalAmount"`
	Total            string                 `json:"total"`
	Medicines        []PurchaseItemResponse `json:"medicines"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
	Version          int                    `json:"version"`
}

// PurchaseListResponse is a purchase without its lines
type PurchaseListResponse struct {
	ID             uuid.UUID       `json:"id"`
	InvoiceNumber  string          `json:"invoiceNumber"`
	Distributor    uuid.UUID       `json:"distributor"`
	PurchaseDate   string          `json:"purchaseDate"`
	TaxableAmount  decimal.Decimal `json:"taxableAmount"`
	SubtotalAmount decimal.Decimal `json:"subtotalAmount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// UpdateSingleEntryResponse holds the repriced line and the refreshed purchase
type UpdateSingleEntryResponse struct {
	Entry    SingleEntryResponse `json:"entry"`
	Purchase PurchaseResponse    `json:"purchase"`
}

// ToLineResponse converts a calculator line to its response form
func ToLineResponse(l pricing.PurchaseLine) LineResponse {
	return LineResponse{
		Medicine:            l.MedicineID,
		SubUnitsPerUnit:     l.SubUnitsPerUnit,
		Units:               l.PurchasedUnits,
		TotalPurchasedUnit:  l.TotalPurchasedUnit(),
		PricePerMainUnit:    l.PricePerMainUnit,
		PricePerSubUnit:     l.PricePerSubUnit(),
		PurchasePrice:       l.PurchasePrice(),
		DiscountPercentage:  l.DiscountPercentage,
		DiscountPrice:       l.DiscountPrice(),
		AfterDiscount1:      l.AfterDiscount1(),
		Discount2Percentage: l.Discount2Percentage,
		Discount2Price:      l.Discount2Price(),
		TaxableAmount:       l.AfterDiscount2(),
		Tax:                 pricing.SpecOf(l.Tax),
		TaxPercentage:       l.TaxPercentage(),
		TaxAmount:           l.TaxAmount(),
		FinalPrice:          l.FinalPrice(),
		MRP:                 l.MRP,
		SellingPrice:        l.SellingPrice,
		BatchNumber:         l.BatchNumber,
		HSNCode:             l.HSNCode,
	}
}

// ToSingleEntryResponse converts a single-entry result to its response form
func ToSingleEntryResponse(r pricing.SingleEntryResult) SingleEntryResponse {
	return SingleEntryResponse{
		TotalPrice:     r.TotalPrice,
		DiscountAmount: r.DiscountAmount,
		TaxableAmount:  r.TaxableAmount,
		TaxAmount:      r.TaxAmount,
		GrandTotal:     r.GrandTotal,
	}
}

// Display controls how the bill total is rendered in responses
type Display struct {
	Currency valueobject.Currency
	Places   int32
}

// DefaultDisplay renders totals in INR with two decimal places
func DefaultDisplay() Display {
	return Display{Currency: valueobject.DefaultCurrency, Places: valueobject.DefaultPlaces}
}

// ToPurchaseResponse converts a domain Purchase to PurchaseResponse
func ToPurchaseResponse(p *purchase.Purchase, display Display) PurchaseResponse {
	items := make([]PurchaseItemResponse, len(p.Items))
	for i, item := range p.Items {
		items[i] = PurchaseItemResponse{
			ID:            item.ID,
			LinePayload:   item.Payload(),
			TaxableAmount: item.TaxableAmount,
			TaxAmount:     item.TaxAmount,
			FinalPrice:    item.FinalPrice,
		}
	}
	return PurchaseResponse{
		ID:               p.ID,
		InvoiceNumber:    p.InvoiceNumber,
		Distributor:      p.DistributorID,
		PurchaseDate:     purchase.FormatTimestamp(p.PurchaseDate),
		Discount3Percent: p.Discount3Percent,
		Discount3Amount:  p.Discount3Amount,
		TaxableAmount:    p.TaxableAmount,
		SubtotalAmount:   p.SubtotalAmount,
		TotalAmount:      p.TotalAmount,
		Total:            p.GetTotalMoney(display.Currency).Format(display.Places),
		Medicines:        items,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Version:          p.Version,
	}
}

// ToPurchaseListResponse converts a domain Purchase to its list form
func ToPurchaseListResponse(p *purchase.Purchase) PurchaseListResponse {
	return PurchaseListResponse{
		ID:             p.ID,
		InvoiceNumber:  p.InvoiceNumber,
		Distributor:    p.DistributorID,
		PurchaseDate:   purchase.FormatTimestamp(p.PurchaseDate),
		TaxableAmount:  p.TaxableAmount,
		SubtotalAmount: p.SubtotalAmount,
		TotalAmount:    p.TotalAmount,
		CreatedAt:      p.CreatedAt,
	}
}
