package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayurcare/backend/internal/domain/catalog"
)

// CreateMedicineRequest represents a request to create a medicine master record
type CreateMedicineRequest struct {
	Name                 string          `json:"name" binding:"required,min=1,max=200"`
	HSNCode              string          `json:"hsnCode" binding:"max=20"`
	UnitName             string          `json:"unitName" binding:"max=50"`
	SubUnitName          string          `json:"subUnitName" binding:"max=50"`
	TotalQuantityInAUnit decimal.Decimal `json:"totalQuantityInAUnit" binding:"gt=0"`
}

// UpdateMedicineRequest represents a request to update the descriptive fields of a medicine
type UpdateMedicineRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	HSNCode     string `json:"hsnCode" binding:"max=20"`
	UnitName    string `json:"unitName" binding:"max=50"`
	SubUnitName string `json:"subUnitName" binding:"max=50"`
}

// MedicineListFilter represents filter options for the medicine list
type MedicineListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MedicineResponse represents a medicine in API responses
type MedicineResponse struct {
	ID                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	HSNCode              string          `json:"hsnCode"`
	UnitName             string          `json:"unitName"`
	SubUnitName          string          `json:"subUnitName"`
	TotalQuantityInAUnit decimal.Decimal `json:"totalQuantityInAUnit"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
	Version              int             `json:"version"`
}

// ToMedicineResponse converts a domain Medicine to MedicineResponse
func ToMedicineResponse(m *catalog.Medicine) MedicineResponse {
	return MedicineResponse{
		ID:                   m.ID,
		Name:                 m.Name,
		HSNCode:              m.HSNCode,
		UnitName:             m.UnitName,
		SubUnitName:          m.SubUnitName,
		TotalQuantityInAUnit: m.TotalQuantityInAUnit,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
		Version:              m.Version,
	}
}

// ToMedicineResponses converts a slice of domain Medicines to responses
func ToMedicineResponses(medicines []catalog.Medicine) []MedicineResponse {
	responses := make([]MedicineResponse, len(medicines))
	for i := range medicines {
		responses[i] = ToMedicineResponse(&medicines[i])
	}
	return responses
}
