package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/ayurcare/backend/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// MedicineSortFields contains allowed sort fields for medicines
var MedicineSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"hsn_code":   true,
}

// PurchaseSortFields contains allowed sort fields for purchases
var PurchaseSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"purchase_date":  true,
	"invoice_number": true,
	"total_amount":   true,
}

// StockEntrySortFields contains allowed sort fields for stock entries
var StockEntrySortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"batch_number": true,
	"expiry_date":  true,
	"quantity":     true,
}

// paginate applies page, page size and whitelisted ordering to a query
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultOrder string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, allowed, "")
	if sortField == "" {
		return query.Order(defaultOrder)
	}
	return query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))
}
