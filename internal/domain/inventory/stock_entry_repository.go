package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/ayurcare/backend/internal/domain/shared"
)

// StockEntryRepository defines the interface for stock entry persistence
type StockEntryRepository interface {
	// FindByID finds a stock entry by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockEntry, error)

	// FindByPurchase finds the entries recorded by a purchase
	FindByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]StockEntry, error)

	// FindByPurchaseItem finds the entry recorded by one purchase line
	FindByPurchaseItem(ctx context.Context, purchaseItemID uuid.UUID) (*StockEntry, error)

	// FindAll finds stock entries matching the filter.
	// Supported filters: medicine_id, batch_number.
	FindAll(ctx context.Context, filter shared.Filter) ([]StockEntry, error)

	// Count counts stock entries matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a stock entry
	Save(ctx context.Context, entry *StockEntry) error
}
