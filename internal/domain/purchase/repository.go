package purchase

import (
	"context"

	"github.com/google/uuid"

	"github.com/ayurcare/backend/internal/domain/inventory"
	"github.com/ayurcare/backend/internal/domain/shared"
)

// PurchaseRepository defines the interface for purchase persistence
type PurchaseRepository interface {
	// FindByID finds a purchase with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Purchase, error)

	// FindAll finds purchases matching the filter, without items.
	// Supported filters: distributor_id, from_date, to_date.
	FindAll(ctx context.Context, filter shared.Filter) ([]Purchase, error)

	// Count counts purchases matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByInvoiceNumber checks whether the distributor's invoice was already recorded
	ExistsByInvoiceNumber(ctx context.Context, distributorID uuid.UUID, invoiceNumber string) (bool, error)

	// SaveWithStock saves the purchase, its items and the given stock entries
	// in one transaction. Nothing is persisted when any write fails.
	SaveWithStock(ctx context.Context, purchase *Purchase, entries []inventory.StockEntry) error

	// Delete removes a purchase together with its items and stock entries
	Delete(ctx context.Context, id uuid.UUID) error
}
