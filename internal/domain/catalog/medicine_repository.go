package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/ayurcare/backend/internal/domain/shared"
)

// MedicineRepository defines the interface for medicine persistence
type MedicineRepository interface {
	// FindByID finds a medicine by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Medicine, error)

	// FindByIDs finds multiple medicines by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Medicine, error)

	// FindAll finds all medicines matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Medicine, error)

	// Count counts medicines matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByName checks whether a medicine with the name exists
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Save creates or updates a medicine
	Save(ctx context.Context, medicine *Medicine) error
}
