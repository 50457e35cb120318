package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayurcare/backend/internal/domain/inventory"
	"github.com/ayurcare/backend/internal/domain/shared"
	"github.com/ayurcare/backend/internal/infrastructure/persistence/models"
)

// GormStockEntryRepository implements StockEntryRepository using GORM
type GormStockEntryRepository struct {
	db *gorm.DB
}

// NewGormStockEntryRepository creates a new GormStockEntryRepository
func NewGormStockEntryRepository(db *gorm.DB) *GormStockEntryRepository {
	return &GormStockEntryRepository{db: db}
}

// FindByID finds a stock entry by its ID
func (r *GormStockEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockEntry, error) {
	return r.first(ctx, "id = ?", id)
}

// FindByPurchaseItem finds the entry recorded by one purchase line
func (r *GormStockEntryRepository) FindByPurchaseItem(ctx context.Context, purchaseItemID uuid.UUID) (*inventory.StockEntry, error) {
	return r.first(ctx, "purchase_item_id = ?", purchaseItemID)
}

// FindByPurchase finds the entries recorded by a purchase
func (r *GormStockEntryRepository) FindByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]inventory.StockEntry, error) {
	var rows []models.StockEntryModel
	if err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return stockEntriesToDomain(rows), nil
}

// FindAll finds stock entries matching the filter
func (r *GormStockEntryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.StockEntry, error) {
	var rows []models.StockEntryModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.StockEntryModel{}), filter)
	query = paginate(query, filter, StockEntrySortFields, "expiry_date ASC")

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return stockEntriesToDomain(rows), nil
}

// Count counts stock entries matching the filter
func (r *GormStockEntryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.StockEntryModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a stock entry
func (r *GormStockEntryRepository) Save(ctx context.Context, entry *inventory.StockEntry) error {
	return r.db.WithContext(ctx).Save(models.StockEntryModelFromDomain(entry)).Error
}

func (r *GormStockEntryRepository) first(ctx context.Context, cond string, arg any) (*inventory.StockEntry, error) {
	var model models.StockEntryModel
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormStockEntryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "medicine_id":
			query = query.Where("medicine_id = ?", value)
		case "batch_number":
			if batch, ok := value.(string); ok {
				query = query.Where("batch_number = ?", inventory.NormalizeBatchNumber(batch))
			}
		}
	}
	return query
}

func stockEntriesToDomain(rows []models.StockEntryModel) []inventory.StockEntry {
	entries := make([]inventory.StockEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries
}

// Ensure GormStockEntryRepository implements StockEntryRepository
var _ inventory.StockEntryRepository = (*GormStockEntryRepository)(nil)
