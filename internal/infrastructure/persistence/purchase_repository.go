package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayurcare/backend/internal/domain/inventory"
	"github.com/ayurcare/backend/internal/domain/purchase"
	"github.com/ayurcare/backend/internal/domain/shared"
	"github.com/ayurcare/backend/internal/infrastructure/persistence/models"
)

// GormPurchaseRepository implements PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// FindByID finds a purchase with its items
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchase.Purchase, error) {
	var model models.PurchaseModel
	if err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, purchase.ErrPurchaseNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds purchases matching the filter, without items
func (r *GormPurchaseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchase.Purchase, error) {
	var rows []models.PurchaseModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PurchaseModel{}), filter)
	query = paginate(query, filter, PurchaseSortFields, "purchase_date DESC")

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	purchases := make([]purchase.Purchase, len(rows))
	for i := range rows {
		purchases[i] = *rows[i].ToDomain()
	}
	return purchases, nil
}

// Count counts purchases matching the filter
func (r *GormPurchaseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PurchaseModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByInvoiceNumber checks whether the distributor's invoice was already recorded
func (r *GormPurchaseRepository) ExistsByInvoiceNumber(ctx context.Context, distributorID uuid.UUID, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PurchaseModel{}).
		Where("distributor_id = ? AND invoice_number = ?", distributorID, invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SaveWithStock saves the purchase, its items and the given stock entries in
// one transaction. An existing purchase is updated only if its stored version
// is the one it was loaded with.
func (r *GormPurchaseRepository) SaveWithStock(ctx context.Context, p *purchase.Purchase, entries []inventory.StockEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.PurchaseModelFromDomain(p)

		var existing int64
		if err := tx.Model(&models.PurchaseModel{}).Where("id = ?", p.ID).Count(&existing).Error; err != nil {
			return err
		}

		if existing == 0 {
			if err := tx.Omit("Items").Create(model).Error; err != nil {
				return err
			}
		} else if err := r.updateVersioned(tx, model); err != nil {
			return err
		}

		if err := r.saveItems(tx, p); err != nil {
			return err
		}

		for i := range entries {
			if err := tx.Save(models.StockEntryModelFromDomain(&entries[i])).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return purchase.ErrDuplicateInvoice
	}
	return err
}

func (r *GormPurchaseRepository) updateVersioned(tx *gorm.DB, model *models.PurchaseModel) error {
	result := tx.Model(&models.PurchaseModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]any{
			"discount3_percent": model.Discount3Percent,
			"discount3_amount":  model.Discount3Amount,
			"taxable_amount":    model.TaxableAmount,
			"subtotal_amount":   model.SubtotalAmount,
			"total_amount":      model.TotalAmount,
			"version":           model.Version,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormPurchaseRepository) saveItems(tx *gorm.DB, p *purchase.Purchase) error {
	currentItemIDs := make([]uuid.UUID, len(p.Items))
	for i, item := range p.Items {
		currentItemIDs[i] = item.ID
	}

	stale := tx.Where("purchase_id = ?", p.ID)
	if len(currentItemIDs) > 0 {
		stale = stale.Where("id NOT IN ?", currentItemIDs)
	}
	if err := stale.Delete(&models.PurchaseItemModel{}).Error; err != nil {
		return err
	}

	for i := range p.Items {
		p.Items[i].PurchaseID = p.ID
		if err := tx.Save(models.PurchaseItemModelFromDomain(&p.Items[i])).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a purchase together with its items and stock entries
func (r *GormPurchaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_id = ?", id).Delete(&models.StockEntryModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("purchase_id = ?", id).Delete(&models.PurchaseItemModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.PurchaseModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return purchase.ErrPurchaseNotFound
		}
		return nil
	})
}

func (r *GormPurchaseRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("invoice_number LIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "distributor_id":
			query = query.Where("distributor_id = ?", value)
		case "from_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("purchase_date >= ?", t)
			}
		case "to_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("purchase_date <= ?", t)
			}
		}
	}
	return query
}

// Ensure GormPurchaseRepository implements PurchaseRepository
var _ purchase.PurchaseRepository = (*GormPurchaseRepository)(nil)
