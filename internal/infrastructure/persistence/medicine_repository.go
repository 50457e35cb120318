package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayurcare/backend/internal/domain/catalog"
	"github.com/ayurcare/backend/internal/domain/shared"
	"github.com/ayurcare/backend/internal/infrastructure/persistence/models"
)

// GormMedicineRepository implements MedicineRepository using GORM
type GormMedicineRepository struct {
	db *gorm.DB
}

// NewGormMedicineRepository creates a new GormMedicineRepository
func NewGormMedicineRepository(db *gorm.DB) *GormMedicineRepository {
	return &GormMedicineRepository{db: db}
}

// FindByID finds a medicine by its ID
func (r *GormMedicineRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Medicine, error) {
	var model models.MedicineModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple medicines by their IDs
func (r *GormMedicineRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Medicine, error) {
	if len(ids) == 0 {
		return []catalog.Medicine{}, nil
	}

	var rows []models.MedicineModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return medicinesToDomain(rows), nil
}

// FindAll finds all medicines matching the filter
func (r *GormMedicineRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Medicine, error) {
	var rows []models.MedicineModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.MedicineModel{}), filter)
	query = paginate(query, filter, MedicineSortFields, "name ASC")

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return medicinesToDomain(rows), nil
}

// Count counts medicines matching the filter
func (r *GormMedicineRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.MedicineModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByName checks whether a medicine with the name exists, ignoring case
func (r *GormMedicineRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MedicineModel{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a medicine
func (r *GormMedicineRepository) Save(ctx context.Context, medicine *catalog.Medicine) error {
	return r.db.WithContext(ctx).Save(models.MedicineModelFromDomain(medicine)).Error
}

func (r *GormMedicineRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR hsn_code LIKE ?", pattern, pattern)
	}
	return query
}

func medicinesToDomain(rows []models.MedicineModel) []catalog.Medicine {
	medicines := make([]catalog.Medicine, len(rows))
	for i := range rows {
		medicines[i] = *rows[i].ToDomain()
	}
	return medicines
}

// Ensure GormMedicineRepository implements MedicineRepository
var _ catalog.MedicineRepository = (*GormMedicineRepository)(nil)
