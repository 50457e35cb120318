package catalog

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayurcare/backend/internal/domain/catalog"
	"github.com/ayurcare/backend/internal/domain/shared"
	"github.com/ayurcare/backend/internal/infrastructure/logger"
)

// ErrMedicineExists is returned when a medicine with the same name is already registered
var ErrMedicineExists = shared.NewDomainError("ALREADY_EXISTS", "Medicine with this name already exists")

// MedicineService handles medicine master operations
type MedicineService struct {
	medicineRepo catalog.MedicineRepository
}

// NewMedicineService creates a new MedicineService
func NewMedicineService(medicineRepo catalog.MedicineRepository) *MedicineService {
	return &MedicineService{medicineRepo: medicineRepo}
}

// Create registers a new medicine
func (s *MedicineService) Create(ctx context.Context, req CreateMedicineRequest) (*MedicineResponse, error) {
	exists, err := s.medicineRepo.ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrMedicineExists
	}

	medicine, err := catalog.NewMedicine(req.Name, req.HSNCode, req.UnitName, req.SubUnitName, req.TotalQuantityInAUnit)
	if err != nil {
		return nil, err
	}
	if err := s.medicineRepo.Save(ctx, medicine); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Medicine created",
		zap.String("medicine_id", medicine.ID.String()),
		zap.String("name", medicine.Name),
	)
	response := ToMedicineResponse(medicine)
	return &response, nil
}

// Update changes the descriptive fields of a medicine. The conversion factor cannot change.
func (s *MedicineService) Update(ctx context.Context, id uuid.UUID, req UpdateMedicineRequest) (*MedicineResponse, error) {
	medicine, err := s.medicineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !equalFoldTrimmed(medicine.Name, req.Name) {
		exists, err := s.medicineRepo.ExistsByName(ctx, req.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrMedicineExists
		}
	}

	if err := medicine.Update(req.Name, req.HSNCode, req.UnitName, req.SubUnitName); err != nil {
		return nil, err
	}
	if err := s.medicineRepo.Save(ctx, medicine); err != nil {
		return nil, err
	}

	response := ToMedicineResponse(medicine)
	return &response, nil
}

// GetByID retrieves a medicine by ID
func (s *MedicineService) GetByID(ctx context.Context, id uuid.UUID) (*MedicineResponse, error) {
	medicine, err := s.medicineRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToMedicineResponse(medicine)
	return &response, nil
}

// List retrieves medicines with search and pagination
func (s *MedicineService) List(ctx context.Context, filter MedicineListFilter) ([]MedicineResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	medicines, err := s.medicineRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.medicineRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToMedicineResponses(medicines), total, nil
}
