package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ayurcare/backend/internal/domain/inventory"
	"github.com/ayurcare/backend/internal/domain/pricing"
	"github.com/ayurcare/backend/internal/domain/purchase"
	"github.com/ayurcare/backend/internal/domain/shared"
	"github.com/ayurcare/backend/internal/infrastructure/logger"
	"github.com/ayurcare/backend/internal/infrastructure/telemetry"
)

// StockService handles reads and stock edit modal changes of stock entries
type StockService struct {
	stockRepo inventory.StockEntryRepository
	now       func() time.Time
}

// NewStockService creates a new StockService
func NewStockService(stockRepo inventory.StockEntryRepository) *StockService {
	return &StockService{stockRepo: stockRepo, now: time.Now}
}

// GetByID retrieves a stock entry by ID
func (s *StockService) GetByID(ctx context.Context, id uuid.UUID) (*StockEntryResponse, error) {
	entry, err := s.stockRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToStockEntryResponse(entry, s.now())
	return &response, nil
}

// List retrieves stock entries with filtering and pagination
func (s *StockService) List(ctx context.Context, filter StockListFilter) ([]StockEntryResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "expiry_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.MedicineID != nil {
		domainFilter.Filters["medicine_id"] = *filter.MedicineID
	}
	if filter.BatchNumber != "" {
		domainFilter.Filters["batch_number"] = filter.BatchNumber
	}

	entries, err := s.stockRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.stockRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	responses := make([]StockEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToStockEntryResponse(&entries[i], now)
	}
	return responses, total, nil
}

// Reprice applies a stock edit modal change to an entry. The entry is shown as
// a main-unit line, edited, re-run through the calculator and stored in sub-units.
// The edited line must pass the same per-line checks as a submitted purchase.
func (s *StockService) Reprice(ctx context.Context, id uuid.UUID, req RepriceRequest) (*StockEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "stock", "reprice")
	defer span.End()

	entry, err := s.stockRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	line, err := applyEdits(entry.Line(), req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := purchase.ValidateLine(purchase.LineToPayload(line)); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := entry.Reprice(line); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.stockRepo.Save(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Stock entry repriced",
		zap.String("stock_entry_id", entry.ID.String()),
		zap.String("quantity", entry.Quantity.String()),
		zap.String("amount", entry.Amount.String()),
	)
	response := ToStockEntryResponse(entry, s.now())
	return &response, nil
}

func applyEdits(line pricing.PurchaseLine, req RepriceRequest) (pricing.PurchaseLine, error) {
	var err error
	for _, edit := range req.Edits {
		line, err = line.Apply(pricing.Field(edit.Field), pricing.ParseNumber(edit.Value))
		if err != nil {
			return line, err
		}
	}
	if req.TaxPercentage != nil {
		line = line.OnTaxChange(pricing.FlatTax{Percentage: *req.TaxPercentage})
	}
	if req.MRP != nil {
		line.MRP = *req.MRP
	}
	if req.SellingPrice != nil {
		line.SellingPrice = *req.SellingPrice
	}
	if req.BatchNumber != nil {
		line.BatchNumber = *req.BatchNumber
	}
	if req.ExpiryDate != nil {
		expiry, err := purchase.ParseTimestamp(*req.ExpiryDate)
		if err != nil {
			return line, shared.NewDomainError(shared.ErrValidation.Code, "expiryDate must be an ISO-8601 timestamp")
		}
		line.ExpiryDate = expiry
	}
	return line, nil
}
