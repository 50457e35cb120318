package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ayurcare/backend/internal/domain/catalog"
	"github.com/ayurcare/backend/internal/domain/inventory"
	"github.com/ayurcare/backend/internal/domain/purchase"
	"github.com/ayurcare/backend/internal/domain/shared"
	"github.com/ayurcare/backend/internal/domain/shared/valueobject"
	"github.com/ayurcare/backend/internal/infrastructure/logger"
	"github.com/ayurcare/backend/internal/infrastructure/telemetry"
)

// Metrics records purchase business metrics
type Metrics interface {
	RecordSubmitted(ctx context.Context, lineCount int, total decimal.Decimal)
	RecordRejected(ctx context.Context, operation, code string)
}

type noopMetrics struct{}

func (noopMetrics) RecordSubmitted(context.Context, int, decimal.Decimal) {}
func (noopMetrics) RecordRejected(context.Context, string, string)        {}

// PurchaseService handles pricing, submission and single-entry edits of purchases
type PurchaseService struct {
	purchaseRepo   purchase.PurchaseRepository
	medicineRepo   catalog.MedicineRepository
	stockRepo      inventory.StockEntryRepository
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	metrics        Metrics
	display        Display
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(
	purchaseRepo purchase.PurchaseRepository,
	medicineRepo catalog.MedicineRepository,
	stockRepo inventory.StockEntryRepository,
) *PurchaseService {
	return &PurchaseService{
		purchaseRepo:   purchaseRepo,
		medicineRepo:   medicineRepo,
		stockRepo:      stockRepo,
		idempotencyTTL: shared.DefaultIdempotencyConfig().TTL,
		metrics:        noopMetrics{},
		display:        DefaultDisplay(),
	}
}

// SetIdempotencyStore enables idempotency-key checks on Submit
func (s *PurchaseService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// SetDisplay sets the currency and decimal places used to render bill totals
func (s *PurchaseService) SetDisplay(currency string, places int32) {
	if currency != "" {
		s.display.Currency = valueobject.Currency(currency)
	}
	if places >= 0 {
		s.display.Places = places
	}
}

// SetMetrics sets the business metrics recorder
func (s *PurchaseService) SetMetrics(metrics Metrics) {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	s.metrics = metrics
}

// Submit records a purchase and the stock it brings in. A repeated
// idempotency key is rejected with ALREADY_EXISTS; a failed submission
// releases the key so the client can retry with it.
func (s *PurchaseService) Submit(ctx context.Context, idempotencyKey string, req DraftRequest) (*PurchaseResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase", "submit")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceNumber, req.InvoiceNumber,
		telemetry.SpanAttrDistributorID, req.Distributor.String(),
		telemetry.SpanAttrLineCount, len(req.Medicines),
	)

	if idempotencyKey != "" {
		ctx = logger.WithIdempotencyKey(ctx, idempotencyKey)
	}

	if idempotencyKey != "" && s.idempotency != nil {
		marked, err := s.idempotency.MarkProcessed(ctx, idempotencyKey, s.idempotencyTTL)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if !marked {
			telemetry.AddEvent(span, "duplicate_submit")
			s.reject(ctx, span, "submit", purchase.ErrDuplicateSubmit)
			return nil, purchase.ErrDuplicateSubmit
		}
	}

	p, err := s.submit(ctx, idempotencyKey, req)
	if err != nil {
		s.releaseKey(ctx, idempotencyKey)
		s.reject(ctx, span, "submit", err)
		return nil, err
	}

	s.metrics.RecordSubmitted(ctx, len(p.Items), p.TotalAmount)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPurchaseID, p.ID.String(),
		telemetry.SpanAttrTotalAmount, p.TotalAmount.String(),
	)
	logger.L(ctx).Info("Purchase submitted",
		zap.String("purchase_id", p.ID.String()),
		zap.String("invoice_number", p.InvoiceNumber),
		zap.Int("lines", len(p.Items)),
		zap.String("total_amount", p.TotalAmount.String()),
	)

	response := ToPurchaseResponse(p, s.display)
	return &response, nil
}

func (s *PurchaseService) submit(ctx context.Context, idempotencyKey string, req DraftRequest) (*purchase.Purchase, error) {
	draft, err := s.buildDraft(ctx, req)
	if err != nil {
		return nil, err
	}
	draft.IdempotencyKey = idempotencyKey

	p, err := purchase.NewPurchase(draft)
	if err != nil {
		return nil, err
	}

	exists, err := s.purchaseRepo.ExistsByInvoiceNumber(ctx, p.DistributorID, p.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, purchase.ErrDuplicateInvoice
	}

	if err := s.purchaseRepo.SaveWithStock(ctx, p, p.StockEntries()); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PurchaseService) releaseKey(ctx context.Context, key string) {
	if key == "" || s.idempotency == nil {
		return
	}
	if err := s.idempotency.Release(ctx, key); err != nil {
		logger.L(ctx).Warn("Failed to release idempotency key", zap.Error(err))
	}
}

func (s *PurchaseService) reject(ctx context.Context, span trace.Span, operation string, err error) {
	telemetry.RecordError(span, err)
	code := "INTERNAL_ERROR"
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}
	s.metrics.RecordRejected(ctx, operation, code)
	logger.L(ctx).Info("Purchase rejected",
		zap.String("operation", operation),
		zap.String("error_code", code),
		zap.Error(err),
	)
}

// GetByID retrieves a purchase with its lines
func (s *PurchaseService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseResponse, error) {
	p, err := s.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseResponse(p, s.display)
	return &response, nil
}

// List retrieves purchases with filtering and pagination
func (s *PurchaseService) List(ctx context.Context, filter PurchaseListFilter) ([]PurchaseListResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "purchase_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.DistributorID != nil {
		domainFilter.Filters["distributor_id"] = *filter.DistributorID
	}
	if filter.FromDate != "" {
		from, err := parseFilterDate("from_date", filter.FromDate)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["from_date"] = from
	}
	if filter.ToDate != "" {
		to, err := parseFilterDate("to_date", filter.ToDate)
		if err != nil {
			return nil, 0, err
		}
		// A plain date includes the whole day
		if len(strings.TrimSpace(filter.ToDate)) == len(time.DateOnly) {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		domainFilter.Filters["to_date"] = to
	}

	purchases, err := s.purchaseRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.purchaseRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PurchaseListResponse, len(purchases))
	for i := range purchases {
		responses[i] = ToPurchaseListResponse(&purchases[i])
	}
	return responses, total, nil
}

func parseFilterDate(name, raw string) (time.Time, error) {
	t, err := purchase.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, shared.NewDomainError(shared.ErrInvalidInput.Code, name+" must be a date (YYYY-MM-DD) or ISO-8601 timestamp")
	}
	return t, nil
}

// UpdateSingleEntry re-prices one stored line from the single-entry edit
// form. The line, the bill totals and the stock entry the line recorded are
// saved together.
func (s *PurchaseService) UpdateSingleEntry(ctx context.Context, purchaseID, itemID uuid.UUID, req SingleEntryRequest) (*UpdateSingleEntryResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase", "update_single_entry")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrPurchaseID, purchaseID.String())

	in, err := singleEntryInput(req)
	if err != nil {
		s.reject(ctx, span, "update_single_entry", err)
		return nil, err
	}

	p, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		s.reject(ctx, span, "update_single_entry", err)
		return nil, err
	}

	result, err := p.ApplySingleEntry(itemID, in)
	if err != nil {
		s.reject(ctx, span, "update_single_entry", err)
		return nil, err
	}

	var entries []inventory.StockEntry
	entry, err := s.stockRepo.FindByPurchaseItem(ctx, itemID)
	switch {
	case err == nil:
		entry.ApplySingleEntry(in, result)
		entries = append(entries, *entry)
	case errors.Is(err, shared.ErrNotFound):
		logger.L(ctx).Warn("No stock entry recorded for purchase line", zap.String("purchase_item_id", itemID.String()))
	default:
		s.reject(ctx, span, "update_single_entry", err)
		return nil, err
	}

	if err := s.purchaseRepo.SaveWithStock(ctx, p, entries); err != nil {
		s.reject(ctx, span, "update_single_entry", err)
		return nil, err
	}

	return &UpdateSingleEntryResponse{
		Entry:    ToSingleEntryResponse(result),
		Purchase: ToPurchaseResponse(p, s.display),
	}, nil
}

// Delete removes a purchase together with its lines and stock entries
func (s *PurchaseService) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase", "delete")
	defer span.End()

	if err := s.purchaseRepo.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	logger.L(ctx).Info("Purchase deleted", zap.String("purchase_id", id.String()))
	return nil
}
