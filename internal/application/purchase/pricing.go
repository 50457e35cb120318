package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayurcare/backend/internal/domain/catalog"
	"github.com/ayurcare/backend/internal/domain/pricing"
	"github.com/ayurcare/backend/internal/domain/purchase"
	"github.com/ayurcare/backend/internal/domain/shared"
	"github.com/ayurcare/backend/internal/infrastructure/telemetry"
)

// ErrMedicineNotFound is returned when a line names a medicine that is not in the master
var ErrMedicineNotFound = shared.NewDomainError("NOT_FOUND", "Medicine not found")

// ErrDiscount3Conflict is returned when discount3 is given both as a percentage and an amount
var ErrDiscount3Conflict = shared.NewDomainError(shared.ErrValidation.Code, "discount3Percent and discount3Amount are mutually exclusive")

// Quote prices a bulk purchase draft without persisting anything
func (s *PurchaseService) Quote(ctx context.Context, req DraftRequest) (*QuoteResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pricing", "quote")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrLineCount, len(req.Medicines))

	draft, err := s.buildDraft(ctx, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	totals := draft.Totals()
	lines := make([]LineResponse, len(draft.Lines))
	for i, line := range draft.Lines {
		lines[i] = ToLineResponse(line)
	}
	return &QuoteResponse{
		Lines:           lines,
		TaxableAmount:   totals.TaxableAmount,
		SubtotalAmount:  totals.SubtotalAmount,
		Discount3Amount: totals.Discount3Amount,
		TotalAmount:     totals.TotalAmount,
		Payload:         purchase.ToPayload(draft),
	}, nil
}

// RecomputeLine applies one field edit to a line and returns every derived figure
func (s *PurchaseService) RecomputeLine(ctx context.Context, req RecomputeRequest) (*LineResponse, error) {
	lines, err := s.buildLines(ctx, []LineRequest{req.Line})
	if err != nil {
		return nil, err
	}

	line, err := lines[0].Apply(pricing.Field(req.Field), pricing.ParseNumber(req.Value))
	if err != nil {
		return nil, err
	}
	response := ToLineResponse(line)
	return &response, nil
}

// SingleEntry prices one line of the single-entry edit form
func (s *PurchaseService) SingleEntry(_ context.Context, req SingleEntryRequest) (*SingleEntryResponse, error) {
	in, err := singleEntryInput(req)
	if err != nil {
		return nil, err
	}
	response := ToSingleEntryResponse(pricing.CalculateSingleEntry(in))
	return &response, nil
}

func singleEntryInput(req SingleEntryRequest) (pricing.SingleEntryInput, error) {
	mode, err := taxMode(req.Tax)
	if err != nil {
		return pricing.SingleEntryInput{}, err
	}
	return pricing.SingleEntryInput{
		TotalPurchasedUnit: req.TotalPurchasedUnit,
		PricePerUnit:       req.PricePerUnit,
		DiscountPercentage: req.DiscountPercentage,
		Tax:                mode,
	}, nil
}

func taxMode(spec *pricing.TaxSpec) (pricing.TaxMode, error) {
	if spec == nil {
		return pricing.NoTax{}, nil
	}
	return spec.ToMode()
}

func (s *PurchaseService) buildDraft(ctx context.Context, req DraftRequest) (purchase.Draft, error) {
	discount, err := billDiscount(req.Discount3Percent, req.Discount3Amount)
	if err != nil {
		return purchase.Draft{}, err
	}
	purchaseDate, err := parseDate("purchaseDate", req.PurchaseDate)
	if err != nil {
		return purchase.Draft{}, err
	}
	lines, err := s.buildLines(ctx, req.Medicines)
	if err != nil {
		return purchase.Draft{}, err
	}
	return purchase.Draft{
		InvoiceNumber: req.InvoiceNumber,
		DistributorID: req.Distributor,
		PurchaseDate:  purchaseDate,
		Lines:         lines,
		Discount:      discount,
	}, nil
}

func billDiscount(percent, amount decimal.Decimal) (pricing.BillDiscount, error) {
	var d pricing.BillDiscount
	switch {
	case !percent.IsZero() && !amount.IsZero():
		return d, ErrDiscount3Conflict
	case !percent.IsZero():
		return d.WithPercent(percent), nil
	default:
		return d.WithAmount(amount), nil
	}
}

// buildLines loads the conversion factor of every referenced medicine and
// builds the calculator lines. A line without a medicine gets a zero factor
// and is left for pre-submit validation to report.
func (s *PurchaseService) buildLines(ctx context.Context, reqs []LineRequest) ([]pricing.PurchaseLine, error) {
	medicines, err := s.loadMedicines(ctx, reqs)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.PurchaseLine, len(reqs))
	for i, req := range reqs {
		var line pricing.PurchaseLine
		if req.Medicine == uuid.Nil {
			line = pricing.NewPurchaseLine(uuid.Nil, decimal.Zero)
		} else {
			med, ok := medicines[req.Medicine]
			if !ok {
				return nil, shared.NewDomainError(ErrMedicineNotFound.Code,
					fmt.Sprintf("medicines[%d].medicine %s not found", i, req.Medicine))
			}
			line = med.NewPurchaseLine()
		}

		line, err = fillLine(line, req, i)
		if err != nil {
			return nil, err
		}
		lines[i] = line
	}
	return lines, nil
}

func (s *PurchaseService) loadMedicines(ctx context.Context, reqs []LineRequest) (map[uuid.UUID]*catalog.Medicine, error) {
	seen := make(map[uuid.UUID]bool, len(reqs))
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, req := range reqs {
		if req.Medicine == uuid.Nil || seen[req.Medicine] {
			continue
		}
		seen[req.Medicine] = true
		ids = append(ids, req.Medicine)
	}
	if len(ids) == 0 {
		return map[uuid.UUID]*catalog.Medicine{}, nil
	}

	medicines, err := s.medicineRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load medicines: %w", err)
	}
	return catalog.Index(medicines), nil
}

func fillLine(line pricing.PurchaseLine, req LineRequest, index int) (pricing.PurchaseLine, error) {
	mode, err := taxMode(req.Tax)
	if err != nil {
		return line, err
	}

	line = line.
		OnUnitsChange(req.Units).
		OnMainUnitPriceChange(req.PricePerMainUnit).
		OnDiscount1PercentChange(req.DiscountPercentage).
		OnDiscount2PercentChange(req.Discount2Percentage)
	if req.DiscountPrice != nil {
		line = line.OnDiscount1AmountChange(*req.DiscountPrice)
	}
	if req.Discount2Price != nil {
		line = line.OnDiscount2AmountChange(*req.Discount2Price)
	}
	line = line.OnTaxChange(mode)

	line.MRP = req.MRP
	line.SellingPrice = req.SellingPrice
	line.BatchNumber = req.BatchNumber
	if req.HSNCode != "" {
		line.HSNCode = req.HSNCode
	}

	expiry, err := parseDate(fmt.Sprintf("medicines[%d].expiryDate", index), req.ExpiryDate)
	if err != nil {
		return line, err
	}
	line.ExpiryDate = expiry

	if req.ManufacturingDate != "" {
		mfg, err := parseDate(fmt.Sprintf("medicines[%d].manufacturingDate", index), req.ManufacturingDate)
		if err != nil {
			return line, err
		}
		line.ManufacturingDate = &mfg
	}
	return line, nil
}

func parseDate(path, raw string) (time.Time, error) {
	t, err := purchase.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, shared.NewDomainError(shared.ErrValidation.Code, path+" must be an ISO-8601 timestamp")
	}
	return t, nil
}
