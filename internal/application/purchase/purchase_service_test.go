package purchase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ayurcare/backend/internal/domain/catalog"
	"github.com/ayurcare/backend/internal/domain/inventory"
	"github.com/ayurcare/backend/internal/domain/pricing"
	"github.com/ayurcare/backend/internal/domain/purchase"
	"github.com/ayurcare/backend/internal/domain/shared"
	"github.com/ayurcare/backend/internal/infrastructure/cache"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	purchases *MockPurchaseRepository
	medicines *MockMedicineRepository
	stock     *MockStockEntryRepository
	metrics   *recordingMetrics
	svc       *PurchaseService
	strip     *catalog.Medicine
	bottle    *catalog.Medicine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	strip, err := catalog.NewMedicine("Arogyavardhini Vati", "3004", "strip", "tablet", decimal.NewFromInt(10))
	require.NoError(t, err)
	bottle, err := catalog.NewMedicine("Dashamoolarishta", "3004", "bottle", "bottle", decimal.NewFromInt(1))
	require.NoError(t, err)

	f := &fixture{
		purchases: new(MockPurchaseRepository),
		medicines: new(MockMedicineRepository),
		stock:     new(MockStockEntryRepository),
		metrics:   &recordingMetrics{},
		strip:     strip,
		bottle:    bottle,
	}
	f.svc = NewPurchaseService(f.purchases, f.medicines, f.stock)
	f.svc.SetMetrics(f.metrics)
	f.medicines.On("FindByIDs", mock.Anything, mock.Anything).
		Return([]catalog.Medicine{*strip, *bottle}, nil).Maybe()
	return f
}

// draft is two lines: 10 strips at 100 with 10% + 5% discounts and 12% flat
// tax (957.6), and 2 bottles at 100 with no tax (200), less a flat 50
func (f *fixture) draft() DraftRequest {
	return DraftRequest{
		InvoiceNumber:   "INV-2026-001",
		Distributor:     uuid.New(),
		PurchaseDate:    "2026-10-01",
		Discount3Amount: dec("50"),
		Medicines: []LineRequest{
			{
				Medicine:            f.strip.ID,
				Units:               dec("10"),
				PricePerMainUnit:    dec("100"),
				DiscountPercentage:  dec("10"),
				Discount2Percentage: dec("5"),
				Tax:                 &pricing.TaxSpec{Type: pricing.TaxKindFlat, Percentage: dec("12")},
				MRP:                 dec("150"),
				SellingPrice:        dec("140"),
				BatchNumber:         "  AV-01 ",
				ExpiryDate:          "2028-01-31",
			},
			{
				Medicine:         f.bottle.ID,
				Units:            dec("2"),
				PricePerMainUnit: dec("100"),
				BatchNumber:      "DM-7",
				ExpiryDate:       "2028-06-30T00:00:00.000Z",
			},
		},
	}
}

func TestPurchaseService_Quote(t *testing.T) {
	f := newFixture(t)

	quote, err := f.svc.Quote(context.Background(), f.draft())
	require.NoError(t, err)

	require.Len(t, quote.Lines, 2)
	assert.True(t, quote.Lines[0].AfterDiscount1.Equal(dec("900")))
	assert.True(t, quote.Lines[0].TaxableAmount.Equal(dec("855")))
	assert.True(t, quote.Lines[0].FinalPrice.Equal(dec("957.6")))
	assert.True(t, quote.Lines[1].FinalPrice.Equal(dec("200")))

	assert.True(t, quote.SubtotalAmount.Equal(dec("1157.6")))
	assert.True(t, quote.TotalAmount.Equal(dec("1107.6")))
	assert.True(t, quote.Discount3Amount.Equal(dec("50")))

	line := quote.Payload.Medicines[0]
	assert.True(t, line.TotalPurchasedUnit.Equal(dec("100")))
	assert.True(t, line.PricePerUnit.Equal(dec("10")))
	assert.True(t, line.MRP.Equal(dec("15")))
	assert.Equal(t, "av-01", line.BatchNumber)
	assert.Equal(t, "2028-01-31T00:00:00.000Z", line.ExpiryDate)
}

func TestPurchaseService_Quote_Discount3Conflict(t *testing.T) {
	f := newFixture(t)
	req := f.draft()
	req.Discount3Percent = dec("5")

	_, err := f.svc.Quote(context.Background(), req)
	assert.ErrorIs(t, err, ErrDiscount3Conflict)
}

func TestPurchaseService_Quote_UnknownMedicine(t *testing.T) {
	f := newFixture(t)
	req := f.draft()
	req.Medicines[1].Medicine = uuid.New()

	_, err := f.svc.Quote(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Contains(t, err.Error(), "medicines[1].medicine")
}

func TestPurchaseService_RecomputeLine(t *testing.T) {
	f := newFixture(t)
	line := f.draft().Medicines[0]

	t.Run("discount2 amount back-derives the percentage", func(t *testing.T) {
		resp, err := f.svc.RecomputeLine(context.Background(), RecomputeRequest{Line: line, Field: "discount2Amount", Value: "45"})
		require.NoError(t, err)
		assert.True(t, resp.Discount2Percentage.Equal(dec("5")))
		assert.True(t, resp.Discount2Price.Equal(dec("45")))
	})

	t.Run("sub-unit edit converts to main units", func(t *testing.T) {
		resp, err := f.svc.RecomputeLine(context.Background(), RecomputeRequest{Line: line, Field: "subUnits", Value: "30"})
		require.NoError(t, err)
		assert.True(t, resp.Units.Equal(dec("3")))
		assert.True(t, resp.PurchasePrice.Equal(dec("300")))
	})

	t.Run("sub-unit edit keeps the entered count", func(t *testing.T) {
		sachets, err := catalog.NewMedicine("Chyawanprash", "2106", "box", "sachet", decimal.NewFromInt(3))
		require.NoError(t, err)
		medicines := new(MockMedicineRepository)
		medicines.On("FindByIDs", mock.Anything, mock.Anything).Return([]catalog.Medicine{*sachets}, nil)
		svc := NewPurchaseService(new(MockPurchaseRepository), medicines, new(MockStockEntryRepository))

		boxes := LineRequest{Medicine: sachets.ID, Units: dec("1"), PricePerMainUnit: dec("30")}
		resp, err := svc.RecomputeLine(context.Background(), RecomputeRequest{Line: boxes, Field: "subUnits", Value: "10"})
		require.NoError(t, err)
		assert.True(t, resp.TotalPurchasedUnit.Equal(dec("10")), "got %s", resp.TotalPurchasedUnit)
		assert.True(t, resp.PurchasePrice.Equal(dec("100")), "got %s", resp.PurchasePrice)
	})

	t.Run("non-numeric input counts as zero", func(t *testing.T) {
		resp, err := f.svc.RecomputeLine(context.Background(), RecomputeRequest{Line: line, Field: "units", Value: "abc"})
		require.NoError(t, err)
		assert.True(t, resp.FinalPrice.IsZero())
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := f.svc.RecomputeLine(context.Background(), RecomputeRequest{Line: line, Field: "colour", Value: "1"})
		assert.ErrorIs(t, err, pricing.ErrUnknownField)
	})
}

func TestPurchaseService_SingleEntry(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.SingleEntry(context.Background(), SingleEntryRequest{
		TotalPurchasedUnit: dec("50"),
		PricePerUnit:       dec("10"),
		DiscountPercentage: dec("20"),
		Tax:                &pricing.TaxSpec{Type: pricing.TaxKindState, CGST: dec("6"), SGST: dec("6")},
	})
	require.NoError(t, err)
	assert.True(t, resp.TotalPrice.Equal(dec("500")))
	assert.True(t, resp.TaxableAmount.Equal(dec("400")))
	assert.True(t, resp.TaxAmount.Equal(dec("48")))
	assert.True(t, resp.GrandTotal.Equal(dec("448")))

	_, err = f.svc.SingleEntry(context.Background(), SingleEntryRequest{Tax: &pricing.TaxSpec{Type: "vat"}})
	assert.ErrorIs(t, err, pricing.ErrUnknownTaxType)
}

func TestPurchaseService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("saves purchase with one stock entry per line", func(t *testing.T) {
		f := newFixture(t)
		req := f.draft()

		f.purchases.On("ExistsByInvoiceNumber", mock.Anything, req.Distributor, "INV-2026-001").Return(false, nil)
		f.purchases.On("SaveWithStock", mock.Anything, mock.AnythingOfType("*purchase.Purchase"),
			mock.MatchedBy(func(entries []inventory.StockEntry) bool {
				return len(entries) == 2 && entries[0].Quantity.Equal(dec("100")) && entries[0].BatchNumber == "av-01"
			})).Return(nil)

		resp, err := f.svc.Submit(ctx, "", req)
		require.NoError(t, err)
		assert.True(t, resp.TotalAmount.Equal(dec("1107.6")))
		assert.Equal(t, "INR 1107.60", resp.Total)
		require.Len(t, resp.Medicines, 2)
		assert.True(t, resp.Medicines[0].PricePerUnit.Equal(dec("10")))
		assert.Len(t, f.metrics.submitted, 1)
		f.purchases.AssertExpectations(t)
	})

	t.Run("first validation error wins", func(t *testing.T) {
		f := newFixture(t)
		req := f.draft()
		req.InvoiceNumber = ""
		req.Medicines[0].BatchNumber = ""

		_, err := f.svc.Submit(ctx, "", req)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Equal(t, "invoiceNumber is required", err.Error())
		assert.Equal(t, []string{"VALIDATION_ERROR"}, f.metrics.rejected)
		f.purchases.AssertNotCalled(t, "SaveWithStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("line without medicine is reported by path", func(t *testing.T) {
		f := newFixture(t)
		req := f.draft()
		req.Medicines[1].Medicine = uuid.Nil

		_, err := f.svc.Submit(ctx, "", req)
		require.Error(t, err)
		assert.Equal(t, "medicines[1].medicine is required", err.Error())
	})

	t.Run("duplicate invoice", func(t *testing.T) {
		f := newFixture(t)
		req := f.draft()
		f.purchases.On("ExistsByInvoiceNumber", mock.Anything, req.Distributor, "INV-2026-001").Return(true, nil)

		_, err := f.svc.Submit(ctx, "", req)
		assert.ErrorIs(t, err, purchase.ErrDuplicateInvoice)
	})

	t.Run("repeated idempotency key is rejected", func(t *testing.T) {
		f := newFixture(t)
		store := cache.NewInMemoryIdempotencyStore(time.Minute)
		defer store.Close()
		f.svc.SetIdempotencyStore(store, time.Hour)

		req := f.draft()
		f.purchases.On("ExistsByInvoiceNumber", mock.Anything, req.Distributor, "INV-2026-001").Return(false, nil).Once()
		f.purchases.On("SaveWithStock", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		_, err := f.svc.Submit(ctx, "key-1", req)
		require.NoError(t, err)

		_, err = f.svc.Submit(ctx, "key-1", req)
		assert.ErrorIs(t, err, purchase.ErrDuplicateSubmit)
		f.purchases.AssertNumberOfCalls(t, "SaveWithStock", 1)
	})

	t.Run("failed submit releases the key for retry", func(t *testing.T) {
		f := newFixture(t)
		store := cache.NewInMemoryIdempotencyStore(time.Minute)
		defer store.Close()
		f.svc.SetIdempotencyStore(store, time.Hour)

		req := f.draft()
		f.purchases.On("ExistsByInvoiceNumber", mock.Anything, req.Distributor, "INV-2026-001").Return(false, nil)
		f.purchases.On("SaveWithStock", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()
		f.purchases.On("SaveWithStock", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

		_, err := f.svc.Submit(ctx, "key-2", req)
		require.Error(t, err)
		processed, err := store.IsProcessed(ctx, "key-2")
		require.NoError(t, err)
		assert.False(t, processed)
		assert.Equal(t, []string{"INTERNAL_ERROR"}, f.metrics.rejected)

		_, err = f.svc.Submit(ctx, "key-2", req)
		require.NoError(t, err)
	})
}

func storedPurchase(t *testing.T, f *fixture) *purchase.Purchase {
	t.Helper()
	draft, err := f.svc.buildDraft(context.Background(), f.draft())
	require.NoError(t, err)
	p, err := purchase.NewPurchase(draft)
	require.NoError(t, err)
	return p
}

func TestPurchaseService_GetByID_Display(t *testing.T) {
	f := newFixture(t)
	p := storedPurchase(t, f)
	f.purchases.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	resp, err := f.svc.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "INR 1107.60", resp.Total)

	f.svc.SetDisplay("USD", 0)
	resp, err = f.svc.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "USD 1108", resp.Total)
}

func TestPurchaseService_UpdateSingleEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := storedPurchase(t, f)
	item := p.Items[1]
	entry := item.StockEntry()

	f.purchases.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.stock.On("FindByPurchaseItem", mock.Anything, item.ID).Return(&entry, nil)
	f.purchases.On("SaveWithStock", mock.Anything, p, mock.MatchedBy(func(entries []inventory.StockEntry) bool {
		return len(entries) == 1 && entries[0].Amount.Equal(dec("448"))
	})).Return(nil)

	resp, err := f.svc.UpdateSingleEntry(ctx, p.ID, item.ID, SingleEntryRequest{
		TotalPurchasedUnit: dec("50"),
		PricePerUnit:       dec("10"),
		DiscountPercentage: dec("20"),
		Tax:                &pricing.TaxSpec{Type: pricing.TaxKindState, CGST: dec("6"), SGST: dec("6")},
	})
	require.NoError(t, err)
	assert.True(t, resp.Entry.GrandTotal.Equal(dec("448")))
	// 957.6 + 448 - 50
	assert.True(t, resp.Purchase.TotalAmount.Equal(dec("1355.6")))
	assert.Equal(t, 2, resp.Purchase.Version)
	f.purchases.AssertExpectations(t)
}

func TestPurchaseService_UpdateSingleEntry_InvalidResult(t *testing.T) {
	f := newFixture(t)
	p := storedPurchase(t, f)
	f.purchases.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err := f.svc.UpdateSingleEntry(context.Background(), p.ID, p.Items[0].ID, SingleEntryRequest{
		TotalPurchasedUnit: decimal.Zero,
		PricePerUnit:       dec("10"),
	})
	require.Error(t, err)
	assert.Equal(t, "medicines[0].totalPurchasedUnit must be greater than 0", err.Error())
	f.purchases.AssertNotCalled(t, "SaveWithStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseService_UpdateSingleEntry_StockLookupFails(t *testing.T) {
	f := newFixture(t)
	p := storedPurchase(t, f)
	item := p.Items[1]
	f.purchases.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.stock.On("FindByPurchaseItem", mock.Anything, item.ID).Return(nil, errors.New("connection reset"))

	_, err := f.svc.UpdateSingleEntry(context.Background(), p.ID, item.ID, SingleEntryRequest{
		TotalPurchasedUnit: dec("50"),
		PricePerUnit:       dec("10"),
	})
	require.Error(t, err)
	assert.Equal(t, []string{"INTERNAL_ERROR"}, f.metrics.rejected)
	f.purchases.AssertNotCalled(t, "SaveWithStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseService_List_DateFilters(t *testing.T) {
	f := newFixture(t)
	match := mock.MatchedBy(func(filter shared.Filter) bool {
		to, ok := filter.Filters["to_date"].(time.Time)
		return ok && to.Hour() == 23 && filter.OrderBy == "purchase_date" && filter.OrderDir == "desc"
	})
	f.purchases.On("FindAll", mock.Anything, match).Return([]purchase.Purchase{}, nil)
	f.purchases.On("Count", mock.Anything, match).Return(int64(0), nil)

	items, total, err := f.svc.List(context.Background(), PurchaseListFilter{FromDate: "2026-10-01", ToDate: "2026-10-31"})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)

	_, _, err = f.svc.List(context.Background(), PurchaseListFilter{FromDate: "yesterday"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestPurchaseService_Delete(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()
	f.purchases.On("Delete", mock.Anything, id).Return(purchase.ErrPurchaseNotFound)

	err := f.svc.Delete(context.Background(), id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
