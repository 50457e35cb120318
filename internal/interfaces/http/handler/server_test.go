package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/ayurcare/backend/internal/application/catalog"
	inventoryapp "github.com/ayurcare/backend/internal/application/inventory"
	purchaseapp "github.com/ayurcare/backend/internal/application/purchase"
	"github.com/ayurcare/backend/internal/infrastructure/cache"
	"github.com/ayurcare/backend/internal/infrastructure/config"
	"github.com/ayurcare/backend/internal/infrastructure/persistence"
	"github.com/ayurcare/backend/internal/interfaces/http/middleware"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testServer wires the handlers to an in-memory SQLite database
type testServer struct {
	t      *testing.T
	db     *persistence.Database
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	middleware.SetupValidator()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })

	medicineRepo := persistence.NewGormMedicineRepository(db.DB)
	purchaseRepo := persistence.NewGormPurchaseRepository(db.DB)
	stockRepo := persistence.NewGormStockEntryRepository(db.DB)

	purchaseService := purchaseapp.NewPurchaseService(purchaseRepo, medicineRepo, stockRepo)
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	purchaseService.SetIdempotencyStore(store, time.Hour)

	medicines := NewMedicineHandler(catalogapp.NewMedicineService(medicineRepo))
	pricingHandler := NewPricingHandler(purchaseService)
	purchases := NewPurchaseHandler(purchaseService)
	stock := NewStockHandler(inventoryapp.NewStockService(stockRepo))

	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/health", NewHealthHandler("test", "1.0.0", db).Health)
	v1 := router.Group("/api/v1")
	v1.POST("/medicines", medicines.Create)
	v1.GET("/medicines", medicines.List)
	v1.GET("/medicines/:id", medicines.GetByID)
	v1.PUT("/medicines/:id", medicines.Update)
	v1.POST("/pricing/lines/recompute", pricingHandler.RecomputeLine)
	v1.POST("/pricing/quote", pricingHandler.Quote)
	v1.POST("/pricing/single-entry", pricingHandler.SingleEntry)
	v1.POST("/purchases", purchases.Submit)
	v1.GET("/purchases", purchases.List)
	v1.GET("/purchases/schema", purchases.Schema)
	v1.GET("/purchases/:id", purchases.GetByID)
	v1.PUT("/purchases/:id/lines/:line_id", purchases.UpdateSingleEntry)
	v1.DELETE("/purchases/:id", purchases.Delete)
	v1.GET("/stock", stock.List)
	v1.GET("/stock/:id", stock.GetByID)
	v1.PUT("/stock/:id/reprice", stock.Reprice)

	return &testServer{t: t, db: db, router: router}
}

func (s *testServer) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeAs[T any](t *testing.T, w *httptest.ResponseRecorder) APIResponse[T] {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// createMedicine registers a medicine through the API and returns it
func (s *testServer) createMedicine(name string, factor string) catalogapp.MedicineResponse {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/medicines", catalogapp.CreateMedicineRequest{
		Name:                 name,
		HSNCode:              "3004",
		UnitName:             "strip",
		SubUnitName:          "tablet",
		TotalQuantityInAUnit: dec(factor),
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decodeAs[catalogapp.MedicineResponse](s.t, w).Data
}
