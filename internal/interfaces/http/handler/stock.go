package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/ayurcare/backend/internal/application/inventory"
)

// StockHandler handles stock entry API endpoints
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{
		stockService: stockService,
	}
}

// StockListQuery is the query string of GET /stock
type StockListQuery struct {
	MedicineID  string `form:"medicine_id" binding:"omitempty,uuid"`
	BatchNumber string `form:"batch_number"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy     string `form:"order_by"`
	OrderDir    string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// List handles GET /stock
func (h *StockHandler) List(c *gin.Context) {
	var query StockListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	filter := inventoryapp.StockListFilter{
		BatchNumber: query.BatchNumber,
		Page:        query.Page,
		PageSize:    query.PageSize,
		OrderBy:     query.OrderBy,
		OrderDir:    query.OrderDir,
	}
	if query.MedicineID != "" {
		id := uuid.MustParse(query.MedicineID)
		filter.MedicineID = &id
	}

	entries, total, err := h.stockService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, entries, total, pageOrDefault(filter.Page), pageSizeOrDefault(filter.PageSize))
}

// GetByID handles GET /stock/:id
func (h *StockHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	entry, err := h.stockService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// Reprice handles PUT /stock/:id/reprice
func (h *StockHandler) Reprice(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req inventoryapp.RepriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	entry, err := h.stockService.Reprice(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}
