package handler

import (
	"reflect"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"

	purchaseapp "github.com/ayurcare/backend/internal/application/purchase"
	"github.com/ayurcare/backend/internal/domain/purchase"
	"github.com/ayurcare/backend/internal/interfaces/http/middleware"
)

// PurchaseHandler handles purchase API endpoints
type PurchaseHandler struct {
	BaseHandler
	purchaseService *purchaseapp.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseService *purchaseapp.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// PurchaseListQuery is the query string of GET /purchases
type PurchaseListQuery struct {
	Search        string `form:"search"`
	DistributorID string `form:"distributor_id" binding:"omitempty,uuid"`
	FromDate      string `form:"from_date"`
	ToDate        string `form:"to_date"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// Submit handles POST /purchases. The Idempotency-Key header makes retries
// of the same submission safe.
func (h *PurchaseHandler) Submit(c *gin.Context) {
	var req purchaseapp.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.purchaseService.Submit(c.Request.Context(), c.GetHeader(middleware.IdempotencyKeyHeader), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID handles GET /purchases/:id
func (h *PurchaseHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.purchaseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List handles GET /purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	var query PurchaseListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	filter := purchaseapp.PurchaseListFilter{
		Search:   query.Search,
		FromDate: query.FromDate,
		ToDate:   query.ToDate,
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
	}
	if query.DistributorID != "" {
		id := uuid.MustParse(query.DistributorID)
		filter.DistributorID = &id
	}

	purchases, total, err := h.purchaseService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, purchases, total, pageOrDefault(filter.Page), pageSizeOrDefault(filter.PageSize))
}

// UpdateSingleEntry handles PUT /purchases/:id/lines/:line_id
func (h *PurchaseHandler) UpdateSingleEntry(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.parseUUIDParam(c, "line_id")
	if !ok {
		return
	}

	var req purchaseapp.SingleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.purchaseService.UpdateSingleEntry(c.Request.Context(), id, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete handles DELETE /purchases/:id
func (h *PurchaseHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.purchaseService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Schema handles GET /purchases/schema with the JSON schema of the submitted payload
func (h *PurchaseHandler) Schema(c *gin.Context) {
	h.Success(c, payloadSchema())
}

var payloadSchema = sync.OnceValue(func() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t {
			case reflect.TypeOf(decimal.Decimal{}):
				return &jsonschema.Schema{Type: "number"}
			case reflect.TypeOf(uuid.UUID{}):
				return &jsonschema.Schema{Type: "string", Format: "uuid"}
			}
			return nil
		},
	}
	return reflector.Reflect(purchase.Payload{})
})
