package handler

import (
	"github.com/gin-gonic/gin"

	purchaseapp "github.com/ayurcare/backend/internal/application/purchase"
)

// PricingHandler exposes the purchase calculator. Nothing it does is persisted.
type PricingHandler struct {
	BaseHandler
	purchaseService *purchaseapp.PurchaseService
}

// NewPricingHandler creates a new PricingHandler
func NewPricingHandler(purchaseService *purchaseapp.PurchaseService) *PricingHandler {
	return &PricingHandler{
		purchaseService: purchaseService,
	}
}

// RecomputeLine handles POST /pricing/lines/recompute
func (h *PricingHandler) RecomputeLine(c *gin.Context) {
	var req purchaseapp.RecomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	line, err := h.purchaseService.RecomputeLine(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, line)
}

// Quote handles POST /pricing/quote
func (h *PricingHandler) Quote(c *gin.Context) {
	var req purchaseapp.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	quote, err := h.purchaseService.Quote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, quote)
}

// SingleEntry handles POST /pricing/single-entry
func (h *PricingHandler) SingleEntry(c *gin.Context) {
	var req purchaseapp.SingleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.purchaseService.SingleEntry(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
