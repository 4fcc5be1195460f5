package handlers

import (
	"errors"
	"net/http"

	"bar_pos_backend/internal/models"
	"bar_pos_backend/internal/services"
	"bar_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SaleHandler holds the sale service.
type SaleHandler struct {
	saleService services.SaleService
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(ss services.SaleService) *SaleHandler {
	return &SaleHandler{saleService: ss}
}

func respondSaleError(c *gin.Context, err error, action string) {
	utils.LogError(err, action)
	switch {
	case errors.Is(err, services.ErrUnknownTable):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Unknown table number.", err.Error()))
	case errors.Is(err, services.ErrEmptyCart):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Table has nothing to finalize.", err.Error()))
	case errors.Is(err, services.ErrTableLocked):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeTableLocked, "Table bar request is still pending.", err.Error()))
	case errors.Is(err, services.ErrBarHandOffRequired):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Cart must be handed off to the bar first.", err.Error()))
	case errors.Is(err, services.ErrInsufficientStock):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInsufficientStock, "Not enough stock to finalize the sale.", err.Error()))
	case errors.Is(err, services.ErrSaleNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Sale not found.", err.Error()))
	case errors.Is(err, services.ErrSaleNotPending):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Sale is not pending payment.", err.Error()))
	case errors.Is(err, services.ErrInvalidPayment):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid payment amount.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, action, "Internal error"))
	}
}

// FinalizeTableSale checks out a table's cart into a persisted sale.
func (h *SaleHandler) FinalizeTableSale(c *gin.Context) {
	tableNo, ok := tableNoParam(c)
	if !ok {
		return
	}

	var req services.FinalizeSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	// Attribute the sale to the authenticated rep when the caller did not
	// name one explicitly.
	if req.SalesRepID == nil {
		if userID, exists := c.Get("userID"); exists {
			if id, okCast := userID.(int64); okCast {
				req.SalesRepID = &id
			}
		}
	}

	sale, err := h.saleService.FinalizeTableSale(c.Request.Context(), tableNo, req)
	if err != nil {
		respondSaleError(c, err, "Failed to finalize sale.")
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// GetSales lists sales with optional filters.
func (h *SaleHandler) GetSales(c *gin.Context) {
	var filters models.SaleFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	sales, total, err := h.saleService.GetSales(filters)
	if err != nil {
		respondSaleError(c, err, "Failed to fetch sales.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sales, "total": total})
}

// GetSaleByID fetches one sale with its items.
func (h *SaleHandler) GetSaleByID(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSaleByID(id)
	if err != nil {
		respondSaleError(c, err, "Failed to fetch sale.")
		return
	}
	c.JSON(http.StatusOK, sale)
}

// GetPendingSales lists sales awaiting payment.
func (h *SaleHandler) GetPendingSales(c *gin.Context) {
	sales, err := h.saleService.GetPendingSales()
	if err != nil {
		respondSaleError(c, err, "Failed to fetch pending sales.")
		return
	}
	c.JSON(http.StatusOK, sales)
}

// RecordPendingPayment records money received against a pending sale.
func (h *SaleHandler) RecordPendingPayment(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid sale ID")
		return
	}

	var req services.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	sale, err := h.saleService.RecordPendingPayment(id, req)
	if err != nil {
		respondSaleError(c, err, "Failed to record payment.")
		return
	}
	c.JSON(http.StatusOK, sale)
}
