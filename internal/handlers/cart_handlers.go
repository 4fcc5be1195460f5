package handlers

import (
	"errors"
	"net/http"

	"bar_pos_backend/internal/services"
	"bar_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CartHandler exposes the per-table cart store over HTTP.
type CartHandler struct {
	carts *services.CartStore
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *services.CartStore) *CartHandler {
	return &CartHandler{carts: carts}
}

// tableNoParam parses the :table_no path parameter. Range validation happens
// inside the cart store.
func tableNoParam(c *gin.Context) (int, bool) {
	tableNo, err := utils.StrToInt(c.Param("table_no"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid table number")
		return 0, false
	}
	return tableNo, true
}

func respondCartError(c *gin.Context, err error, action string) {
	utils.LogError(err, action)
	switch {
	case errors.Is(err, services.ErrUnknownTable):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Unknown table number.", err.Error()))
	case errors.Is(err, services.ErrTableLocked):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeTableLocked, "Table is locked while its bar request is pending.", err.Error()))
	case errors.Is(err, services.ErrInsufficientStock):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeInsufficientStock, "Not enough stock for the requested quantity.", err.Error()))
	case errors.Is(err, services.ErrCartItemNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cart item not found.", err.Error()))
	case errors.Is(err, services.ErrExpenseNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Expense not found.", err.Error()))
	case errors.Is(err, services.ErrInvalidQuantity), errors.Is(err, services.ErrInvalidAmount):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid value.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, action, "Internal error"))
	}
}

// GetActiveTables lists tables with a non-empty cart or an open bar request.
func (h *CartHandler) GetActiveTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"active_tables": h.carts.ActiveTables()})
}

// GetTableCart returns the full cart snapshot of one table.
func (h *CartHandler) GetTableCart(c *gin.Context) {
	tableNo, ok := tableNoParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.carts.Snapshot(tableNo))
}

type addItemRequest struct {
	ProductID int64   `json:"product_id" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gte=1"`
	UnitPrice float64 `json:"unit_price" binding:"required,gt=0"`
	UnitCost  float64 `json:"unit_cost" binding:"gte=0"`
}

// AddItem adds a product line to a table's cart.
func (h *CartHandler) AddItem(c *gin.Context) {
	tableNo, ok := tableNoParam(c)
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	err := h.carts.AddItem(tableNo, services.AddItemParams{
		ProductID: req.ProductID,
		Name:      req.Name,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		UnitCost:  req.UnitCost,
	})
	if err != nil {
		respondCartError(c, err, "Failed to add cart item.")
		return
	}
	c.JSON(http.StatusOK, h.carts.Snapshot(tableNo))
}

type updateItemRequest struct {
	ProductID int64   `json:"product_id" binding:"required"`
	UnitPrice float64 `json:"unit_price" binding:"required,gt=0"`
	Quantity  int     `json:"quantity"`
}

// UpdateItemQuantity sets a line's quantity; zero or less removes the line.
func (h *CartHandler) UpdateItemQuantity(c *gin.Context) {
	tableNo, ok := tableNoParam(c)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	if err := h.carts.UpdateItemQuantity(tableNo, req.ProductID, req.UnitPrice, req.Quantity); err != nil {
		respondCartError(c, err, "Failed to update cart item.")
		return
	}
	c.JSON(http.StatusOK, h.carts.Snapshot(tableNo))
}

type removeItemRequest struct {
	ProductID int64   `json:"product_id" binding:"required"`
	UnitPrice float64 `json:"unit_price" binding:"required,gt=0"`
}

// RemoveItem removes the line keyed by (product_id, unit_price).
func (h *CartHandler) RemoveItem(c *gin.Context) {
	tableNo, ok := tableNoParam(c)
	if !ok {
		return
	}

	var req removeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	if err := h.carts.RemoveItem(tableNo, req.ProductID, req.UnitPrice); err != nil {
		respondCartError(c, err, "Failed to remove cart item.")
		return
	}
	c.JSON(http.StatusOK, h.carts.Snapshot(tableNo))
}

type addExpenseRequest struct {
	Category string  `json:"category" binding:"required"`
	Amount   float64 `json:"amount" binding:"required,gt=0"`
}

// AddExpense attaches an ad hoc charge to a table.
func (h *CartHandler) AddExpense(c *gin.Context) {
	tableNo, ok := tableNoParam(c)
	if !ok {
		return
	}

	var req addExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	expense, err := h.carts.AddExpense(tableNo, req.Category, req.Amount)
	if err != nil {
		respondCartError(c, err, "Failed to add expense.")
		return
	}
	c.JSON(http.StatusCreated, expense)
}

// RemoveExpense detaches an expense from a table.
func (h *CartHandler) RemoveExpense(c *gin.Context) {
	tableNo, ok := tableNoParam(c)
	if !ok {
		return
	}
	expenseID, err := utils.StrToInt64(c.Param("expense_id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid expense ID")
		return
	}

	if err := h.carts.RemoveExpense(tableNo, expenseID); err != nil {
		respondCartError(c, err, "Failed to remove expense.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense removed"})
}

type pendingCustomerRequest struct {
	Pending      bool   `json:"pending"`
	CustomerName string `json:"customer_name"`
}

// SetPendingCustomer flags the table's next sale as a deferred payment.
func (h *CartHandler) SetPendingCustomer(c *gin.Context) {
	tableNo, ok := tableNoParam(c)
	if !ok {
		return
	}

	var req pendingCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	if err := h.carts.SetPendingCustomer(tableNo, req.Pending, req.CustomerName); err != nil {
		respondCartError(c, err, "Failed to set pending customer.")
		return
	}
	c.JSON(http.StatusOK, h.carts.Snapshot(tableNo))
}
