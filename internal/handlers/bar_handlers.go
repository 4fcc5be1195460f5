package handlers

import (
	"errors"
	"net/http"

	"bar_pos_backend/internal/models"
	"bar_pos_backend/internal/services"
	"bar_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// BarHandler holds the bar workflow service.
type BarHandler struct {
	barService services.BarService
}

// NewBarHandler creates a new BarHandler.
func NewBarHandler(bs services.BarService) *BarHandler {
	return &BarHandler{barService: bs}
}

func respondBarError(c *gin.Context, err error, action string) {
	utils.LogError(err, action)
	switch {
	case errors.Is(err, services.ErrUnknownTable):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Unknown table number.", err.Error()))
	case errors.Is(err, services.ErrEmptyBarRequest):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Table cart is empty.", err.Error()))
	case errors.Is(err, services.ErrBarAlreadyPending):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Table already has a pending bar request.", err.Error()))
	case errors.Is(err, services.ErrFulfillmentNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Fulfillment not found.", err.Error()))
	case errors.Is(err, services.ErrFulfillmentNotPending):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Fulfillment is already resolved.", err.Error()))
	case errors.Is(err, services.ErrQuantityMismatch),
		errors.Is(err, services.ErrInvalidFulfillmentStatus),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrUnknownModification):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid fulfillment update.", err.Error()))
	case errors.Is(err, services.ErrModificationInFlight):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "A modification is already pending.", err.Error()))
	case errors.Is(err, services.ErrNoModificationPending):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "No modification is pending.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, action, "Internal error"))
	}
}

func fulfillmentIDParam(c *gin.Context) (int64, bool) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid fulfillment ID")
		return 0, false
	}
	return id, true
}

// SendTableToBar creates pending bar requests from a table's cart.
func (h *BarHandler) SendTableToBar(c *gin.Context) {
	tableNo, ok := tableNoParam(c)
	if !ok {
		return
	}

	var req services.SendToBarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	created, err := h.barService.SendTableToBar(tableNo, req)
	if err != nil {
		respondBarError(c, err, "Failed to send table to bar.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bar_requests": created})
}

// MarkTableGiven bulk-transitions a table's pending requests to given.
func (h *BarHandler) MarkTableGiven(c *gin.Context) {
	tableNo, ok := tableNoParam(c)
	if !ok {
		return
	}

	result, err := h.barService.MarkTableGiven(tableNo)
	if err != nil {
		respondBarError(c, err, "Failed to mark table as given.")
		return
	}
	c.JSON(http.StatusOK, result)
}

// CancelTableRequests cancels a table's pending bar requests.
func (h *BarHandler) CancelTableRequests(c *gin.Context) {
	tableNo, ok := tableNoParam(c)
	if !ok {
		return
	}

	cancelled, err := h.barService.CancelTableRequests(tableNo)
	if err != nil {
		respondBarError(c, err, "Failed to cancel bar requests.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"table_id": tableNo, "cancelled": cancelled})
}

// GetBarRequests lists bar requests with optional filters.
func (h *BarHandler) GetBarRequests(c *gin.Context) {
	var filters models.BarRequestFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	requests, err := h.barService.GetBarRequests(filters)
	if err != nil {
		respondBarError(c, err, "Failed to fetch bar requests.")
		return
	}
	c.JSON(http.StatusOK, requests)
}

// GetFulfillments lists fulfillments with optional filters.
func (h *BarHandler) GetFulfillments(c *gin.Context) {
	var filters models.FulfillmentFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	fulfillments, err := h.barService.GetFulfillments(filters)
	if err != nil {
		respondBarError(c, err, "Failed to fetch fulfillments.")
		return
	}
	c.JSON(http.StatusOK, fulfillments)
}

// UpdateFulfillment resolves a pending fulfillment line.
func (h *BarHandler) UpdateFulfillment(c *gin.Context) {
	id, ok := fulfillmentIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateFulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	fulfillment, err := h.barService.UpdateFulfillment(id, req)
	if err != nil {
		respondBarError(c, err, "Failed to update fulfillment.")
		return
	}
	c.JSON(http.StatusOK, fulfillment)
}

// ProposeModification records a modification proposal on a fulfillment.
func (h *BarHandler) ProposeModification(c *gin.Context) {
	id, ok := fulfillmentIDParam(c)
	if !ok {
		return
	}

	var req services.ProposeModificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	fulfillment, err := h.barService.ProposeModification(id, req)
	if err != nil {
		respondBarError(c, err, "Failed to propose modification.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"fulfillment":       fulfillment,
		"modification_type": services.ClassifyModification(fulfillment),
	})
}

// ApproveModification merges the pending modification into the line.
func (h *BarHandler) ApproveModification(c *gin.Context) {
	id, ok := fulfillmentIDParam(c)
	if !ok {
		return
	}

	fulfillment, err := h.barService.ApproveModification(id)
	if err != nil {
		respondBarError(c, err, "Failed to approve modification.")
		return
	}
	c.JSON(http.StatusOK, fulfillment)
}

// RejectModification discards the pending modification.
func (h *BarHandler) RejectModification(c *gin.Context) {
	id, ok := fulfillmentIDParam(c)
	if !ok {
		return
	}

	fulfillment, err := h.barService.RejectModification(id)
	if err != nil {
		respondBarError(c, err, "Failed to reject modification.")
		return
	}
	c.JSON(http.StatusOK, fulfillment)
}
