package handlers

import (
	"errors"
	"net/http"

	"bar_pos_backend/internal/models"
	"bar_pos_backend/internal/services"
	"bar_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the report service.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

func respondReportError(c *gin.Context, err error, action string) {
	utils.LogError(err, action)
	switch {
	case errors.Is(err, services.ErrInvalidDateRange),
		errors.Is(err, services.ErrInvalidGranularity),
		errors.Is(err, services.ErrInvalidMetric):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid report parameters.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, action, "Internal error"))
	}
}

func bindReportParams(c *gin.Context) (models.ReportRequestParams, bool) {
	var params models.ReportRequestParams
	if err := c.ShouldBindQuery(&params); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return params, false
	}
	return params, true
}

// GetSalesOverTime returns daily or monthly sales buckets.
func (h *ReportHandler) GetSalesOverTime(c *gin.Context) {
	params, ok := bindReportParams(c)
	if !ok {
		return
	}

	buckets, err := h.reportService.SalesOverTime(params)
	if err != nil {
		respondReportError(c, err, "Failed to build sales report.")
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// GetCategorySales returns per-category aggregation of sold items.
func (h *ReportHandler) GetCategorySales(c *gin.Context) {
	params, ok := bindReportParams(c)
	if !ok {
		return
	}

	buckets, err := h.reportService.CategorySales(params)
	if err != nil {
		respondReportError(c, err, "Failed to build category report.")
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// GetTopItems returns the best-selling items by quantity or revenue.
func (h *ReportHandler) GetTopItems(c *gin.Context) {
	params, ok := bindReportParams(c)
	if !ok {
		return
	}

	stats, err := h.reportService.TopItems(params)
	if err != nil {
		respondReportError(c, err, "Failed to build top items report.")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetDashboardSummary returns the key back-office metrics.
func (h *ReportHandler) GetDashboardSummary(c *gin.Context) {
	summary, err := h.reportService.DashboardSummary()
	if err != nil {
		respondReportError(c, err, "Failed to build dashboard summary.")
		return
	}
	c.JSON(http.StatusOK, summary)
}
