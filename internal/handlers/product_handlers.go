package handlers

import (
	"errors"
	"net/http"

	"bar_pos_backend/internal/models"
	"bar_pos_backend/internal/services"
	"bar_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProductHandler holds the product service.
type ProductHandler struct {
	productService services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(ps services.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

func respondProductError(c *gin.Context, err error, action string) {
	utils.LogError(err, action)
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Product not found.", err.Error()))
	case errors.Is(err, services.ErrDuplicateProduct):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Product already exists.", err.Error()))
	case errors.Is(err, services.ErrInvalidStock):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid stock value.", err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, action, "Internal error"))
	}
}

// CreateProduct handles creation of a new catalog product.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondProductError(c, err, "Failed to create product.")
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProducts handles fetching the catalog with optional filters.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var filters models.ProductFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	products, total, err := h.productService.GetProducts(c.Request.Context(), filters)
	if err != nil {
		respondProductError(c, err, "Failed to fetch products.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": products, "total": total})
}

// GetProductByID handles fetching a single product.
func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid product ID")
		return
	}

	product, err := h.productService.GetProductByID(id)
	if err != nil {
		respondProductError(c, err, "Failed to fetch product.")
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct handles a full-row product update.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid product ID")
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respondProductError(c, err, "Failed to update product.")
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles removal of a product from the catalog.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid product ID")
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondProductError(c, err, "Failed to delete product.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// GetLowStockProducts handles fetching products at or below their threshold.
func (h *ProductHandler) GetLowStockProducts(c *gin.Context) {
	products, err := h.productService.GetLowStockProducts()
	if err != nil {
		respondProductError(c, err, "Failed to fetch low stock products.")
		return
	}
	c.JSON(http.StatusOK, products)
}

// AdjustStock handles setting a product's absolute stock level.
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid product ID")
		return
	}

	var req services.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		respondProductError(c, err, "Failed to adjust product stock.")
		return
	}
	c.JSON(http.StatusOK, product)
}
