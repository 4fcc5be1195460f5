package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bar_pos_backend/internal/cache"
	"bar_pos_backend/internal/models"
	"bar_pos_backend/internal/repositories"
	"bar_pos_backend/pkg/utils"
)

// Product errors.
var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("a product with this name already exists")
	ErrInvalidStock     = errors.New("stock must not be negative")
)

const catalogCacheTTL = 30 * time.Second

// CreateProductRequest captures a new catalog item.
type CreateProductRequest struct {
	Name         string  `json:"name" binding:"required"`
	Category     string  `json:"category"`
	CostPrice    float64 `json:"cost_price" binding:"gte=0"`
	SellingPrice float64 `json:"selling_price" binding:"required,gt=0"`
	CurrentStock int     `json:"current_stock" binding:"gte=0"`
	LowStock     int     `json:"low_stock" binding:"gte=0"`
}

// UpdateProductRequest mirrors CreateProductRequest for full-row updates.
type UpdateProductRequest struct {
	Name         string  `json:"name" binding:"required"`
	Category     string  `json:"category"`
	CostPrice    float64 `json:"cost_price" binding:"gte=0"`
	SellingPrice float64 `json:"selling_price" binding:"required,gt=0"`
	CurrentStock int     `json:"current_stock" binding:"gte=0"`
	LowStock     int     `json:"low_stock" binding:"gte=0"`
}

// AdjustStockRequest sets a product's absolute stock level.
type AdjustStockRequest struct {
	CurrentStock int `json:"current_stock"`
}

// ProductService manages the product catalog. The unfiltered catalog list is
// served through the cache; any write invalidates it.
type ProductService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error)
	GetProductByID(id int64) (*models.Product, error)
	GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, int, error)
	UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	GetLowStockProducts() ([]models.Product, error)
	AdjustStock(ctx context.Context, id int64, req AdjustStockRequest) (*models.Product, error)
}

type productService struct {
	productRepo repositories.ProductRepository
	cache       cache.ProductCache
	db          *sql.DB
}

// NewProductService creates a new instance of ProductService.
func NewProductService(productRepo repositories.ProductRepository, productCache cache.ProductCache, db *sql.DB) ProductService {
	return &productService{
		productRepo: productRepo,
		cache:       productCache,
		db:          db,
	}
}

func (s *productService) invalidateCatalog(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		utils.LogError(err, "failed to invalidate product catalog cache")
	}
}

func (s *productService) CreateProduct(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	product := &models.Product{
		Name:         req.Name,
		Category:     req.Category,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		CurrentStock: req.CurrentStock,
		LowStock:     req.LowStock,
	}

	id, err := s.productRepo.CreateProduct(s.db, product)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateProduct
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	product.ID = id

	s.invalidateCatalog(ctx)
	return product, nil
}

func (s *productService) GetProductByID(id int64) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return product, nil
}

// GetProducts lists the catalog. Only the unfiltered, unpaginated list goes
// through the cache; filtered queries always hit the database.
func (s *productService) GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, int, error) {
	cacheable := filters.Category == nil && filters.LowStock == nil && filters.Page == 0 && filters.PageSize == 0

	if cacheable {
		products, hit, err := s.cache.Get(ctx)
		if err != nil {
			utils.LogError(err, "product catalog cache read failed")
		} else if hit {
			return products, len(products), nil
		}
	}

	products, total, err := s.productRepo.GetProducts(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get products: %w", err)
	}

	if cacheable {
		if err := s.cache.Set(ctx, products, catalogCacheTTL); err != nil {
			utils.LogError(err, "product catalog cache write failed")
		}
	}
	return products, total, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Category = req.Category
	product.CostPrice = req.CostPrice
	product.SellingPrice = req.SellingPrice
	product.CurrentStock = req.CurrentStock
	product.LowStock = req.LowStock

	if err := s.productRepo.UpdateProduct(s.db, product); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateProduct
		}
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}

	s.invalidateCatalog(ctx)
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.productRepo.DeleteProduct(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *productService) GetLowStockProducts() ([]models.Product, error) {
	products, err := s.productRepo.GetLowStockProducts()
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}
	return products, nil
}

func (s *productService) AdjustStock(ctx context.Context, id int64, req AdjustStockRequest) (*models.Product, error) {
	if req.CurrentStock < 0 {
		return nil, ErrInvalidStock
	}

	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.SetProductStock(s.db, id, req.CurrentStock); err != nil {
		return nil, fmt.Errorf("failed to set stock for product %d: %w", id, err)
	}
	product.CurrentStock = req.CurrentStock

	s.invalidateCatalog(ctx)
	return product, nil
}
