package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bar_pos_backend/internal/models"

	"github.com/lib/pq"
)

// ProductRepository defines the interface for product catalog database operations.
//
// GetProductStock and SetProductStock are deliberately two separate calls:
// sale finalization performs a client-side read-modify-write on the stock
// counter with no optimistic-concurrency token, so two concurrent
// finalizations touching the same product can lose an update (last writer
// wins). See DESIGN.md before changing this to atomic arithmetic.
type ProductRepository interface {
	CreateProduct(executor SQLExecutor, product *models.Product) (int64, error)
	GetProductByID(id int64) (*models.Product, error)
	GetProducts(filters models.ProductFilters) ([]models.Product, int, error)
	UpdateProduct(executor SQLExecutor, product *models.Product) error
	DeleteProduct(executor SQLExecutor, id int64) error
	GetLowStockProducts() ([]models.Product, error)
	GetProductStock(id int64) (int, error)
	SetProductStock(executor SQLExecutor, id int64, newStock int) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository.
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) CreateProduct(executor SQLExecutor, product *models.Product) (int64, error) {
	query := `INSERT INTO products
	            (name, category, cost_price, selling_price, current_stock, low_stock, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	currentTime := time.Now()
	product.CreatedAt = currentTime
	product.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		product.Name, product.Category, product.CostPrice, product.SellingPrice,
		product.CurrentStock, product.LowStock, product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: product name '%s' already exists (constraint: %s)", ErrDuplicateKey, product.Name, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating product: %v", ErrDatabaseError, err)
	}
	return product.ID, nil
}

func (r *productRepository) GetProductByID(id int64) (*models.Product, error) {
	product := &models.Product{}
	query := `SELECT id, name, category, cost_price, selling_price, current_stock, low_stock, created_at, updated_at
	          FROM products
	          WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&product.ID, &product.Name, &product.Category, &product.CostPrice, &product.SellingPrice,
		&product.CurrentStock, &product.LowStock, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting product by ID %d: %v", ErrDatabaseError, id, err)
	}
	return product, nil
}

func (r *productRepository) GetProducts(filters models.ProductFilters) ([]models.Product, int, error) {
	products := []models.Product{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, name, category, cost_price, selling_price, current_stock, low_stock,
	    created_at, updated_at, COUNT(*) OVER() AS total_count
	  FROM products`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Category != nil && *filters.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *filters.Category)
		argCount++
	}
	if filters.LowStock != nil && *filters.LowStock {
		conditions = append(conditions, "current_stock <= low_stock")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}

	queryBuilder.WriteString(" ORDER BY name")
	if filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, (page-1)*filters.PageSize)
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var product models.Product
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Category, &product.CostPrice, &product.SellingPrice,
			&product.CurrentStock, &product.LowStock, &product.CreatedAt, &product.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning product: %v", ErrDatabaseError, err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating product rows: %v", ErrDatabaseError, err)
	}
	return products, totalCount, nil
}

func (r *productRepository) UpdateProduct(executor SQLExecutor, product *models.Product) error {
	query := `UPDATE products SET
	            name = $1, category = $2, cost_price = $3, selling_price = $4,
	            current_stock = $5, low_stock = $6, updated_at = $7
	          WHERE id = $8`
	result, err := executor.Exec(query,
		product.Name, product.Category, product.CostPrice, product.SellingPrice,
		product.CurrentStock, product.LowStock, time.Now(), product.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: updating product (constraint: %s): %v", ErrDuplicateKey, pqErr.Constraint, err)
		}
		return fmt.Errorf("%w: updating product ID %d: %v", ErrDatabaseError, product.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) DeleteProduct(executor SQLExecutor, id int64) error {
	query := `DELETE FROM products WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("%w: product ID %d cannot be deleted as it is referenced by sales or bar requests (constraint: %s)", ErrDatabaseError, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting product ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) GetLowStockProducts() ([]models.Product, error) {
	products := []models.Product{}
	query := `SELECT id, name, category, cost_price, selling_price, current_stock, low_stock, created_at, updated_at
	          FROM products
	          WHERE current_stock <= low_stock
	          ORDER BY current_stock ASC, name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying low stock products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var product models.Product
		if err := rows.Scan(
			&product.ID, &product.Name, &product.Category, &product.CostPrice, &product.SellingPrice,
			&product.CurrentStock, &product.LowStock, &product.CreatedAt, &product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning low stock product: %v", ErrDatabaseError, err)
		}
		products = append(products, product)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating low stock product rows: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *productRepository) GetProductStock(id int64) (int, error) {
	var stock int
	err := r.db.QueryRow(`SELECT current_stock FROM products WHERE id = $1`, id).Scan(&stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: reading stock for product ID %d: %v", ErrDatabaseError, id, err)
	}
	return stock, nil
}

func (r *productRepository) SetProductStock(executor SQLExecutor, id int64, newStock int) error {
	result, err := executor.Exec(
		`UPDATE products SET current_stock = $1, updated_at = $2 WHERE id = $3`,
		newStock, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: writing stock for product ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
