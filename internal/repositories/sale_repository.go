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

// SaleRepository defines the interface for sale and sale-item database operations.
type SaleRepository interface {
	CreateSale(executor SQLExecutor, sale *models.Sale) (int64, error)
	CreateSaleItems(items []models.SaleItem) error
	DeleteSale(executor SQLExecutor, saleID int64) error
	GetSaleByID(saleID int64) (*models.Sale, error)
	GetSales(filters models.SaleFilters) ([]models.Sale, int, error)
	GetSaleItemsBySaleID(saleID int64) ([]models.SaleItem, error)
	GetSalesBetween(start, end time.Time) ([]models.Sale, error)
	GetSaleItemsBetween(start, end time.Time) ([]models.SaleItem, error)
	UpdateSalePayment(executor SQLExecutor, saleID int64, amountPaid float64, isPending bool) error
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository.
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) CreateSale(executor SQLExecutor, sale *models.Sale) (int64, error) {
	query := `INSERT INTO sales
	            (sale_number, total_amount, payment_method, sale_date, table_id,
	             sales_rep_id, sales_rep_name, amount_paid, is_pending, customer_name, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`

	if sale.SaleDate.IsZero() {
		sale.SaleDate = time.Now()
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		sale.SaleNumber, sale.TotalAmount, sale.PaymentMethod, sale.SaleDate, sale.TableID,
		sale.SalesRepID, sale.SalesRepName, sale.AmountPaid, sale.IsPending, sale.CustomerName,
		sale.CreatedAt,
	).Scan(&sale.ID)

	if err != nil {
		return 0, fmt.Errorf("%w: creating sale: %v", ErrDatabaseError, err)
	}
	return sale.ID, nil
}

// CreateSaleItems inserts all items of a sale in a single transaction so the
// bulk write has no partial-success state. The sale-row compensation logic in
// the sale service relies on this all-or-nothing behavior.
func (r *saleRepository) CreateSaleItems(items []models.SaleItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: starting sale items transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	query := `INSERT INTO sale_items
	            (sale_id, product_id, quantity, unit_price, unit_cost,
	             total_price, total_cost, profit_amount, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	for i := range items {
		item := &items[i]
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now()
		}
		err := tx.QueryRow(query,
			item.SaleID, item.ProductID, item.Quantity, item.UnitPrice, item.UnitCost,
			item.TotalPrice, item.TotalCost, item.ProfitAmount, item.CreatedAt,
		).Scan(&item.ID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" {
				return fmt.Errorf("%w: creating sale item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
			}
			return fmt.Errorf("%w: creating sale item for product ID %d: %v", ErrDatabaseError, item.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing sale items: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *saleRepository) DeleteSale(executor SQLExecutor, saleID int64) error {
	result, err := executor.Exec(`DELETE FROM sales WHERE id = $1`, saleID)
	if err != nil {
		return fmt.Errorf("%w: deleting sale ID %d: %v", ErrDatabaseError, saleID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *saleRepository) GetSaleByID(saleID int64) (*models.Sale, error) {
	sale := &models.Sale{}
	query := `SELECT id, sale_number, total_amount, payment_method, sale_date, table_id,
	                 sales_rep_id, sales_rep_name, amount_paid, is_pending, customer_name, created_at
	          FROM sales
	          WHERE id = $1`
	err := r.db.QueryRow(query, saleID).Scan(
		&sale.ID, &sale.SaleNumber, &sale.TotalAmount, &sale.PaymentMethod, &sale.SaleDate, &sale.TableID,
		&sale.SalesRepID, &sale.SalesRepName, &sale.AmountPaid, &sale.IsPending, &sale.CustomerName,
		&sale.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting sale by ID %d: %v", ErrDatabaseError, saleID, err)
	}
	return sale, nil
}

func (r *saleRepository) GetSales(filters models.SaleFilters) ([]models.Sale, int, error) {
	sales := []models.Sale{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, sale_number, total_amount, payment_method, sale_date, table_id,
	    sales_rep_id, sales_rep_name, amount_paid, is_pending, customer_name, created_at,
	    COUNT(*) OVER() AS total_count
	  FROM sales`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.TableID != nil {
		conditions = append(conditions, fmt.Sprintf("table_id = $%d", argCount))
		args = append(args, *filters.TableID)
		argCount++
	}
	if filters.SalesRepID != nil {
		conditions = append(conditions, fmt.Sprintf("sales_rep_id = $%d", argCount))
		args = append(args, *filters.SalesRepID)
		argCount++
	}
	if filters.IsPending != nil {
		conditions = append(conditions, fmt.Sprintf("is_pending = $%d", argCount))
		args = append(args, *filters.IsPending)
		argCount++
	}
	if filters.StartDate != nil && *filters.StartDate != "" {
		if start, err := time.Parse("2006-01-02", *filters.StartDate); err == nil {
			conditions = append(conditions, fmt.Sprintf("sale_date >= $%d", argCount))
			args = append(args, start)
			argCount++
		}
	}
	if filters.EndDate != nil && *filters.EndDate != "" {
		if end, err := time.Parse("2006-01-02", *filters.EndDate); err == nil {
			conditions = append(conditions, fmt.Sprintf("sale_date < $%d", argCount))
			args = append(args, end.AddDate(0, 0, 1))
			argCount++
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY sale_date DESC")

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
		return nil, 0, fmt.Errorf("%w: querying sales: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var sale models.Sale
		if err := rows.Scan(
			&sale.ID, &sale.SaleNumber, &sale.TotalAmount, &sale.PaymentMethod, &sale.SaleDate, &sale.TableID,
			&sale.SalesRepID, &sale.SalesRepName, &sale.AmountPaid, &sale.IsPending, &sale.CustomerName,
			&sale.CreatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning sale: %v", ErrDatabaseError, err)
		}
		sales = append(sales, sale)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating sale rows: %v", ErrDatabaseError, err)
	}
	return sales, totalCount, nil
}

func (r *saleRepository) GetSaleItemsBySaleID(saleID int64) ([]models.SaleItem, error) {
	return r.querySaleItems(
		`WHERE si.sale_id = $1`,
		saleID,
	)
}

func (r *saleRepository) GetSalesBetween(start, end time.Time) ([]models.Sale, error) {
	sales := []models.Sale{}
	query := `SELECT id, sale_number, total_amount, payment_method, sale_date, table_id,
	                 sales_rep_id, sales_rep_name, amount_paid, is_pending, customer_name, created_at
	          FROM sales
	          WHERE sale_date >= $1 AND sale_date < $2
	          ORDER BY sale_date`
	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sales between dates: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var sale models.Sale
		if err := rows.Scan(
			&sale.ID, &sale.SaleNumber, &sale.TotalAmount, &sale.PaymentMethod, &sale.SaleDate, &sale.TableID,
			&sale.SalesRepID, &sale.SalesRepName, &sale.AmountPaid, &sale.IsPending, &sale.CustomerName,
			&sale.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning sale: %v", ErrDatabaseError, err)
		}
		sales = append(sales, sale)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sale rows: %v", ErrDatabaseError, err)
	}
	return sales, nil
}

func (r *saleRepository) GetSaleItemsBetween(start, end time.Time) ([]models.SaleItem, error) {
	return r.querySaleItems(
		`JOIN sales s ON si.sale_id = s.id
		 WHERE s.sale_date >= $1 AND s.sale_date < $2`,
		start, end,
	)
}

// querySaleItems runs the sale-item select with the product join that feeds
// the reporting category bucket. NULLIF keeps empty categories NULL so the
// report layer can bucket them under "Unknown".
func (r *saleRepository) querySaleItems(whereClause string, args ...interface{}) ([]models.SaleItem, error) {
	items := []models.SaleItem{}
	query := fmt.Sprintf(`
		SELECT
		    si.id, si.sale_id, si.product_id, si.quantity, si.unit_price, si.unit_cost,
		    si.total_price, si.total_cost, si.profit_amount, si.created_at,
		    p.name AS product_name, NULLIF(p.category, '') AS category
		FROM sale_items si
		JOIN products p ON si.product_id = p.id
		%s
		ORDER BY si.id`, whereClause)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sale items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.SaleItem
		if err := rows.Scan(
			&item.ID, &item.SaleID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.UnitCost,
			&item.TotalPrice, &item.TotalCost, &item.ProfitAmount, &item.CreatedAt,
			&item.ProductName, &item.Category,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning sale item: %v", ErrDatabaseError, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sale item rows: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *saleRepository) UpdateSalePayment(executor SQLExecutor, saleID int64, amountPaid float64, isPending bool) error {
	result, err := executor.Exec(
		`UPDATE sales SET amount_paid = $1, is_pending = $2 WHERE id = $3`,
		amountPaid, isPending, saleID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating payment for sale ID %d: %v", ErrDatabaseError, saleID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
