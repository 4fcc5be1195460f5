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

// BarRepository defines the interface for bar request and fulfillment
// database operations. Every workflow transition is persisted here; the cart
// store only mirrors the request-level status after a successful write.
type BarRepository interface {
	CreateBarRequests(requests []models.BarRequest) ([]models.BarRequest, error)
	GetBarRequests(filters models.BarRequestFilters) ([]models.BarRequest, error)
	UpdateBarRequestStatuses(executor SQLExecutor, ids []int64, status string) error

	CreateFulfillments(executor SQLExecutor, fulfillments []models.BarFulfillment) error
	GetFulfillmentByID(id int64) (*models.BarFulfillment, error)
	GetFulfillments(filters models.FulfillmentFilters) ([]models.BarFulfillment, error)
	UpdateFulfillment(executor SQLExecutor, fulfillment *models.BarFulfillment) error
}

type barRepository struct {
	db *sql.DB
}

// NewBarRepository creates a new instance of BarRepository.
func NewBarRepository(db *sql.DB) BarRepository {
	return &barRepository{db: db}
}

// CreateBarRequests bulk-inserts the requests generated from one table's cart
// in a single transaction and returns them with generated ids.
func (r *barRepository) CreateBarRequests(requests []models.BarRequest) ([]models.BarRequest, error) {
	if len(requests) == 0 {
		return requests, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("%w: starting bar request transaction: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	query := `INSERT INTO bar_requests
	            (table_id, product_id, product_name, quantity, unit_price,
	             sales_rep_id, sales_rep_name, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	for i := range requests {
		req := &requests[i]
		if req.CreatedAt.IsZero() {
			req.CreatedAt = time.Now()
		}
		err := tx.QueryRow(query,
			req.TableID, req.ProductID, req.ProductName, req.Quantity, req.UnitPrice,
			req.SalesRepID, req.SalesRepName, req.Status, req.CreatedAt,
		).Scan(&req.ID)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23503" {
				return nil, fmt.Errorf("%w: creating bar request (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
			}
			return nil, fmt.Errorf("%w: creating bar request for product ID %d: %v", ErrDatabaseError, req.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing bar requests: %v", ErrDatabaseError, err)
	}
	return requests, nil
}

func (r *barRepository) GetBarRequests(filters models.BarRequestFilters) ([]models.BarRequest, error) {
	requests := []models.BarRequest{}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, table_id, product_id, product_name, quantity, unit_price,
	    sales_rep_id, sales_rep_name, status, created_at
	  FROM bar_requests`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.TableID != nil {
		conditions = append(conditions, fmt.Sprintf("table_id = $%d", argCount))
		args = append(args, *filters.TableID)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at, id")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying bar requests: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var req models.BarRequest
		if err := rows.Scan(
			&req.ID, &req.TableID, &req.ProductID, &req.ProductName, &req.Quantity, &req.UnitPrice,
			&req.SalesRepID, &req.SalesRepName, &req.Status, &req.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning bar request: %v", ErrDatabaseError, err)
		}
		requests = append(requests, req)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating bar request rows: %v", ErrDatabaseError, err)
	}
	return requests, nil
}

func (r *barRepository) UpdateBarRequestStatuses(executor SQLExecutor, ids []int64, status string) error {
	if len(ids) == 0 {
		return nil
	}
	result, err := executor.Exec(
		`UPDATE bar_requests SET status = $1 WHERE id = ANY($2)`,
		status, pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("%w: updating bar request statuses: %v", ErrDatabaseError, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *barRepository) CreateFulfillments(executor SQLExecutor, fulfillments []models.BarFulfillment) error {
	query := `INSERT INTO bar_fulfillments
	            (bar_request_id, table_id, sales_rep_id, sales_rep_name, product_id, product_name,
	             quantity_approved, quantity_fulfilled, quantity_returned, unit_price, total_amount,
	             status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	          RETURNING id`

	for i := range fulfillments {
		f := &fulfillments[i]
		currentTime := time.Now()
		if f.CreatedAt.IsZero() {
			f.CreatedAt = currentTime
		}
		f.UpdatedAt = currentTime
		err := executor.QueryRow(query,
			f.BarRequestID, f.TableID, f.SalesRepID, f.SalesRepName, f.ProductID, f.ProductName,
			f.QuantityApproved, f.QuantityFulfilled, f.QuantityReturned, f.UnitPrice, f.TotalAmount,
			f.Status, f.CreatedAt, f.UpdatedAt,
		).Scan(&f.ID)
		if err != nil {
			return fmt.Errorf("%w: creating fulfillment for bar request ID %d: %v", ErrDatabaseError, f.BarRequestID, err)
		}
	}
	return nil
}

func (r *barRepository) GetFulfillmentByID(id int64) (*models.BarFulfillment, error) {
	f := &models.BarFulfillment{}
	query := `SELECT id, bar_request_id, table_id, sales_rep_id, sales_rep_name, product_id, product_name,
	                 quantity_approved, quantity_fulfilled, quantity_returned, unit_price, total_amount, status,
	                 pending_quantity, pending_product_id, pending_product_name, pending_unit_price,
	                 modification_requested_at, fulfilled_at, notes, created_at, updated_at
	          FROM bar_fulfillments
	          WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&f.ID, &f.BarRequestID, &f.TableID, &f.SalesRepID, &f.SalesRepName, &f.ProductID, &f.ProductName,
		&f.QuantityApproved, &f.QuantityFulfilled, &f.QuantityReturned, &f.UnitPrice, &f.TotalAmount, &f.Status,
		&f.PendingQuantity, &f.PendingProductID, &f.PendingProductName, &f.PendingUnitPrice,
		&f.ModificationRequestedAt, &f.FulfilledAt, &f.Notes, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting fulfillment by ID %d: %v", ErrDatabaseError, id, err)
	}
	return f, nil
}

func (r *barRepository) GetFulfillments(filters models.FulfillmentFilters) ([]models.BarFulfillment, error) {
	fulfillments := []models.BarFulfillment{}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, bar_request_id, table_id, sales_rep_id, sales_rep_name, product_id, product_name,
	    quantity_approved, quantity_fulfilled, quantity_returned, unit_price, total_amount, status,
	    pending_quantity, pending_product_id, pending_product_name, pending_unit_price,
	    modification_requested_at, fulfilled_at, notes, created_at, updated_at
	  FROM bar_fulfillments`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.TableID != nil {
		conditions = append(conditions, fmt.Sprintf("table_id = $%d", argCount))
		args = append(args, *filters.TableID)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at, id")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying fulfillments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var f models.BarFulfillment
		if err := rows.Scan(
			&f.ID, &f.BarRequestID, &f.TableID, &f.SalesRepID, &f.SalesRepName, &f.ProductID, &f.ProductName,
			&f.QuantityApproved, &f.QuantityFulfilled, &f.QuantityReturned, &f.UnitPrice, &f.TotalAmount, &f.Status,
			&f.PendingQuantity, &f.PendingProductID, &f.PendingProductName, &f.PendingUnitPrice,
			&f.ModificationRequestedAt, &f.FulfilledAt, &f.Notes, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning fulfillment: %v", ErrDatabaseError, err)
		}
		fulfillments = append(fulfillments, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating fulfillment rows: %v", ErrDatabaseError, err)
	}
	return fulfillments, nil
}

// UpdateFulfillment writes every mutable field of a fulfillment row, including
// the pending_* modification fields. The bar service computes the merged
// state; this method just persists it.
func (r *barRepository) UpdateFulfillment(executor SQLExecutor, fulfillment *models.BarFulfillment) error {
	query := `UPDATE bar_fulfillments SET
	            product_id = $1, product_name = $2, quantity_approved = $3,
	            quantity_fulfilled = $4, quantity_returned = $5, unit_price = $6, total_amount = $7,
	            status = $8, pending_quantity = $9, pending_product_id = $10,
	            pending_product_name = $11, pending_unit_price = $12, modification_requested_at = $13,
	            fulfilled_at = $14, notes = $15, updated_at = $16
	          WHERE id = $17`

	fulfillment.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		fulfillment.ProductID, fulfillment.ProductName, fulfillment.QuantityApproved,
		fulfillment.QuantityFulfilled, fulfillment.QuantityReturned, fulfillment.UnitPrice, fulfillment.TotalAmount,
		fulfillment.Status, fulfillment.PendingQuantity, fulfillment.PendingProductID,
		fulfillment.PendingProductName, fulfillment.PendingUnitPrice, fulfillment.ModificationRequestedAt,
		fulfillment.FulfilledAt, fulfillment.Notes, fulfillment.UpdatedAt,
		fulfillment.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating fulfillment ID %d: %v", ErrDatabaseError, fulfillment.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
