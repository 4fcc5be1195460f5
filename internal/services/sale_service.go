package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"bar_pos_backend/internal/models"
	"bar_pos_backend/internal/repositories"
	"bar_pos_backend/pkg/utils"
)

// Sale finalization errors.
var (
	ErrEmptyCart          = errors.New("table has nothing to finalize")
	ErrBarHandOffRequired = errors.New("cart must be marked as given by the bar before checkout")
	ErrSaleNotFound       = errors.New("sale not found")
	ErrSaleNotPending     = errors.New("sale is not pending payment")
	ErrInvalidPayment     = errors.New("invalid payment amount")
)

// FinalizeSaleRequest carries the checkout parameters for a table.
type FinalizeSaleRequest struct {
	PaymentMethod string   `json:"payment_method" binding:"required"`
	SalesRepID    *int64   `json:"sales_rep_id"`
	SalesRepName  *string  `json:"sales_rep_name"`
	IsPending     bool     `json:"is_pending"`
	AmountPaid    *float64 `json:"amount_paid"`
	CustomerName  *string  `json:"customer_name"`
}

// RecordPaymentRequest records money received against a pending sale.
type RecordPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// SaleService finalizes table tabs into persisted sales and manages the
// pending-payment follow-up flow.
type SaleService interface {
	FinalizeTableSale(ctx context.Context, tableNo int, req FinalizeSaleRequest) (*models.Sale, error)
	GetSales(filters models.SaleFilters) ([]models.Sale, int, error)
	GetSaleByID(saleID int64) (*models.Sale, error)
	GetPendingSales() ([]models.Sale, error)
	RecordPendingPayment(saleID int64, req RecordPaymentRequest) (*models.Sale, error)
}

type saleService struct {
	saleRepo    repositories.SaleRepository
	productRepo repositories.ProductRepository
	carts       *CartStore
	db          *sql.DB
	retry       RetryPolicy
	now         func() time.Time
}

// NewSaleService creates a new instance of SaleService.
func NewSaleService(saleRepo repositories.SaleRepository, productRepo repositories.ProductRepository, carts *CartStore, db *sql.DB) SaleService {
	return &saleService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		carts:       carts,
		db:          db,
		retry:       DefaultSalePolicy(),
		now:         time.Now,
	}
}

// generateSaleNumber builds a human-readable sale number from the date plus a
// low-order timestamp slice. Uniqueness is enforced by the database.
func generateSaleNumber(t time.Time) string {
	return fmt.Sprintf("SALE-%s-%04d", t.Format("20060102"), t.UnixNano()/1000%10000)
}

// FinalizeTableSale turns a table's cart into a persisted sale:
//
//  1. create the sale header,
//  2. create the sale items (failure here deletes the just-created sale),
//  3. decrement product stock per cart line, concurrently.
//
// Stock failures in step 3 are surfaced but not compensated; the sale stays.
// Only after all three steps succeed is the table's cart cleared. The whole
// sequence is retried once on timeout, which can duplicate the sale header.
func (s *saleService) FinalizeTableSale(ctx context.Context, tableNo int, req FinalizeSaleRequest) (*models.Sale, error) {
	if err := validTable(tableNo); err != nil {
		return nil, err
	}

	snapshot := s.carts.Snapshot(tableNo)
	if len(snapshot.Items) == 0 && len(snapshot.Expenses) == 0 {
		return nil, ErrEmptyCart
	}
	if snapshot.BarStatus == models.BarStatusPending {
		return nil, ErrTableLocked
	}
	if snapshot.BarStatus != models.BarStatusGiven {
		return nil, ErrBarHandOffRequired
	}

	// Advisory stock pre-check on the aggregate per product. The later
	// decrement re-reads stock per line, so a concurrent sale can still
	// slip past this check.
	wanted := make(map[int64]int)
	for _, item := range snapshot.Items {
		wanted[item.ProductID] += item.Quantity
	}
	for productID, qty := range wanted {
		stock, err := s.productRepo.GetProductStock(productID)
		if err != nil {
			return nil, fmt.Errorf("failed to read stock for product %d: %w", productID, err)
		}
		if qty > stock {
			return nil, fmt.Errorf("%w: product %d has %d in stock, %d requested", ErrInsufficientStock, productID, stock, qty)
		}
	}

	// The table's pending-customer state fills in whatever the request left
	// unset, so a tab flagged ahead of time finalizes as pending without the
	// caller repeating it.
	isPending := req.IsPending || snapshot.PendingSale
	customerName := req.CustomerName
	if customerName == nil {
		customerName = utils.NewNullString(snapshot.PendingCustomer)
	}

	now := s.now()
	table := tableNo
	sale := &models.Sale{
		SaleNumber:    generateSaleNumber(now),
		TotalAmount:   snapshot.GrandTotal,
		PaymentMethod: req.PaymentMethod,
		SaleDate:      now,
		TableID:       &table,
		SalesRepID:    req.SalesRepID,
		SalesRepName:  req.SalesRepName,
		IsPending:     isPending,
		CustomerName:  customerName,
	}
	if isPending {
		paid := 0.0
		if req.AmountPaid != nil {
			paid = *req.AmountPaid
		}
		if paid < 0 || paid > sale.TotalAmount {
			return nil, ErrInvalidPayment
		}
		sale.AmountPaid = &paid
		sale.IsPending = paid < sale.TotalAmount
	}

	items := make([]models.SaleItem, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		items = append(items, models.SaleItem{
			ProductID:    line.ProductID,
			ProductName:  line.Name,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			UnitCost:     line.UnitCost,
			TotalPrice:   line.TotalPrice,
			TotalCost:    line.TotalCost,
			ProfitAmount: line.ProfitAmount,
		})
	}

	err := s.retry.Run(ctx, func() error {
		return s.persistSale(sale, items, snapshot.Items)
	})
	if err != nil {
		return nil, err
	}

	s.carts.Clear(tableNo)

	sale.Items = items
	return sale, nil
}

func (s *saleService) persistSale(sale *models.Sale, items []models.SaleItem, lines []models.CartItem) error {
	saleID, err := s.saleRepo.CreateSale(s.db, sale)
	if err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}
	sale.ID = saleID

	for i := range items {
		items[i].SaleID = saleID
	}
	if err := s.saleRepo.CreateSaleItems(items); err != nil {
		// Compensating delete: without its items the sale header is an
		// orphan. Stock has not been touched yet, so nothing else needs
		// undoing.
		if delErr := s.saleRepo.DeleteSale(s.db, saleID); delErr != nil {
			utils.LogError(delErr, fmt.Sprintf("failed to delete sale %d after item write failure", saleID))
		}
		return fmt.Errorf("failed to create sale items: %w", err)
	}

	return s.decrementStock(lines)
}

// decrementStock applies a read-then-write stock decrement per cart line,
// concurrently. Two simultaneous sales of the same product can lose one of
// the updates; stock is advisory, not reserved.
func (s *saleService) decrementStock(lines []models.CartItem) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(lines))

	for _, line := range lines {
		wg.Add(1)
		go func(line models.CartItem) {
			defer wg.Done()
			stock, err := s.productRepo.GetProductStock(line.ProductID)
			if err != nil {
				errCh <- fmt.Errorf("failed to read stock for product %d: %w", line.ProductID, err)
				return
			}
			if err := s.productRepo.SetProductStock(s.db, line.ProductID, stock-line.Quantity); err != nil {
				errCh <- fmt.Errorf("failed to update stock for product %d: %w", line.ProductID, err)
			}
		}(line)
	}

	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *saleService) GetSales(filters models.SaleFilters) ([]models.Sale, int, error) {
	sales, total, err := s.saleRepo.GetSales(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get sales: %w", err)
	}
	return sales, total, nil
}

func (s *saleService) GetSaleByID(saleID int64) (*models.Sale, error) {
	sale, err := s.saleRepo.GetSaleByID(saleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to get sale %d: %w", saleID, err)
	}
	items, err := s.saleRepo.GetSaleItemsBySaleID(saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get items for sale %d: %w", saleID, err)
	}
	sale.Items = items
	return sale, nil
}

func (s *saleService) GetPendingSales() ([]models.Sale, error) {
	pending := true
	sales, _, err := s.saleRepo.GetSales(models.SaleFilters{IsPending: &pending})
	if err != nil {
		return nil, fmt.Errorf("failed to get pending sales: %w", err)
	}
	return sales, nil
}

// RecordPendingPayment adds a received amount to a pending sale. The sale
// stops being pending once paid amounts reach the total; overpayment is
// rejected.
func (s *saleService) RecordPendingPayment(saleID int64, req RecordPaymentRequest) (*models.Sale, error) {
	sale, err := s.GetSaleByID(saleID)
	if err != nil {
		return nil, err
	}
	if !sale.IsPending {
		return nil, ErrSaleNotPending
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidPayment
	}

	paid := req.Amount
	if sale.AmountPaid != nil {
		paid += *sale.AmountPaid
	}
	if paid > sale.TotalAmount {
		return nil, fmt.Errorf("%w: %.2f exceeds remaining balance", ErrInvalidPayment, req.Amount)
	}

	isPending := paid < sale.TotalAmount
	if err := s.saleRepo.UpdateSalePayment(s.db, saleID, paid, isPending); err != nil {
		return nil, fmt.Errorf("failed to record payment for sale %d: %w", saleID, err)
	}

	sale.AmountPaid = &paid
	sale.IsPending = isPending
	return sale, nil
}
