package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"bar_pos_backend/internal/models"
)

// Cart store errors.
var (
	ErrUnknownTable      = errors.New("unknown table number")
	ErrTableLocked       = errors.New("table cart is locked while a bar request is pending")
	ErrInsufficientStock = errors.New("insufficient stock for requested quantity")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrExpenseNotFound   = errors.New("expense not found")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// MaxTableNumber bounds the fixed table range served by the floor (1..N).
const MaxTableNumber = 10

// StockReader reads a product's current stock for the advisory stock check.
// The snapshot may be stale relative to concurrent sales; the check is a
// guard against obvious oversell, not a reservation.
type StockReader interface {
	GetProductStock(productID int64) (int, error)
}

// AddItemParams carries one candidate cart line addition.
type AddItemParams struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice float64
	UnitCost  float64
}

type tableState struct {
	items           []models.CartItem
	expenses        []models.Expense
	barStatus       models.BarStatus
	pendingSale     bool
	pendingCustomer string
}

// CartStore holds the not-yet-sold cart of every table, partitioned by table
// number. It is the single place cart invariants are enforced: all mutation
// goes through its methods, never through direct field writes. Construct one
// instance and pass the handle to whatever needs it.
//
// A mutex guards the maps because HTTP handlers run concurrently; edits to
// different tables never contend on state beyond the lock itself.
type CartStore struct {
	mu            sync.RWMutex
	stock         StockReader
	tables        map[int]*tableState
	nextExpenseID int64
}

// NewCartStore creates an empty cart store backed by the given stock reader.
func NewCartStore(stock StockReader) *CartStore {
	return &CartStore{
		stock:  stock,
		tables: make(map[int]*tableState),
	}
}

// table returns the state for a table, creating it lazily on first use.
// Callers must hold the write lock.
func (s *CartStore) table(tableNo int) *tableState {
	t, ok := s.tables[tableNo]
	if !ok {
		t = &tableState{barStatus: models.BarStatusNone}
		s.tables[tableNo] = t
	}
	return t
}

func validTable(tableNo int) error {
	if tableNo < 1 || tableNo > MaxTableNumber {
		return fmt.Errorf("%w: %d (valid range 1-%d)", ErrUnknownTable, tableNo, MaxTableNumber)
	}
	return nil
}

// committedQuantity sums the quantity of a product across a table's lines,
// excluding the line keyed by (productID, excludePrice) when excludeLine is
// set. That excluded line is the one being edited.
func committedQuantity(items []models.CartItem, productID int64, excludeLine bool, excludePrice float64) int {
	total := 0
	for _, item := range items {
		if item.ProductID != productID {
			continue
		}
		if excludeLine && item.UnitPrice == excludePrice {
			continue
		}
		total += item.Quantity
	}
	return total
}

// checkStock rejects a candidate quantity when the table's total committed
// quantity for the product would exceed the last known current_stock.
func (s *CartStore) checkStock(t *tableState, productID int64, candidate int, editedPrice float64) error {
	stock, err := s.stock.GetProductStock(productID)
	if err != nil {
		return fmt.Errorf("reading stock for product %d: %w", productID, err)
	}
	committed := committedQuantity(t.items, productID, true, editedPrice)
	if committed+candidate > stock {
		return fmt.Errorf("%w: product %d has %d in stock, table already carries %d, requested %d",
			ErrInsufficientStock, productID, stock, committed, candidate)
	}
	return nil
}

func recalc(item *models.CartItem) {
	item.TotalPrice = item.UnitPrice * float64(item.Quantity)
	item.TotalCost = item.UnitCost * float64(item.Quantity)
	item.ProfitAmount = item.TotalPrice - item.TotalCost
}

// AddItem adds a product to a table's cart, merging into an existing line
// when the (product_id, unit_price) key matches. A rejected add leaves the
// cart untouched.
func (s *CartStore) AddItem(tableNo int, params AddItemParams) error {
	if err := validTable(tableNo); err != nil {
		return err
	}
	if params.Quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(tableNo)
	if t.barStatus == models.BarStatusPending {
		return ErrTableLocked
	}

	merged := params.Quantity
	var target *models.CartItem
	for i := range t.items {
		if t.items[i].ProductID == params.ProductID && t.items[i].UnitPrice == params.UnitPrice {
			target = &t.items[i]
			merged += target.Quantity
			break
		}
	}

	if err := s.checkStock(t, params.ProductID, merged, params.UnitPrice); err != nil {
		return err
	}

	if target != nil {
		target.Quantity = merged
		recalc(target)
		return nil
	}

	item := models.CartItem{
		ProductID: params.ProductID,
		Name:      params.Name,
		Quantity:  params.Quantity,
		UnitPrice: params.UnitPrice,
		UnitCost:  params.UnitCost,
	}
	recalc(&item)
	t.items = append(t.items, item)
	return nil
}

// UpdateItemQuantity sets the quantity of an existing line. A quantity of
// zero or less removes the line.
func (s *CartStore) UpdateItemQuantity(tableNo int, productID int64, unitPrice float64, quantity int) error {
	if err := validTable(tableNo); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(tableNo)
	if t.barStatus == models.BarStatusPending {
		return ErrTableLocked
	}

	idx := -1
	for i := range t.items {
		if t.items[i].ProductID == productID && t.items[i].UnitPrice == unitPrice {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrCartItemNotFound
	}

	if quantity <= 0 {
		t.items = append(t.items[:idx], t.items[idx+1:]...)
		return nil
	}

	if err := s.checkStock(t, productID, quantity, unitPrice); err != nil {
		return err
	}

	t.items[idx].Quantity = quantity
	recalc(&t.items[idx])
	return nil
}

// RemoveItem removes the line keyed by (product_id, unit_price).
func (s *CartStore) RemoveItem(tableNo int, productID int64, unitPrice float64) error {
	if err := validTable(tableNo); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(tableNo)
	if t.barStatus == models.BarStatusPending {
		return ErrTableLocked
	}

	for i := range t.items {
		if t.items[i].ProductID == productID && t.items[i].UnitPrice == unitPrice {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return nil
		}
	}
	return ErrCartItemNotFound
}

// AddExpense attaches an ad hoc charge to a table and returns it with its
// generated id. Expenses stay editable while the table waits on the bar; the
// pending lock covers only drink lines, which are what the bar hand-off
// snapshots.
func (s *CartStore) AddExpense(tableNo int, category string, amount float64) (models.Expense, error) {
	if err := validTable(tableNo); err != nil {
		return models.Expense{}, err
	}
	if amount <= 0 {
		return models.Expense{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(tableNo)
	s.nextExpenseID++
	expense := models.Expense{ID: s.nextExpenseID, Category: category, Amount: amount}
	t.expenses = append(t.expenses, expense)
	return expense, nil
}

// RemoveExpense detaches an expense from a table by id. Like AddExpense, it
// is not blocked by the pending lock.
func (s *CartStore) RemoveExpense(tableNo int, expenseID int64) error {
	if err := validTable(tableNo); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(tableNo)
	for i := range t.expenses {
		if t.expenses[i].ID == expenseID {
			t.expenses = append(t.expenses[:i], t.expenses[i+1:]...)
			return nil
		}
	}
	return ErrExpenseNotFound
}

// BarStatus returns a table's current bar request status.
func (s *CartStore) BarStatus(tableNo int) models.BarStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.tables[tableNo]; ok {
		return t.barStatus
	}
	return models.BarStatusNone
}

// SetBarStatus records the bar request status mirror for a table. Callers
// update it only after the corresponding persisted transition succeeded.
func (s *CartStore) SetBarStatus(tableNo int, status models.BarStatus) error {
	if err := validTable(tableNo); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.table(tableNo).barStatus = status
	return nil
}

// SetPendingCustomer flags the table's next sale as a deferred payment for
// the named customer.
func (s *CartStore) SetPendingCustomer(tableNo int, pending bool, customerName string) error {
	if err := validTable(tableNo); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.table(tableNo)
	t.pendingSale = pending
	t.pendingCustomer = customerName
	return nil
}

// ActiveTables lists tables with a non-empty cart or a bar status other than
// none, in ascending table order.
func (s *CartStore) ActiveTables() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []int
	for tableNo, t := range s.tables {
		if len(t.items) > 0 || t.barStatus != models.BarStatusNone {
			active = append(active, tableNo)
		}
	}
	sort.Ints(active)
	return active
}

// Snapshot returns a copy of a table's full cart state with derived totals.
func (s *CartStore) Snapshot(tableNo int) models.TableCart {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := models.TableCart{
		TableNumber: tableNo,
		Items:       []models.CartItem{},
		Expenses:    []models.Expense{},
		BarStatus:   models.BarStatusNone,
	}

	t, ok := s.tables[tableNo]
	if !ok {
		return snapshot
	}

	snapshot.Items = append(snapshot.Items, t.items...)
	snapshot.Expenses = append(snapshot.Expenses, t.expenses...)
	snapshot.BarStatus = t.barStatus
	snapshot.PendingSale = t.pendingSale
	snapshot.PendingCustomer = t.pendingCustomer

	for _, item := range t.items {
		snapshot.CartTotal += item.TotalPrice
		snapshot.ProfitTotal += item.ProfitAmount
	}
	for _, expense := range t.expenses {
		snapshot.ExpensesTotal += expense.Amount
	}
	snapshot.GrandTotal = snapshot.CartTotal + snapshot.ExpensesTotal
	return snapshot
}

// CartSubtotal returns the sum of a table's line totals.
func (s *CartStore) CartSubtotal(tableNo int) float64 {
	return s.Snapshot(tableNo).CartTotal
}

// GrandTotal returns cart subtotal plus expenses subtotal.
func (s *CartStore) GrandTotal(tableNo int) float64 {
	return s.Snapshot(tableNo).GrandTotal
}

// Clear empties a table's cart and expenses and resets its bar status to
// none. Called after successful sale finalization.
func (s *CartStore) Clear(tableNo int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tables, tableNo)
}
