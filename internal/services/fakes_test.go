package services

import (
	"errors"
	"sync"
	"time"

	"bar_pos_backend/internal/models"
	"bar_pos_backend/internal/repositories"
)

var errBoom = errors.New("boom")

// fakeProductRepo is an in-memory ProductRepository. Stock reads and writes
// are mutex-guarded because sale finalization decrements concurrently.
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[int64]*models.Product

	failGetStock bool
	failSetStock bool
	setStockLog  []int64
}

func newFakeProductRepo(products ...models.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[int64]*models.Product)}
	for i := range products {
		p := products[i]
		repo.products[p.ID] = &p
	}
	return repo
}

func (r *fakeProductRepo) CreateProduct(_ repositories.SQLExecutor, product *models.Product) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := int64(len(r.products) + 1)
	product.ID = id
	p := *product
	r.products[id] = &p
	return id, nil
}

func (r *fakeProductRepo) GetProductByID(id int64) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) GetProducts(_ models.ProductFilters) ([]models.Product, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *fakeProductRepo) UpdateProduct(_ repositories.SQLExecutor, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return repositories.ErrNotFound
	}
	p := *product
	r.products[product.ID] = &p
	return nil
}

func (r *fakeProductRepo) DeleteProduct(_ repositories.SQLExecutor, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) GetLowStockProducts() ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Product
	for _, p := range r.products {
		if p.IsLowStock() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) GetProductStock(id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGetStock {
		return 0, errBoom
	}
	p, ok := r.products[id]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	return p.CurrentStock, nil
}

func (r *fakeProductRepo) SetProductStock(_ repositories.SQLExecutor, id int64, newStock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSetStock {
		return errBoom
	}
	p, ok := r.products[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.CurrentStock = newStock
	r.setStockLog = append(r.setStockLog, id)
	return nil
}

// fakeSaleRepo is an in-memory SaleRepository.
type fakeSaleRepo struct {
	mu     sync.Mutex
	nextID int64
	sales  map[int64]*models.Sale
	items  map[int64][]models.SaleItem

	failCreateSale  bool
	failCreateItems bool
	failDeleteSale  bool
	createSaleCalls int
	deleteSaleCalls int
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{
		sales: make(map[int64]*models.Sale),
		items: make(map[int64][]models.SaleItem),
	}
}

func (r *fakeSaleRepo) CreateSale(_ repositories.SQLExecutor, sale *models.Sale) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createSaleCalls++
	if r.failCreateSale {
		return 0, errBoom
	}
	r.nextID++
	s := *sale
	s.ID = r.nextID
	r.sales[s.ID] = &s
	return s.ID, nil
}

func (r *fakeSaleRepo) CreateSaleItems(items []models.SaleItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreateItems {
		return errBoom
	}
	for _, item := range items {
		r.items[item.SaleID] = append(r.items[item.SaleID], item)
	}
	return nil
}

func (r *fakeSaleRepo) DeleteSale(_ repositories.SQLExecutor, saleID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteSaleCalls++
	if r.failDeleteSale {
		return errBoom
	}
	if _, ok := r.sales[saleID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.sales, saleID)
	delete(r.items, saleID)
	return nil
}

func (r *fakeSaleRepo) GetSaleByID(saleID int64) (*models.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[saleID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeSaleRepo) GetSales(filters models.SaleFilters) ([]models.Sale, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Sale
	for _, s := range r.sales {
		if filters.IsPending != nil && s.IsPending != *filters.IsPending {
			continue
		}
		if filters.TableID != nil && (s.TableID == nil || *s.TableID != *filters.TableID) {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (r *fakeSaleRepo) GetSaleItemsBySaleID(saleID int64) ([]models.SaleItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.SaleItem(nil), r.items[saleID]...), nil
}

func (r *fakeSaleRepo) GetSalesBetween(start, end time.Time) ([]models.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Sale
	for _, s := range r.sales {
		if !s.SaleDate.Before(start) && s.SaleDate.Before(end) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSaleRepo) GetSaleItemsBetween(start, end time.Time) ([]models.SaleItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SaleItem
	for saleID, items := range r.items {
		s, ok := r.sales[saleID]
		if !ok || s.SaleDate.Before(start) || !s.SaleDate.Before(end) {
			continue
		}
		out = append(out, items...)
	}
	return out, nil
}

func (r *fakeSaleRepo) UpdateSalePayment(_ repositories.SQLExecutor, saleID int64, amountPaid float64, isPending bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[saleID]
	if !ok {
		return repositories.ErrNotFound
	}
	paid := amountPaid
	s.AmountPaid = &paid
	s.IsPending = isPending
	return nil
}

// fakeBarRepo is an in-memory BarRepository.
type fakeBarRepo struct {
	mu           sync.Mutex
	nextID       int64
	requests     map[int64]*models.BarRequest
	fulfillments map[int64]*models.BarFulfillment

	failCreateRequests     bool
	failCreateFulfillments bool
	failUpdateStatuses     bool
}

func newFakeBarRepo() *fakeBarRepo {
	return &fakeBarRepo{
		requests:     make(map[int64]*models.BarRequest),
		fulfillments: make(map[int64]*models.BarFulfillment),
	}
}

func (r *fakeBarRepo) CreateBarRequests(requests []models.BarRequest) ([]models.BarRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreateRequests {
		return nil, errBoom
	}
	out := make([]models.BarRequest, 0, len(requests))
	for _, req := range requests {
		r.nextID++
		req.ID = r.nextID
		copied := req
		r.requests[req.ID] = &copied
		out = append(out, req)
	}
	return out, nil
}

func (r *fakeBarRepo) GetBarRequests(filters models.BarRequestFilters) ([]models.BarRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BarRequest
	for id := int64(1); id <= r.nextID; id++ {
		req, ok := r.requests[id]
		if !ok {
			continue
		}
		if filters.TableID != nil && req.TableID != *filters.TableID {
			continue
		}
		if filters.Status != nil && req.Status != *filters.Status {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

func (r *fakeBarRepo) UpdateBarRequestStatuses(_ repositories.SQLExecutor, ids []int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUpdateStatuses {
		return errBoom
	}
	for _, id := range ids {
		if req, ok := r.requests[id]; ok {
			req.Status = status
		}
	}
	return nil
}

func (r *fakeBarRepo) CreateFulfillments(_ repositories.SQLExecutor, fulfillments []models.BarFulfillment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreateFulfillments {
		return errBoom
	}
	for _, f := range fulfillments {
		r.nextID++
		f.ID = r.nextID
		copied := f
		r.fulfillments[f.ID] = &copied
	}
	return nil
}

func (r *fakeBarRepo) GetFulfillmentByID(id int64) (*models.BarFulfillment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fulfillments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (r *fakeBarRepo) GetFulfillments(filters models.FulfillmentFilters) ([]models.BarFulfillment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.BarFulfillment
	for id := int64(1); id <= r.nextID; id++ {
		f, ok := r.fulfillments[id]
		if !ok {
			continue
		}
		if filters.TableID != nil && f.TableID != *filters.TableID {
			continue
		}
		if filters.Status != nil && f.Status != *filters.Status {
			continue
		}
		out = append(out, *f)
	}
	return out, nil
}

func (r *fakeBarRepo) UpdateFulfillment(_ repositories.SQLExecutor, fulfillment *models.BarFulfillment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fulfillments[fulfillment.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *fulfillment
	r.fulfillments[fulfillment.ID] = &copied
	return nil
}

// fakeAuthRepo is an in-memory AuthRepository.
type fakeAuthRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{users: make(map[int64]*models.User)}
}

func (r *fakeAuthRepo) CreateUser(_ repositories.SQLExecutor, user *models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	copied := *user
	copied.ID = r.nextID
	r.users[copied.ID] = &copied
	return copied.ID, nil
}

func (r *fakeAuthRepo) GetUserByID(id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeAuthRepo) GetUserByUsername(username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeAuthRepo) GetUsers() ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for id := int64(1); id <= r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeAuthRepo) DeleteUser(_ repositories.SQLExecutor, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// fakeBookingRepo is an in-memory BookingRepository.
type fakeBookingRepo struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]*models.RoomBooking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[int64]*models.RoomBooking)}
}

func (r *fakeBookingRepo) CreateRoomBooking(_ repositories.SQLExecutor, booking *models.RoomBooking) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	copied := *booking
	copied.ID = r.nextID
	r.bookings[copied.ID] = &copied
	return copied.ID, nil
}

func (r *fakeBookingRepo) GetRoomBookingByID(id int64) (*models.RoomBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) GetRoomBookings(filters models.RoomBookingFilters) ([]models.RoomBooking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.RoomBooking
	for id := int64(1); id <= r.nextID; id++ {
		b, ok := r.bookings[id]
		if !ok {
			continue
		}
		if filters.RoomType != nil && b.RoomType != *filters.RoomType {
			continue
		}
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (r *fakeBookingRepo) DeleteRoomBooking(_ repositories.SQLExecutor, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.bookings, id)
	return nil
}
