package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bar_pos_backend/internal/models"
	"bar_pos_backend/internal/repositories"
)

// Bar workflow errors.
var (
	ErrEmptyBarRequest          = errors.New("table cart has no items to send to the bar")
	ErrBarAlreadyPending        = errors.New("table already has a pending bar request")
	ErrFulfillmentNotFound      = errors.New("fulfillment not found")
	ErrFulfillmentNotPending    = errors.New("fulfillment is no longer pending")
	ErrQuantityMismatch         = errors.New("fulfilled and returned quantities must account for the approved quantity")
	ErrInvalidFulfillmentStatus = errors.New("invalid fulfillment status")
	ErrModificationInFlight     = errors.New("a modification is already pending for this fulfillment")
	ErrNoModificationPending    = errors.New("no modification is pending for this fulfillment")
	ErrUnknownModification      = errors.New("modification does not change anything")
)

// --- DTOs ---

// SendToBarRequest identifies the sales rep handing a table's cart to the bar.
type SendToBarRequest struct {
	SalesRepID   int64  `json:"sales_rep_id" binding:"required"`
	SalesRepName string `json:"sales_rep_name" binding:"required"`
}

// UpdateFulfillmentRequest is the bartender-side resolution of one line.
type UpdateFulfillmentRequest struct {
	Status            string  `json:"status" binding:"required"`
	QuantityFulfilled int     `json:"quantity_fulfilled" binding:"gte=0"`
	QuantityReturned  int     `json:"quantity_returned" binding:"gte=0"`
	Notes             *string `json:"notes"`
}

// ProposeModificationRequest proposes exactly one change to a fulfillment:
// quantity change, product exchange, or removal (pending_quantity = 0).
type ProposeModificationRequest struct {
	PendingQuantity    *int     `json:"pending_quantity" binding:"required"`
	PendingProductID   *int64   `json:"pending_product_id"`
	PendingProductName *string  `json:"pending_product_name"`
	PendingUnitPrice   *float64 `json:"pending_unit_price"`
}

// MarkGivenResult reports the outcome of a bulk mark-table-as-given call.
// NoOp is set when the table had zero pending requests; the caller surfaces
// it rather than treating it as an error.
type MarkGivenResult struct {
	TableID int    `json:"table_id"`
	Updated int    `json:"updated"`
	NoOp    bool   `json:"no_op"`
	Message string `json:"message"`
}

// --- BarService Interface ---

// BarService drives the bar request/fulfillment workflow. Every transition is
// persisted through the repository; the cart store's bar status is updated
// synchronously afterwards and can transiently diverge from the server state
// until the next refetch.
type BarService interface {
	SendTableToBar(tableNo int, req SendToBarRequest) ([]models.BarRequest, error)
	MarkTableGiven(tableNo int) (*MarkGivenResult, error)
	CancelTableRequests(tableNo int) (int, error)
	GetBarRequests(filters models.BarRequestFilters) ([]models.BarRequest, error)
	GetFulfillments(filters models.FulfillmentFilters) ([]models.BarFulfillment, error)
	UpdateFulfillment(fulfillmentID int64, req UpdateFulfillmentRequest) (*models.BarFulfillment, error)
	ProposeModification(fulfillmentID int64, req ProposeModificationRequest) (*models.BarFulfillment, error)
	ApproveModification(fulfillmentID int64) (*models.BarFulfillment, error)
	RejectModification(fulfillmentID int64) (*models.BarFulfillment, error)
}

type barService struct {
	barRepo repositories.BarRepository
	carts   *CartStore
	db      *sql.DB
}

// NewBarService creates a new instance of BarService.
func NewBarService(barRepo repositories.BarRepository, carts *CartStore, db *sql.DB) BarService {
	return &barService{
		barRepo: barRepo,
		carts:   carts,
		db:      db,
	}
}

// SendTableToBar bulk-creates pending bar requests from a table's cart lines
// and locks the cart by flipping its bar status to pending.
func (s *barService) SendTableToBar(tableNo int, req SendToBarRequest) ([]models.BarRequest, error) {
	if err := validTable(tableNo); err != nil {
		return nil, err
	}

	snapshot := s.carts.Snapshot(tableNo)
	if len(snapshot.Items) == 0 {
		return nil, ErrEmptyBarRequest
	}
	if snapshot.BarStatus == models.BarStatusPending {
		return nil, ErrBarAlreadyPending
	}

	requests := make([]models.BarRequest, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		requests = append(requests, models.BarRequest{
			TableID:      tableNo,
			ProductID:    item.ProductID,
			ProductName:  item.Name,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			SalesRepID:   req.SalesRepID,
			SalesRepName: req.SalesRepName,
			Status:       models.BarRequestPending,
		})
	}

	created, err := s.barRepo.CreateBarRequests(requests)
	if err != nil {
		return nil, fmt.Errorf("failed to create bar requests for table %d: %w", tableNo, err)
	}

	// Mirror update only after the persisted write succeeded.
	if err := s.carts.SetBarStatus(tableNo, models.BarStatusPending); err != nil {
		return nil, err
	}
	return created, nil
}

// MarkTableGiven transitions all of a table's pending bar requests to given,
// creates one fulfillment per transitioned request, and only then flips the
// table's status mirror. Zero pending requests is a reported no-op.
func (s *barService) MarkTableGiven(tableNo int) (*MarkGivenResult, error) {
	if err := validTable(tableNo); err != nil {
		return nil, err
	}

	status := models.BarRequestPending
	pending, err := s.barRepo.GetBarRequests(models.BarRequestFilters{TableID: &tableNo, Status: &status})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending bar requests for table %d: %w", tableNo, err)
	}

	if len(pending) == 0 {
		return &MarkGivenResult{
			TableID: tableNo,
			NoOp:    true,
			Message: fmt.Sprintf("table %d has no pending bar requests", tableNo),
		}, nil
	}

	ids := make([]int64, 0, len(pending))
	fulfillments := make([]models.BarFulfillment, 0, len(pending))
	for _, req := range pending {
		ids = append(ids, req.ID)
		fulfillments = append(fulfillments, models.BarFulfillment{
			BarRequestID:     req.ID,
			TableID:          req.TableID,
			SalesRepID:       req.SalesRepID,
			SalesRepName:     req.SalesRepName,
			ProductID:        req.ProductID,
			ProductName:      req.ProductName,
			QuantityApproved: req.Quantity,
			UnitPrice:        req.UnitPrice,
			TotalAmount:      req.UnitPrice * float64(req.Quantity),
			Status:           models.FulfillmentPending,
		})
	}

	if err := s.barRepo.UpdateBarRequestStatuses(s.db, ids, models.BarRequestGiven); err != nil {
		return nil, fmt.Errorf("failed to mark bar requests as given for table %d: %w", tableNo, err)
	}
	if err := s.barRepo.CreateFulfillments(s.db, fulfillments); err != nil {
		return nil, fmt.Errorf("failed to create fulfillments for table %d: %w", tableNo, err)
	}

	if err := s.carts.SetBarStatus(tableNo, models.BarStatusGiven); err != nil {
		return nil, err
	}

	return &MarkGivenResult{
		TableID: tableNo,
		Updated: len(pending),
		Message: fmt.Sprintf("%d bar request(s) marked as given for table %d", len(pending), tableNo),
	}, nil
}

// CancelTableRequests cancels a table's pending bar requests and unlocks the
// cart. Returns the number of cancelled requests; cancelling a table with no
// pending requests just resets the status mirror.
func (s *barService) CancelTableRequests(tableNo int) (int, error) {
	if err := validTable(tableNo); err != nil {
		return 0, err
	}

	status := models.BarRequestPending
	pending, err := s.barRepo.GetBarRequests(models.BarRequestFilters{TableID: &tableNo, Status: &status})
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pending bar requests for table %d: %w", tableNo, err)
	}

	if len(pending) > 0 {
		ids := make([]int64, 0, len(pending))
		for _, req := range pending {
			ids = append(ids, req.ID)
		}
		if err := s.barRepo.UpdateBarRequestStatuses(s.db, ids, models.BarRequestCancelled); err != nil {
			return 0, fmt.Errorf("failed to cancel bar requests for table %d: %w", tableNo, err)
		}
	}

	if err := s.carts.SetBarStatus(tableNo, models.BarStatusNone); err != nil {
		return 0, err
	}
	return len(pending), nil
}

func (s *barService) GetBarRequests(filters models.BarRequestFilters) ([]models.BarRequest, error) {
	requests, err := s.barRepo.GetBarRequests(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get bar requests: %w", err)
	}
	return requests, nil
}

func (s *barService) GetFulfillments(filters models.FulfillmentFilters) ([]models.BarFulfillment, error) {
	fulfillments, err := s.barRepo.GetFulfillments(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get fulfillments: %w", err)
	}
	return fulfillments, nil
}

func (s *barService) getFulfillment(fulfillmentID int64) (*models.BarFulfillment, error) {
	f, err := s.barRepo.GetFulfillmentByID(fulfillmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFulfillmentNotFound
		}
		return nil, fmt.Errorf("failed to fetch fulfillment %d: %w", fulfillmentID, err)
	}
	return f, nil
}

// UpdateFulfillment resolves a pending fulfillment line. The partial state is
// accepted only when quantity_fulfilled + quantity_returned equals the
// approved quantity. A line with an in-flight modification proposal cannot be
// resolved until the proposal is approved or rejected.
func (s *barService) UpdateFulfillment(fulfillmentID int64, req UpdateFulfillmentRequest) (*models.BarFulfillment, error) {
	f, err := s.getFulfillment(fulfillmentID)
	if err != nil {
		return nil, err
	}
	if f.Status != models.FulfillmentPending {
		return nil, fmt.Errorf("%w: fulfillment %d is %s", ErrFulfillmentNotPending, fulfillmentID, f.Status)
	}
	if f.HasPendingModification() {
		return nil, ErrModificationInFlight
	}
	if req.QuantityFulfilled < 0 || req.QuantityReturned < 0 {
		return nil, fmt.Errorf("%w: quantities must not be negative", ErrQuantityMismatch)
	}

	switch req.Status {
	case models.FulfillmentFulfilled:
		if req.QuantityFulfilled != f.QuantityApproved || req.QuantityReturned != 0 {
			return nil, fmt.Errorf("%w: fulfilled requires %d fulfilled and 0 returned", ErrQuantityMismatch, f.QuantityApproved)
		}
	case models.FulfillmentReturned:
		if req.QuantityReturned != f.QuantityApproved || req.QuantityFulfilled != 0 {
			return nil, fmt.Errorf("%w: returned requires %d returned and 0 fulfilled", ErrQuantityMismatch, f.QuantityApproved)
		}
	case models.FulfillmentPartial:
		if req.QuantityFulfilled+req.QuantityReturned != f.QuantityApproved {
			return nil, fmt.Errorf("%w: fulfilled %d + returned %d != approved %d",
				ErrQuantityMismatch, req.QuantityFulfilled, req.QuantityReturned, f.QuantityApproved)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFulfillmentStatus, req.Status)
	}

	now := time.Now()
	f.QuantityFulfilled = req.QuantityFulfilled
	f.QuantityReturned = req.QuantityReturned
	f.Status = req.Status
	f.FulfilledAt = &now
	if req.Notes != nil {
		f.Notes = req.Notes
	}

	if err := s.barRepo.UpdateFulfillment(s.db, f); err != nil {
		return nil, fmt.Errorf("failed to update fulfillment %d: %w", fulfillmentID, err)
	}
	return f, nil
}

// ClassifyModification derives the kind of an in-flight modification from a
// fulfillment's pending_* fields: pending_quantity 0 is a removal, a changed
// pending_product_id is an exchange, a changed pending_quantity is a quantity
// change, anything else is unknown and fails on approval.
func ClassifyModification(f *models.BarFulfillment) string {
	if f.PendingQuantity == nil {
		return models.ModificationUnknown
	}
	switch {
	case *f.PendingQuantity == 0:
		return models.ModificationRemoval
	case f.PendingProductID != nil && *f.PendingProductID != f.ProductID:
		return models.ModificationExchange
	case *f.PendingQuantity != f.QuantityApproved:
		return models.ModificationQuantityChange
	default:
		return models.ModificationUnknown
	}
}

// ProposeModification records a modification proposal on a fulfillment. Only
// one proposal may be in flight at a time.
func (s *barService) ProposeModification(fulfillmentID int64, req ProposeModificationRequest) (*models.BarFulfillment, error) {
	f, err := s.getFulfillment(fulfillmentID)
	if err != nil {
		return nil, err
	}
	if f.Status != models.FulfillmentPending {
		return nil, fmt.Errorf("%w: fulfillment %d is %s", ErrFulfillmentNotPending, fulfillmentID, f.Status)
	}
	if f.HasPendingModification() {
		return nil, ErrModificationInFlight
	}
	if req.PendingQuantity == nil || *req.PendingQuantity < 0 {
		return nil, fmt.Errorf("%w: pending quantity must be zero or positive", ErrInvalidQuantity)
	}

	now := time.Now()
	f.PendingQuantity = req.PendingQuantity
	f.PendingProductID = req.PendingProductID
	f.PendingProductName = req.PendingProductName
	f.PendingUnitPrice = req.PendingUnitPrice
	f.ModificationRequestedAt = &now

	if ClassifyModification(f) == models.ModificationUnknown {
		return nil, ErrUnknownModification
	}

	if err := s.barRepo.UpdateFulfillment(s.db, f); err != nil {
		return nil, fmt.Errorf("failed to record modification for fulfillment %d: %w", fulfillmentID, err)
	}
	return f, nil
}

func clearModification(f *models.BarFulfillment) {
	f.PendingQuantity = nil
	f.PendingProductID = nil
	f.PendingProductName = nil
	f.PendingUnitPrice = nil
	f.ModificationRequestedAt = nil
}

// ApproveModification merges the pending_* fields into the canonical ones and
// clears the proposal. A removal zeroes the approved quantity and resolves
// the line as returned. Only pending lines can be approved; merging into a
// resolved line would break its fulfilled/returned accounting.
func (s *barService) ApproveModification(fulfillmentID int64) (*models.BarFulfillment, error) {
	f, err := s.getFulfillment(fulfillmentID)
	if err != nil {
		return nil, err
	}
	if f.Status != models.FulfillmentPending {
		return nil, fmt.Errorf("%w: fulfillment %d is %s", ErrFulfillmentNotPending, fulfillmentID, f.Status)
	}
	if !f.HasPendingModification() {
		return nil, ErrNoModificationPending
	}

	switch ClassifyModification(f) {
	case models.ModificationRemoval:
		f.QuantityApproved = 0
		f.TotalAmount = 0
		f.Status = models.FulfillmentReturned
	case models.ModificationExchange:
		f.ProductID = *f.PendingProductID
		if f.PendingProductName != nil {
			f.ProductName = *f.PendingProductName
		}
		if f.PendingUnitPrice != nil {
			f.UnitPrice = *f.PendingUnitPrice
		}
		if *f.PendingQuantity > 0 {
			f.QuantityApproved = *f.PendingQuantity
		}
		f.TotalAmount = f.UnitPrice * float64(f.QuantityApproved)
	case models.ModificationQuantityChange:
		f.QuantityApproved = *f.PendingQuantity
		f.TotalAmount = f.UnitPrice * float64(f.QuantityApproved)
	default:
		return nil, ErrUnknownModification
	}

	clearModification(f)

	if err := s.barRepo.UpdateFulfillment(s.db, f); err != nil {
		return nil, fmt.Errorf("failed to approve modification for fulfillment %d: %w", fulfillmentID, err)
	}
	return f, nil
}

// RejectModification discards the pending_* fields and leaves the canonical
// fields untouched.
func (s *barService) RejectModification(fulfillmentID int64) (*models.BarFulfillment, error) {
	f, err := s.getFulfillment(fulfillmentID)
	if err != nil {
		return nil, err
	}
	if !f.HasPendingModification() {
		return nil, ErrNoModificationPending
	}

	clearModification(f)

	if err := s.barRepo.UpdateFulfillment(s.db, f); err != nil {
		return nil, fmt.Errorf("failed to reject modification for fulfillment %d: %w", fulfillmentID, err)
	}
	return f, nil
}
