package services

import (
	"errors"
	"testing"

	"bar_pos_backend/internal/models"
)

func newTestBarService() (BarService, *fakeBarRepo, *CartStore) {
	store, _ := newTestCartStore()
	repo := newFakeBarRepo()
	return NewBarService(repo, store, nil), repo, store
}

func sendTable(t *testing.T, svc BarService, store *CartStore, tableNo int) []models.BarRequest {
	t.Helper()
	if err := store.AddItem(tableNo, beerParams(2)); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	created, err := svc.SendTableToBar(tableNo, SendToBarRequest{SalesRepID: 9, SalesRepName: "Aida"})
	if err != nil {
		t.Fatalf("SendTableToBar: %v", err)
	}
	return created
}

func markGiven(t *testing.T, svc BarService, store *CartStore, tableNo int) models.BarFulfillment {
	t.Helper()
	sendTable(t, svc, store, tableNo)
	if _, err := svc.MarkTableGiven(tableNo); err != nil {
		t.Fatalf("MarkTableGiven: %v", err)
	}
	fulfillments, err := svc.GetFulfillments(models.FulfillmentFilters{TableID: &tableNo})
	if err != nil {
		t.Fatalf("GetFulfillments: %v", err)
	}
	if len(fulfillments) != 1 {
		t.Fatalf("want 1 fulfillment, got %d", len(fulfillments))
	}
	return fulfillments[0]
}

func TestSendTableToBarCreatesRequestsAndLocks(t *testing.T) {
	svc, _, store := newTestBarService()

	created := sendTable(t, svc, store, 1)
	if len(created) != 1 {
		t.Fatalf("want 1 request, got %d", len(created))
	}
	if created[0].Status != models.BarRequestPending {
		t.Errorf("want pending, got %s", created[0].Status)
	}
	if created[0].Quantity != 2 || created[0].UnitPrice != 5.0 {
		t.Errorf("request does not mirror cart line: %+v", created[0])
	}
	if got := store.BarStatus(1); got != models.BarStatusPending {
		t.Errorf("want table locked pending, got %s", got)
	}
}

func TestSendTableToBarRejectsEmptyCart(t *testing.T) {
	svc, _, _ := newTestBarService()

	if _, err := svc.SendTableToBar(1, SendToBarRequest{SalesRepID: 9, SalesRepName: "Aida"}); !errors.Is(err, ErrEmptyBarRequest) {
		t.Errorf("want ErrEmptyBarRequest, got %v", err)
	}
}

func TestSendTableToBarRejectsDoubleSend(t *testing.T) {
	svc, _, store := newTestBarService()

	sendTable(t, svc, store, 1)
	if _, err := svc.SendTableToBar(1, SendToBarRequest{SalesRepID: 9, SalesRepName: "Aida"}); !errors.Is(err, ErrBarAlreadyPending) {
		t.Errorf("want ErrBarAlreadyPending, got %v", err)
	}
}

func TestSendTableToBarKeepsCartUnlockedOnFailure(t *testing.T) {
	svc, repo, store := newTestBarService()
	repo.failCreateRequests = true

	if err := store.AddItem(1, beerParams(2)); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := svc.SendTableToBar(1, SendToBarRequest{SalesRepID: 9, SalesRepName: "Aida"}); err == nil {
		t.Fatal("want error from repo")
	}
	if got := store.BarStatus(1); got != models.BarStatusNone {
		t.Errorf("mirror must stay none after failed persist, got %s", got)
	}
}

func TestMarkTableGivenTransitionsAndCreatesFulfillments(t *testing.T) {
	svc, _, store := newTestBarService()

	sendTable(t, svc, store, 1)
	result, err := svc.MarkTableGiven(1)
	if err != nil {
		t.Fatalf("MarkTableGiven: %v", err)
	}
	if result.NoOp || result.Updated != 1 {
		t.Fatalf("want 1 updated, got %+v", result)
	}

	given := models.BarRequestGiven
	requests, err := svc.GetBarRequests(models.BarRequestFilters{Status: &given})
	if err != nil {
		t.Fatalf("GetBarRequests: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("want 1 given request, got %d", len(requests))
	}

	tableNo := 1
	fulfillments, err := svc.GetFulfillments(models.FulfillmentFilters{TableID: &tableNo})
	if err != nil {
		t.Fatalf("GetFulfillments: %v", err)
	}
	if len(fulfillments) != 1 {
		t.Fatalf("want 1 fulfillment, got %d", len(fulfillments))
	}
	f := fulfillments[0]
	if f.Status != models.FulfillmentPending || f.QuantityApproved != 2 || f.TotalAmount != 10 {
		t.Errorf("unexpected fulfillment: %+v", f)
	}
	if got := store.BarStatus(1); got != models.BarStatusGiven {
		t.Errorf("want table status given, got %s", got)
	}
}

func TestMarkTableGivenNoPendingIsReportedNoOp(t *testing.T) {
	svc, _, _ := newTestBarService()

	result, err := svc.MarkTableGiven(4)
	if err != nil {
		t.Fatalf("MarkTableGiven: %v", err)
	}
	if !result.NoOp || result.Updated != 0 || result.Message == "" {
		t.Errorf("want reported no-op, got %+v", result)
	}
}

func TestCancelTableRequestsUnlocks(t *testing.T) {
	svc, _, store := newTestBarService()

	sendTable(t, svc, store, 1)
	cancelled, err := svc.CancelTableRequests(1)
	if err != nil {
		t.Fatalf("CancelTableRequests: %v", err)
	}
	if cancelled != 1 {
		t.Errorf("want 1 cancelled, got %d", cancelled)
	}
	if got := store.BarStatus(1); got != models.BarStatusNone {
		t.Errorf("want unlocked table, got %s", got)
	}

	status := models.BarRequestCancelled
	requests, err := svc.GetBarRequests(models.BarRequestFilters{Status: &status})
	if err != nil {
		t.Fatalf("GetBarRequests: %v", err)
	}
	if len(requests) != 1 {
		t.Errorf("want 1 cancelled request, got %d", len(requests))
	}
}

func TestUpdateFulfillmentPartialInvariant(t *testing.T) {
	svc, _, store := newTestBarService()
	f := markGiven(t, svc, store, 1) // approved quantity 2

	// 1 fulfilled + 0 returned does not account for 2 approved.
	_, err := svc.UpdateFulfillment(f.ID, UpdateFulfillmentRequest{
		Status: models.FulfillmentPartial, QuantityFulfilled: 1, QuantityReturned: 0,
	})
	if !errors.Is(err, ErrQuantityMismatch) {
		t.Fatalf("want ErrQuantityMismatch, got %v", err)
	}

	updated, err := svc.UpdateFulfillment(f.ID, UpdateFulfillmentRequest{
		Status: models.FulfillmentPartial, QuantityFulfilled: 1, QuantityReturned: 1,
	})
	if err != nil {
		t.Fatalf("UpdateFulfillment: %v", err)
	}
	if updated.Status != models.FulfillmentPartial || updated.FulfilledAt == nil {
		t.Errorf("unexpected fulfillment after partial: %+v", updated)
	}
}

func TestUpdateFulfillmentFulfilledRequiresFullQuantity(t *testing.T) {
	svc, _, store := newTestBarService()
	f := markGiven(t, svc, store, 1)

	_, err := svc.UpdateFulfillment(f.ID, UpdateFulfillmentRequest{
		Status: models.FulfillmentFulfilled, QuantityFulfilled: 1,
	})
	if !errors.Is(err, ErrQuantityMismatch) {
		t.Fatalf("want ErrQuantityMismatch, got %v", err)
	}

	updated, err := svc.UpdateFulfillment(f.ID, UpdateFulfillmentRequest{
		Status: models.FulfillmentFulfilled, QuantityFulfilled: 2,
	})
	if err != nil {
		t.Fatalf("UpdateFulfillment: %v", err)
	}
	if updated.Status != models.FulfillmentFulfilled {
		t.Errorf("want fulfilled, got %s", updated.Status)
	}

	// Resolved lines cannot be resolved again.
	_, err = svc.UpdateFulfillment(f.ID, UpdateFulfillmentRequest{
		Status: models.FulfillmentReturned, QuantityReturned: 2,
	})
	if !errors.Is(err, ErrFulfillmentNotPending) {
		t.Errorf("want ErrFulfillmentNotPending, got %v", err)
	}
}

func TestUpdateFulfillmentRejectsUnknownStatus(t *testing.T) {
	svc, _, store := newTestBarService()
	f := markGiven(t, svc, store, 1)

	_, err := svc.UpdateFulfillment(f.ID, UpdateFulfillmentRequest{Status: "lost"})
	if !errors.Is(err, ErrInvalidFulfillmentStatus) {
		t.Errorf("want ErrInvalidFulfillmentStatus, got %v", err)
	}
}

func intPtr(v int) *int           { return &v }
func int64Ptr(v int64) *int64     { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestModificationQuantityChangeRoundTrip(t *testing.T) {
	svc, _, store := newTestBarService()
	f := markGiven(t, svc, store, 1) // approved 2 at 5.0

	proposed, err := svc.ProposeModification(f.ID, ProposeModificationRequest{PendingQuantity: intPtr(1)})
	if err != nil {
		t.Fatalf("ProposeModification: %v", err)
	}
	if !proposed.HasPendingModification() {
		t.Fatal("want pending modification")
	}
	if got := ClassifyModification(proposed); got != models.ModificationQuantityChange {
		t.Fatalf("want quantity_change, got %s", got)
	}

	approved, err := svc.ApproveModification(f.ID)
	if err != nil {
		t.Fatalf("ApproveModification: %v", err)
	}
	if approved.QuantityApproved != 1 || approved.TotalAmount != 5 {
		t.Errorf("approval did not apply: %+v", approved)
	}
	if approved.HasPendingModification() {
		t.Error("pending fields must be cleared after approval")
	}
}

func TestModificationRemovalApprovalReturnsLine(t *testing.T) {
	svc, _, store := newTestBarService()
	f := markGiven(t, svc, store, 1)

	if _, err := svc.ProposeModification(f.ID, ProposeModificationRequest{PendingQuantity: intPtr(0)}); err != nil {
		t.Fatalf("ProposeModification: %v", err)
	}

	approved, err := svc.ApproveModification(f.ID)
	if err != nil {
		t.Fatalf("ApproveModification: %v", err)
	}
	if approved.QuantityApproved != 0 || approved.TotalAmount != 0 {
		t.Errorf("removal must zero the line: %+v", approved)
	}
	if approved.Status != models.FulfillmentReturned {
		t.Errorf("want returned, got %s", approved.Status)
	}
}

func TestModificationExchange(t *testing.T) {
	svc, _, store := newTestBarService()
	f := markGiven(t, svc, store, 1)

	_, err := svc.ProposeModification(f.ID, ProposeModificationRequest{
		PendingQuantity:    intPtr(2),
		PendingProductID:   int64Ptr(2),
		PendingProductName: strPtr("Wine"),
		PendingUnitPrice:   floatPtr(12),
	})
	if err != nil {
		t.Fatalf("ProposeModification: %v", err)
	}

	approved, err := svc.ApproveModification(f.ID)
	if err != nil {
		t.Fatalf("ApproveModification: %v", err)
	}
	if approved.ProductID != 2 || approved.ProductName != "Wine" {
		t.Errorf("exchange did not swap product: %+v", approved)
	}
	if approved.UnitPrice != 12 || approved.TotalAmount != 24 {
		t.Errorf("exchange did not reprice: %+v", approved)
	}
}

func TestModificationRejectKeepsCanonicalFields(t *testing.T) {
	svc, _, store := newTestBarService()
	f := markGiven(t, svc, store, 1)

	if _, err := svc.ProposeModification(f.ID, ProposeModificationRequest{PendingQuantity: intPtr(1)}); err != nil {
		t.Fatalf("ProposeModification: %v", err)
	}

	rejected, err := svc.RejectModification(f.ID)
	if err != nil {
		t.Fatalf("RejectModification: %v", err)
	}
	if rejected.QuantityApproved != 2 {
		t.Errorf("rejection must not touch approved quantity: %+v", rejected)
	}
	if rejected.HasPendingModification() {
		t.Error("pending fields must be cleared after rejection")
	}

	// A fresh proposal is allowed after the rejection.
	if _, err := svc.ProposeModification(f.ID, ProposeModificationRequest{PendingQuantity: intPtr(1)}); err != nil {
		t.Errorf("second proposal after rejection: %v", err)
	}
}

func TestModificationSingleInFlight(t *testing.T) {
	svc, _, store := newTestBarService()
	f := markGiven(t, svc, store, 1)

	if _, err := svc.ProposeModification(f.ID, ProposeModificationRequest{PendingQuantity: intPtr(1)}); err != nil {
		t.Fatalf("first proposal: %v", err)
	}
	_, err := svc.ProposeModification(f.ID, ProposeModificationRequest{PendingQuantity: intPtr(0)})
	if !errors.Is(err, ErrModificationInFlight) {
		t.Errorf("want ErrModificationInFlight, got %v", err)
	}
}

func TestModificationApproveWithoutProposal(t *testing.T) {
	svc, _, store := newTestBarService()
	f := markGiven(t, svc, store, 1)

	if _, err := svc.ApproveModification(f.ID); !errors.Is(err, ErrNoModificationPending) {
		t.Errorf("want ErrNoModificationPending, got %v", err)
	}
}

func TestUpdateFulfillmentBlockedWhileModificationInFlight(t *testing.T) {
	svc, _, store := newTestBarService()
	f := markGiven(t, svc, store, 1) // approved 2

	if _, err := svc.ProposeModification(f.ID, ProposeModificationRequest{PendingQuantity: intPtr(1)}); err != nil {
		t.Fatalf("ProposeModification: %v", err)
	}

	_, err := svc.UpdateFulfillment(f.ID, UpdateFulfillmentRequest{Status: models.FulfillmentPartial, QuantityFulfilled: 1, QuantityReturned: 1})
	if !errors.Is(err, ErrModificationInFlight) {
		t.Errorf("want ErrModificationInFlight, got %v", err)
	}

	// Rejecting the proposal unblocks resolution.
	if _, err := svc.RejectModification(f.ID); err != nil {
		t.Fatalf("RejectModification: %v", err)
	}
	if _, err := svc.UpdateFulfillment(f.ID, UpdateFulfillmentRequest{Status: models.FulfillmentPartial, QuantityFulfilled: 1, QuantityReturned: 1}); err != nil {
		t.Fatalf("UpdateFulfillment after reject: %v", err)
	}
}

func TestModificationApproveRejectsResolvedLine(t *testing.T) {
	svc, repo, store := newTestBarService()
	f := markGiven(t, svc, store, 1)

	// Seed a resolved line that still carries a proposal, as older rows can.
	stored := repo.fulfillments[f.ID]
	stored.Status = models.FulfillmentPartial
	stored.QuantityFulfilled = 1
	stored.QuantityReturned = 1
	stored.PendingQuantity = intPtr(5)

	if _, err := svc.ApproveModification(f.ID); !errors.Is(err, ErrFulfillmentNotPending) {
		t.Errorf("want ErrFulfillmentNotPending, got %v", err)
	}
}

func TestModificationNoChangeIsRejected(t *testing.T) {
	svc, _, store := newTestBarService()
	f := markGiven(t, svc, store, 1) // approved 2

	// Quantity equal to approved and no product swap changes nothing.
	_, err := svc.ProposeModification(f.ID, ProposeModificationRequest{PendingQuantity: intPtr(2)})
	if !errors.Is(err, ErrUnknownModification) {
		t.Errorf("want ErrUnknownModification, got %v", err)
	}
}

func TestClassifyModification(t *testing.T) {
	base := models.BarFulfillment{ProductID: 1, QuantityApproved: 2}

	tests := []struct {
		name string
		mod  func(f *models.BarFulfillment)
		want string
	}{
		{"no proposal", func(f *models.BarFulfillment) {}, models.ModificationUnknown},
		{"removal", func(f *models.BarFulfillment) { f.PendingQuantity = intPtr(0) }, models.ModificationRemoval},
		{"exchange", func(f *models.BarFulfillment) {
			f.PendingQuantity = intPtr(2)
			f.PendingProductID = int64Ptr(7)
		}, models.ModificationExchange},
		{"quantity change", func(f *models.BarFulfillment) { f.PendingQuantity = intPtr(5) }, models.ModificationQuantityChange},
		{"same product same quantity", func(f *models.BarFulfillment) {
			f.PendingQuantity = intPtr(2)
			f.PendingProductID = int64Ptr(1)
		}, models.ModificationUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base
			tt.mod(&f)
			if got := ClassifyModification(&f); got != tt.want {
				t.Errorf("want %s, got %s", tt.want, got)
			}
		})
	}
}
