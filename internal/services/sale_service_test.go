package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bar_pos_backend/internal/models"
)

func newTestSaleService() (SaleService, *fakeSaleRepo, *fakeProductRepo, *CartStore) {
	store, productRepo := newTestCartStore()
	saleRepo := newFakeSaleRepo()
	svc := NewSaleService(saleRepo, productRepo, store, nil).(*saleService)
	// No retry delays in tests.
	svc.retry = RetryPolicy{MaxRetries: 1}
	return svc, saleRepo, productRepo, store
}

func loadGivenTable(t *testing.T, store *CartStore, tableNo int) {
	t.Helper()
	if err := store.AddItem(tableNo, beerParams(3)); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := store.AddExpense(tableNo, "Hookah", 15); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if err := store.SetBarStatus(tableNo, models.BarStatusGiven); err != nil {
		t.Fatalf("SetBarStatus: %v", err)
	}
}

func TestFinalizeTableSaleHappyPath(t *testing.T) {
	svc, saleRepo, productRepo, store := newTestSaleService()
	loadGivenTable(t, store, 1)

	sale, err := svc.FinalizeTableSale(context.Background(), 1, FinalizeSaleRequest{PaymentMethod: "cash"})
	if err != nil {
		t.Fatalf("FinalizeTableSale: %v", err)
	}

	if sale.TotalAmount != 30 { // 3 beer x 5 + 15 hookah
		t.Errorf("want total 30, got %v", sale.TotalAmount)
	}
	if sale.TableID == nil || *sale.TableID != 1 {
		t.Errorf("want table 1, got %v", sale.TableID)
	}
	if !strings.HasPrefix(sale.SaleNumber, "SALE-") {
		t.Errorf("unexpected sale number %q", sale.SaleNumber)
	}
	if len(sale.Items) != 1 || sale.Items[0].SaleID != sale.ID {
		t.Errorf("items not linked to sale: %+v", sale.Items)
	}

	// Stock decremented: 10 - 3.
	stock, err := productRepo.GetProductStock(1)
	if err != nil {
		t.Fatalf("GetProductStock: %v", err)
	}
	if stock != 7 {
		t.Errorf("want stock 7, got %d", stock)
	}

	// Cart cleared only after full success.
	snap := store.Snapshot(1)
	if len(snap.Items) != 0 || len(snap.Expenses) != 0 || snap.BarStatus != models.BarStatusNone {
		t.Errorf("cart not cleared: %+v", snap)
	}

	if saleRepo.createSaleCalls != 1 {
		t.Errorf("want 1 create call, got %d", saleRepo.createSaleCalls)
	}
}

func TestFinalizeTableSalePreconditions(t *testing.T) {
	svc, _, _, store := newTestSaleService()

	// Empty table.
	_, err := svc.FinalizeTableSale(context.Background(), 1, FinalizeSaleRequest{PaymentMethod: "cash"})
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("empty: want ErrEmptyCart, got %v", err)
	}

	// Items present but never sent to the bar.
	if err := store.AddItem(2, beerParams(1)); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	_, err = svc.FinalizeTableSale(context.Background(), 2, FinalizeSaleRequest{PaymentMethod: "cash"})
	if !errors.Is(err, ErrBarHandOffRequired) {
		t.Errorf("none: want ErrBarHandOffRequired, got %v", err)
	}

	// Bar request still pending.
	if err := store.SetBarStatus(2, models.BarStatusPending); err != nil {
		t.Fatalf("SetBarStatus: %v", err)
	}
	_, err = svc.FinalizeTableSale(context.Background(), 2, FinalizeSaleRequest{PaymentMethod: "cash"})
	if !errors.Is(err, ErrTableLocked) {
		t.Errorf("pending: want ErrTableLocked, got %v", err)
	}
}

func TestFinalizeTableSaleInsufficientStock(t *testing.T) {
	svc, saleRepo, productRepo, store := newTestSaleService()
	loadGivenTable(t, store, 1)

	// Stock dropped behind the cart's back.
	productRepo.mu.Lock()
	productRepo.products[1].CurrentStock = 2
	productRepo.mu.Unlock()

	_, err := svc.FinalizeTableSale(context.Background(), 1, FinalizeSaleRequest{PaymentMethod: "cash"})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}
	if saleRepo.createSaleCalls != 0 {
		t.Errorf("precheck must run before any write, got %d create calls", saleRepo.createSaleCalls)
	}
}

func TestFinalizeTableSaleCompensatingDelete(t *testing.T) {
	svc, saleRepo, _, store := newTestSaleService()
	loadGivenTable(t, store, 1)
	saleRepo.failCreateItems = true

	_, err := svc.FinalizeTableSale(context.Background(), 1, FinalizeSaleRequest{PaymentMethod: "cash"})
	if err == nil {
		t.Fatal("want error from item write")
	}

	// The orphan sale header was deleted.
	if saleRepo.deleteSaleCalls != 1 {
		t.Errorf("want 1 compensating delete, got %d", saleRepo.deleteSaleCalls)
	}
	saleRepo.mu.Lock()
	remaining := len(saleRepo.sales)
	saleRepo.mu.Unlock()
	if remaining != 0 {
		t.Errorf("want no sales left, got %d", remaining)
	}

	// The cart survives a failed finalize.
	if snap := store.Snapshot(1); len(snap.Items) != 1 {
		t.Errorf("cart must survive failed finalize: %+v", snap)
	}
}

func TestFinalizeTableSaleStockFailureKeepsSale(t *testing.T) {
	svc, saleRepo, productRepo, store := newTestSaleService()
	loadGivenTable(t, store, 1)
	productRepo.failSetStock = true

	_, err := svc.FinalizeTableSale(context.Background(), 1, FinalizeSaleRequest{PaymentMethod: "cash"})
	if err == nil {
		t.Fatal("want error from stock write")
	}

	// Stock failure is surfaced but not compensated: sale and items stay.
	if saleRepo.deleteSaleCalls != 0 {
		t.Errorf("stock failure must not delete the sale, got %d deletes", saleRepo.deleteSaleCalls)
	}
	saleRepo.mu.Lock()
	remaining := len(saleRepo.sales)
	saleRepo.mu.Unlock()
	if remaining != 1 {
		t.Errorf("want sale kept, got %d sales", remaining)
	}
}

func TestFinalizeTableSalePendingPayment(t *testing.T) {
	svc, _, _, store := newTestSaleService()
	loadGivenTable(t, store, 1)

	customer := "Bolat"
	sale, err := svc.FinalizeTableSale(context.Background(), 1, FinalizeSaleRequest{
		PaymentMethod: "debt",
		IsPending:     true,
		AmountPaid:    floatPtr(10),
		CustomerName:  &customer,
	})
	if err != nil {
		t.Fatalf("FinalizeTableSale: %v", err)
	}
	if !sale.IsPending {
		t.Error("want pending sale")
	}
	if sale.AmountPaid == nil || *sale.AmountPaid != 10 {
		t.Errorf("want amount paid 10, got %v", sale.AmountPaid)
	}

	pending, err := svc.GetPendingSales()
	if err != nil {
		t.Fatalf("GetPendingSales: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("want 1 pending sale, got %d", len(pending))
	}
}

func TestFinalizeTableSaleUsesCartPendingCustomer(t *testing.T) {
	svc, _, _, store := newTestSaleService()
	loadGivenTable(t, store, 1)
	if err := store.SetPendingCustomer(1, true, "Bolat"); err != nil {
		t.Fatalf("SetPendingCustomer: %v", err)
	}

	// Only the payment method is supplied; the pending flag and customer
	// come from the table.
	sale, err := svc.FinalizeTableSale(context.Background(), 1, FinalizeSaleRequest{PaymentMethod: "debt"})
	if err != nil {
		t.Fatalf("FinalizeTableSale: %v", err)
	}
	if !sale.IsPending {
		t.Error("sale should inherit the pending flag from the table")
	}
	if sale.CustomerName == nil || *sale.CustomerName != "Bolat" {
		t.Errorf("want customer Bolat, got %v", sale.CustomerName)
	}
	if sale.AmountPaid == nil || *sale.AmountPaid != 0 {
		t.Errorf("want 0 paid, got %v", sale.AmountPaid)
	}
}

func TestFinalizeTableSaleRequestOverridesCartCustomer(t *testing.T) {
	svc, _, _, store := newTestSaleService()
	loadGivenTable(t, store, 1)
	if err := store.SetPendingCustomer(1, true, "Bolat"); err != nil {
		t.Fatalf("SetPendingCustomer: %v", err)
	}

	name := "Dana"
	sale, err := svc.FinalizeTableSale(context.Background(), 1, FinalizeSaleRequest{PaymentMethod: "debt", CustomerName: &name})
	if err != nil {
		t.Fatalf("FinalizeTableSale: %v", err)
	}
	if sale.CustomerName == nil || *sale.CustomerName != "Dana" {
		t.Errorf("explicit customer must win, got %v", sale.CustomerName)
	}
	if !sale.IsPending {
		t.Error("sale should inherit the pending flag from the table")
	}
}

func TestRecordPendingPayment(t *testing.T) {
	svc, _, _, store := newTestSaleService()
	loadGivenTable(t, store, 1)

	sale, err := svc.FinalizeTableSale(context.Background(), 1, FinalizeSaleRequest{
		PaymentMethod: "debt",
		IsPending:     true,
		AmountPaid:    floatPtr(10),
	})
	if err != nil {
		t.Fatalf("FinalizeTableSale: %v", err)
	}

	// Overpayment beyond the remaining 20 is rejected.
	if _, err := svc.RecordPendingPayment(sale.ID, RecordPaymentRequest{Amount: 25}); !errors.Is(err, ErrInvalidPayment) {
		t.Errorf("want ErrInvalidPayment, got %v", err)
	}

	updated, err := svc.RecordPendingPayment(sale.ID, RecordPaymentRequest{Amount: 20})
	if err != nil {
		t.Fatalf("RecordPendingPayment: %v", err)
	}
	if updated.IsPending {
		t.Error("fully paid sale must stop being pending")
	}
	if updated.AmountPaid == nil || *updated.AmountPaid != 30 {
		t.Errorf("want amount paid 30, got %v", updated.AmountPaid)
	}

	// Settled sales take no further payments.
	if _, err := svc.RecordPendingPayment(sale.ID, RecordPaymentRequest{Amount: 1}); !errors.Is(err, ErrSaleNotPending) {
		t.Errorf("want ErrSaleNotPending, got %v", err)
	}
}

func TestGenerateSaleNumberFormat(t *testing.T) {
	at := time.Date(2026, 8, 28, 21, 30, 0, 0, time.UTC)
	number := generateSaleNumber(at)
	if !strings.HasPrefix(number, "SALE-20260828-") {
		t.Errorf("unexpected sale number %q", number)
	}
}
