package redisdoc

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"

	"textilreinigung/backend/internal/domain"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := New(mr.Addr(), "", 0, "textilreinigung")
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestLoadEmptyServer(t *testing.T) {
	store, _ := newTestStore(t)

	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.Orders) != 0 || len(state.Payments) != 0 || len(state.Complaints) != 0 || len(state.CashEntries) != 0 {
		t.Fatalf("state = %+v, want empty", state)
	}
}

func TestSaveWritesOneHashFieldPerRecord(t *testing.T) {
	store, mr := newTestStore(t)

	orders := []domain.Order{
		{ID: "ord-1", OrderNumber: "TR-20250314-0001", Total: decimal.RequireFromString("10")},
		{ID: "ord-2", OrderNumber: "TR-20250314-0002", Total: decimal.RequireFromString("20")},
	}
	if err := store.SaveOrders(context.Background(), orders); err != nil {
		t.Fatalf("SaveOrders: %v", err)
	}

	fields, err := mr.HKeys("textilreinigung:orders")
	if err != nil {
		t.Fatalf("HKeys: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("hash holds %d fields, want 2", len(fields))
	}
}

func TestSaveThenLoadRestoresChronologicalOrder(t *testing.T) {
	store, _ := newTestStore(t)

	base := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
	payments := []domain.Payment{
		{ID: "p-early", Amount: decimal.RequireFromString("5"), Method: domain.PaymentMethodBar, Register: domain.RegisterHauptkasse, CreatedAt: base},
		{ID: "p-mid", Amount: decimal.RequireFromString("7"), Method: domain.PaymentMethodEC, Register: domain.RegisterHauptkasse, CreatedAt: base.Add(time.Hour)},
		{ID: "p-late", Amount: decimal.RequireFromString("9"), Method: domain.PaymentMethodBar, Register: domain.RegisterNebenkasse, CreatedAt: base.Add(2 * time.Hour)},
	}
	if err := store.SavePayments(context.Background(), payments); err != nil {
		t.Fatalf("SavePayments: %v", err)
	}

	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.Payments) != 3 {
		t.Fatalf("payments = %d, want 3", len(state.Payments))
	}
	for i, wantID := range []string{"p-early", "p-mid", "p-late"} {
		if state.Payments[i].ID != wantID {
			t.Fatalf("payments[%d].ID = %s, want %s", i, state.Payments[i].ID, wantID)
		}
	}
	if !state.Payments[1].Amount.Equal(decimal.RequireFromString("7")) {
		t.Fatalf("amount = %s, want 7", state.Payments[1].Amount)
	}
}

func TestSaveUpdatesExistingRecord(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ord := domain.Order{ID: "ord-1", Status: domain.OrderStatusOffen, Total: decimal.RequireFromString("10")}
	if err := store.SaveOrders(ctx, []domain.Order{ord}); err != nil {
		t.Fatalf("SaveOrders: %v", err)
	}
	ord.Status = domain.OrderStatusAbholbereit
	if err := store.SaveOrders(ctx, []domain.Order{ord}); err != nil {
		t.Fatalf("SaveOrders update: %v", err)
	}

	state, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.Orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(state.Orders))
	}
	if state.Orders[0].Status != domain.OrderStatusAbholbereit {
		t.Fatalf("status = %s, want abholbereit", state.Orders[0].Status)
	}
}

func TestLoadSkipsCorruptRecord(t *testing.T) {
	store, mr := newTestStore(t)

	mr.HSet("textilreinigung:complaints", "bad", "{broken")
	good := domain.Complaint{ID: "c-1", Reason: "Fleck nicht entfernt", Status: domain.ComplaintStatusOffen}
	if err := store.SaveComplaints(context.Background(), []domain.Complaint{good}); err != nil {
		t.Fatalf("SaveComplaints: %v", err)
	}

	state, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.Complaints) != 1 || state.Complaints[0].ID != "c-1" {
		t.Fatalf("complaints = %+v, want only the valid record", state.Complaints)
	}
}
