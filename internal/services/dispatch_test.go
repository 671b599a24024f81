package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"order-batch-service/internal/adapters/pos"
	"order-batch-service/internal/domain"
)

func seedDispatchOrders(t *testing.T, store *memStore, now time.Time) {
	t.Helper()
	err := store.CreateBatch(context.Background(), domain.Batch{
		ID: "batch-d", StartDate: now, EndDate: now, TotalOrders: 3,
		Products: adjustProducts(), Status: domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("seed batch: %v", err)
	}
	drafts := []domain.OrderDraft{
		{Index: 0, Customer: testCustomers()[0], TotalAmount: 400_000,
			Items:       []domain.LineItem{{ProductID: 1, Quantity: 40, UnitPrice: 10_000}},
			ScheduledAt: now.Add(-2 * time.Hour)},
		{Index: 1, Customer: testCustomers()[1], TotalAmount: 300_000,
			Items:       []domain.LineItem{{ProductID: 2, Quantity: 30, UnitPrice: 10_000}},
			ScheduledAt: now.Add(-1 * time.Hour)},
		{Index: 2, Customer: testCustomers()[2], TotalAmount: 350_000,
			Items:       []domain.LineItem{{ProductID: 3, Quantity: 35, UnitPrice: 10_000}},
			ScheduledAt: now.Add(3 * time.Hour)},
	}
	if err := store.AppendOrders(context.Background(), "batch-d", drafts); err != nil {
		t.Fatalf("seed orders: %v", err)
	}
}

func TestDispatchDueSubmitsOnlyDueOrders(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	store := newMemStore()
	seedDispatchOrders(t, store, now)

	submitter := pos.NewMockPOS(nil)
	d := NewDispatcher(store, submitter)
	d.Delay = 0

	report, err := d.DispatchDue(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Claimed != 2 || report.Completed != 2 || report.Failed != 0 {
		t.Fatalf("report = %+v, want 2 claimed and completed", report)
	}
	if len(submitter.Submitted) != 2 {
		t.Fatalf("submitted %d orders, want 2", len(submitter.Submitted))
	}
	// Earliest scheduled order goes first.
	if submitter.Submitted[0].Index != 0 || submitter.Submitted[1].Index != 1 {
		t.Fatalf("submission order = %d, %d", submitter.Submitted[0].Index, submitter.Submitted[1].Index)
	}

	if store.orders[0].Status != domain.StatusCompleted {
		t.Fatalf("order 0 status %q", store.orders[0].Status)
	}
	if store.orders[2].Status != domain.StatusPending {
		t.Fatalf("future order status %q, want pending", store.orders[2].Status)
	}
}

func TestDispatchDueMarksFailures(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	store := newMemStore()
	seedDispatchOrders(t, store, now)

	submitter := pos.NewMockPOS(nil)
	submitter.SubmitErr = errors.New("bill rejected")
	d := NewDispatcher(store, submitter)
	d.Delay = 0

	report, err := d.DispatchDue(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Failed != 2 || report.Completed != 0 {
		t.Fatalf("report = %+v, want 2 failures", report)
	}
	if store.orders[0].Status != domain.StatusFailed {
		t.Fatalf("order 0 status %q, want failed", store.orders[0].Status)
	}
	if store.orders[0].ErrMessage == "" {
		t.Fatal("expected the submit error recorded on the order")
	}
}

func TestDispatchDueRespectsLimit(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	store := newMemStore()
	seedDispatchOrders(t, store, now)

	d := NewDispatcher(store, pos.NewMockPOS(nil))
	d.Delay = 0
	d.Limit = 1

	report, err := d.DispatchDue(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Claimed != 1 {
		t.Fatalf("claimed %d, want 1", report.Claimed)
	}
}
