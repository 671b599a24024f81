package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"order-batch-service/internal/adapters/pos"
	"order-batch-service/internal/domain"
)

func adjustProducts() []domain.Product {
	products := make([]domain.Product, 0, 10)
	for i := int64(1); i <= 10; i++ {
		products = append(products, domain.Product{
			ID: i, Name: "P", Price: 10_000, Quantity: 100,
		})
	}
	return products
}

// seedAdjustBatch stores a week-long batch with one completed order
// (50 units of product 1 on day one) and pending orders before and
// after day three.
func seedAdjustBatch(t *testing.T, store *memStore) (string, time.Time, time.Time) {
	t.Helper()

	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	batchID := "batch-1"
	err := store.CreateBatch(context.Background(), domain.Batch{
		ID:          batchID,
		StartDate:   start,
		EndDate:     end,
		TotalOrders: 5,
		Products:    adjustProducts(),
		Status:      domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("seed batch: %v", err)
	}

	drafts := []domain.OrderDraft{
		{Index: 0, Customer: testCustomers()[0],
			Items:       []domain.LineItem{{ProductID: 1, Quantity: 50, UnitPrice: 10_000}},
			TotalAmount: 500_000, ScheduledAt: start.Add(9 * time.Hour)},
		{Index: 1, Customer: testCustomers()[1],
			Items:       []domain.LineItem{{ProductID: 2, Quantity: 30, UnitPrice: 10_000}},
			TotalAmount: 300_000, ScheduledAt: start.AddDate(0, 0, 1).Add(10 * time.Hour)},
		{Index: 2, Customer: testCustomers()[2],
			Items:       []domain.LineItem{{ProductID: 3, Quantity: 40, UnitPrice: 10_000}},
			TotalAmount: 400_000, ScheduledAt: start.AddDate(0, 0, 3).Add(11 * time.Hour)},
		{Index: 3, Customer: testCustomers()[0],
			Items:       []domain.LineItem{{ProductID: 4, Quantity: 35, UnitPrice: 10_000}},
			TotalAmount: 350_000, ScheduledAt: start.AddDate(0, 0, 5).Add(15 * time.Hour)},
	}
	if err := store.AppendOrders(context.Background(), batchID, drafts); err != nil {
		t.Fatalf("seed orders: %v", err)
	}
	// First order was delivered and confirmed.
	if err := store.SetOrderStatus(context.Background(), 1, domain.StatusCompleted, ""); err != nil {
		t.Fatalf("seed completed order: %v", err)
	}

	return batchID, start, end
}

func testPlanner(store *memStore, oracle *pos.MockPOS) *AdjustmentPlanner {
	p := NewAdjustmentPlanner(store, nil)
	if oracle != nil {
		p.Oracle = oracle
	}
	p.Sampler = NewSeededSampler(42)
	return p
}

func TestPlanCancelsTailAndComputesResidual(t *testing.T) {
	store := newMemStore()
	batchID, start, _ := seedAdjustBatch(t, store)
	planner := testPlanner(store, nil)

	cutoff := start.AddDate(0, 0, 2) // day three, midnight
	plan, err := planner.Plan(context.Background(), AdjustmentRequest{
		BatchID: batchID,
		Cutoff:  cutoff,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Orders on days four and six are pending past the cutoff.
	if plan.CancelledOrders != 2 {
		t.Fatalf("cancelled %d orders, want 2", plan.CancelledOrders)
	}

	// Product 1: 100 initial minus 50 fulfilled.
	for _, p := range plan.Residual {
		want := int64(100)
		if p.ID == 1 {
			want = 50
		}
		if p.Quantity != want {
			t.Fatalf("product %d residual %d, want %d", p.ID, p.Quantity, want)
		}
	}

	// Roster recovered from the batch's own orders.
	if len(plan.Customers) != 3 {
		t.Fatalf("recovered %d customers, want 3", len(plan.Customers))
	}
	if plan.NextIndex != 4 {
		t.Fatalf("next index = %d, want 4", plan.NextIndex)
	}
	if plan.State != StateActive {
		t.Fatalf("state = %q, want active", plan.State)
	}
}

func TestPlanStoreFailureAborts(t *testing.T) {
	store := newMemStore()
	batchID, start, _ := seedAdjustBatch(t, store)
	store.cancelErr = context.DeadlineExceeded
	planner := testPlanner(store, nil)

	_, err := planner.Plan(context.Background(), AdjustmentRequest{
		BatchID: batchID,
		Cutoff:  start.AddDate(0, 0, 2),
	})
	if err == nil {
		t.Fatal("expected the cancellation failure to surface")
	}
}

func TestPlanRejectsCutoffPastHorizonEnd(t *testing.T) {
	store := newMemStore()
	batchID, _, end := seedAdjustBatch(t, store)
	planner := testPlanner(store, nil)

	plan, err := planner.Plan(context.Background(), AdjustmentRequest{
		BatchID: batchID,
		Cutoff:  end.AddDate(0, 0, 1),
	})
	if !IsValidation(err) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if plan == nil || plan.State != StateAborted {
		t.Fatalf("rejected plan = %+v, want aborted state", plan)
	}
}

func TestPlanExtendsHorizonEnd(t *testing.T) {
	store := newMemStore()
	batchID, start, end := seedAdjustBatch(t, store)
	planner := testPlanner(store, nil)

	newEnd := end.AddDate(0, 0, 7)
	plan, err := planner.Plan(context.Background(), AdjustmentRequest{
		BatchID:    batchID,
		Cutoff:     start.AddDate(0, 0, 2),
		NewEndDate: &newEnd,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan.End.Equal(newEnd) {
		t.Fatalf("plan end = %s, want %s", plan.End, newEnd)
	}
	batch, _ := store.GetBatch(context.Background(), batchID)
	if !batch.EndDate.Equal(newEnd) {
		t.Fatalf("stored end = %s, want %s", batch.EndDate, newEnd)
	}
}

func TestPlanFlagsOverFulfillment(t *testing.T) {
	store := newMemStore()
	batchID, start, _ := seedAdjustBatch(t, store)

	// A second confirmed order pushes product 1 to 120 of 100 units.
	err := store.AppendOrders(context.Background(), batchID, []domain.OrderDraft{
		{Index: 4, Customer: testCustomers()[0],
			Items:       []domain.LineItem{{ProductID: 1, Quantity: 70, UnitPrice: 10_000}},
			TotalAmount: 700_000, ScheduledAt: start.Add(20 * time.Hour)},
	})
	if err != nil {
		t.Fatalf("seed extra order: %v", err)
	}
	if err := store.SetOrderStatus(context.Background(), 5, domain.StatusCompleted, ""); err != nil {
		t.Fatalf("complete extra order: %v", err)
	}

	planner := testPlanner(store, nil)
	plan, err := planner.Plan(context.Background(), AdjustmentRequest{
		BatchID: batchID,
		Cutoff:  start.AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan.OverFulfilled) != 1 || plan.OverFulfilled[0].ProductID != 1 {
		t.Fatalf("over-fulfilled = %+v, want product 1", plan.OverFulfilled)
	}
	if len(plan.Warnings) == 0 {
		t.Fatal("expected an over-fulfillment warning")
	}
	for _, p := range plan.Residual {
		if p.ID == 1 && p.Quantity != 0 {
			t.Fatalf("over-fulfilled residual = %d, want 0", p.Quantity)
		}
	}
}

func TestPlanReconcilesAgainstLiveStock(t *testing.T) {
	store := newMemStore()
	batchID, start, _ := seedAdjustBatch(t, store)

	oracle := pos.NewMockPOS(map[int64]int64{})
	for i := int64(1); i <= 10; i++ {
		oracle.Stock[i] = 20
	}

	planner := testPlanner(store, oracle)
	plan, err := planner.Plan(context.Background(), AdjustmentRequest{
		BatchID:           batchID,
		Cutoff:            start.AddDate(0, 0, 2),
		CheckAvailability: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.State != StateReconciling {
		t.Fatalf("state = %q, want reconciling", plan.State)
	}
	if plan.LiveAdjusted == nil || plan.Report == nil {
		t.Fatal("expected a live-adjusted pool and report")
	}
	for _, p := range plan.LiveAdjusted {
		if p.Quantity > 20 {
			t.Fatalf("product %d live residual %d above live stock 20", p.ID, p.Quantity)
		}
	}
}

func TestCommitRegeneratesWithinSubHorizon(t *testing.T) {
	store := newMemStore()
	batchID, start, end := seedAdjustBatch(t, store)
	planner := testPlanner(store, nil)

	cutoff := start.AddDate(0, 0, 2)
	plan, err := planner.Plan(context.Background(), AdjustmentRequest{BatchID: batchID, Cutoff: cutoff})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	before := len(store.batchOrders(batchID))
	result, err := planner.Commit(context.Background(), plan, false)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if result.NoOp {
		t.Fatal("expected regeneration, got a no-op")
	}
	if result.Generated == 0 {
		t.Fatal("expected regenerated orders")
	}
	if result.State != StateActive {
		t.Fatalf("state = %q, want active after a committed regeneration", result.State)
	}

	orders := store.batchOrders(batchID)
	if len(orders) != before+result.Generated {
		t.Fatalf("store grew by %d, result says %d", len(orders)-before, result.Generated)
	}
	for _, o := range orders[before:] {
		if o.Index < plan.NextIndex {
			t.Fatalf("regenerated order index %d below next index %d", o.Index, plan.NextIndex)
		}
		if o.ScheduledAt.Before(cutoff) || o.ScheduledAt.After(end.AddDate(0, 0, 1)) {
			t.Fatalf("regenerated order at %s outside [cutoff, end]", o.ScheduledAt)
		}
	}
}

func TestCommitAbortsOnPersistFailure(t *testing.T) {
	store := newMemStore()
	batchID, start, _ := seedAdjustBatch(t, store)
	planner := testPlanner(store, nil)

	plan, err := planner.Plan(context.Background(), AdjustmentRequest{
		BatchID: batchID,
		Cutoff:  start.AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	store.appendErr = errors.New("disk full")
	result, err := planner.Commit(context.Background(), plan, false)
	if err == nil {
		t.Fatal("expected the persist failure to surface")
	}
	if result == nil || result.State != StateAborted {
		t.Fatalf("result = %+v, want aborted state", result)
	}
}

func TestCommitNoOpOnEmptyResidual(t *testing.T) {
	store := newMemStore()
	planner := testPlanner(store, nil)

	plan := &AdjustmentPlan{
		State:     StateActive,
		BatchID:   "batch-empty",
		Residual:  []domain.Product{{ID: 1, Price: 10_000, Quantity: 0}},
		Customers: testCustomers(),
	}
	result, err := planner.Commit(context.Background(), plan, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.NoOp {
		t.Fatal("expected a no-op on an empty residual pool")
	}
	if len(store.orders) != 0 {
		t.Fatalf("no-op wrote %d orders", len(store.orders))
	}
}

func TestCommitNilPlan(t *testing.T) {
	planner := testPlanner(newMemStore(), nil)
	if _, err := planner.Commit(context.Background(), nil, false); !IsValidation(err) {
		t.Fatalf("expected a validation error, got %v", err)
	}
}
