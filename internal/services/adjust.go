package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"order-batch-service/internal/domain"
	"order-batch-service/internal/platform/obs"
	"order-batch-service/internal/ports"
)

// Adjustment states. A plan moves Active -> Reconciling (optional) ->
// Regenerating -> Active over the new horizon, or Aborted on
// validation failure.
type AdjustmentState string

const (
	StateActive       AdjustmentState = "active"
	StateReconciling  AdjustmentState = "reconciling"
	StateRegenerating AdjustmentState = "regenerating"
	StateAborted      AdjustmentState = "aborted"
)

type AdjustmentRequest struct {
	BatchID string
	// Cutoff is the start of the re-planned sub-horizon. Pending orders
	// scheduled at or after it are cancelled.
	Cutoff time.Time
	// NewEndDate optionally moves the batch's horizon end.
	NewEndDate *time.Time
	// Customers to draw from during regeneration. When empty the roster
	// is recovered from the batch's existing orders.
	Customers []domain.Customer
	// CheckAvailability clamps the residual pool against live POS stock
	// and requires an explicit Commit choice.
	CheckAvailability bool
}

// OverFulfillment records a product whose confirmed units exceed the
// snapshot quantity. The residual clamps to zero; the overage is never
// dropped silently.
type OverFulfillment struct {
	ProductID int64
	Name      string
	Initial   int64
	Fulfilled int64
}

// AdjustmentPlan is the outcome of the plan phase. It carries
// everything Commit needs, so no mutable state is shared across the
// confirmation boundary. Cancellations performed during planning stand
// even if the plan is never committed.
type AdjustmentPlan struct {
	State           AdjustmentState
	BatchID         string
	Cutoff          time.Time
	End             time.Time
	CancelledOrders int
	// Residual is initial minus fulfilled per product, clamped at zero.
	Residual []domain.Product
	// LiveAdjusted is the residual further clamped to live POS stock;
	// nil unless availability was checked successfully.
	LiveAdjusted  []domain.Product
	Report        *ReconciliationReport
	OverFulfilled []OverFulfillment
	Warnings      []string
	NextIndex     int
	Customers     []domain.Customer
}

type AdjustmentResult struct {
	State       AdjustmentState
	BatchID     string
	NoOp        bool
	TargetCount int
	Generated   int
	// Residual is stock left after regeneration's sweep; normally empty.
	Residual []domain.Product
	Warnings []string
}

// AdjustmentPlanner cancels the undelivered tail of a horizon and
// regenerates orders for the remainder from residual inventory.
type AdjustmentPlanner struct {
	Store   ports.OrderStore
	Oracle  ports.StockOracle
	Sampler Sampler

	Config SynthesisConfig
	Limits SynthesisLimits

	SweepValueCap int64
	ChunkSize     int
}

func NewAdjustmentPlanner(store ports.OrderStore, oracle ports.StockOracle) *AdjustmentPlanner {
	return &AdjustmentPlanner{
		Store:         store,
		Oracle:        oracle,
		Sampler:       NewSampler(),
		Config:        DefaultSynthesisConfig(),
		Limits:        DefaultSynthesisLimits(),
		SweepValueCap: DefaultSweepValueCap,
		ChunkSize:     DefaultPersistChunkSize,
	}
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// Plan validates the request, cancels the pending tail, computes the
// residual pool, and optionally reconciles it against live stock.
//
// Cancellation is deliberately not rolled back on later failure; a
// store error aborts the remaining phases and surfaces as-is.
func (p *AdjustmentPlanner) Plan(ctx context.Context, req AdjustmentRequest) (*AdjustmentPlan, error) {
	batch, err := p.Store.GetBatch(ctx, req.BatchID)
	if err != nil {
		return nil, fmt.Errorf("plan adjustment: get batch: %w", err)
	}

	end := batch.EndDate
	if req.NewEndDate != nil {
		end = *req.NewEndDate
	}
	if req.Cutoff.After(endOfDay(end)) {
		// The rejected plan is returned alongside the error so callers
		// see the aborted state, not just the message.
		aborted := &AdjustmentPlan{State: StateAborted, BatchID: req.BatchID, Cutoff: req.Cutoff, End: end}
		return aborted, newValidationError("plan adjustment: cutoff date is after the horizon end")
	}

	if req.NewEndDate != nil && !req.NewEndDate.Equal(batch.EndDate) {
		if err := p.Store.UpdateBatchEndDate(ctx, req.BatchID, end); err != nil {
			return nil, fmt.Errorf("plan adjustment: update end date: %w", err)
		}
	}

	cancelled, err := p.Store.CancelPendingFrom(ctx, req.BatchID, req.Cutoff)
	if err != nil {
		return nil, fmt.Errorf("plan adjustment: cancel pending orders: %w", err)
	}

	fulfilled, err := p.Store.FulfilledQuantities(ctx, req.BatchID)
	if err != nil {
		return nil, fmt.Errorf("plan adjustment: sum fulfilled quantities: %w", err)
	}

	plan := &AdjustmentPlan{
		State:           StateActive,
		BatchID:         req.BatchID,
		Cutoff:          req.Cutoff,
		End:             end,
		CancelledOrders: cancelled,
	}
	plan.Residual = make([]domain.Product, 0, len(batch.Products))
	for _, prod := range batch.Products {
		used := fulfilled[prod.ID]
		remaining := prod.Quantity - used
		if remaining < 0 {
			plan.OverFulfilled = append(plan.OverFulfilled, OverFulfillment{
				ProductID: prod.ID,
				Name:      prod.Name,
				Initial:   prod.Quantity,
				Fulfilled: used,
			})
			plan.Warnings = append(plan.Warnings, fmt.Sprintf(
				"product %d (%s): fulfilled %d exceeds initial %d, residual clamped to 0",
				prod.ID, prod.Name, used, prod.Quantity))
			remaining = 0
		}
		prod.Quantity = remaining
		plan.Residual = append(plan.Residual, prod)
	}

	plan.Customers = req.Customers
	if len(plan.Customers) == 0 {
		plan.Customers, err = p.Store.BatchCustomers(ctx, req.BatchID)
		if err != nil {
			return nil, fmt.Errorf("plan adjustment: load batch customers: %w", err)
		}
	}
	if len(plan.Customers) == 0 {
		return nil, newValidationError("plan adjustment: no customers available for regeneration")
	}

	maxIdx, found, err := p.Store.MaxOrderIndex(ctx, req.BatchID)
	if err != nil {
		return nil, fmt.Errorf("plan adjustment: max order index: %w", err)
	}
	if found {
		plan.NextIndex = maxIdx + 1
	}

	if req.CheckAvailability && p.Oracle != nil {
		plan.State = StateReconciling
		ids := make([]int64, 0, len(plan.Residual))
		for _, prod := range plan.Residual {
			ids = append(ids, prod.ID)
		}
		live, err := p.Oracle.CheckAvailability(ctx, ids)
		if err != nil {
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("availability check failed, live clamp unavailable: %v", err))
			plan.State = StateActive
		} else {
			adjusted, report := ReconcileInventory(plan.Residual, live)
			plan.LiveAdjusted = adjusted
			plan.Report = &report
		}
	}

	return plan, nil
}

// Commit regenerates orders over [cutoff, end] from the planned pool.
// useLive selects the live-clamped pool when the plan carries one;
// this is the caller's confirmation choice.
func (p *AdjustmentPlanner) Commit(ctx context.Context, plan *AdjustmentPlan, useLive bool) (*AdjustmentResult, error) {
	if plan == nil {
		return nil, newValidationError("commit adjustment: plan is nil")
	}

	products := plan.Residual
	if useLive && plan.LiveAdjusted != nil {
		products = plan.LiveAdjusted
	}

	result := &AdjustmentResult{
		State:    StateActive,
		BatchID:  plan.BatchID,
		Warnings: plan.Warnings,
	}

	var poolValue int64
	for _, prod := range products {
		poolValue += prod.Value()
	}
	if poolValue <= 0 {
		// Nothing left to sell: a no-op success, not an error.
		result.NoOp = true
		return result, nil
	}
	result.State = StateRegenerating
	ctx = obs.WithBatch(ctx, plan.BatchID)

	total := EstimateOrderCount(products)
	result.TargetCount = total

	pool := domain.NewInventoryPool(products)
	drafts := Synthesize(p.Sampler, plan.Customers, pool, p.Config, p.Limits)
	sweeps := SweepRemainder(p.Sampler, plan.Customers, pool, p.SweepValueCap)

	for i := range drafts {
		drafts[i].Index = plan.NextIndex + i
	}
	for i := range sweeps {
		sweeps[i].Index = plan.NextIndex + len(drafts) + i
	}

	days := ComputeDayQuotas(total, plan.Cutoff, plan.End)
	all := DistributeOrders(p.Sampler, drafts, days)
	all = append(all, DistributeSweepOrders(p.Sampler, sweeps, days)...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].ScheduledAt.Before(all[j].ScheduledAt) })

	if err := appendChunked(ctx, p.Store, plan.BatchID, all, p.ChunkSize); err != nil {
		// Earlier chunks stand; the aborted result reports how far the
		// regeneration got.
		result.State = StateAborted
		return result, fmt.Errorf("commit adjustment: %w", err)
	}

	result.State = StateActive
	result.Generated = len(all)
	result.Residual = pool.InStock()
	return result, nil
}
