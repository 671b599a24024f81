package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"order-batch-service/internal/domain"
	"order-batch-service/internal/platform/obs"
	"order-batch-service/internal/ports"
)

// Average order value used to derive a batch's target order count from
// total stock value: midpoint of the 300k–1M standard range.
const defaultAverageOrderValue int64 = 650_000

// DefaultPersistChunkSize bounds one store write. Failures mid-sequence
// leave earlier chunks committed; there is no rollback.
const DefaultPersistChunkSize = 100

// EstimateOrderCount derives how many orders a product snapshot should
// yield. Never zero while any product is listed.
func EstimateOrderCount(products []domain.Product) int {
	if len(products) == 0 {
		return 0
	}
	var totalValue int64
	for _, p := range products {
		totalValue += p.Value()
	}
	n := int(totalValue / defaultAverageOrderValue)
	if n < 1 {
		n = 1
	}
	return n
}

type GenerateRequest struct {
	Start     time.Time
	End       time.Time
	Customers []domain.Customer
	Products  []domain.Product
	// CheckAvailability clamps the snapshot against live POS stock
	// before synthesis.
	CheckAvailability bool
}

type GenerateResult struct {
	BatchID     string
	TargetCount int
	Generated   int
	// Residual is stock left unconsumed after the sweep; normally empty.
	Residual []domain.Product
	Warnings []string
	Report   *ReconciliationReport
}

// Generator runs the full batch pipeline: reconcile (optional) ->
// synthesize -> sweep -> temporal allocation -> chunked persistence.
type Generator struct {
	Store   ports.OrderStore
	Oracle  ports.StockOracle
	Sampler Sampler

	Config SynthesisConfig
	Limits SynthesisLimits

	SweepValueCap int64
	ChunkSize     int

	// LegacySchedule switches timestamping to the whole-horizon pool
	// allocator, which also injects post-closing late orders.
	LegacySchedule bool
}

func NewGenerator(store ports.OrderStore, oracle ports.StockOracle) *Generator {
	return &Generator{
		Store:         store,
		Oracle:        oracle,
		Sampler:       NewSampler(),
		Config:        DefaultSynthesisConfig(),
		Limits:        DefaultSynthesisLimits(),
		SweepValueCap: DefaultSweepValueCap,
		ChunkSize:     DefaultPersistChunkSize,
	}
}

// GenerateBatch creates a batch and fills it with timestamped orders.
func (g *Generator) GenerateBatch(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if req.Start.IsZero() || req.End.IsZero() {
		return nil, newValidationError("generate batch: start and end dates are required")
	}
	if req.End.Before(req.Start) {
		return nil, newValidationError("generate batch: end date precedes start date")
	}
	if len(req.Customers) == 0 {
		return nil, newValidationError("generate batch: customer roster is empty")
	}
	if len(req.Products) == 0 {
		return nil, newValidationError("generate batch: product snapshot is empty")
	}

	result := &GenerateResult{}
	products := req.Products

	if req.CheckAvailability && g.Oracle != nil {
		ids := make([]int64, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}
		availability, err := g.Oracle.CheckAvailability(ctx, ids)
		if err != nil {
			// Degraded, not fatal: fall back to the snapshot figures.
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("availability check failed, using snapshot quantities: %v", err))
		} else {
			adjusted, report := ReconcileInventory(products, availability)
			products = adjusted
			result.Report = &report
		}
	}

	total := EstimateOrderCount(products)
	result.TargetCount = total

	batch := domain.Batch{
		ID:          uuid.NewString(),
		StartDate:   req.Start,
		EndDate:     req.End,
		TotalOrders: total,
		Products:    products,
		Status:      domain.StatusPending,
	}
	if err := g.Store.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("generate batch: create batch: %w", err)
	}
	result.BatchID = batch.ID
	ctx = obs.WithBatch(ctx, batch.ID)

	pool := domain.NewInventoryPool(products)
	drafts := Synthesize(g.Sampler, req.Customers, pool, g.Config, g.Limits)
	sweeps := SweepRemainder(g.Sampler, req.Customers, pool, g.SweepValueCap)

	for i := range drafts {
		drafts[i].Index = i
	}
	for i := range sweeps {
		sweeps[i].Index = len(drafts) + i
	}

	all := g.schedule(drafts, sweeps, total, req.Start, req.End)
	sort.SliceStable(all, func(i, j int) bool { return all[i].ScheduledAt.Before(all[j].ScheduledAt) })

	if err := appendChunked(ctx, g.Store, batch.ID, all, g.ChunkSize); err != nil {
		return nil, fmt.Errorf("generate batch: %w", err)
	}

	result.Generated = len(all)
	result.Residual = pool.InStock()
	return result, nil
}

func (g *Generator) schedule(drafts, sweeps []domain.OrderDraft, total int, start, end time.Time) []domain.OrderDraft {
	if g.LegacySchedule {
		times := ScheduleWholeHorizon(g.Sampler, total, start, end, true)
		all := append(append([]domain.OrderDraft{}, drafts...), sweeps...)
		if len(times) > 0 {
			for i := range all {
				all[i].ScheduledAt = times[i%len(times)]
			}
		}
		return all
	}

	days := ComputeDayQuotas(total, start, end)
	all := DistributeOrders(g.Sampler, drafts, days)
	return append(all, DistributeSweepOrders(g.Sampler, sweeps, days)...)
}

// appendChunked persists drafts in fixed-size chunks. A chunk failure
// aborts the remainder; earlier chunks stand.
func appendChunked(ctx context.Context, store ports.OrderStore, batchID string, orders []domain.OrderDraft, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = DefaultPersistChunkSize
	}
	for i := 0; i < len(orders); i += chunkSize {
		end := i + chunkSize
		if end > len(orders) {
			end = len(orders)
		}
		if err := store.AppendOrders(ctx, batchID, orders[i:end]); err != nil {
			return fmt.Errorf("append orders %d..%d: %w", i, end-1, err)
		}
	}
	return nil
}
