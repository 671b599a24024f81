package services

import (
	"order-batch-service/internal/domain"
)

// DefaultSweepValueCap closes a sweep bundle before it would exceed
// this value. A single product worth more than the cap still ships as
// its own bundle; the cap only applies once a bundle is non-empty.
const DefaultSweepValueCap int64 = 200_000

// SweepRemainder bundles all remaining stock, cheapest first, into
// value-capped sweep orders. The trailing partial bundle is always
// flushed, so the pool is exactly empty afterwards.
func SweepRemainder(
	s Sampler,
	customers []domain.Customer,
	pool *domain.InventoryPool,
	valueCap int64,
) []domain.OrderDraft {
	remaining := pool.InStock()
	if len(remaining) == 0 || len(customers) == 0 {
		return nil
	}

	var drafts []domain.OrderDraft
	var bundle []domain.LineItem
	var bundleValue int64

	flush := func() {
		if len(bundle) == 0 {
			return
		}
		customer := customers[s.Intn(len(customers))]
		drafts = append(drafts, domain.OrderDraft{
			Customer:    customer,
			Items:       bundle,
			TotalAmount: bundleValue,
			Sweep:       true,
		})
		bundle = nil
		bundleValue = 0
	}

	for _, p := range remaining {
		value := p.Value()
		if bundleValue+value > valueCap && len(bundle) > 0 {
			flush()
		}
		bundle = append(bundle, domain.LineItem{ProductID: p.ID, Quantity: p.Quantity, UnitPrice: p.Price})
		bundleValue += value
		pool.Consume(p.ID, p.Quantity)
	}
	flush()

	return drafts
}
