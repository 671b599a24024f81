package services

import (
	"order-batch-service/internal/domain"
)

// SynthesisConfig bounds a single order produced by the synthesizer.
// Amounts are whole VND.
type SynthesisConfig struct {
	MinTotal      int64
	MaxTotal      int64
	MinItems      int
	MaxItems      int
	MinQtyPerItem int64
	MaxQtyPerItem int64
}

// DefaultSynthesisConfig is the standard order profile.
func DefaultSynthesisConfig() SynthesisConfig {
	return SynthesisConfig{
		MinTotal:      300_000,
		MaxTotal:      2_000_000,
		MinItems:      1,
		MaxItems:      5,
		MinQtyPerItem: 1,
		MaxQtyPerItem: 3,
	}
}

// RelaxedSynthesisConfig widens the bounds after repeated failures so
// sparse stock can still be packed into orders.
func RelaxedSynthesisConfig() SynthesisConfig {
	return SynthesisConfig{
		MinTotal:      100_000,
		MaxTotal:      3_000_000,
		MinItems:      1,
		MaxItems:      8,
		MinQtyPerItem: 1,
		MaxQtyPerItem: 5,
	}
}

// SynthesisLimits are the retry ceilings that bound worst-case run
// time. They are configuration, not embedded literals, because each
// one directly caps a loop.
type SynthesisLimits struct {
	// MaxBuildIterations bounds line sampling inside one order attempt.
	MaxBuildIterations int
	// MaxConsecutiveFails is how many discarded attempts trigger one
	// relaxed attempt.
	MaxConsecutiveFails int
	// ValueFloor stops synthesis once in-stock value drops below it;
	// the remainder is handed to the sweep allocator.
	ValueFloor int64
	// ItemCountSlack is extra headroom over MaxItems when sampling the
	// per-order item target, easing the MinTotal floor with cheap stock.
	ItemCountSlack int
}

func DefaultSynthesisLimits() SynthesisLimits {
	return SynthesisLimits{
		MaxBuildIterations:  20,
		MaxConsecutiveFails: 100,
		ValueFloor:          300_000,
		ItemCountSlack:      3,
	}
}

// Tier selection probabilities: 60% low, 30% mid, 10% high.
const (
	lowTierProb = 0.6
	midTierProb = 0.3
)

// buildOrder makes one transactional attempt at a bounded-value order.
//
// The attempt samples lines from price tiers without mutating the
// pool; on success it returns the draft plus the usage map the caller
// applies. An attempt ending outside [MinTotal, MaxTotal] is discarded
// wholesale.
func buildOrder(
	s Sampler,
	customer domain.Customer,
	pool *domain.InventoryPool,
	cfg SynthesisConfig,
	limits SynthesisLimits,
) (domain.OrderDraft, map[int64]int64, bool) {
	if customer.ID <= 0 {
		return domain.OrderDraft{}, nil, false
	}

	stock := make([]domain.Product, 0)
	for _, p := range pool.InStock() {
		// Malformed entries are refused, not errored on mid-loop.
		if p.ID > 0 && p.Price > 0 {
			stock = append(stock, p)
		}
	}
	if len(stock) == 0 {
		return domain.OrderDraft{}, nil, false
	}

	// Price tiers over the ascending-price stock: 60% / 30% / 10%.
	n := len(stock)
	lowTier := stock[:n*6/10]
	midTier := stock[n*6/10 : n*9/10]
	highTier := stock[n*9/10:]

	itemTarget := int(intBetween(s, int64(cfg.MinItems), int64(cfg.MaxItems+limits.ItemCountSlack)))
	targetAmount := intBetween(s, cfg.MinTotal, cfg.MaxTotal)

	usage := make(map[int64]int64)
	var items []domain.LineItem
	itemIdx := make(map[int64]int)
	var total int64

	for iter := 0; iter < limits.MaxBuildIterations; iter++ {
		// Floor priority: keep adding while below MinTotal, otherwise
		// stop once the target amount or item count is reached.
		if total >= cfg.MinTotal && (total >= targetAmount || len(items) >= itemTarget) {
			break
		}

		var tier []domain.Product
		switch r := s.Float64(); {
		case r < lowTierProb && len(lowTier) > 0:
			tier = lowTier
		case r < lowTierProb+midTierProb && len(midTier) > 0:
			tier = midTier
		case len(highTier) > 0:
			tier = highTier
		default:
			tier = stock
		}

		candidates := inStockOf(tier, usage)
		if len(candidates) == 0 {
			// Preferred tier exhausted within this attempt; fall back
			// to anything still available.
			candidates = inStockOf(stock, usage)
			if len(candidates) == 0 {
				break
			}
		}

		p := candidates[s.Intn(len(candidates))]
		remaining := p.Quantity - usage[p.ID]

		maxQ := min(cfg.MaxQtyPerItem, remaining)
		if maxQ < 1 {
			continue
		}
		qty := intBetween(s, min(cfg.MinQtyPerItem, maxQ), maxQ)
		lineValue := p.Price * qty

		if total+lineValue > cfg.MaxTotal && total >= cfg.MinTotal {
			continue
		}

		if i, ok := itemIdx[p.ID]; ok {
			items[i].Quantity += qty
		} else {
			itemIdx[p.ID] = len(items)
			items = append(items, domain.LineItem{ProductID: p.ID, Quantity: qty, UnitPrice: p.Price})
		}
		usage[p.ID] += qty
		total += lineValue
	}

	// Commit gate: the floor-priority exception may overshoot mid-build,
	// but a committed order must satisfy the full range.
	if len(items) == 0 || total < cfg.MinTotal || total > cfg.MaxTotal {
		return domain.OrderDraft{}, nil, false
	}

	return domain.OrderDraft{
		Customer:    customer,
		Items:       items,
		TotalAmount: total,
	}, usage, true
}

// inStockOf filters tier members that still have units left after
// subtracting this attempt's usage.
func inStockOf(tier []domain.Product, usage map[int64]int64) []domain.Product {
	out := make([]domain.Product, 0, len(tier))
	for _, p := range tier {
		if p.Quantity-usage[p.ID] > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Synthesize greedily turns the pool into bounded-value orders until
// the in-stock value falls below the floor or even relaxed attempts
// fail. Exhaustion is a normal terminal state, not an error; whatever
// remains in the pool is the sweep allocator's job.
func Synthesize(
	s Sampler,
	customers []domain.Customer,
	pool *domain.InventoryPool,
	cfg SynthesisConfig,
	limits SynthesisLimits,
) []domain.OrderDraft {
	if len(customers) == 0 {
		return nil
	}

	var drafts []domain.OrderDraft
	fails := 0

	for !pool.Empty() && pool.InStockValue() >= limits.ValueFloor {
		customer := customers[s.Intn(len(customers))]

		draft, usage, ok := buildOrder(s, customer, pool, cfg, limits)
		if ok {
			pool.Apply(usage)
			drafts = append(drafts, draft)
			fails = 0
			continue
		}

		fails++
		if fails < limits.MaxConsecutiveFails {
			continue
		}

		// One relaxed attempt with widened bounds; if even that fails,
		// synthesis is exhausted.
		draft, usage, ok = buildOrder(s, customer, pool, RelaxedSynthesisConfig(), limits)
		if !ok {
			break
		}
		pool.Apply(usage)
		drafts = append(drafts, draft)
		fails = 0
	}

	return drafts
}
