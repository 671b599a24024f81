package domain

import "sort"

// InventoryPool is the mutable working view of product stock for one
// pipeline run. It owns private copies of the products it was built
// from, so consuming stock never touches the caller's snapshot.
type InventoryPool struct {
	products []Product
	byID     map[int64]int
}

func NewInventoryPool(products []Product) *InventoryPool {
	pool := &InventoryPool{
		products: make([]Product, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	copy(pool.products, products)
	for i, p := range pool.products {
		pool.byID[p.ID] = i
	}
	return pool
}

// InStock returns the products with positive remaining quantity,
// sorted by ascending price. The returned slice is a copy.
func (pool *InventoryPool) InStock() []Product {
	out := make([]Product, 0, len(pool.products))
	for _, p := range pool.products {
		if p.Quantity > 0 {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

// InStockValue is the total value of all remaining stock.
func (pool *InventoryPool) InStockValue() int64 {
	var total int64
	for _, p := range pool.products {
		if p.Quantity > 0 {
			total += p.Value()
		}
	}
	return total
}

// Remaining returns the quantity still available for the product, or 0
// for unknown ids.
func (pool *InventoryPool) Remaining(productID int64) int64 {
	i, ok := pool.byID[productID]
	if !ok {
		return 0
	}
	return pool.products[i].Quantity
}

// Consume decrements stock for a single product. Quantities never go
// below zero; over-consumption is truncated at the floor.
func (pool *InventoryPool) Consume(productID int64, qty int64) {
	i, ok := pool.byID[productID]
	if !ok {
		return
	}
	pool.products[i].Quantity -= qty
	if pool.products[i].Quantity < 0 {
		pool.products[i].Quantity = 0
	}
}

// Apply consumes a whole usage map (product id -> units) at once.
func (pool *InventoryPool) Apply(usage map[int64]int64) {
	for id, qty := range usage {
		pool.Consume(id, qty)
	}
}

// Empty reports whether all stock has been consumed.
func (pool *InventoryPool) Empty() bool {
	for _, p := range pool.products {
		if p.Quantity > 0 {
			return false
		}
	}
	return true
}
