package ports

import "context"

// Optional cache in front of the StockOracle. Entries are short-lived;
// stock moves while batches run.
type AvailabilityCache interface {
	// GetMany returns cached availability for the ids it knows about.
	// Missing ids are simply absent from the result.
	GetMany(ctx context.Context, productIDs []int64) (map[int64]int64, error)
	// PutMany stores availability figures.
	PutMany(ctx context.Context, availability map[int64]int64) error
}
