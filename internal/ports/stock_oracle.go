package ports

import (
	"context"

	"order-batch-service/internal/domain"
)

// Contract for querying live stock levels from the external POS.
type StockOracle interface {
	// CheckAvailability returns available units keyed by product id.
	// Ids unknown to the POS are present with value 0.
	CheckAvailability(ctx context.Context, productIDs []int64) (map[int64]int64, error)
}

// Contract for submitting a finished order to the external POS.
type OrderSubmitter interface {
	// SubmitOrder sends one order and returns the POS bill id.
	SubmitOrder(ctx context.Context, order domain.QueuedOrder) (string, error)
}
