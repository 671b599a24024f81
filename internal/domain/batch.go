package domain

import "time"

// Batch is one horizon-bound generation run: a date range, the target
// order count derived from the snapshot, and the product snapshot the
// run started from.
type Batch struct {
	ID          string
	StartDate   time.Time
	EndDate     time.Time
	TotalOrders int
	Products    []Product
	Status      string
	CreatedAt   time.Time
}

// BatchStats aggregates order status and revenue for one batch.
type BatchStats struct {
	TotalOrders      int
	CompletedOrders  int
	PendingOrders    int
	FailedOrders     int
	CancelledOrders  int
	TotalRevenue     int64
	CompletedRevenue int64
}
