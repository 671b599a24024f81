package ports

import (
	"context"
	"time"

	"order-batch-service/internal/domain"
)

// Port: the persistence boundary for batches and their order queue.
//
// The planning core treats the store as the owner of all order status
// transitions; it only appends pending orders and reads aggregates.
type OrderStore interface {
	// CreateBatch persists a new batch with its product snapshot.
	CreateBatch(ctx context.Context, batch domain.Batch) error

	// GetBatch loads a batch by id.
	GetBatch(ctx context.Context, batchID string) (domain.Batch, error)

	// UpdateBatchEndDate moves a batch's horizon end.
	UpdateBatchEndDate(ctx context.Context, batchID string, end time.Time) error

	// AppendOrders persists drafts as pending orders. Callers chunk the
	// slice; a single call is one write.
	AppendOrders(ctx context.Context, batchID string, orders []domain.OrderDraft) error

	// CancelPendingFrom cancels every pending order of the batch whose
	// scheduled time is at or after cutoff and returns how many.
	CancelPendingFrom(ctx context.Context, batchID string, cutoff time.Time) (int, error)

	// FulfilledQuantities sums confirmed (completed) units per product
	// across the batch.
	FulfilledQuantities(ctx context.Context, batchID string) (map[int64]int64, error)

	// MaxOrderIndex returns the highest order index in the batch. The
	// bool is false when the batch has no orders yet.
	MaxOrderIndex(ctx context.Context, batchID string) (int, bool, error)

	// BatchCustomers returns the distinct customers referenced by the
	// batch's orders.
	BatchCustomers(ctx context.Context, batchID string) ([]domain.Customer, error)

	// DuePending returns up to limit pending orders scheduled at or
	// before now, ordered by scheduled time.
	DuePending(ctx context.Context, now time.Time, limit int) ([]domain.QueuedOrder, error)

	// SetOrderStatus transitions one order, optionally recording an
	// error message.
	SetOrderStatus(ctx context.Context, orderID int64, status string, errMessage string) error

	// BatchStats aggregates order counts and revenue for the batch.
	BatchStats(ctx context.Context, batchID string) (domain.BatchStats, error)
}
