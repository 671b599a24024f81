package services

import (
	"context"
	"fmt"
	"time"

	"order-batch-service/internal/domain"
)

// memStore is an in-memory OrderStore for service tests.
type memStore struct {
	batches map[string]domain.Batch
	orders  []domain.QueuedOrder
	nextID  int64

	appendErr error
	cancelErr error
}

func newMemStore() *memStore {
	return &memStore{batches: make(map[string]domain.Batch), nextID: 1}
}

func (m *memStore) CreateBatch(_ context.Context, batch domain.Batch) error {
	if _, ok := m.batches[batch.ID]; ok {
		return fmt.Errorf("batch %q already exists", batch.ID)
	}
	batch.CreatedAt = time.Now()
	m.batches[batch.ID] = batch
	return nil
}

func (m *memStore) GetBatch(_ context.Context, batchID string) (domain.Batch, error) {
	b, ok := m.batches[batchID]
	if !ok {
		return domain.Batch{}, fmt.Errorf("batch %q not found", batchID)
	}
	return b, nil
}

func (m *memStore) UpdateBatchEndDate(_ context.Context, batchID string, end time.Time) error {
	b, ok := m.batches[batchID]
	if !ok {
		return fmt.Errorf("batch %q not found", batchID)
	}
	b.EndDate = end
	m.batches[batchID] = b
	return nil
}

func (m *memStore) AppendOrders(_ context.Context, batchID string, orders []domain.OrderDraft) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	for _, o := range orders {
		m.orders = append(m.orders, domain.QueuedOrder{
			ID:          m.nextID,
			BatchID:     batchID,
			Index:       o.Index,
			Customer:    o.Customer,
			Items:       o.Items,
			TotalAmount: o.TotalAmount,
			Sweep:       o.Sweep,
			ScheduledAt: o.ScheduledAt,
			Status:      domain.StatusPending,
		})
		m.nextID++
	}
	return nil
}

func (m *memStore) CancelPendingFrom(_ context.Context, batchID string, cutoff time.Time) (int, error) {
	if m.cancelErr != nil {
		return 0, m.cancelErr
	}
	n := 0
	for i, o := range m.orders {
		if o.BatchID == batchID && o.Status == domain.StatusPending && !o.ScheduledAt.Before(cutoff) {
			m.orders[i].Status = domain.StatusCancelled
			n++
		}
	}
	return n, nil
}

func (m *memStore) FulfilledQuantities(_ context.Context, batchID string) (map[int64]int64, error) {
	totals := make(map[int64]int64)
	for _, o := range m.orders {
		if o.BatchID != batchID || o.Status != domain.StatusCompleted {
			continue
		}
		for _, it := range o.Items {
			totals[it.ProductID] += it.Quantity
		}
	}
	return totals, nil
}

func (m *memStore) MaxOrderIndex(_ context.Context, batchID string) (int, bool, error) {
	max, found := 0, false
	for _, o := range m.orders {
		if o.BatchID != batchID {
			continue
		}
		if !found || o.Index > max {
			max = o.Index
		}
		found = true
	}
	return max, found, nil
}

func (m *memStore) BatchCustomers(_ context.Context, batchID string) ([]domain.Customer, error) {
	seen := make(map[int64]bool)
	var out []domain.Customer
	for _, o := range m.orders {
		if o.BatchID == batchID && !seen[o.Customer.ID] {
			seen[o.Customer.ID] = true
			out = append(out, o.Customer)
		}
	}
	return out, nil
}

func (m *memStore) DuePending(_ context.Context, now time.Time, limit int) ([]domain.QueuedOrder, error) {
	var out []domain.QueuedOrder
	for _, o := range m.orders {
		if o.Status == domain.StatusPending && !o.ScheduledAt.After(now) {
			out = append(out, o)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) SetOrderStatus(_ context.Context, orderID int64, status string, errMessage string) error {
	for i, o := range m.orders {
		if o.ID == orderID {
			m.orders[i].Status = status
			m.orders[i].ErrMessage = errMessage
			return nil
		}
	}
	return fmt.Errorf("order %d not found", orderID)
}

func (m *memStore) BatchStats(_ context.Context, batchID string) (domain.BatchStats, error) {
	var stats domain.BatchStats
	for _, o := range m.orders {
		if o.BatchID != batchID {
			continue
		}
		stats.TotalOrders++
		stats.TotalRevenue += o.TotalAmount
		switch o.Status {
		case domain.StatusCompleted:
			stats.CompletedOrders++
			stats.CompletedRevenue += o.TotalAmount
		case domain.StatusPending, domain.StatusProcessing:
			stats.PendingOrders++
		case domain.StatusFailed:
			stats.FailedOrders++
		case domain.StatusCancelled:
			stats.CancelledOrders++
		}
	}
	return stats, nil
}

// batchOrders filters the store's queue by batch.
func (m *memStore) batchOrders(batchID string) []domain.QueuedOrder {
	var out []domain.QueuedOrder
	for _, o := range m.orders {
		if o.BatchID == batchID {
			out = append(out, o)
		}
	}
	return out
}
