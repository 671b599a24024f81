package pos

import (
	"context"
	"fmt"

	"order-batch-service/internal/domain"
)

// MockPOS is an in-memory StockOracle and OrderSubmitter for tests and
// offline runs.
type MockPOS struct {
	Stock map[int64]int64

	// AvailabilityErr makes every availability call fail.
	AvailabilityErr error
	// SubmitErr makes every submission fail.
	SubmitErr error

	Submitted []domain.QueuedOrder
}

func NewMockPOS(stock map[int64]int64) *MockPOS {
	return &MockPOS{Stock: stock}
}

func (m *MockPOS) CheckAvailability(ctx context.Context, productIDs []int64) (map[int64]int64, error) {
	if m.AvailabilityErr != nil {
		return nil, m.AvailabilityErr
	}
	out := make(map[int64]int64, len(productIDs))
	for _, id := range productIDs {
		out[id] = m.Stock[id]
	}
	return out, nil
}

func (m *MockPOS) SubmitOrder(ctx context.Context, order domain.QueuedOrder) (string, error) {
	if m.SubmitErr != nil {
		return "", m.SubmitErr
	}
	m.Submitted = append(m.Submitted, order)
	return fmt.Sprintf("bill-%d", len(m.Submitted)), nil
}
