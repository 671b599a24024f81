package domain

import "time"

// One product line inside an order.
type LineItem struct {
	ProductID int64
	Quantity  int64
	UnitPrice int64
}

// Value is the line's contribution to the order total.
func (li LineItem) Value() int64 {
	return li.UnitPrice * li.Quantity
}

// OrderDraft is a synthesized purchase order before persistence.
// ScheduledAt stays zero until the temporal allocator assigns a slot.
type OrderDraft struct {
	Index       int
	Customer    Customer
	Items       []LineItem
	TotalAmount int64
	Sweep       bool
	ScheduledAt time.Time
}

// Order lifecycle states owned by the persistence layer. The planning
// core only ever writes StatusPending and reads aggregates derived
// from the rest.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// QueuedOrder is a persisted order row as read back from the store.
type QueuedOrder struct {
	ID          int64
	BatchID     string
	Index       int
	Customer    Customer
	Items       []LineItem
	TotalAmount int64
	Sweep       bool
	ScheduledAt time.Time
	Status      string
	ErrMessage  string
}
