package dto

import "time"

type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

type GenerateBatchRequest struct {
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Customers []Customer `json:"customers"`
	Products  []Product  `json:"products"`
	// CheckAvailability clamps the snapshot against live POS stock first.
	CheckAvailability bool `json:"check_availability"`
	// LegacySchedule uses the whole-horizon timestamp allocator.
	LegacySchedule bool `json:"legacy_schedule"`
}

type StockCheckResponse struct {
	ProductID int64  `json:"product_id"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
	Status    string `json:"status"`
}

type ReconciliationResponse struct {
	Checks        []StockCheckResponse `json:"checks"`
	AllSufficient bool                 `json:"all_sufficient"`
}

type GenerateBatchResponse struct {
	BatchID        string                  `json:"batch_id"`
	TargetCount    int                     `json:"target_count"`
	Generated      int                     `json:"generated"`
	Residual       []Product               `json:"residual,omitempty"`
	Warnings       []string                `json:"warnings,omitempty"`
	Reconciliation *ReconciliationResponse `json:"reconciliation,omitempty"`
}

type BatchResponse struct {
	ID          string    `json:"id"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	TotalOrders int       `json:"total_orders"`
	Status      string    `json:"status"`
	Products    []Product `json:"products"`
	CreatedAt   time.Time `json:"created_at"`
}

type BatchStatsResponse struct {
	TotalOrders      int   `json:"total_orders"`
	CompletedOrders  int   `json:"completed_orders"`
	PendingOrders    int   `json:"pending_orders"`
	FailedOrders     int   `json:"failed_orders"`
	CancelledOrders  int   `json:"cancelled_orders"`
	TotalRevenue     int64 `json:"total_revenue"`
	CompletedRevenue int64 `json:"completed_revenue"`
}
