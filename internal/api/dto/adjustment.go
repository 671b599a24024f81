package dto

import "time"

type PlanAdjustmentRequest struct {
	BatchID string    `json:"batch_id"`
	Cutoff  time.Time `json:"cutoff"`
	// NewEndDate optionally moves the horizon end ("2006-01-02").
	NewEndDate        string     `json:"new_end_date,omitempty"`
	Customers         []Customer `json:"customers,omitempty"`
	CheckAvailability bool       `json:"check_availability"`
}

type OverFulfillmentResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Initial   int64  `json:"initial"`
	Fulfilled int64  `json:"fulfilled"`
}

// AdjustmentPlan is the wire form of a planned adjustment. The commit
// request carries it back verbatim, so the two phases share no server
// state.
type AdjustmentPlan struct {
	State           string                    `json:"state"`
	BatchID         string                    `json:"batch_id"`
	Cutoff          time.Time                 `json:"cutoff"`
	End             time.Time                 `json:"end"`
	CancelledOrders int                       `json:"cancelled_orders"`
	Residual        []Product                 `json:"residual"`
	LiveAdjusted    []Product                 `json:"live_adjusted,omitempty"`
	Reconciliation  *ReconciliationResponse   `json:"reconciliation,omitempty"`
	OverFulfilled   []OverFulfillmentResponse `json:"over_fulfilled,omitempty"`
	Warnings        []string                  `json:"warnings,omitempty"`
	NextIndex       int                       `json:"next_index"`
	Customers       []Customer                `json:"customers"`
}

type CommitAdjustmentRequest struct {
	Plan AdjustmentPlan `json:"plan"`
	// UseLive selects the live-clamped pool when the plan carries one.
	UseLive bool `json:"use_live"`
}

type AdjustmentResultResponse struct {
	State       string    `json:"state"`
	BatchID     string    `json:"batch_id"`
	NoOp        bool      `json:"no_op"`
	TargetCount int       `json:"target_count"`
	Generated   int       `json:"generated"`
	Residual    []Product `json:"residual,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
}
