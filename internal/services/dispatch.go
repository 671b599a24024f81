package services

import (
	"context"
	"fmt"
	"time"

	"order-batch-service/internal/domain"
	"order-batch-service/internal/ports"
)

// DispatchReport summarizes one dispatcher pass.
type DispatchReport struct {
	Claimed   int
	Completed int
	Failed    int
}

// Dispatcher submits due pending orders to the POS, strictly
// sequentially with a fixed delay between submissions to respect the
// external rate limit.
type Dispatcher struct {
	Store     ports.OrderStore
	Submitter ports.OrderSubmitter

	// Delay between consecutive submissions.
	Delay time.Duration
	// Limit caps how many orders a single pass claims.
	Limit int
}

func NewDispatcher(store ports.OrderStore, submitter ports.OrderSubmitter) *Dispatcher {
	return &Dispatcher{
		Store:     store,
		Submitter: submitter,
		Delay:     500 * time.Millisecond,
		Limit:     100,
	}
}

// DispatchDue claims orders scheduled at or before now and submits
// them one by one. A submission failure marks that order failed and
// moves on; a store failure aborts the pass.
func (d *Dispatcher) DispatchDue(ctx context.Context, now time.Time) (DispatchReport, error) {
	var report DispatchReport

	due, err := d.Store.DuePending(ctx, now, d.Limit)
	if err != nil {
		return report, fmt.Errorf("dispatch due: list pending: %w", err)
	}
	report.Claimed = len(due)

	for i, order := range due {
		if err := d.Store.SetOrderStatus(ctx, order.ID, domain.StatusProcessing, ""); err != nil {
			return report, fmt.Errorf("dispatch due: mark processing order=%d: %w", order.ID, err)
		}

		_, submitErr := d.Submitter.SubmitOrder(ctx, order)

		status := domain.StatusCompleted
		errMsg := ""
		if submitErr != nil {
			status = domain.StatusFailed
			errMsg = submitErr.Error()
			report.Failed++
		} else {
			report.Completed++
		}

		if err := d.Store.SetOrderStatus(ctx, order.ID, status, errMsg); err != nil {
			return report, fmt.Errorf("dispatch due: mark %s order=%d: %w", status, order.ID, err)
		}

		if d.Delay > 0 && i < len(due)-1 {
			timer := time.NewTimer(d.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return report, ctx.Err()
			case <-timer.C:
			}
		}
	}

	return report, nil
}
