package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"order-batch-service/internal/domain"
)

// SQLite-backed implementation of the OrderStore port, used for local
// runs and tests.
type SqliteOrderStore struct{ DB *sql.DB }

func NewSqliteOrderStore(db *sql.DB) *SqliteOrderStore {
	return &SqliteOrderStore{DB: db}
}

func (s *SqliteOrderStore) CreateBatch(ctx context.Context, batch domain.Batch) error {
	if s.DB == nil {
		return errors.New("sqlite order store: DB is nil")
	}

	snapshot, err := encodeProducts(batch.Products)
	if err != nil {
		return fmt.Errorf("create batch: %w", err)
	}

	query := `
	INSERT INTO order_batches (
		id, start_date, end_date, total_orders, status, products_data, created_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`
	_, err = s.DB.ExecContext(ctx, query,
		batch.ID,
		encodeDate(batch.StartDate),
		encodeDate(batch.EndDate),
		batch.TotalOrders,
		batch.Status,
		snapshot,
		encodeTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("create batch: insert order_batches: %w", err)
	}
	return nil
}

func (s *SqliteOrderStore) GetBatch(ctx context.Context, batchID string) (domain.Batch, error) {
	if s.DB == nil {
		return domain.Batch{}, errors.New("sqlite order store: DB is nil")
	}

	query := `
	SELECT id, start_date, end_date, total_orders, status, products_data, created_at
	FROM order_batches
	WHERE id = ?;
	`
	var (
		batch                      domain.Batch
		startRaw, endRaw, snapshot string
		createdRaw                 string
	)
	err := s.DB.QueryRowContext(ctx, query, batchID).Scan(
		&batch.ID, &startRaw, &endRaw, &batch.TotalOrders, &batch.Status, &snapshot, &createdRaw,
	)
	if err != nil {
		return domain.Batch{}, fmt.Errorf("get batch %q: %w", batchID, err)
	}

	if batch.StartDate, err = decodeDate(startRaw); err != nil {
		return domain.Batch{}, fmt.Errorf("get batch %q: %w", batchID, err)
	}
	if batch.EndDate, err = decodeDate(endRaw); err != nil {
		return domain.Batch{}, fmt.Errorf("get batch %q: %w", batchID, err)
	}
	if batch.CreatedAt, err = decodeTime(createdRaw); err != nil {
		return domain.Batch{}, fmt.Errorf("get batch %q: %w", batchID, err)
	}
	if batch.Products, err = decodeProducts(snapshot); err != nil {
		return domain.Batch{}, fmt.Errorf("get batch %q: %w", batchID, err)
	}
	return batch, nil
}

func (s *SqliteOrderStore) UpdateBatchEndDate(ctx context.Context, batchID string, end time.Time) error {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE order_batches SET end_date = ? WHERE id = ?;`,
		encodeDate(end), batchID,
	)
	if err != nil {
		return fmt.Errorf("update batch end date: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update batch end date: batch %q not found", batchID)
	}
	return nil
}

func (s *SqliteOrderStore) AppendOrders(ctx context.Context, batchID string, orders []domain.OrderDraft) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append orders: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO orders_queue (
		batch_id, order_index, customer_id, customer_name, customer_phone,
		order_data, total_amount, is_sweep, scheduled_time, status
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("append orders: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range orders {
		items, err := encodeItems(o.Items)
		if err != nil {
			return fmt.Errorf("append orders: index %d: %w", o.Index, err)
		}
		_, err = stmt.ExecContext(ctx,
			batchID, o.Index,
			o.Customer.ID, o.Customer.Name, o.Customer.Phone,
			items, o.TotalAmount, boolToInt(o.Sweep),
			encodeTime(o.ScheduledAt), domain.StatusPending,
		)
		if err != nil {
			return fmt.Errorf("append orders: insert index %d: %w", o.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append orders: commit: %w", err)
	}
	return nil
}

func (s *SqliteOrderStore) CancelPendingFrom(ctx context.Context, batchID string, cutoff time.Time) (int, error) {
	res, err := s.DB.ExecContext(ctx, `
	UPDATE orders_queue
	SET status = ?
	WHERE batch_id = ? AND status = ? AND scheduled_time >= ?;
	`, domain.StatusCancelled, batchID, domain.StatusPending, encodeTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("cancel pending from %s: %w", cutoff.Format(dateLayout), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cancel pending: rows affected: %w", err)
	}
	return int(n), nil
}

func (s *SqliteOrderStore) FulfilledQuantities(ctx context.Context, batchID string) (map[int64]int64, error) {
	// Line items live inside the order JSON, so the per-product sum is
	// computed here rather than in SQL.
	rows, err := s.DB.QueryContext(ctx, `
	SELECT order_data
	FROM orders_queue
	WHERE batch_id = ? AND status = ?;
	`, batchID, domain.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("fulfilled quantities: query orders_queue: %w", err)
	}
	defer rows.Close()

	totals := make(map[int64]int64)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("fulfilled quantities: scan row: %w", err)
		}
		items, err := decodeItems(data)
		if err != nil {
			return nil, fmt.Errorf("fulfilled quantities: %w", err)
		}
		for _, it := range items {
			totals[it.ProductID] += it.Quantity
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fulfilled quantities: row iteration: %w", err)
	}
	return totals, nil
}

func (s *SqliteOrderStore) MaxOrderIndex(ctx context.Context, batchID string) (int, bool, error) {
	var max sql.NullInt64
	err := s.DB.QueryRowContext(ctx, `
	SELECT MAX(order_index) FROM orders_queue WHERE batch_id = ?;
	`, batchID).Scan(&max)
	if err != nil {
		return 0, false, fmt.Errorf("max order index: %w", err)
	}
	if !max.Valid {
		return 0, false, nil
	}
	return int(max.Int64), true, nil
}

func (s *SqliteOrderStore) BatchCustomers(ctx context.Context, batchID string) ([]domain.Customer, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT DISTINCT customer_id, customer_name, customer_phone
	FROM orders_queue
	WHERE batch_id = ?
	ORDER BY customer_id;
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("batch customers: query orders_queue: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 64)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone); err != nil {
			return nil, fmt.Errorf("batch customers: scan row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("batch customers: row iteration: %w", err)
	}
	return customers, nil
}

func (s *SqliteOrderStore) DuePending(ctx context.Context, now time.Time, limit int) ([]domain.QueuedOrder, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, batch_id, order_index, customer_id, customer_name, customer_phone,
	       order_data, total_amount, is_sweep, scheduled_time, status, error_message
	FROM orders_queue
	WHERE status = ? AND scheduled_time <= ?
	ORDER BY scheduled_time
	LIMIT ?;
	`, domain.StatusPending, encodeTime(now), limit)
	if err != nil {
		return nil, fmt.Errorf("due pending: query orders_queue: %w", err)
	}
	defer rows.Close()

	return scanQueuedOrders(rows)
}

func (s *SqliteOrderStore) SetOrderStatus(ctx context.Context, orderID int64, status string, errMessage string) error {
	res, err := s.DB.ExecContext(ctx, `
	UPDATE orders_queue SET status = ?, error_message = ? WHERE id = ?;
	`, status, errMessage, orderID)
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("set order status: order %d not found", orderID)
	}
	return nil
}

func (s *SqliteOrderStore) BatchStats(ctx context.Context, batchID string) (domain.BatchStats, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT status, total_amount FROM orders_queue WHERE batch_id = ?;
	`, batchID)
	if err != nil {
		return domain.BatchStats{}, fmt.Errorf("batch stats: query orders_queue: %w", err)
	}
	defer rows.Close()

	var stats domain.BatchStats
	for rows.Next() {
		var status string
		var amount int64
		if err := rows.Scan(&status, &amount); err != nil {
			return domain.BatchStats{}, fmt.Errorf("batch stats: scan row: %w", err)
		}
		tallyOrder(&stats, status, amount)
	}
	if err := rows.Err(); err != nil {
		return domain.BatchStats{}, fmt.Errorf("batch stats: row iteration: %w", err)
	}
	return stats, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func tallyOrder(stats *domain.BatchStats, status string, amount int64) {
	stats.TotalOrders++
	stats.TotalRevenue += amount
	switch status {
	case domain.StatusCompleted:
		stats.CompletedOrders++
		stats.CompletedRevenue += amount
	case domain.StatusPending, domain.StatusProcessing:
		stats.PendingOrders++
	case domain.StatusFailed:
		stats.FailedOrders++
	case domain.StatusCancelled:
		stats.CancelledOrders++
	}
}

// scanQueuedOrders drains a row set in the orders_queue column order.
func scanQueuedOrders(rows *sql.Rows) ([]domain.QueuedOrder, error) {
	orders := make([]domain.QueuedOrder, 0, 64)
	for rows.Next() {
		var (
			o            domain.QueuedOrder
			data         string
			sweep        int
			scheduledRaw string
		)
		err := rows.Scan(
			&o.ID, &o.BatchID, &o.Index,
			&o.Customer.ID, &o.Customer.Name, &o.Customer.Phone,
			&data, &o.TotalAmount, &sweep, &scheduledRaw, &o.Status, &o.ErrMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan queued order: %w", err)
		}
		if o.Items, err = decodeItems(data); err != nil {
			return nil, fmt.Errorf("scan queued order: %w", err)
		}
		if o.ScheduledAt, err = decodeTime(scheduledRaw); err != nil {
			return nil, fmt.Errorf("scan queued order: %w", err)
		}
		o.Sweep = sweep != 0
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("queued orders: row iteration: %w", err)
	}
	return orders, nil
}
