package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"order-batch-service/internal/domain"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createBatchesQuery := `
	CREATE TABLE IF NOT EXISTS order_batches (
		id TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		total_orders INTEGER NOT NULL,
		status TEXT NOT NULL,
		products_data TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	createQueueQuery := `
	CREATE TABLE IF NOT EXISTS orders_queue (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id TEXT NOT NULL REFERENCES order_batches(id),
		order_index INTEGER NOT NULL,
		customer_id INTEGER NOT NULL,
		customer_name TEXT NOT NULL,
		customer_phone TEXT NOT NULL,
		order_data TEXT NOT NULL,
		total_amount INTEGER NOT NULL,
		is_sweep INTEGER NOT NULL DEFAULT 0,
		scheduled_time TEXT NOT NULL,
		status TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT ''
	);
	`

	createScheduleIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_orders_queue_status_scheduled
	ON orders_queue(status, scheduled_time);
	`

	createBatchIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_orders_queue_batch
	ON orders_queue(batch_id, order_index);
	`

	statements := []string{
		createBatchesQuery,
		createQueueQuery,
		createScheduleIndexQuery,
		createBatchIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Initialize the Postgres database schema. Used by the dbtool against
// a managed instance; the server assumes the schema already exists.
func InitSchemaPostgres(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
	CREATE TABLE IF NOT EXISTS order_batches (
		id TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		total_orders BIGINT NOT NULL,
		status TEXT NOT NULL,
		products_data TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS orders_queue (
		id BIGSERIAL PRIMARY KEY,
		batch_id TEXT NOT NULL REFERENCES order_batches(id),
		order_index BIGINT NOT NULL,
		customer_id BIGINT NOT NULL,
		customer_name TEXT NOT NULL,
		customer_phone TEXT NOT NULL,
		order_data TEXT NOT NULL,
		total_amount BIGINT NOT NULL,
		is_sweep INTEGER NOT NULL DEFAULT 0,
		scheduled_time TEXT NOT NULL,
		status TEXT NOT NULL,
		error_message TEXT NOT NULL DEFAULT ''
	);
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_orders_queue_status_scheduled
	ON orders_queue(status, scheduled_time);
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_orders_queue_batch
	ON orders_queue(batch_id, order_index);
	`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type customerSeed struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Load a customer roster from a JSON file.
func LoadCustomersJSON(jsonPath string) ([]domain.Customer, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load customers: read %q: %w", jsonPath, err)
	}

	var data []customerSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("load customers: parse json: %w", err)
	}

	customers := make([]domain.Customer, 0, len(data))
	for i, item := range data {
		if item.ID <= 0 {
			return nil, fmt.Errorf("load customers: invalid id at index %d: %d", i+1, item.ID)
		}
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, fmt.Errorf("load customers: item at index %d: name cannot be empty", i+1)
		}
		customers = append(customers, domain.Customer{ID: item.ID, Name: name, Phone: strings.TrimSpace(item.Phone)})
	}

	return customers, nil
}

type productSeed struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

// Load an inventory snapshot from a JSON file.
func LoadProductsJSON(jsonPath string) ([]domain.Product, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("load products: read %q: %w", jsonPath, err)
	}

	var data []productSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("load products: parse json: %w", err)
	}

	products := make([]domain.Product, 0, len(data))
	for i, item := range data {
		if item.ID <= 0 {
			return nil, fmt.Errorf("load products: invalid id at index %d: %d", i+1, item.ID)
		}
		if item.Price < 0 || item.Quantity < 0 {
			return nil, fmt.Errorf("load products: item at index %d: negative price or quantity", i+1)
		}
		products = append(products, domain.Product{
			ID:       item.ID,
			Name:     strings.TrimSpace(item.Name),
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	return products, nil
}
