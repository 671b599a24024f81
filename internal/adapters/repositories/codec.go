package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"order-batch-service/internal/domain"
)

// Timestamps are stored as UTC RFC3339 text in both dialects so the
// two stores stay symmetric and string comparison orders correctly.
const timeLayout = time.RFC3339

const dateLayout = "2006-01-02"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t, nil
}

func encodeDate(t time.Time) string {
	return t.Format(dateLayout)
}

func decodeDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored date %q: %w", s, err)
	}
	return t, nil
}

// storedLine mirrors the POS bill product shape.
type storedLine struct {
	ID       int64 `json:"id"`
	Quantity int64 `json:"quantity"`
	Price    int64 `json:"price"`
}

func encodeItems(items []domain.LineItem) (string, error) {
	lines := make([]storedLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, storedLine{ID: it.ProductID, Quantity: it.Quantity, Price: it.UnitPrice})
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("encode line items: %w", err)
	}
	return string(b), nil
}

func decodeItems(data string) ([]domain.LineItem, error) {
	var lines []storedLine
	if err := json.Unmarshal([]byte(data), &lines); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}
	items := make([]domain.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.LineItem{ProductID: l.ID, Quantity: l.Quantity, UnitPrice: l.Price})
	}
	return items, nil
}

type storedProduct struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

func encodeProducts(products []domain.Product) (string, error) {
	rows := make([]storedProduct, 0, len(products))
	for _, p := range products {
		rows = append(rows, storedProduct{ID: p.ID, Name: p.Name, Price: p.Price, Quantity: p.Quantity})
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode product snapshot: %w", err)
	}
	return string(b), nil
}

func decodeProducts(data string) ([]domain.Product, error) {
	var rows []storedProduct
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return nil, fmt.Errorf("decode product snapshot: %w", err)
	}
	products := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, domain.Product{ID: r.ID, Name: r.Name, Price: r.Price, Quantity: r.Quantity})
	}
	return products, nil
}
