package services

import (
	"order-batch-service/internal/domain"
)

type StockStatus string

const (
	StockSufficient   StockStatus = "sufficient"
	StockInsufficient StockStatus = "insufficient"
	StockOut          StockStatus = "out_of_stock"
)

// StockCheck compares one product's requested quantity against the
// live POS figure.
type StockCheck struct {
	ProductID int64
	Name      string
	Requested int64
	Available int64
	Status    StockStatus
}

// ReconciliationReport summarizes a full availability comparison.
type ReconciliationReport struct {
	AllSufficient     bool
	Checks            []StockCheck
	TotalProducts     int
	InsufficientCount int
	OutOfStockCount   int
}

// ReconcileInventory clamps each product's usable quantity to the live
// availability figure. Ids absent from the lookup count as zero. Pure:
// inputs are never mutated, the adjusted products are a derived copy.
func ReconcileInventory(products []domain.Product, availability map[int64]int64) ([]domain.Product, ReconciliationReport) {
	adjusted := make([]domain.Product, len(products))
	report := ReconciliationReport{
		Checks:        make([]StockCheck, 0, len(products)),
		TotalProducts: len(products),
	}

	for i, p := range products {
		available := availability[p.ID]

		var status StockStatus
		switch {
		case available == 0:
			status = StockOut
			report.OutOfStockCount++
		case available < p.Quantity:
			status = StockInsufficient
			report.InsufficientCount++
		default:
			status = StockSufficient
		}

		report.Checks = append(report.Checks, StockCheck{
			ProductID: p.ID,
			Name:      p.Name,
			Requested: p.Quantity,
			Available: available,
			Status:    status,
		})

		adjusted[i] = p
		if available < p.Quantity {
			adjusted[i].Quantity = available
		}
	}

	report.AllSufficient = report.InsufficientCount == 0 && report.OutOfStockCount == 0
	return adjusted, report
}
