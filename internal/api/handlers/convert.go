package handlers

import (
	"order-batch-service/internal/api/dto"
	"order-batch-service/internal/domain"
	"order-batch-service/internal/services"
)

func customersFromDTO(in []dto.Customer) []domain.Customer {
	out := make([]domain.Customer, 0, len(in))
	for _, c := range in {
		out = append(out, domain.Customer{ID: c.ID, Name: c.Name, Phone: c.Phone})
	}
	return out
}

func customersToDTO(in []domain.Customer) []dto.Customer {
	out := make([]dto.Customer, 0, len(in))
	for _, c := range in {
		out = append(out, dto.Customer{ID: c.ID, Name: c.Name, Phone: c.Phone})
	}
	return out
}

func productsFromDTO(in []dto.Product) []domain.Product {
	out := make([]domain.Product, 0, len(in))
	for _, p := range in {
		out = append(out, domain.Product{ID: p.ID, Name: p.Name, Price: p.Price, Quantity: p.Quantity})
	}
	return out
}

func productsToDTO(in []domain.Product) []dto.Product {
	if in == nil {
		return nil
	}
	out := make([]dto.Product, 0, len(in))
	for _, p := range in {
		out = append(out, dto.Product{ID: p.ID, Name: p.Name, Price: p.Price, Quantity: p.Quantity})
	}
	return out
}

func reportToDTO(r *services.ReconciliationReport) *dto.ReconciliationResponse {
	if r == nil {
		return nil
	}
	res := &dto.ReconciliationResponse{
		Checks:        make([]dto.StockCheckResponse, 0, len(r.Checks)),
		AllSufficient: r.AllSufficient,
	}
	for _, c := range r.Checks {
		res.Checks = append(res.Checks, dto.StockCheckResponse{
			ProductID: c.ProductID,
			Requested: c.Requested,
			Available: c.Available,
			Status:    string(c.Status),
		})
	}
	return res
}
