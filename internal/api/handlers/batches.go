package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"order-batch-service/internal/api/dto"
	"order-batch-service/internal/ports"
	"order-batch-service/internal/services"
)

const dateLayout = "2006-01-02"

type BatchHandler struct {
	Generator *services.Generator
	Store     ports.OrderStore
}

// Create runs the full generation pipeline for a new batch.
// It coordinates reconciliation, synthesis, and temporal allocation.
func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.GenerateBatchRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}

	svcReq := services.GenerateRequest{
		Start:             start,
		End:               end,
		Customers:         customersFromDTO(req.Customers),
		Products:          productsFromDTO(req.Products),
		CheckAvailability: req.CheckAvailability,
	}

	gen := h.Generator
	if req.LegacySchedule {
		legacy := *gen
		legacy.LegacySchedule = true
		gen = &legacy
	}

	result, err := gen.GenerateBatch(r.Context(), svcReq)
	if err != nil {
		if services.IsValidation(err) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("generate batch failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.GenerateBatchResponse{
		BatchID:        result.BatchID,
		TargetCount:    result.TargetCount,
		Generated:      result.Generated,
		Residual:       productsToDTO(result.Residual),
		Warnings:       result.Warnings,
		Reconciliation: reportToDTO(result.Report),
	}
	writeJSON(w, r, http.StatusCreated, res)
}

// Get serves /batches/{id} and /batches/{id}/stats.
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/batches/")
	id, tail, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "batch id is required")
		return
	}

	switch tail {
	case "":
		h.getBatch(w, r, id)
	case "stats":
		h.getStats(w, r, id)
	default:
		writeError(w, r, http.StatusNotFound, "not found")
	}
}

func (h *BatchHandler) getBatch(w http.ResponseWriter, r *http.Request, id string) {
	batch, err := h.Store.GetBatch(r.Context(), id)
	if err != nil {
		log.Printf("get batch failed: id=%s err=%v", id, err)
		writeError(w, r, http.StatusNotFound, "batch not found")
		return
	}

	res := dto.BatchResponse{
		ID:          batch.ID,
		StartDate:   batch.StartDate.Format(dateLayout),
		EndDate:     batch.EndDate.Format(dateLayout),
		TotalOrders: batch.TotalOrders,
		Status:      batch.Status,
		Products:    productsToDTO(batch.Products),
		CreatedAt:   batch.CreatedAt,
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *BatchHandler) getStats(w http.ResponseWriter, r *http.Request, id string) {
	stats, err := h.Store.BatchStats(r.Context(), id)
	if err != nil {
		log.Printf("batch stats failed: id=%s err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.BatchStatsResponse{
		TotalOrders:      stats.TotalOrders,
		CompletedOrders:  stats.CompletedOrders,
		PendingOrders:    stats.PendingOrders,
		FailedOrders:     stats.FailedOrders,
		CancelledOrders:  stats.CancelledOrders,
		TotalRevenue:     stats.TotalRevenue,
		CompletedRevenue: stats.CompletedRevenue,
	}
	writeJSON(w, r, http.StatusOK, res)
}
