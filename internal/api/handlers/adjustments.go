package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"order-batch-service/internal/api/dto"
	"order-batch-service/internal/services"
)

type AdjustmentHandler struct {
	Planner *services.AdjustmentPlanner
}

// Plan cancels the pending tail of a batch and returns the computed
// plan. The caller sends the plan back on commit; nothing is held
// server-side between the two calls.
func (h *AdjustmentHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.PlanAdjustmentRequest

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

	if req.BatchID == "" {
		writeError(w, r, http.StatusBadRequest, "batch_id is required")
		return
	}

	cutoff := req.Cutoff
	if cutoff.IsZero() {
		cutoff = time.Now()
	}

	svcReq := services.AdjustmentRequest{
		BatchID:           req.BatchID,
		Cutoff:            cutoff,
		Customers:         customersFromDTO(req.Customers),
		CheckAvailability: req.CheckAvailability,
	}
	if req.NewEndDate != "" {
		end, err := time.Parse(dateLayout, req.NewEndDate)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "new_end_date must be YYYY-MM-DD")
			return
		}
		svcReq.NewEndDate = &end
	}

	plan, err := h.Planner.Plan(r.Context(), svcReq)
	if err != nil {
		if services.IsValidation(err) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("plan adjustment failed: batch=%s err=%v", req.BatchID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, planToDTO(plan))
}

// Commit regenerates orders from a previously returned plan.
func (h *AdjustmentHandler) Commit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.CommitAdjustmentRequest

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

	plan := planFromDTO(req.Plan)
	result, err := h.Planner.Commit(r.Context(), plan, req.UseLive)
	if err != nil {
		if services.IsValidation(err) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("commit adjustment failed: batch=%s err=%v", req.Plan.BatchID, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.AdjustmentResultResponse{
		State:       string(result.State),
		BatchID:     result.BatchID,
		NoOp:        result.NoOp,
		TargetCount: result.TargetCount,
		Generated:   result.Generated,
		Residual:    productsToDTO(result.Residual),
		Warnings:    result.Warnings,
	}
	writeJSON(w, r, http.StatusOK, res)
}

func planToDTO(p *services.AdjustmentPlan) dto.AdjustmentPlan {
	out := dto.AdjustmentPlan{
		State:           string(p.State),
		BatchID:         p.BatchID,
		Cutoff:          p.Cutoff,
		End:             p.End,
		CancelledOrders: p.CancelledOrders,
		Residual:        productsToDTO(p.Residual),
		LiveAdjusted:    productsToDTO(p.LiveAdjusted),
		Reconciliation:  reportToDTO(p.Report),
		Warnings:        p.Warnings,
		NextIndex:       p.NextIndex,
		Customers:       customersToDTO(p.Customers),
	}
	for _, o := range p.OverFulfilled {
		out.OverFulfilled = append(out.OverFulfilled, dto.OverFulfillmentResponse{
			ProductID: o.ProductID,
			Name:      o.Name,
			Initial:   o.Initial,
			Fulfilled: o.Fulfilled,
		})
	}
	return out
}

func planFromDTO(p dto.AdjustmentPlan) *services.AdjustmentPlan {
	out := &services.AdjustmentPlan{
		State:           services.AdjustmentState(p.State),
		BatchID:         p.BatchID,
		Cutoff:          p.Cutoff,
		End:             p.End,
		CancelledOrders: p.CancelledOrders,
		Residual:        productsFromDTO(p.Residual),
		Warnings:        p.Warnings,
		NextIndex:       p.NextIndex,
		Customers:       customersFromDTO(p.Customers),
	}
	if p.LiveAdjusted != nil {
		out.LiveAdjusted = productsFromDTO(p.LiveAdjusted)
	}
	for _, o := range p.OverFulfilled {
		out.OverFulfilled = append(out.OverFulfilled, services.OverFulfillment{
			ProductID: o.ProductID,
			Name:      o.Name,
			Initial:   o.Initial,
			Fulfilled: o.Fulfilled,
		})
	}
	return out
}
