package handlers

import (
	"log"
	"net/http"
	"time"

	"order-batch-service/internal/api/dto"
	"order-batch-service/internal/services"
)

type DispatchHandler struct {
	Dispatcher *services.Dispatcher
}

// Run claims due pending orders and submits them to the POS. Intended
// to be hit on a schedule (cron or external scheduler).
func (h *DispatchHandler) Run(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	report, err := h.Dispatcher.DispatchDue(r.Context(), time.Now())
	if err != nil {
		log.Printf("dispatch failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.DispatchResponse{
		Claimed:   report.Claimed,
		Completed: report.Completed,
		Failed:    report.Failed,
	}
	writeJSON(w, r, http.StatusOK, res)
}
