package api

import (
	"net/http"

	"order-batch-service/internal/api/handlers"
	"order-batch-service/internal/ports"
	"order-batch-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(store ports.OrderStore, gen *services.Generator, planner *services.AdjustmentPlanner, dispatcher *services.Dispatcher) http.Handler {
	mux := http.NewServeMux()

	batchHandler := &handlers.BatchHandler{Generator: gen, Store: store}
	adjHandler := &handlers.AdjustmentHandler{Planner: planner}
	dispatchHandler := &handlers.DispatchHandler{Dispatcher: dispatcher}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/batches", batchHandler.Create)
	mux.HandleFunc("/batches/", batchHandler.Get)
	mux.HandleFunc("/adjustments/plan", adjHandler.Plan)
	mux.HandleFunc("/adjustments/commit", adjHandler.Commit)
	mux.HandleFunc("/dispatch", dispatchHandler.Run)

	return loggingMiddleware(mux)
}
