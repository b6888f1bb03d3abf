package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chain
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Chains
	mux.Handle("GET /api/v1/chains", chain(http.HandlerFunc(h.ListChains)))
	mux.Handle("POST /api/v1/chains", chain(http.HandlerFunc(h.CreateChain)))
	mux.Handle("GET /api/v1/chains/{id}", chain(http.HandlerFunc(h.GetChain)))
	mux.Handle("PUT /api/v1/chains/{id}", chain(http.HandlerFunc(h.UpdateChain)))
	mux.Handle("DELETE /api/v1/chains/{id}", chain(http.HandlerFunc(h.DeleteChain)))
	mux.Handle("POST /api/v1/chains/{id}/run", chain(http.HandlerFunc(h.RunChain)))

	// Flows внутри chain
	mux.Handle("GET /api/v1/chains/{id}/flows", chain(http.HandlerFunc(h.ListFlows)))
	mux.Handle("POST /api/v1/chains/{id}/flows", chain(http.HandlerFunc(h.ImportFlow)))
	mux.Handle("GET /api/v1/chains/{id}/flows/{flowId}", chain(http.HandlerFunc(h.GetFlow)))
	mux.Handle("PUT /api/v1/chains/{id}/flows/{flowId}", chain(http.HandlerFunc(h.UpdateFlow)))
	mux.Handle("DELETE /api/v1/chains/{id}/flows/{flowId}", chain(http.HandlerFunc(h.DeleteFlow)))
	mux.Handle("POST /api/v1/chains/{id}/flows/{flowId}/run", chain(http.HandlerFunc(h.RunFlow)))
	mux.Handle("GET /api/v1/chains/{id}/flows/{flowId}/display/{nodeId}", chain(http.HandlerFunc(h.GetNodeDisplay)))

	// Export / Import
	mux.Handle("GET /api/v1/export", chain(http.HandlerFunc(h.ExportBundle)))
	mux.Handle("POST /api/v1/import", chain(http.HandlerFunc(h.ImportBundle)))

	// Schedules
	mux.Handle("GET /api/v1/schedules", chain(http.HandlerFunc(h.ListSchedules)))
	mux.Handle("POST /api/v1/chains/{id}/schedules", chain(http.HandlerFunc(h.CreateSchedule)))
	mux.Handle("GET /api/v1/schedules/{id}", chain(http.HandlerFunc(h.GetSchedule)))
	mux.Handle("PUT /api/v1/schedules/{id}", chain(http.HandlerFunc(h.UpdateSchedule)))
	mux.Handle("DELETE /api/v1/schedules/{id}", chain(http.HandlerFunc(h.DeleteSchedule)))
	mux.Handle("PUT /api/v1/schedules/{id}/enabled", chain(http.HandlerFunc(h.SetScheduleEnabled)))
}
