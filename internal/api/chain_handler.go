package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Nodeflow/internal/domain"
	"github.com/shaiso/Nodeflow/internal/executor"
)

// ListChains возвращает список всех цепочек.
// GET /api/v1/chains
func (h *Handler) ListChains(w http.ResponseWriter, r *http.Request) {
	chains, err := h.store.Chains.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ChainResponse, len(chains))
	for i, c := range chains {
		result[i] = ChainFromDomain(c)
	}

	List(w, result, len(result))
}

// CreateChain создаёт новую цепочку.
// POST /api/v1/chains
func (h *Handler) CreateChain(w http.ResponseWriter, r *http.Request) {
	var req CreateChainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	chain := domain.NewFlowChain(req.Name, req.FlowIDs)

	if err := h.store.Chains.Create(r.Context(), chain); err != nil {
		if HandleRepoError(w, h.logger, err, "") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Created(w, ChainFromDomain(*chain))
}

// GetChain возвращает цепочку по ID.
// GET /api/v1/chains/{id}
func (h *Handler) GetChain(w http.ResponseWriter, r *http.Request) {
	chain, err := h.store.Chains.GetByID(r.Context(), r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "chain not found") {
		return
	}

	Success(w, ChainFromDomain(*chain))
}

// UpdateChain обновляет цепочку.
// PUT /api/v1/chains/{id}
func (h *Handler) UpdateChain(w http.ResponseWriter, r *http.Request) {
	var req UpdateChainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	chain, err := h.store.Chains.GetByID(r.Context(), r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "chain not found") {
		return
	}

	if req.Name != nil {
		chain.Name = *req.Name
	}
	if req.FlowIDs != nil {
		chain.FlowIDs = *req.FlowIDs
	}
	if req.SelectedFlowID != nil {
		// Выбранный flow обязан входить в цепочку
		if *req.SelectedFlowID != "" && !chain.ContainsFlow(*req.SelectedFlowID) {
			BadRequest(w, "selected_flow_id is not part of the chain")
			return
		}
		chain.SelectedFlowID = *req.SelectedFlowID
	}

	if err := h.store.Chains.Update(r.Context(), chain); err != nil {
		if HandleRepoError(w, h.logger, err, "chain not found") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Success(w, ChainFromDomain(*chain))
}

// DeleteChain удаляет цепочку.
// DELETE /api/v1/chains/{id}
func (h *Handler) DeleteChain(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Chains.Delete(r.Context(), r.PathValue("id")); err != nil {
		if HandleRepoError(w, h.logger, err, "chain not found") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	NoContent(w)
}

// RunChain запускает цепочку синхронно и возвращает её результат.
// POST /api/v1/chains/{id}/run
func (h *Handler) RunChain(w http.ResponseWriter, r *http.Request) {
	var req RunChainRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			BadRequest(w, "invalid request body")
			return
		}
	}

	chain, err := h.store.Chains.GetByID(r.Context(), r.PathValue("id"))
	if HandleRepoError(w, h.logger, err, "chain not found") {
		return
	}

	result, runErr := h.chainExec.RunChain(r.Context(), chain, req.Inputs, executor.Callbacks{})
	if runErr != nil && result == nil {
		HandleRunError(w, h.logger, runErr)
		return
	}

	// Падение цепочки — не ошибка HTTP: статус и частичные
	// результаты отдаются клиенту как есть
	Success(w, RunChainResponse{
		Status:  string(result.Status),
		Results: result.Results,
	})
}

// ExportBundle отдаёт все цепочки с их flows одним бандлом.
// GET /api/v1/export?structure_only=true
func (h *Handler) ExportBundle(w http.ResponseWriter, r *http.Request) {
	structureOnly := r.URL.Query().Get("structure_only") == "true"

	chains, err := h.store.Chains.List(r.Context())
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	var flows []domain.Flow
	for i := range chains {
		chainFlows, err := h.store.Flows.ListByChain(r.Context(), chains[i].ID)
		if HandleRepoError(w, h.logger, err, "") {
			return
		}
		flows = append(flows, chainFlows...)
	}

	Success(w, domain.NewExportBundle(chains, flows, structureOnly))
}

// ImportBundle загружает бандл цепочек и flows.
// POST /api/v1/import
func (h *Handler) ImportBundle(w http.ResponseWriter, r *http.Request) {
	var bundle domain.ExportBundle
	if err := json.NewDecoder(r.Body).Decode(&bundle); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if bundle.Version != domain.BundleVersion {
		BadRequest(w, "unsupported bundle version")
		return
	}

	var imported int
	for id := range bundle.Chains {
		chain := bundle.Chains[id]
		if err := h.store.Chains.Create(r.Context(), &chain); err != nil {
			if HandleRepoError(w, h.logger, err, "") {
				return
			}
			InternalError(w, h.logger, err)
			return
		}

		for _, flowID := range chain.FlowIDs {
			flow, ok := bundle.Flows[flowID]
			if !ok {
				BadRequest(w, "bundle is missing flow "+flowID)
				return
			}
			if err := h.store.Flows.Create(r.Context(), chain.ID, &flow); err != nil {
				if HandleRepoError(w, h.logger, err, "") {
					return
				}
				InternalError(w, h.logger, err)
				return
			}
		}
		imported++
	}

	Created(w, map[string]int{"imported_chains": imported})
}
