package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Nodeflow/internal/domain"
	"github.com/shaiso/Nodeflow/internal/engine"
)

// ListFlows возвращает flows цепочки.
// GET /api/v1/chains/{id}/flows
func (h *Handler) ListFlows(w http.ResponseWriter, r *http.Request) {
	chainID := r.PathValue("id")

	flows, err := h.store.Flows.ListByChain(r.Context(), chainID)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]FlowResponse, len(flows))
	for i, f := range flows {
		result[i] = FlowFromDomain(f)
	}

	List(w, result, len(result))
}

// ImportFlow импортирует документ редактора как новый flow цепочки.
// POST /api/v1/chains/{id}/flows
func (h *Handler) ImportFlow(w http.ResponseWriter, r *http.Request) {
	chainID := r.PathValue("id")

	var req ImportFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	// Граф валидируется до записи: битый документ не попадает в БД
	if _, err := engine.Build(req.Nodes, req.Edges); err != nil {
		BadRequest(w, err.Error())
		return
	}

	chain, err := h.store.Chains.GetByID(r.Context(), chainID)
	if HandleRepoError(w, h.logger, err, "chain not found") {
		return
	}

	flow := domain.NewFlow(&domain.FlowDocument{
		Name:  req.Name,
		Nodes: req.Nodes,
		Edges: req.Edges,
	})

	if err := h.store.Flows.Create(r.Context(), chainID, flow); err != nil {
		if HandleRepoError(w, h.logger, err, "") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	// Новый flow дописывается в конец цепочки
	chain.FlowIDs = append(chain.FlowIDs, flow.ID)
	if err := h.store.Chains.Update(r.Context(), chain); err != nil {
		if HandleRepoError(w, h.logger, err, "chain not found") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Created(w, FlowFromDomain(*flow))
}

// GetFlow возвращает flow по ID.
// GET /api/v1/chains/{id}/flows/{flowId}
func (h *Handler) GetFlow(w http.ResponseWriter, r *http.Request) {
	flow, err := h.store.Flows.Get(r.Context(), r.PathValue("id"), r.PathValue("flowId"))
	if HandleRepoError(w, h.logger, err, "flow not found") {
		return
	}

	Success(w, FlowFromDomain(*flow))
}

// UpdateFlow обновляет flow.
// PUT /api/v1/chains/{id}/flows/{flowId}
func (h *Handler) UpdateFlow(w http.ResponseWriter, r *http.Request) {
	chainID := r.PathValue("id")

	var req UpdateFlowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	flow, err := h.store.Flows.Get(r.Context(), chainID, r.PathValue("flowId"))
	if HandleRepoError(w, h.logger, err, "flow not found") {
		return
	}

	if req.Name != nil {
		flow.Name = *req.Name
	}
	if req.Nodes != nil {
		flow.Nodes = *req.Nodes
	}
	if req.Edges != nil {
		flow.Edges = *req.Edges
	}
	if req.Inputs != nil {
		flow.Inputs = *req.Inputs
	}

	if req.Nodes != nil || req.Edges != nil {
		if _, err := engine.Build(flow.Nodes, flow.Edges); err != nil {
			BadRequest(w, err.Error())
			return
		}
	}

	if err := h.store.Flows.Update(r.Context(), chainID, flow); err != nil {
		if HandleRepoError(w, h.logger, err, "flow not found") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	Success(w, FlowFromDomain(*flow))
}

// DeleteFlow удаляет flow и убирает его из цепочки.
// DELETE /api/v1/chains/{id}/flows/{flowId}
func (h *Handler) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	chainID := r.PathValue("id")
	flowID := r.PathValue("flowId")

	if err := h.store.Flows.Delete(r.Context(), chainID, flowID); err != nil {
		if HandleRepoError(w, h.logger, err, "flow not found") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	chain, err := h.store.Chains.GetByID(r.Context(), chainID)
	if HandleRepoError(w, h.logger, err, "chain not found") {
		return
	}

	remaining := chain.FlowIDs[:0]
	for _, id := range chain.FlowIDs {
		if id != flowID {
			remaining = append(remaining, id)
		}
	}
	chain.FlowIDs = remaining
	if chain.SelectedFlowID == flowID {
		chain.SelectedFlowID = ""
	}

	if err := h.store.Chains.Update(r.Context(), chain); err != nil {
		if HandleRepoError(w, h.logger, err, "chain not found") {
			return
		}
		InternalError(w, h.logger, err)
		return
	}

	NoContent(w)
}

// RunFlow запускает один flow вне цепочки.
// POST /api/v1/chains/{id}/flows/{flowId}/run
func (h *Handler) RunFlow(w http.ResponseWriter, r *http.Request) {
	chainID := r.PathValue("id")
	flowID := r.PathValue("flowId")

	var req RunFlowRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			BadRequest(w, "invalid request body")
			return
		}
	}

	flow, err := h.store.Flows.Get(r.Context(), chainID, flowID)
	if HandleRepoError(w, h.logger, err, "flow not found") {
		return
	}

	inputs := req.Inputs
	if inputs == nil {
		inputs = flow.Inputs
	}

	result, runErr := h.flowExec.Run(r.Context(), flow, inputs)
	if result == nil {
		// Ошибка до запуска: граф не построился
		HandleRunError(w, h.logger, runErr)
		return
	}

	if err := h.store.Flows.SetResults(r.Context(), chainID, flowID, result.Results); err != nil {
		h.logger.Warn("persist flow results failed", "flow_id", flowID, "error", err)
	}
	if err := h.store.Flows.SetStatus(r.Context(), chainID, flowID, result.Status); err != nil {
		h.logger.Warn("persist flow status failed", "flow_id", flowID, "error", err)
	}

	// Упавшие узлы отражаются в статусе, HTTP-код остаётся 200
	Success(w, RunFlowResponse{
		ExecutionID: result.ExecutionID,
		Status:      string(result.Status),
		Results:     result.Results,
	})
}

// GetNodeDisplay возвращает опубликованный текст output-узла.
// GET /api/v1/chains/{id}/flows/{flowId}/display/{nodeId}
func (h *Handler) GetNodeDisplay(w http.ResponseWriter, r *http.Request) {
	nodeID := r.PathValue("nodeId")

	content, ok := h.content.DisplayText(nodeID)
	if !ok {
		NotFound(w, "no published content for node")
		return
	}

	Success(w, NodeDisplayResponse{NodeID: nodeID, Content: content})
}
