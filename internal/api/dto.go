package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shaiso/Nodeflow/internal/domain"
)

// Chain DTOs

// CreateChainRequest — запрос на создание цепочки.
type CreateChainRequest struct {
	Name    string   `json:"name"`
	FlowIDs []string `json:"flow_ids,omitempty"`
}

// UpdateChainRequest — запрос на обновление цепочки.
type UpdateChainRequest struct {
	Name           *string   `json:"name,omitempty"`
	FlowIDs        *[]string `json:"flow_ids,omitempty"`
	SelectedFlowID *string   `json:"selected_flow_id,omitempty"`
}

// ChainResponse — ответ с цепочкой.
type ChainResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	FlowIDs        []string  `json:"flow_ids"`
	SelectedFlowID string    `json:"selected_flow_id,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChainFromDomain конвертирует domain.FlowChain в ChainResponse.
func ChainFromDomain(c domain.FlowChain) ChainResponse {
	return ChainResponse{
		ID:             c.ID,
		Name:           c.Name,
		FlowIDs:        c.FlowIDs,
		SelectedFlowID: c.SelectedFlowID,
		Status:         string(c.Status),
		CreatedAt:      c.CreatedAt,
	}
}

// RunChainRequest — запрос на запуск цепочки.
type RunChainRequest struct {
	Inputs []any `json:"inputs,omitempty"`
}

// RunChainResponse — ответ с итогом запуска цепочки.
type RunChainResponse struct {
	Status  string              `json:"status"`
	Results []domain.NodeResult `json:"results"`
}

// Flow DTOs

// ImportFlowRequest — запрос на импорт flow из документа редактора.
type ImportFlowRequest struct {
	Name  string        `json:"name"`
	Nodes []domain.Node `json:"nodes"`
	Edges []domain.Edge `json:"edges"`
}

// UpdateFlowRequest — запрос на обновление flow.
type UpdateFlowRequest struct {
	Name   *string        `json:"name,omitempty"`
	Nodes  *[]domain.Node `json:"nodes,omitempty"`
	Edges  *[]domain.Edge `json:"edges,omitempty"`
	Inputs *[]any         `json:"inputs,omitempty"`
}

// FlowResponse — ответ с flow.
type FlowResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Nodes       []domain.Node       `json:"nodes"`
	Edges       []domain.Edge       `json:"edges"`
	Inputs      []any               `json:"inputs,omitempty"`
	Status      string              `json:"status"`
	LastResults []domain.NodeResult `json:"last_results,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// FlowFromDomain конвертирует domain.Flow в FlowResponse.
func FlowFromDomain(f domain.Flow) FlowResponse {
	return FlowResponse{
		ID:          f.ID,
		Name:        f.Name,
		Nodes:       f.Nodes,
		Edges:       f.Edges,
		Inputs:      f.Inputs,
		Status:      string(f.Status),
		LastResults: f.LastResults,
		CreatedAt:   f.CreatedAt,
	}
}

// RunFlowRequest — запрос на запуск отдельного flow.
type RunFlowRequest struct {
	Inputs []any `json:"inputs,omitempty"`
}

// RunFlowResponse — ответ с итогом запуска flow.
type RunFlowResponse struct {
	ExecutionID string              `json:"execution_id"`
	Status      string              `json:"status"`
	Results     []domain.NodeResult `json:"results"`
}

// Schedule DTOs

// CreateScheduleRequest — запрос на создание расписания.
type CreateScheduleRequest struct {
	Name        string `json:"name,omitempty"`
	CronExpr    string `json:"cron_expr,omitempty"`
	IntervalSec int    `json:"interval_sec,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

// UpdateScheduleRequest — запрос на обновление расписания.
type UpdateScheduleRequest struct {
	Name        *string `json:"name,omitempty"`
	CronExpr    *string `json:"cron_expr,omitempty"`
	IntervalSec *int    `json:"interval_sec,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

// SetEnabledRequest — запрос на включение/выключение расписания.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// ScheduleResponse — ответ с расписанием.
type ScheduleResponse struct {
	ID          uuid.UUID  `json:"id"`
	ChainID     string     `json:"chain_id"`
	Name        string     `json:"name,omitempty"`
	CronExpr    string     `json:"cron_expr,omitempty"`
	IntervalSec int        `json:"interval_sec,omitempty"`
	Timezone    string     `json:"timezone"`
	Enabled     bool       `json:"enabled"`
	NextDueAt   *time.Time `json:"next_due_at,omitempty"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ScheduleFromDomain конвертирует domain.Schedule в ScheduleResponse.
func ScheduleFromDomain(s domain.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:          s.ID,
		ChainID:     s.ChainID,
		Name:        s.Name,
		CronExpr:    s.CronExpr,
		IntervalSec: s.IntervalSec,
		Timezone:    s.Timezone,
		Enabled:     s.Enabled,
		NextDueAt:   s.NextDueAt,
		LastRunAt:   s.LastRunAt,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// Display DTO

// NodeDisplayResponse — опубликованный текст output-узла.
type NodeDisplayResponse struct {
	NodeID  string `json:"node_id"`
	Content string `json:"content"`
}
