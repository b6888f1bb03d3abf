package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Nodeflow/internal/domain"
)

// FlowRepo — репозиторий flows.
//
// Flow хранится в составе chain (chain_id), его граф — JSONB-документ.
type FlowRepo struct {
	pool *pgxpool.Pool
}

// NewFlowRepo создаёт новый FlowRepo.
func NewFlowRepo(pool *pgxpool.Pool) *FlowRepo {
	return &FlowRepo{pool: pool}
}

// flowDocument — JSONB-представление графа flow.
type flowDocument struct {
	Nodes []domain.Node `json:"nodes"`
	Edges []domain.Edge `json:"edges"`
}

// Create создаёт flow в составе chain.
func (r *FlowRepo) Create(ctx context.Context, chainID string, flow *domain.Flow) error {
	doc, err := json.Marshal(flowDocument{Nodes: flow.Nodes, Edges: flow.Edges})
	if err != nil {
		return fmt.Errorf("marshal flow document: %w", err)
	}
	inputs, err := json.Marshal(flow.Inputs)
	if err != nil {
		return fmt.Errorf("marshal flow inputs: %w", err)
	}

	query := `
		INSERT INTO flows (id, chain_id, name, document, inputs, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		flow.ID,
		chainID,
		flow.Name,
		doc,
		inputs,
		flow.Status,
		flow.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert flow: %w", err)
	}
	return nil
}

// Get возвращает flow по chain и id.
func (r *FlowRepo) Get(ctx context.Context, chainID, flowID string) (*domain.Flow, error) {
	query := `
		SELECT id, name, document, inputs, status, last_results, created_at
		FROM flows
		WHERE chain_id = $1 AND id = $2
	`
	flow, err := r.scanFlow(r.pool.QueryRow(ctx, query, chainID, flowID))
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("flow", flowID)
	}
	return flow, err
}

// ListByChain возвращает все flows одной chain.
func (r *FlowRepo) ListByChain(ctx context.Context, chainID string) ([]domain.Flow, error) {
	query := `
		SELECT id, name, document, inputs, status, last_results, created_at
		FROM flows
		WHERE chain_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, chainID)
	if err != nil {
		return nil, fmt.Errorf("list flows: %w", err)
	}
	defer rows.Close()

	var flows []domain.Flow
	for rows.Next() {
		flow, err := r.scanFlow(rows)
		if err != nil {
			return nil, err
		}
		flows = append(flows, *flow)
	}
	return flows, rows.Err()
}

// Update обновляет имя, граф и входы flow.
func (r *FlowRepo) Update(ctx context.Context, chainID string, flow *domain.Flow) error {
	doc, err := json.Marshal(flowDocument{Nodes: flow.Nodes, Edges: flow.Edges})
	if err != nil {
		return fmt.Errorf("marshal flow document: %w", err)
	}
	inputs, err := json.Marshal(flow.Inputs)
	if err != nil {
		return fmt.Errorf("marshal flow inputs: %w", err)
	}

	query := `
		UPDATE flows
		SET name = $3, document = $4, inputs = $5
		WHERE chain_id = $1 AND id = $2
	`
	result, err := r.pool.Exec(ctx, query, chainID, flow.ID, flow.Name, doc, inputs)
	if err != nil {
		return fmt.Errorf("update flow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return notFound("flow", flow.ID)
	}
	return nil
}

// SetResults сохраняет результаты последнего запуска flow.
func (r *FlowRepo) SetResults(ctx context.Context, chainID, flowID string, results []domain.NodeResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	query := `UPDATE flows SET last_results = $3 WHERE chain_id = $1 AND id = $2`
	result, err := r.pool.Exec(ctx, query, chainID, flowID, data)
	if err != nil {
		return fmt.Errorf("set flow results: %w", err)
	}
	if result.RowsAffected() == 0 {
		return notFound("flow", flowID)
	}
	return nil
}

// SetStatus сохраняет статус flow.
func (r *FlowRepo) SetStatus(ctx context.Context, chainID, flowID string, status domain.FlowStatus) error {
	query := `UPDATE flows SET status = $3 WHERE chain_id = $1 AND id = $2`
	result, err := r.pool.Exec(ctx, query, chainID, flowID, status)
	if err != nil {
		return fmt.Errorf("set flow status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return notFound("flow", flowID)
	}
	return nil
}

// Delete удаляет flow.
func (r *FlowRepo) Delete(ctx context.Context, chainID, flowID string) error {
	query := `DELETE FROM flows WHERE chain_id = $1 AND id = $2`
	result, err := r.pool.Exec(ctx, query, chainID, flowID)
	if err != nil {
		return fmt.Errorf("delete flow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return notFound("flow", flowID)
	}
	return nil
}

// rowScanner покрывает pgx.Row и pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanFlow читает одну строку flows.
func (r *FlowRepo) scanFlow(row rowScanner) (*domain.Flow, error) {
	var flow domain.Flow
	var doc, inputs, lastResults []byte

	err := row.Scan(
		&flow.ID,
		&flow.Name,
		&doc,
		&inputs,
		&flow.Status,
		&lastResults,
		&flow.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan flow: %w", err)
	}

	var document flowDocument
	if err := json.Unmarshal(doc, &document); err != nil {
		return nil, fmt.Errorf("unmarshal flow document: %w", err)
	}
	flow.Nodes = document.Nodes
	flow.Edges = document.Edges

	if len(inputs) > 0 {
		if err := json.Unmarshal(inputs, &flow.Inputs); err != nil {
			return nil, fmt.Errorf("unmarshal flow inputs: %w", err)
		}
	}
	if len(lastResults) > 0 {
		if err := json.Unmarshal(lastResults, &flow.LastResults); err != nil {
			return nil, fmt.Errorf("unmarshal flow results: %w", err)
		}
	}

	return &flow, nil
}
