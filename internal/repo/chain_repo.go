package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Nodeflow/internal/domain"
)

// ChainRepo — репозиторий chains.
type ChainRepo struct {
	pool *pgxpool.Pool
}

// NewChainRepo создаёт новый ChainRepo.
func NewChainRepo(pool *pgxpool.Pool) *ChainRepo {
	return &ChainRepo{pool: pool}
}

// Create создаёт chain.
func (r *ChainRepo) Create(ctx context.Context, chain *domain.FlowChain) error {
	query := `
		INSERT INTO chains (id, name, flow_ids, selected_flow_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		chain.ID,
		chain.Name,
		chain.FlowIDs,
		chain.SelectedFlowID,
		chain.Status,
		chain.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chain: %w", err)
	}
	return nil
}

// GetByID возвращает chain по ID.
func (r *ChainRepo) GetByID(ctx context.Context, id string) (*domain.FlowChain, error) {
	query := `
		SELECT id, name, flow_ids, selected_flow_id, status, created_at
		FROM chains
		WHERE id = $1
	`
	var chain domain.FlowChain
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&chain.ID,
		&chain.Name,
		&chain.FlowIDs,
		&chain.SelectedFlowID,
		&chain.Status,
		&chain.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("chain", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get chain by id: %w", err)
	}
	return &chain, nil
}

// List возвращает все chains.
func (r *ChainRepo) List(ctx context.Context) ([]domain.FlowChain, error) {
	query := `
		SELECT id, name, flow_ids, selected_flow_id, status, created_at
		FROM chains
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list chains: %w", err)
	}
	defer rows.Close()

	var chains []domain.FlowChain
	for rows.Next() {
		var chain domain.FlowChain
		if err := rows.Scan(
			&chain.ID,
			&chain.Name,
			&chain.FlowIDs,
			&chain.SelectedFlowID,
			&chain.Status,
			&chain.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chain: %w", err)
		}
		chains = append(chains, chain)
	}
	return chains, rows.Err()
}

// Update обновляет имя, порядок flows и выбранный flow chain.
func (r *ChainRepo) Update(ctx context.Context, chain *domain.FlowChain) error {
	query := `
		UPDATE chains
		SET name = $2, flow_ids = $3, selected_flow_id = $4
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		chain.ID,
		chain.Name,
		chain.FlowIDs,
		chain.SelectedFlowID,
	)
	if err != nil {
		return fmt.Errorf("update chain: %w", err)
	}
	if result.RowsAffected() == 0 {
		return notFound("chain", chain.ID)
	}
	return nil
}

// SetStatus сохраняет статус chain.
func (r *ChainRepo) SetStatus(ctx context.Context, id string, status domain.ChainStatus) error {
	query := `UPDATE chains SET status = $2 WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("set chain status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return notFound("chain", id)
	}
	return nil
}

// Delete удаляет chain (каскадно удалит её flows и расписания).
func (r *ChainRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM chains WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete chain: %w", err)
	}
	if result.RowsAffected() == 0 {
		return notFound("chain", id)
	}
	return nil
}
