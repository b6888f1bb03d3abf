package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Nodeflow/internal/domain"
)

// Store объединяет репозитории в хранилище, которым пользуется
// executor (интерфейс executor.FlowStore).
type Store struct {
	Flows     *FlowRepo
	Chains    *ChainRepo
	Schedules *ScheduleRepo
}

// NewStore создаёт Store поверх пула соединений.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		Flows:     NewFlowRepo(pool),
		Chains:    NewChainRepo(pool),
		Schedules: NewScheduleRepo(pool),
	}
}

// GetFlow загружает flow в составе chain.
func (s *Store) GetFlow(ctx context.Context, chainID, flowID string) (*domain.Flow, error) {
	return s.Flows.Get(ctx, chainID, flowID)
}

// SetFlowResults сохраняет результаты последнего запуска flow.
func (s *Store) SetFlowResults(ctx context.Context, chainID, flowID string, results []domain.NodeResult) error {
	return s.Flows.SetResults(ctx, chainID, flowID, results)
}

// SetFlowStatus сохраняет статус flow.
func (s *Store) SetFlowStatus(ctx context.Context, chainID, flowID string, status domain.FlowStatus) error {
	return s.Flows.SetStatus(ctx, chainID, flowID, status)
}

// SetChainStatus сохраняет статус chain.
func (s *Store) SetChainStatus(ctx context.Context, chainID string, status domain.ChainStatus) error {
	return s.Chains.SetStatus(ctx, chainID, status)
}
