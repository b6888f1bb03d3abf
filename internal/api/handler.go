package api

import (
	"log/slog"

	"github.com/shaiso/Nodeflow/internal/executor"
	"github.com/shaiso/Nodeflow/internal/repo"
	"github.com/shaiso/Nodeflow/internal/store"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	store     *repo.Store
	flowExec  *executor.FlowExecutor
	chainExec *executor.ChainExecutor
	content   *store.ContentStore
	logger    *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Store     *repo.Store
	FlowExec  *executor.FlowExecutor
	ChainExec *executor.ChainExecutor
	Content   *store.ContentStore
	Logger    *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		store:     cfg.Store,
		flowExec:  cfg.FlowExec,
		chainExec: cfg.ChainExec,
		content:   cfg.Content,
		logger:    cfg.Logger,
	}
}
