package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/Nodeflow/internal/domain"
	"github.com/shaiso/Nodeflow/internal/engine"
	"github.com/shaiso/Nodeflow/internal/telemetry"
)

// FlowStore — внешнее хранилище flows и chains, которое executor
// читает и в которое пишет результаты. Реализуется пакетом repo.
type FlowStore interface {
	// GetFlow загружает flow в составе chain.
	GetFlow(ctx context.Context, chainID, flowID string) (*domain.Flow, error)

	// SetFlowResults сохраняет результаты последнего запуска flow.
	SetFlowResults(ctx context.Context, chainID, flowID string, results []domain.NodeResult) error

	// SetFlowStatus сохраняет статус flow.
	SetFlowStatus(ctx context.Context, chainID, flowID string, status domain.FlowStatus) error

	// SetChainStatus сохраняет статус chain.
	SetChainStatus(ctx context.Context, chainID string, status domain.ChainStatus) error
}

// ChainEventSink принимает события переходов статуса chain.
// Реализуется публикатором mq; может быть nil.
type ChainEventSink interface {
	// ChainStateChanged — chain сменил статус.
	ChainStateChanged(ctx context.Context, chainID string, status domain.ChainStatus)
}

// Callbacks — уведомления о ходе выполнения chain.
// Любое поле может быть nil.
type Callbacks struct {
	OnChainStart    func(chainID string)
	OnFlowStart     func(flowID string)
	OnFlowComplete  func(flowID string, results []domain.NodeResult)
	OnChainComplete func(results []domain.NodeResult)

	// OnError вызывается при падении: flowID пуст для ошибок уровня
	// chain, не привязанных к конкретному flow.
	OnError func(flowID string, err error)
}

// ChainResult — итог запуска chain.
type ChainResult struct {
	// Status — итоговый статус chain.
	Status domain.ChainStatus

	// Results — результаты выбранного flow (selectedFlowId);
	// пусто, если он не задан или не выполнялся.
	Results []domain.NodeResult
}

// ChainExecutorConfig — настройки ChainExecutor.
type ChainExecutorConfig struct {
	// Flows — executor отдельных flows. Обязателен.
	Flows *FlowExecutor

	// Store — хранилище flows/chains. Обязательно.
	Store FlowStore

	// Events — приёмник событий статуса chain (может быть nil).
	Events ChainEventSink
}

// ChainExecutor выполняет chain: упорядоченный список flows,
// строго последовательно, с пробросом результатов между ними.
//
// Падение любого flow останавливает chain немедленно (fail-fast),
// оставшиеся flows не выполняются.
type ChainExecutor struct {
	flows  *FlowExecutor
	store  FlowStore
	events ChainEventSink
}

// NewChainExecutor создаёт ChainExecutor.
func NewChainExecutor(cfg ChainExecutorConfig) *ChainExecutor {
	return &ChainExecutor{
		flows:  cfg.Flows,
		store:  cfg.Store,
		events: cfg.Events,
	}
}

// RunChain выполняет chain от начала до конца.
//
// overrideInputs, если переданы, замещают сохранённые входы первого
// flow. Каждый последующий flow по умолчанию получает входами
// результаты предыдущего; входы с плейсхолдерами ${flowId.result}
// вместо этого резолвятся по уже сохранённым результатам.
func (e *ChainExecutor) RunChain(ctx context.Context, chain *domain.FlowChain, overrideInputs []any, cb Callbacks) (*ChainResult, error) {
	if len(chain.FlowIDs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyChain, chain.ID)
	}

	log := telemetry.WithChainID(telemetry.FromContext(ctx), chain.ID)
	log.Info("chain run started", "flows", len(chain.FlowIDs))

	chain.Status = domain.ChainStatusRunning
	if err := e.store.SetChainStatus(ctx, chain.ID, domain.ChainStatusRunning); err != nil {
		return nil, fmt.Errorf("set chain status: %w", err)
	}
	e.notifyChain(ctx, chain.ID, domain.ChainStatusRunning)
	if cb.OnChainStart != nil {
		cb.OnChainStart(chain.ID)
	}

	// Сырые результаты flows для подстановки ссылок. Засеваются
	// сохранёнными результатами прошлых запусков: плейсхолдер может
	// ссылаться на flow, до которого текущий запуск ещё не дошёл.
	resultsByFlow := make(map[string]any)
	flowsByID := make(map[string]*domain.Flow, len(chain.FlowIDs))

	for _, flowID := range chain.FlowIDs {
		flow, err := e.store.GetFlow(ctx, chain.ID, flowID)
		if err != nil {
			return e.fail(ctx, chain, flowID, log, cb, fmt.Errorf("%w: %s: %v", ErrFlowNotFound, flowID, err))
		}
		flowsByID[flowID] = flow
		if len(flow.LastResults) > 0 {
			resultsByFlow[flowID] = flow.ResultValue()
		}
	}

	var prevResults []domain.NodeResult

	for i, flowID := range chain.FlowIDs {
		flow := flowsByID[flowID]

		inputs := e.resolveInputs(flow, i, overrideInputs, prevResults, resultsByFlow)

		if cb.OnFlowStart != nil {
			cb.OnFlowStart(flowID)
		}

		// Каждый flow получает свежий контекст и свежий executionId
		runResult, runErr := e.flows.Run(ctx, flow, inputs)

		if runResult != nil {
			flow.LastResults = runResult.Results
			flow.Status = runResult.Status
			resultsByFlow[flowID] = flow.ResultValue()

			if err := e.store.SetFlowResults(ctx, chain.ID, flowID, runResult.Results); err != nil {
				log.Warn("persist flow results failed", "flow_id", flowID, "error", err)
			}
			if err := e.store.SetFlowStatus(ctx, chain.ID, flowID, runResult.Status); err != nil {
				log.Warn("persist flow status failed", "flow_id", flowID, "error", err)
			}
		}

		if runErr != nil {
			return e.fail(ctx, chain, flowID, log, cb, NewFlowError(flowID, runErr))
		}

		if cb.OnFlowComplete != nil {
			cb.OnFlowComplete(flowID, runResult.Results)
		}
		prevResults = runResult.Results
	}

	chain.Status = domain.ChainStatusSuccess
	if err := e.store.SetChainStatus(ctx, chain.ID, domain.ChainStatusSuccess); err != nil {
		log.Warn("persist chain status failed", "error", err)
	}
	e.notifyChain(ctx, chain.ID, domain.ChainStatusSuccess)
	telemetry.ChainRuns.WithLabelValues("success").Inc()

	// Внешний результат chain — результаты выбранного flow
	var results []domain.NodeResult
	if selected, ok := flowsByID[chain.SelectedFlowID]; ok {
		results = selected.LastResults
	}

	if cb.OnChainComplete != nil {
		cb.OnChainComplete(results)
	}
	log.Info("chain run finished", "status", chain.Status)

	return &ChainResult{Status: domain.ChainStatusSuccess, Results: results}, nil
}

// resolveInputs вычисляет входы очередного flow в chain.
func (e *ChainExecutor) resolveInputs(flow *domain.Flow, index int, overrideInputs []any, prevResults []domain.NodeResult, resultsByFlow map[string]any) []any {
	// Первый flow: входы вызова замещают сохранённые
	if index == 0 {
		if overrideInputs != nil {
			return overrideInputs
		}
		return flow.Inputs
	}

	// Явные плейсхолдеры резолвятся вместо проброса по умолчанию
	if engine.HasRefs(flow.Inputs) {
		resolved := engine.ResolveRefs(flow.Inputs, resultsByFlow)
		if list, ok := resolved.([]any); ok {
			return list
		}
		return []any{resolved}
	}

	// По умолчанию: полная замена входов результатами предыдущего flow
	inputs := make([]any, len(prevResults))
	for i, r := range prevResults {
		inputs[i] = r.Result
	}
	return inputs
}

// fail завершает chain ошибкой: статус error, fail-fast, OnError.
func (e *ChainExecutor) fail(ctx context.Context, chain *domain.FlowChain, flowID string, log *slog.Logger, cb Callbacks, err error) (*ChainResult, error) {
	chain.Status = domain.ChainStatusError
	if serr := e.store.SetChainStatus(ctx, chain.ID, domain.ChainStatusError); serr != nil {
		log.Warn("persist chain status failed", "error", serr)
	}
	e.notifyChain(ctx, chain.ID, domain.ChainStatusError)
	telemetry.ChainRuns.WithLabelValues("error").Inc()

	if cb.OnError != nil {
		cb.OnError(flowID, err)
	}

	return &ChainResult{Status: domain.ChainStatusError}, fmt.Errorf("%w: %v", ErrChainHalted, err)
}

// notifyChain отправляет событие смены статуса chain (если sink задан).
func (e *ChainExecutor) notifyChain(ctx context.Context, chainID string, status domain.ChainStatus) {
	if e.events == nil {
		return
	}
	e.events.ChainStateChanged(ctx, chainID, status)
}
