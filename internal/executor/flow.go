package executor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/Nodeflow/internal/domain"
	"github.com/shaiso/Nodeflow/internal/engine"
	"github.com/shaiso/Nodeflow/internal/nodes"
	"github.com/shaiso/Nodeflow/internal/telemetry"
)

// EventSink принимает события переходов состояний во время запуска.
// Реализуется публикатором mq; может быть nil.
type EventSink interface {
	// NodeStateChanged — узел сменил статус.
	NodeStateChanged(ctx context.Context, flowID, executionID, nodeID string, status domain.NodeStatus, errMsg string)

	// FlowStateChanged — flow сменил статус.
	FlowStateChanged(ctx context.Context, flowID, executionID string, status domain.FlowStatus)
}

// RunResult — итог одного запуска flow.
type RunResult struct {
	// ExecutionID — идентификатор запуска.
	ExecutionID string

	// Status — итоговый статус flow.
	Status domain.FlowStatus

	// Results — нормализованные результаты терминальных узлов.
	Results []domain.NodeResult

	// Context — контекст запуска (для инспекции состояний узлов).
	Context *engine.ExecutionContext
}

// FlowExecutorConfig — настройки FlowExecutor.
type FlowExecutorConfig struct {
	// Registry — реестр типов узлов. Обязателен.
	Registry *nodes.Registry

	// Events — приёмник событий переходов (может быть nil).
	Events EventSink

	// NodeTimeout — таймаут одного узла (0 — дефолты узлов).
	NodeTimeout time.Duration
}

// FlowExecutor выполняет один flow: планирует корни, двигает значения
// по рёбрам, собирает результаты листьев.
//
// Корневые узлы стартуют конкурентно; узел с несколькими входящими
// рёбрами срабатывает один раз, когда все его продюсеры отдали выход.
// Упавший узел блокирует только своих потомков — соседние ветки
// доезжают до конца независимо.
type FlowExecutor struct {
	registry    *nodes.Registry
	events      EventSink
	nodeTimeout time.Duration
}

// NewFlowExecutor создаёт FlowExecutor.
func NewFlowExecutor(cfg FlowExecutorConfig) *FlowExecutor {
	return &FlowExecutor{
		registry:    cfg.Registry,
		events:      cfg.Events,
		nodeTimeout: cfg.NodeTimeout,
	}
}

// flowRun — состояние планировщика одного запуска.
type flowRun struct {
	flow  *domain.Flow
	graph *engine.Graph
	ec    *engine.ExecutionContext

	// mu защищает pending и inbox.
	mu sync.Mutex

	// pending — сколько входов узел ещё ждёт (его арность).
	pending map[string]int

	// inbox — входы, уже доставленные узлу, в порядке прибытия.
	inbox map[string][]any

	wg sync.WaitGroup
}

// Run выполняет flow с переданными глобальными входами.
//
// Создаёт свежий ExecutionContext со свежим executionId. Возвращает
// результаты терминальных узлов; при упавших узлах статус error и
// ErrFlowFailed, но частичные результаты всё равно собираются.
func (e *FlowExecutor) Run(ctx context.Context, flow *domain.Flow, inputs []any) (*RunResult, error) {
	graph, err := engine.Build(flow.Nodes, flow.Edges)
	if err != nil {
		return nil, err
	}

	ec := engine.NewExecutionContext()
	ec.SetInputs(inputs)

	log := telemetry.WithExecutionID(telemetry.WithFlowID(telemetry.FromContext(ctx), flow.ID), ec.ExecutionID())
	log.Info("flow run started", "nodes", graph.Size(), "roots", len(graph.Roots()))

	if e.events != nil {
		e.events.FlowStateChanged(ctx, flow.ID, ec.ExecutionID(), domain.FlowStatusRunning)
	}

	run := &flowRun{
		flow:    flow,
		graph:   graph,
		ec:      ec,
		pending: make(map[string]int),
		inbox:   make(map[string][]any),
	}
	for _, id := range graph.NodeIDs() {
		run.pending[id] = graph.InDegree(id)
	}

	started := time.Now()

	// Все корни стартуют конкурентно, каждый получает входы запуска
	for _, rootID := range graph.Roots() {
		run.wg.Add(1)
		go e.executeNode(ctx, run, rootID, inputs)
	}
	run.wg.Wait()

	status := domain.FlowStatusSuccess
	outcome := "success"
	if ec.HasErrors() {
		status = domain.FlowStatusError
		outcome = "error"
	}

	telemetry.FlowRuns.WithLabelValues(outcome).Inc()
	telemetry.FlowDuration.Observe(time.Since(started).Seconds())

	if e.events != nil {
		e.events.FlowStateChanged(ctx, flow.ID, ec.ExecutionID(), status)
	}

	result := &RunResult{
		ExecutionID: ec.ExecutionID(),
		Status:      status,
		Results:     engine.CollectResults(graph, ec),
		Context:     ec,
	}

	log.Info("flow run finished", "status", status, "results", len(result.Results))

	if status == domain.FlowStatusError {
		return result, ErrFlowFailed
	}
	return result, nil
}

// executeNode выполняет один узел и, при успехе, доставляет его выход
// по исходящим рёбрам. Вызывается в своей горутине; wg уже увеличен.
func (e *FlowExecutor) executeNode(ctx context.Context, run *flowRun, nodeID string, inputs []any) {
	defer run.wg.Done()

	node := run.graph.Node(nodeID)
	log := telemetry.WithNodeID(telemetry.WithExecutionID(telemetry.FromContext(ctx), run.ec.ExecutionID()), nodeID)

	executor, err := e.registry.Get(node.Type)
	if err != nil {
		e.failNode(ctx, run, node, log, err)
		return
	}

	run.ec.MarkRunning(nodeID)
	e.notifyNode(ctx, run, nodeID, domain.NodeStatusRunning, "")

	req := nodes.NewRequest(node, run.ec, inputs)
	req.Timeout = e.nodeTimeout

	started := time.Now()
	resp, err := executor.Execute(ctx, req)
	telemetry.NodeDuration.WithLabelValues(node.Type).Observe(time.Since(started).Seconds())

	if err != nil {
		telemetry.NodeExecutions.WithLabelValues(node.Type, "error").Inc()
		e.failNode(ctx, run, node, log, nodes.NewExecError(nodeID, node.Type, err))
		return
	}

	// Узел ещё копит входы: без успеха и без распространения,
	// статус откатывается в idle до следующей доставки
	if resp.NotReady {
		run.ec.MarkIdle(nodeID)
		log.Debug("node not ready, awaiting more inputs")
		return
	}

	telemetry.NodeExecutions.WithLabelValues(node.Type, "success").Inc()
	run.ec.MarkSuccess(nodeID, []any{resp.Output})
	e.notifyNode(ctx, run, nodeID, domain.NodeStatusSuccess, "")
	log.Debug("node finished", "node_type", node.Type)

	e.propagate(ctx, run, nodeID, resp.Output)
}

// propagate доставляет выход узла всем его потребителям и запускает
// тех, кто дождался всех своих входов.
func (e *FlowExecutor) propagate(ctx context.Context, run *flowRun, nodeID string, output any) {
	for _, edge := range run.graph.Outgoing(nodeID) {
		run.mu.Lock()
		run.inbox[edge.Target] = append(run.inbox[edge.Target], output)
		run.pending[edge.Target]--
		ready := run.pending[edge.Target] == 0
		var targetInputs []any
		if ready {
			targetInputs = run.inbox[edge.Target]
		}
		run.mu.Unlock()

		if ready {
			run.wg.Add(1)
			go e.executeNode(ctx, run, edge.Target, targetInputs)
		}
	}
}

// failNode фиксирует ошибку узла. Потомки не планируются:
// их счётчики входов никогда не дойдут до нуля.
func (e *FlowExecutor) failNode(ctx context.Context, run *flowRun, node *domain.Node, log *slog.Logger, err error) {
	msg := err.Error()
	run.ec.MarkError(node.ID, msg)
	e.notifyNode(ctx, run, node.ID, domain.NodeStatusError, msg)
	log.Error("node failed", "node_type", node.Type, "error", msg)
}

// notifyNode отправляет событие смены статуса узла (если sink задан).
func (e *FlowExecutor) notifyNode(ctx context.Context, run *flowRun, nodeID string, status domain.NodeStatus, errMsg string) {
	if e.events == nil {
		return
	}
	e.events.NodeStateChanged(ctx, run.flow.ID, run.ec.ExecutionID(), nodeID, status, errMsg)
}
