package engine

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shaiso/Nodeflow/internal/domain"
)

// ExecutionContext — состояние одного запуска flow.
//
// Создаётся заново на каждый run (со свежим executionId) и отбрасывается
// после него. Хранит статусы узлов, их выходы и аккумуляторы merger-узлов.
//
// Данные аккумулятора помечены executionId, который их породил:
// обращение с другим executionId считается устаревшим, и аккумулятор
// тихо сбрасывается (защита от загрязнения между запусками).
type ExecutionContext struct {
	id string

	mu     sync.RWMutex
	states map[string]*NodeState
	inputs []any
}

// NodeState — состояние одного узла в рамках запуска.
type NodeState struct {
	// Status — текущий статус узла.
	Status domain.NodeStatus

	// Outputs — выходные значения узла (после success).
	Outputs []any

	// Error — сообщение об ошибке (после error).
	Error string

	// acc — аккумулятор merger-узла (nil, пока узел не накапливал).
	acc *accumulator

	// accMu сериализует read-modify-write доступ к аккумулятору:
	// конкурентные доставки в один узел не должны терять элементы.
	accMu sync.Mutex
}

// accumulator — накопленные входы merger-узла, помеченные породившим их запуском.
type accumulator struct {
	executionID string
	items       []any
}

// NewExecutionContext создаёт контекст со свежим executionId.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		id:     uuid.NewString(),
		states: make(map[string]*NodeState),
	}
}

// ExecutionID возвращает идентификатор запуска.
func (c *ExecutionContext) ExecutionID() string {
	return c.id
}

// SetInputs устанавливает глобальные входы запуска (доставляются корневым узлам).
func (c *ExecutionContext) SetInputs(values []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputs = values
}

// Inputs возвращает глобальные входы запуска.
func (c *ExecutionContext) Inputs() []any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inputs
}

// state возвращает состояние узла, создавая его при необходимости.
// Вызывать под c.mu недостаточно: метод сам берёт блокировку.
func (c *ExecutionContext) state(nodeID string) *NodeState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, exists := c.states[nodeID]
	if !exists {
		st = &NodeState{Status: domain.NodeStatusIdle}
		c.states[nodeID] = st
	}
	return st
}

// MarkRunning помечает узел выполняющимся.
func (c *ExecutionContext) MarkRunning(nodeID string) {
	st := c.state(nodeID)

	c.mu.Lock()
	defer c.mu.Unlock()
	st.Status = domain.NodeStatusRunning
	st.Error = ""
}

// MarkIdle возвращает узел в idle (узел отложил выполнение до
// следующей доставки входов).
func (c *ExecutionContext) MarkIdle(nodeID string) {
	st := c.state(nodeID)

	c.mu.Lock()
	defer c.mu.Unlock()
	st.Status = domain.NodeStatusIdle
}

// MarkSuccess помечает узел успешно завершённым и сохраняет его выходы.
func (c *ExecutionContext) MarkSuccess(nodeID string, outputs []any) {
	st := c.state(nodeID)

	c.mu.Lock()
	defer c.mu.Unlock()
	st.Status = domain.NodeStatusSuccess
	st.Outputs = outputs
	st.Error = ""
}

// MarkError помечает узел упавшим с сообщением об ошибке.
func (c *ExecutionContext) MarkError(nodeID string, msg string) {
	st := c.state(nodeID)

	c.mu.Lock()
	defer c.mu.Unlock()
	st.Status = domain.NodeStatusError
	st.Error = msg
}

// Status возвращает статус узла (idle, если узел не известен контексту).
func (c *ExecutionContext) Status(nodeID string) domain.NodeStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if st, exists := c.states[nodeID]; exists {
		return st.Status
	}
	return domain.NodeStatusIdle
}

// Output возвращает выходы узла и флаг их наличия.
func (c *ExecutionContext) Output(nodeID string) ([]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st, exists := c.states[nodeID]
	if !exists || st.Status != domain.NodeStatusSuccess {
		return nil, false
	}
	return st.Outputs, true
}

// NodeError возвращает сообщение об ошибке узла (пустая строка, если ошибки нет).
func (c *ExecutionContext) NodeError(nodeID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if st, exists := c.states[nodeID]; exists {
		return st.Error
	}
	return ""
}

// HasErrors проверяет, упал ли хотя бы один узел.
func (c *ExecutionContext) HasErrors() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, st := range c.states {
		if st.Status == domain.NodeStatusError {
			return true
		}
	}
	return false
}

// Accumulate добавляет элементы в аккумулятор узла и возвращает снимок
// накопленного списка.
//
// Доступ к аккумулятору одного узла сериализован (per-node mutex), поэтому
// конкурентные доставки в одном тике не теряют элементы и сохраняют
// детерминированный порядок append'ов.
//
// Если сохранённый executionId не совпадает с executionId запроса,
// аккумулятор сбрасывается и принимает новый executionId — устаревшее
// состояние прошлого запуска молча отбрасывается.
func (c *ExecutionContext) Accumulate(nodeID, executionID string, items []any) []any {
	st := c.state(nodeID)

	st.accMu.Lock()
	defer st.accMu.Unlock()

	if st.acc == nil || st.acc.executionID != executionID {
		st.acc = &accumulator{executionID: executionID}
	}

	st.acc.items = append(st.acc.items, items...)

	snapshot := make([]any, len(st.acc.items))
	copy(snapshot, st.acc.items)
	return snapshot
}

// Accumulated возвращает снимок аккумулятора узла для executionId.
// Чужой executionId видит пустой список (устаревшие данные не читаются).
func (c *ExecutionContext) Accumulated(nodeID, executionID string) []any {
	st := c.state(nodeID)

	st.accMu.Lock()
	defer st.accMu.Unlock()

	if st.acc == nil || st.acc.executionID != executionID {
		return nil
	}

	snapshot := make([]any, len(st.acc.items))
	copy(snapshot, st.acc.items)
	return snapshot
}

// Teardown завершает контекст брошенного запуска.
//
// Узлы, застрявшие в running (запуск прерван, результата не будет),
// принудительно сбрасываются в idle, их аккумуляторы очищаются —
// читатель состояния не должен бесконечно верить устаревшему "running".
func (c *ExecutionContext) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, st := range c.states {
		if st.Status == domain.NodeStatusRunning {
			st.Status = domain.NodeStatusIdle
			st.accMu.Lock()
			st.acc = nil
			st.accMu.Unlock()
		}
	}
}
