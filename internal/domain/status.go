package domain

// NodeStatus — статус узла в рамках одного запуска.
//
// Жизненный цикл:
//
//	idle → running → success
//	               ↘ error
type NodeStatus string

const (
	// NodeStatusIdle — узел ещё не запускался.
	NodeStatusIdle NodeStatus = "idle"

	// NodeStatusRunning — узел выполняется.
	NodeStatusRunning NodeStatus = "running"

	// NodeStatusSuccess — узел успешно завершён.
	NodeStatusSuccess NodeStatus = "success"

	// NodeStatusError — узел завершился с ошибкой.
	NodeStatusError NodeStatus = "error"
)

// IsTerminal возвращает true, если статус финальный.
func (s NodeStatus) IsTerminal() bool {
	switch s {
	case NodeStatusSuccess, NodeStatusError:
		return true
	default:
		return false
	}
}

// FlowStatus — статус запуска flow.
//
// Flow завершается со статусом "error", если хотя бы один узел упал,
// иначе — "success".
type FlowStatus string

const (
	// FlowStatusIdle — flow не запускался.
	FlowStatusIdle FlowStatus = "idle"

	// FlowStatusRunning — flow выполняется.
	FlowStatusRunning FlowStatus = "running"

	// FlowStatusSuccess — все узлы завершились успешно.
	FlowStatusSuccess FlowStatus = "success"

	// FlowStatusError — хотя бы один узел завершился с ошибкой.
	FlowStatusError FlowStatus = "error"
)

// ChainStatus — статус запуска цепочки flows.
//
// Статусом владеет исключительно Chain Executor на время запуска.
type ChainStatus string

const (
	// ChainStatusIdle — цепочка не запускалась.
	ChainStatusIdle ChainStatus = "idle"

	// ChainStatusRunning — цепочка выполняется.
	ChainStatusRunning ChainStatus = "running"

	// ChainStatusSuccess — все flows цепочки завершились успешно.
	ChainStatusSuccess ChainStatus = "success"

	// ChainStatusError — один из flows упал, остальные не выполнялись.
	ChainStatusError ChainStatus = "error"
)
