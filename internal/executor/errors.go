package executor

import (
	"errors"
	"fmt"
)

// Ошибки выполнения flows и chains.
var (
	// ErrFlowFailed — хотя бы один узел flow завершился ошибкой.
	ErrFlowFailed = errors.New("flow execution failed")

	// ErrChainHalted — chain остановлен после упавшего flow.
	ErrChainHalted = errors.New("chain halted")

	// ErrFlowNotFound — flow не найден в хранилище.
	ErrFlowNotFound = errors.New("flow not found")

	// ErrEmptyChain — chain не содержит flows.
	ErrEmptyChain = errors.New("chain has no flows")
)

// FlowError — ошибка запуска одного flow.
type FlowError struct {
	FlowID string
	Err    error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("flow %s: %v", e.FlowID, e.Err)
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// NewFlowError оборачивает ошибку flow с его идентификатором.
func NewFlowError(flowID string, err error) *FlowError {
	return &FlowError{FlowID: flowID, Err: err}
}
