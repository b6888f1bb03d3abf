package nodes

import (
	"errors"
	"fmt"
)

// Ошибки узлов.
var (
	// ErrNodeNotFound — тип узла не найден в реестре.
	ErrNodeNotFound = errors.New("node type not found")

	// ErrInvalidConfig — невалидная конфигурация узла.
	ErrInvalidConfig = errors.New("invalid node config")

	// ErrNodeTimeout — узел превысил таймаут.
	ErrNodeTimeout = errors.New("node execution timeout")

	// ErrNodeCancelled — выполнение узла отменено.
	ErrNodeCancelled = errors.New("node execution cancelled")
)

// ExecError — ошибка выполнения конкретного узла.
type ExecError struct {
	NodeID   string
	NodeType string
	Err      error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("node %s (%s): %v", e.NodeID, e.NodeType, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// NewExecError оборачивает ошибку узла с его идентификацией.
func NewExecError(nodeID, nodeType string, err error) *ExecError {
	return &ExecError{NodeID: nodeID, NodeType: nodeType, Err: err}
}
