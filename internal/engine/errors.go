package engine

import "errors"

// Ошибки валидации графа.
var (
	// ErrEmptyNodes — flow не содержит узлов.
	ErrEmptyNodes = errors.New("flow has no nodes")

	// ErrEmptyNodeID — узел не имеет ID.
	ErrEmptyNodeID = errors.New("node has empty ID")

	// ErrDuplicateNodeID — несколько узлов с одинаковым ID.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDanglingEdge — ребро ссылается на несуществующий узел.
	ErrDanglingEdge = errors.New("edge references unknown node")
)

// ValidationError — ошибка валидации графа с контекстом.
type ValidationError struct {
	NodeID  string // ID узла, где произошла ошибка (может быть пустым)
	EdgeID  string // ID ребра, вызвавшего ошибку (может быть пустым)
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	switch {
	case e.NodeID != "":
		return "node " + e.NodeID + ": " + e.Message
	case e.EdgeID != "":
		return "edge " + e.EdgeID + ": " + e.Message
	default:
		return e.Message
	}
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(nodeID, edgeID, message string, err error) *ValidationError {
	return &ValidationError{
		NodeID:  nodeID,
		EdgeID:  edgeID,
		Message: message,
		Err:     err,
	}
}
