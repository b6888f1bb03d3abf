package nodes

import (
	"context"
)

// NodeTypeInput — тип input-узла.
const NodeTypeInput = "input"

// InputNode — точка входа данных в flow.
//
// Если в конфигурации задано статическое значение (value или text),
// оно используется как выход. Иначе наружу отдаётся доставленный вход
// (глобальные входы запуска для корневых узлов).
//
// Конфигурация:
//
//	{
//	    "value": <любое значение>,
//	    "text": "статический текст"
//	}
type InputNode struct{}

// NewInputNode создаёт новый InputNode.
func NewInputNode() *InputNode {
	return &InputNode{}
}

// Type возвращает тип узла.
func (n *InputNode) Type() string {
	return NodeTypeInput
}

// Execute отдаёт статическое значение конфига либо доставленный вход.
func (n *InputNode) Execute(_ context.Context, req *Request) (*Response, error) {
	if v, ok := req.Config["value"]; ok && v != nil {
		return NewResponse(v), nil
	}
	if text := GetConfigString(req.Config, "text"); text != "" {
		return NewResponse(text), nil
	}
	return NewResponse(req.Input), nil
}
