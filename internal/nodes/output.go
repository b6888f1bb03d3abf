package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// NodeTypeOutput — тип output-узла.
const NodeTypeOutput = "output"

// Фиксированные подстановки output-узла.
const (
	fallbackNoInput     = "[No input provided]"
	fallbackEmptyString = "[Empty string received]"
	fallbackEmptyResult = "[generated empty response]"
)

// ContentPublisher принимает отформатированный текст output-узла
// для отображения (side effect, не влияет на выход узла).
type ContentPublisher interface {
	PublishContent(nodeID, content string)
}

// OutputNode — терминальный узел, форматирующий вход для отображения.
//
// Конфигурация:
//
//	{
//	    "format": "json" | "text"   // по умолчанию text
//	}
//
// Отформатированный текст публикуется в ContentPublisher независимо
// от возвращаемого значения.
type OutputNode struct {
	publisher ContentPublisher
}

// NewOutputNode создаёт новый OutputNode.
// publisher может быть nil — публикация тогда пропускается.
func NewOutputNode(publisher ContentPublisher) *OutputNode {
	return &OutputNode{publisher: publisher}
}

// Type возвращает тип узла.
func (n *OutputNode) Type() string {
	return NodeTypeOutput
}

// Execute форматирует вход и публикует результат.
func (n *OutputNode) Execute(_ context.Context, req *Request) (*Response, error) {
	formatted := n.format(req.Input, GetConfigString(req.Config, "format"))

	if n.publisher != nil {
		n.publisher.PublishContent(req.Node.ID, formatted)
	}

	return NewResponse(formatted), nil
}

// format приводит вход к строке для отображения.
func (n *OutputNode) format(input any, format string) string {
	if input == nil {
		return fallbackNoInput
	}
	if s, ok := input.(string); ok && strings.TrimSpace(s) == "" {
		return fallbackEmptyString
	}

	var formatted string
	switch format {
	case "json":
		formatted = formatJSON(input)
	default:
		formatted = formatText(input)
	}

	if strings.TrimSpace(formatted) == "" {
		return fallbackEmptyResult
	}
	return formatted
}

// formatJSON отдаёт pretty JSON с отступом в два пробела.
// Строки проходят как есть.
func formatJSON(input any) string {
	if s, ok := input.(string); ok {
		return s
	}
	b, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", input)
	}
	return string(b)
}

// formatText извлекает текстовое поле из объекта, иначе приводит к строке.
func formatText(input any) string {
	switch v := input.(type) {
	case string:
		return v
	case map[string]any:
		for _, key := range []string{"content", "text"} {
			if s, ok := v[key].(string); ok {
				return s
			}
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", v)
	}
}
