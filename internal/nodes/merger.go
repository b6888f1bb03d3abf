package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// NodeTypeMerger — тип merger-узла.
const NodeTypeMerger = "merger"

// Режимы merger-узла.
const (
	mergerModeConcat = "concat"
	mergerModeJoin   = "join"
	mergerModeObject = "object"
)

// MergerNode — stateful-узел, накапливающий входы нескольких инвокаций
// в один агрегат.
//
// Аккумулятор живёт в ExecutionContext и помечен executionId запуска:
// обращение из другого запуска тихо сбрасывает накопленное.
//
// Конфигурация:
//
//	{
//	    "mode": "concat" | "join" | "object",   // по умолчанию concat
//	    "arrayStrategy": "flatten" | "preserve", // для concat
//	    "separator": ", ",                       // для join
//	    "propertyNames": ["x", "y"],             // для object
//	    "items": [...],                          // статические доп. элементы
//	    "waitForAll": false
//	}
type MergerNode struct{}

// NewMergerNode создаёт новый MergerNode.
func NewMergerNode() *MergerNode {
	return &MergerNode{}
}

// Type возвращает тип узла.
func (n *MergerNode) Type() string {
	return NodeTypeMerger
}

// Execute добавляет входы в аккумулятор и отдаёт агрегат по режиму.
func (n *MergerNode) Execute(_ context.Context, req *Request) (*Response, error) {
	// Очередной вклад: непустые входы этой доставки плюс
	// статически сконфигурированные элементы
	var items []any
	for _, input := range req.Inputs {
		if input != nil {
			items = append(items, input)
		}
	}
	items = append(items, GetConfigSlice(req.Config, "items")...)

	// Append сериализован per-node и сразу персистится: следующая
	// инвокация в этом же запуске видит обновлённый список
	accumulated := req.Run.Accumulate(req.Node.ID, req.Run.ExecutionID(), items)

	if GetConfigBool(req.Config, "waitForAll", false) && len(accumulated) == 0 {
		return NotReadyResponse(), nil
	}

	mode := GetConfigString(req.Config, "mode")
	switch mode {
	case mergerModeJoin:
		return NewResponse(mergeJoin(accumulated, GetConfigString(req.Config, "separator"))), nil
	case mergerModeObject:
		return NewResponse(mergeObject(accumulated, GetConfigStringSlice(req.Config, "propertyNames"))), nil
	case mergerModeConcat:
		return NewResponse(mergeConcat(accumulated, GetConfigString(req.Config, "arrayStrategy"))), nil
	default:
		// Неизвестный режим трактуется как concat
		return NewResponse(mergeConcat(accumulated, GetConfigString(req.Config, "arrayStrategy"))), nil
	}
}

// mergeConcat собирает входы в упорядоченный список.
// При arrayStrategy=flatten вложенные списки разворачиваются поэлементно,
// иначе попадают в результат как единые элементы.
func mergeConcat(inputs []any, arrayStrategy string) []any {
	result := make([]any, 0, len(inputs))
	for _, input := range inputs {
		if list, ok := input.([]any); ok && arrayStrategy == "flatten" {
			result = append(result, list...)
			continue
		}
		result = append(result, input)
	}
	return result
}

// mergeJoin строит строку: каждый вход приводится к тексту и
// склеивается через separator.
func mergeJoin(inputs []any, separator string) string {
	parts := make([]string, len(inputs))
	for i, input := range inputs {
		parts[i] = stringifyInput(input)
	}
	return strings.Join(parts, separator)
}

// stringifyInput приводит один вход merger-узла к тексту.
// Списки склеиваются запятой, объекты — JSON, nil — пустая строка.
func stringifyInput(input any) string {
	switch v := input.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = stringifyInput(item)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// mergeObject строит отображение ключ → вход.
//
// Ключ i-го входа: propertyNames[i], если задан; иначе
// input_from_<sourceId>, если вход несёт _meta.sourceId;
// иначе input_<i+1>.
func mergeObject(inputs []any, propertyNames []string) map[string]any {
	result := make(map[string]any, len(inputs))
	for i, input := range inputs {
		result[objectKey(input, propertyNames, i)] = input
	}
	return result
}

// objectKey выбирает ключ для i-го входа object-режима.
func objectKey(input any, propertyNames []string, i int) string {
	if i < len(propertyNames) && propertyNames[i] != "" {
		return propertyNames[i]
	}
	if m, ok := input.(map[string]any); ok {
		if meta, ok := m["_meta"].(map[string]any); ok {
			if sourceID, ok := meta["sourceId"].(string); ok && sourceID != "" {
				return "input_from_" + sourceID
			}
		}
	}
	return fmt.Sprintf("input_%d", i+1)
}
