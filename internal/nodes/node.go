package nodes

import (
	"context"
	"time"

	"github.com/shaiso/Nodeflow/internal/domain"
	"github.com/shaiso/Nodeflow/internal/engine"
)

// Executor — интерфейс для типов узлов.
//
// Каждый тип узла (input, output, http, crawler, merger, llm)
// реализует этот интерфейс.
type Executor interface {
	// Type возвращает тип узла.
	Type() string

	// Execute выполняет узел и возвращает результат.
	// Узел должен уважать ctx для отмены и таймаутов.
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// Request — входные данные для выполнения узла.
type Request struct {
	// Node — сам узел flow (id, имя, тип).
	Node *domain.Node

	// Config — конфигурация узла (data из документа flow).
	Config map[string]any

	// Input — первое входное значение узла (nil, если входов нет).
	Input any

	// Inputs — все входные значения, доставленные в этом вызове.
	Inputs []any

	// Run — контекст запуска (статусы, аккумуляторы merger-узлов).
	Run *engine.ExecutionContext

	// Timeout — таймаут выполнения узла.
	// Если 0, используется таймаут по умолчанию типа узла.
	Timeout time.Duration
}

// Response — результат выполнения узла.
type Response struct {
	// Output — выходное значение, которое пойдёт дальше по рёбрам.
	Output any

	// NotReady — узел ещё не готов отдать выход (merger ждёт
	// оставшиеся входы). Распространение по рёбрам не происходит.
	NotReady bool
}

// NewRequest создаёт новый Request.
func NewRequest(node *domain.Node, run *engine.ExecutionContext, inputs []any) *Request {
	config := node.Data
	if config == nil {
		config = make(map[string]any)
	}

	var first any
	if len(inputs) > 0 {
		first = inputs[0]
	}

	return &Request{
		Node:   node,
		Config: config,
		Input:  first,
		Inputs: inputs,
		Run:    run,
	}
}

// NewResponse создаёт Response с готовым выходом.
func NewResponse(output any) *Response {
	return &Response{Output: output}
}

// NotReadyResponse создаёт Response «узел ещё копит входы».
func NotReadyResponse() *Response {
	return &Response{NotReady: true}
}

// GetConfigString извлекает строковое значение из конфига.
func GetConfigString(config map[string]any, key string) string {
	if v, ok := config[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetConfigInt извлекает числовое значение из конфига.
func GetConfigInt(config map[string]any, key string) int {
	if v, ok := config[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}

// GetConfigFloat извлекает дробное значение из конфига.
func GetConfigFloat(config map[string]any, key string) float64 {
	if v, ok := config[key]; ok {
		switch n := v.(type) {
		case float64:
			return n
		case int:
			return float64(n)
		case int64:
			return float64(n)
		}
	}
	return 0
}

// GetConfigBool извлекает булево значение из конфига.
func GetConfigBool(config map[string]any, key string, defaultVal bool) bool {
	if v, ok := config[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// GetConfigMap извлекает map из конфига.
func GetConfigMap(config map[string]any, key string) map[string]any {
	if v, ok := config[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

// GetConfigMapString извлекает map[string]string из конфига.
func GetConfigMapString(config map[string]any, key string) map[string]string {
	if v, ok := config[key]; ok {
		switch m := v.(type) {
		case map[string]string:
			return m
		case map[string]any:
			result := make(map[string]string)
			for k, val := range m {
				if s, ok := val.(string); ok {
					result[k] = s
				}
			}
			return result
		}
	}
	return nil
}

// GetConfigSlice извлекает список из конфига.
func GetConfigSlice(config map[string]any, key string) []any {
	if v, ok := config[key]; ok {
		if s, ok := v.([]any); ok {
			return s
		}
	}
	return nil
}

// GetConfigStringSlice извлекает список строк из конфига.
func GetConfigStringSlice(config map[string]any, key string) []string {
	items := GetConfigSlice(config, key)
	if items == nil {
		return nil
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
