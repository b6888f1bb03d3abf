package engine

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// refPattern — плейсхолдер ссылки на результат flow: ${flowId.result}.
var refPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_-]+)\.result\}`)

// HasRefs проверяет, содержит ли значение хотя бы один плейсхолдер
// ${flowId.result}. Рекурсивно обходит map и slice.
func HasRefs(value any) bool {
	switch v := value.(type) {
	case string:
		return refPattern.MatchString(v)

	case map[string]any:
		for _, item := range v {
			if HasRefs(item) {
				return true
			}
		}
		return false

	case []any:
		for _, item := range v {
			if HasRefs(item) {
				return true
			}
		}
		return false

	default:
		return false
	}
}

// ResolveRefs подставляет результаты flows вместо плейсхолдеров.
//
// Правила подстановки:
//   - Строка, состоящая ровно из одного плейсхолдера, заменяется сырым
//     результатом flow — тип сохраняется (может стать объектом или списком).
//   - Плейсхолдер внутри большей строки заменяется JSON-текстом результата.
//   - Плейсхолдер на flow без сохранённого результата остаётся как есть
//     (не фатально).
//
// results — карта flowId → сырой сохранённый результат.
func ResolveRefs(value any, results map[string]any) any {
	switch v := value.(type) {
	case string:
		return resolveString(v, results)

	case map[string]any:
		resolved := make(map[string]any, len(v))
		for key, item := range v {
			resolved[key] = ResolveRefs(item, results)
		}
		return resolved

	case []any:
		resolved := make([]any, len(v))
		for i, item := range v {
			resolved[i] = ResolveRefs(item, results)
		}
		return resolved

	default:
		return value
	}
}

// resolveString подставляет плейсхолдеры в одной строке.
func resolveString(s string, results map[string]any) any {
	// Точное совпадение: вся строка — один плейсхолдер.
	// Результат подставляется с сохранением типа.
	if m := refPattern.FindStringSubmatch(s); m != nil && m[0] == s {
		result, ok := results[m[1]]
		if !ok {
			return s
		}
		return result
	}

	// Плейсхолдер внутри строки: подставляем JSON-текст результата.
	return refPattern.ReplaceAllStringFunc(s, func(match string) string {
		flowID := refPattern.FindStringSubmatch(match)[1]
		result, ok := results[flowID]
		if !ok {
			return match
		}
		return stringifyResult(result)
	})
}

// stringifyResult приводит результат к JSON-тексту для подстановки внутри строки.
func stringifyResult(result any) string {
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return strings.TrimSpace(string(b))
}
