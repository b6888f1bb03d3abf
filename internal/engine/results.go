package engine

import (
	"fmt"

	"github.com/shaiso/Nodeflow/internal/domain"
)

// CollectResults собирает нормализованные результаты запуска.
//
// Порядок выбора терминальных узлов:
//  1. Листья графа (нет исходящих рёбер и не участник группы).
//  2. Fallback: любой узел без исходящих рёбер, членство в группе игнорируется.
//  3. Failsafe: каждый узел, давший хотя бы один выход. В этом режиме
//     каждый выход разворачивается в отдельный NodeResult, а файлоподобные
//     объекты сворачиваются в строку "name (path)".
func CollectResults(g *Graph, ec *ExecutionContext) []domain.NodeResult {
	// 1. Обычный путь: листья графа.
	if results := collectByIDs(g, ec, g.Leaves()); len(results) > 0 {
		return results
	}

	// 2. Fallback: узлы без исходящих рёбер независимо от групп.
	var terminal []string
	for _, id := range g.NodeIDs() {
		if len(g.Outgoing(id)) == 0 {
			terminal = append(terminal, id)
		}
	}
	if results := collectByIDs(g, ec, terminal); len(results) > 0 {
		return results
	}

	// 3. Failsafe: все узлы с выходами, по одному результату на выход.
	return collectFailsafe(g, ec)
}

// collectByIDs строит NodeResult для каждого узла из списка, давшего выход.
func collectByIDs(g *Graph, ec *ExecutionContext, ids []string) []domain.NodeResult {
	var results []domain.NodeResult

	for _, id := range ids {
		outputs, ok := ec.Output(id)
		if !ok {
			continue
		}
		results = append(results, domain.NewNodeResult(g.Node(id), outputs))
	}

	return results
}

// collectFailsafe разворачивает каждый выход каждого узла в отдельный результат.
func collectFailsafe(g *Graph, ec *ExecutionContext) []domain.NodeResult {
	var results []domain.NodeResult

	for _, id := range g.NodeIDs() {
		outputs, ok := ec.Output(id)
		if !ok || len(outputs) == 0 {
			continue
		}

		node := g.Node(id)
		for _, out := range outputs {
			collapsed := collapseFileLike(out)
			results = append(results, domain.NodeResult{
				NodeID:   node.ID,
				NodeName: node.Label(),
				NodeType: node.Type,
				Outputs:  []any{collapsed},
				Result:   collapsed,
			})
		}
	}

	return results
}

// collapseFileLike сворачивает файлоподобный объект в строку "name (path)".
//
// Файлоподобным считается map с именем (name/originalName/filename)
// и путём (path/url). Прочие значения возвращаются как есть.
func collapseFileLike(value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}

	name := firstString(m, "name", "originalName", "filename")
	path := firstString(m, "path", "url")
	if name == "" || path == "" {
		return value
	}

	return fmt.Sprintf("%s (%s)", name, path)
}

// firstString возвращает первое непустое строковое значение по списку ключей.
func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
