package engine

import (
	"fmt"

	"github.com/shaiso/Nodeflow/internal/domain"
)

// Graph — проиндексированный граф одного flow.
//
// Строится один раз на запуск и далее не меняется: индексы смежности,
// корни и листья вычисляются при построении, поэтому разбиение
// детерминировано и идемпотентно для фиксированного набора узлов/рёбер.
type Graph struct {
	nodes map[string]*domain.Node

	// order — ID узлов в порядке объявления (для детерминированных обходов).
	order []string

	// outgoing/incoming — рёбра по ID узла.
	outgoing map[string][]*domain.Edge
	incoming map[string][]*domain.Edge

	roots  []string
	leaves []string
}

// Build строит и валидирует граф.
//
// Возвращает ValidationError, если:
//   - список узлов пуст или узел без ID
//   - ID узлов повторяются
//   - ребро ссылается на несуществующий узел
//
// Корень — узел без входящих рёбер (членство в группе игнорируется).
// Лист — узел без исходящих рёбер И не участник группы. Асимметрия
// намеренная: так ведёт себя редактор, из которого приходят документы.
func Build(nodes []domain.Node, edges []domain.Edge) (*Graph, error) {
	if len(nodes) == 0 {
		return nil, NewValidationError("", "", "flow has no nodes", ErrEmptyNodes)
	}

	g := &Graph{
		nodes:    make(map[string]*domain.Node, len(nodes)),
		order:    make([]string, 0, len(nodes)),
		outgoing: make(map[string][]*domain.Edge),
		incoming: make(map[string][]*domain.Edge),
	}

	// Первый проход: индексируем узлы.
	for i := range nodes {
		node := &nodes[i]

		if node.ID == "" {
			return nil, NewValidationError("", "", "node has empty ID", ErrEmptyNodeID)
		}
		if _, exists := g.nodes[node.ID]; exists {
			return nil, NewValidationError(node.ID, "",
				fmt.Sprintf("duplicate node ID: %s", node.ID), ErrDuplicateNodeID)
		}

		g.nodes[node.ID] = node
		g.order = append(g.order, node.ID)
	}

	// Второй проход: индексируем рёбра.
	for i := range edges {
		edge := &edges[i]

		if _, exists := g.nodes[edge.Source]; !exists {
			return nil, NewValidationError("", edge.ID,
				fmt.Sprintf("source references unknown node: %s", edge.Source), ErrDanglingEdge)
		}
		if _, exists := g.nodes[edge.Target]; !exists {
			return nil, NewValidationError("", edge.ID,
				fmt.Sprintf("target references unknown node: %s", edge.Target), ErrDanglingEdge)
		}

		g.outgoing[edge.Source] = append(g.outgoing[edge.Source], edge)
		g.incoming[edge.Target] = append(g.incoming[edge.Target], edge)
	}

	g.partition()

	return g, nil
}

// partition вычисляет корни и листья.
func (g *Graph) partition() {
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			g.roots = append(g.roots, id)
		}
		if len(g.outgoing[id]) == 0 && !g.nodes[id].GroupMember {
			g.leaves = append(g.leaves, id)
		}
	}
}

// Node возвращает узел по ID или nil.
func (g *Graph) Node(id string) *domain.Node {
	return g.nodes[id]
}

// NodeIDs возвращает ID всех узлов в порядке объявления.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}

// Roots возвращает ID корневых узлов.
func (g *Graph) Roots() []string {
	return g.roots
}

// Leaves возвращает ID листовых узлов.
func (g *Graph) Leaves() []string {
	return g.leaves
}

// Outgoing возвращает исходящие рёбра узла.
func (g *Graph) Outgoing(id string) []*domain.Edge {
	return g.outgoing[id]
}

// Incoming возвращает входящие рёбра узла.
func (g *Graph) Incoming(id string) []*domain.Edge {
	return g.incoming[id]
}

// InDegree возвращает количество входящих рёбер узла.
// Определяет, сколько входов узел должен дождаться перед запуском.
func (g *Graph) InDegree(id string) int {
	return len(g.incoming[id])
}

// Size возвращает количество узлов графа.
func (g *Graph) Size() int {
	return len(g.nodes)
}
