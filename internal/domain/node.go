package domain

// Node — узел графа flow.
//
// Узел описывает одну операцию: HTTP-запрос, вызов LLM, краулинг страницы,
// слияние данных или вывод результата. Семантика определяется полем Type,
// конфигурация — произвольным payload в Data.
type Node struct {
	// ID — уникальный идентификатор узла в рамках flow.
	ID string `json:"id"`

	// Type — тип узла: "input", "output", "http", "crawler", "merger", "llm".
	Type string `json:"type"`

	// Name — человекочитаемая метка узла (может быть пустой).
	Name string `json:"name,omitempty"`

	// Data — конфигурация узла (зависит от типа).
	// Для http: method, url, headers, body
	// Для merger: mode, separator, property_names и т.д.
	Data map[string]any `json:"data,omitempty"`

	// Position — позиция узла на канвасе редактора.
	// Движком не используется, сохраняется для round-trip импорта/экспорта.
	Position Position `json:"position"`

	// GroupMember — true, если узел входит в группу.
	// Участники группы не считаются листьями при сборе результатов.
	GroupMember bool `json:"group_member,omitempty"`
}

// Position — координаты узла на канвасе.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Label возвращает отображаемое имя узла: Name, иначе Type, иначе ID.
func (n *Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	if n.Type != "" {
		return n.Type
	}
	return n.ID
}

// Edge — ребро графа flow.
//
// Ребро направлено от Source к Target. Оба конца обязаны ссылаться
// на существующие узлы (проверяется при построении графа).
type Edge struct {
	// ID — идентификатор ребра.
	ID string `json:"id"`

	// Source — ID узла-источника.
	Source string `json:"source"`

	// Target — ID узла-приёмника.
	Target string `json:"target"`

	// SourceHandle — именованный выход источника (для узлов с несколькими выходами).
	SourceHandle string `json:"source_handle,omitempty"`

	// TargetHandle — именованный вход приёмника (для узлов с несколькими входами).
	TargetHandle string `json:"target_handle,omitempty"`
}

// FlowDocument — импортируемый документ flow (формат внешнего редактора).
type FlowDocument struct {
	// Name — имя flow.
	Name string `json:"name"`

	// Nodes — узлы графа.
	Nodes []Node `json:"nodes"`

	// Edges — рёбра графа.
	Edges []Edge `json:"edges"`
}
