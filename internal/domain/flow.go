package domain

import (
	"time"

	"github.com/google/uuid"
)

// Flow — один исполняемый граф узлов.
//
// Flow создаётся импортом документа редактора и далее меняется только
// структурными правками (добавление/удаление узлов и рёбер). Результат
// последнего запуска сохраняется в LastResults и используется следующими
// звеньями цепочки (FlowChain) для проброса данных.
type Flow struct {
	// ID — уникальный идентификатор flow.
	ID string `json:"id"`

	// Name — имя flow.
	Name string `json:"name"`

	// Nodes — узлы графа.
	Nodes []Node `json:"nodes"`

	// Edges — рёбра графа.
	Edges []Edge `json:"edges"`

	// Inputs — сохранённые входные значения для корневых узлов.
	// Могут содержать плейсхолдеры ${flowId.result}.
	Inputs []any `json:"inputs,omitempty"`

	// Status — статус последнего запуска.
	Status FlowStatus `json:"status"`

	// LastResults — результаты листовых узлов последнего запуска.
	// Единственное долговременное состояние запуска: ExecutionContext
	// создаётся заново на каждый run и отбрасывается, а LastResults
	// переживают его и потребляются последующими flows цепочки.
	LastResults []NodeResult `json:"last_results,omitempty"`

	// CreatedAt — время создания flow.
	CreatedAt time.Time `json:"created_at"`
}

// NewFlow создаёт Flow из импортированного документа.
func NewFlow(doc *FlowDocument) *Flow {
	return &Flow{
		ID:        uuid.NewString(),
		Name:      doc.Name,
		Nodes:     doc.Nodes,
		Edges:     doc.Edges,
		Status:    FlowStatusIdle,
		CreatedAt: time.Now(),
	}
}

// Node возвращает узел по ID или nil.
func (f *Flow) Node(id string) *Node {
	for i := range f.Nodes {
		if f.Nodes[i].ID == id {
			return &f.Nodes[i]
		}
	}
	return nil
}

// ResultValue возвращает сохранённый результат flow как единое значение.
//
// Ровно один листовой результат — его Result (тип сохраняется),
// несколько — список Result-значений, ни одного — nil.
// Именно это значение подставляется вместо ${flowId.result}.
func (f *Flow) ResultValue() any {
	switch len(f.LastResults) {
	case 0:
		return nil
	case 1:
		return f.LastResults[0].Result
	default:
		values := make([]any, len(f.LastResults))
		for i := range f.LastResults {
			values[i] = f.LastResults[i].Result
		}
		return values
	}
}

// NodeResult — нормализованный результат одного узла после запуска.
type NodeResult struct {
	// NodeID — идентификатор узла.
	NodeID string `json:"node_id"`

	// NodeName — отображаемое имя: метка узла, иначе тип, иначе ID.
	NodeName string `json:"node_name"`

	// NodeType — тип узла.
	NodeType string `json:"node_type"`

	// Outputs — все выходные значения узла.
	Outputs []any `json:"outputs"`

	// Result — единственный элемент Outputs, если он ровно один,
	// иначе весь список.
	Result any `json:"result"`
}

// NewNodeResult строит NodeResult для узла по списку его выходов.
func NewNodeResult(node *Node, outputs []any) NodeResult {
	r := NodeResult{
		NodeID:   node.ID,
		NodeName: node.Label(),
		NodeType: node.Type,
		Outputs:  outputs,
	}
	if len(outputs) == 1 {
		r.Result = outputs[0]
	} else {
		r.Result = anySlice(outputs)
	}
	return r
}

// anySlice нормализует пустой список к пустому значению, а не nil,
// чтобы сериализация давала [] вместо null.
func anySlice(outputs []any) any {
	if outputs == nil {
		return []any{}
	}
	return outputs
}
