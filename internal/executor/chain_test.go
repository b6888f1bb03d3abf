package executor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/shaiso/Nodeflow/internal/domain"
)

// memoryStore — хранилище flows/chains в памяти для тестов.
type memoryStore struct {
	flows        map[string]*domain.Flow
	chainStatus  domain.ChainStatus
	flowStatuses map[string]domain.FlowStatus
}

func newMemoryStore(flows ...*domain.Flow) *memoryStore {
	s := &memoryStore{
		flows:        make(map[string]*domain.Flow),
		flowStatuses: make(map[string]domain.FlowStatus),
	}
	for _, f := range flows {
		s.flows[f.ID] = f
	}
	return s
}

func (s *memoryStore) GetFlow(_ context.Context, _, flowID string) (*domain.Flow, error) {
	f, ok := s.flows[flowID]
	if !ok {
		return nil, fmt.Errorf("no such flow: %s", flowID)
	}
	return f, nil
}

func (s *memoryStore) SetFlowResults(_ context.Context, _, flowID string, results []domain.NodeResult) error {
	s.flows[flowID].LastResults = results
	return nil
}

func (s *memoryStore) SetFlowStatus(_ context.Context, _, flowID string, status domain.FlowStatus) error {
	s.flowStatuses[flowID] = status
	return nil
}

func (s *memoryStore) SetChainStatus(_ context.Context, _ string, status domain.ChainStatus) error {
	s.chainStatus = status
	return nil
}

// passthroughFlow — flow из одного input-узла: выход равен входу.
func passthroughFlow(id string, inputs []any) *domain.Flow {
	return &domain.Flow{
		ID:     id,
		Name:   id,
		Nodes:  []domain.Node{{ID: "in", Type: "input"}},
		Inputs: inputs,
	}
}

// staticFlow — flow, всегда выдающий сконфигурированное значение.
func staticFlow(id string, value any) *domain.Flow {
	return &domain.Flow{
		ID:   id,
		Name: id,
		Nodes: []domain.Node{
			{ID: "in", Type: "input", Data: map[string]any{"value": value}},
		},
	}
}

// failingFlow — flow из одного всегда падающего узла.
func failingFlow(id string) *domain.Flow {
	return &domain.Flow{
		ID:    id,
		Name:  id,
		Nodes: []domain.Node{{ID: "bad", Type: "boom"}},
	}
}

func newChainExecutor(store FlowStore) *ChainExecutor {
	return NewChainExecutor(ChainExecutorConfig{
		Flows: NewFlowExecutor(FlowExecutorConfig{Registry: testRegistry()}),
		Store: store,
	})
}

// recordChainSink запоминает опубликованные статусы chain.
type recordChainSink struct {
	statuses []domain.ChainStatus
}

func (s *recordChainSink) ChainStateChanged(_ context.Context, _ string, status domain.ChainStatus) {
	s.statuses = append(s.statuses, status)
}

func TestChain_ExactPlaceholderPreservesType(t *testing.T) {
	// F1 выдаёт объект; вход F2 — ровно один плейсхолдер,
	// F2 должен получить объект, а не строку.
	f1 := staticFlow("F1", map[string]any{"x": float64(1)})
	f2 := passthroughFlow("F2", []any{"${F1.result}"})
	store := newMemoryStore(f1, f2)

	chain := domain.NewFlowChain("c", []string{"F1", "F2"})
	chain.SelectedFlowID = "F2"

	e := newChainExecutor(store)
	result, err := e.RunChain(context.Background(), chain, nil, Callbacks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(result.Results))
	}
	got, ok := result.Results[0].Result.(map[string]any)
	if !ok {
		t.Fatalf("exact placeholder must preserve type, got %T", result.Results[0].Result)
	}
	if got["x"] != float64(1) {
		t.Errorf("forwarded object: got %v", got)
	}
}

func TestChain_EmbeddedPlaceholderStringifies(t *testing.T) {
	f1 := staticFlow("F1", map[string]any{"x": float64(1)})
	f2 := passthroughFlow("F2", []any{"val: ${F1.result}"})
	store := newMemoryStore(f1, f2)

	chain := domain.NewFlowChain("c", []string{"F1", "F2"})
	chain.SelectedFlowID = "F2"

	e := newChainExecutor(store)
	result, err := e.RunChain(context.Background(), chain, nil, Callbacks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Results[0].Result != `val: {"x":1}` {
		t.Errorf("embedded placeholder: got %v", result.Results[0].Result)
	}
}

func TestChain_DefaultForwarding(t *testing.T) {
	// Без плейсхолдеров входы F2 полностью замещаются
	// результатами F1.
	f1 := staticFlow("F1", "from-f1")
	f2 := passthroughFlow("F2", []any{"stored-input"})
	store := newMemoryStore(f1, f2)

	chain := domain.NewFlowChain("c", []string{"F1", "F2"})
	chain.SelectedFlowID = "F2"

	e := newChainExecutor(store)
	result, err := e.RunChain(context.Background(), chain, nil, Callbacks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Results[0].Result != "from-f1" {
		t.Errorf("default forwarding: got %v", result.Results[0].Result)
	}
}

func TestChain_OverrideInputsFirstFlowOnly(t *testing.T) {
	f1 := passthroughFlow("F1", []any{"stored"})
	store := newMemoryStore(f1)

	chain := domain.NewFlowChain("c", []string{"F1"})
	chain.SelectedFlowID = "F1"

	e := newChainExecutor(store)
	result, err := e.RunChain(context.Background(), chain, []any{"override"}, Callbacks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Results[0].Result != "override" {
		t.Errorf("override inputs must replace stored, got %v", result.Results[0].Result)
	}
}

func TestChain_FailFast(t *testing.T) {
	f1 := failingFlow("F1")
	f2 := staticFlow("F2", "never")
	store := newMemoryStore(f1, f2)

	chain := domain.NewFlowChain("c", []string{"F1", "F2"})
	chain.SelectedFlowID = "F2"

	var failedFlowID string
	cb := Callbacks{
		OnError: func(flowID string, _ error) { failedFlowID = flowID },
	}

	e := newChainExecutor(store)
	_, err := e.RunChain(context.Background(), chain, nil, cb)
	if !errors.Is(err, ErrChainHalted) {
		t.Fatalf("expected ErrChainHalted, got %v", err)
	}

	if chain.Status != domain.ChainStatusError {
		t.Errorf("chain status: got %s", chain.Status)
	}
	if store.chainStatus != domain.ChainStatusError {
		t.Errorf("persisted chain status: got %s", store.chainStatus)
	}
	if failedFlowID != "F1" {
		t.Errorf("OnError flow id: got %q", failedFlowID)
	}

	// F2 не выполнялся
	if f2.LastResults != nil {
		t.Error("F2 must never execute after F1 failed")
	}
}

func TestChain_Callbacks(t *testing.T) {
	f1 := staticFlow("F1", "v")
	store := newMemoryStore(f1)

	chain := domain.NewFlowChain("c", []string{"F1"})
	chain.SelectedFlowID = "F1"

	var order []string
	cb := Callbacks{
		OnChainStart:    func(string) { order = append(order, "chain-start") },
		OnFlowStart:     func(string) { order = append(order, "flow-start") },
		OnFlowComplete:  func(string, []domain.NodeResult) { order = append(order, "flow-complete") },
		OnChainComplete: func([]domain.NodeResult) { order = append(order, "chain-complete") },
	}

	e := newChainExecutor(store)
	if _, err := e.RunChain(context.Background(), chain, nil, cb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"chain-start", "flow-start", "flow-complete", "chain-complete"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("callback order: got %v, want %v", order, want)
	}
}

func TestChain_PlaceholderResolvesPersistedResult(t *testing.T) {
	// Плейсхолдер может ссылаться на flow, до которого текущий запуск
	// ещё не дошёл: берётся его сохранённый результат прошлого запуска.
	fa := staticFlow("FA", "a")
	fb := passthroughFlow("FB", []any{"${FC.result}"})
	fc := staticFlow("FC", "fresh")
	fc.LastResults = []domain.NodeResult{{
		NodeID:   "in",
		NodeType: "input",
		Outputs:  []any{"stored-c"},
		Result:   "stored-c",
	}}
	store := newMemoryStore(fa, fb, fc)

	chain := domain.NewFlowChain("c", []string{"FA", "FB", "FC"})
	chain.SelectedFlowID = "FB"

	e := newChainExecutor(store)
	result, err := e.RunChain(context.Background(), chain, nil, Callbacks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Results) != 1 || result.Results[0].Result != "stored-c" {
		t.Errorf("placeholder must resolve against persisted results, got %v", result.Results)
	}
}

func TestChain_EmitsChainStateEvents(t *testing.T) {
	f1 := staticFlow("F1", "v")
	store := newMemoryStore(f1)

	chain := domain.NewFlowChain("c", []string{"F1"})

	sink := &recordChainSink{}
	e := NewChainExecutor(ChainExecutorConfig{
		Flows:  NewFlowExecutor(FlowExecutorConfig{Registry: testRegistry()}),
		Store:  store,
		Events: sink,
	})

	if _, err := e.RunChain(context.Background(), chain, nil, Callbacks{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []domain.ChainStatus{domain.ChainStatusRunning, domain.ChainStatusSuccess}
	if !reflect.DeepEqual(sink.statuses, want) {
		t.Errorf("chain events: got %v, want %v", sink.statuses, want)
	}
}

func TestChain_EmitsErrorEventOnFailure(t *testing.T) {
	f1 := failingFlow("F1")
	store := newMemoryStore(f1)

	chain := domain.NewFlowChain("c", []string{"F1"})

	sink := &recordChainSink{}
	e := NewChainExecutor(ChainExecutorConfig{
		Flows:  NewFlowExecutor(FlowExecutorConfig{Registry: testRegistry()}),
		Store:  store,
		Events: sink,
	})

	if _, err := e.RunChain(context.Background(), chain, nil, Callbacks{}); !errors.Is(err, ErrChainHalted) {
		t.Fatalf("expected ErrChainHalted, got %v", err)
	}

	want := []domain.ChainStatus{domain.ChainStatusRunning, domain.ChainStatusError}
	if !reflect.DeepEqual(sink.statuses, want) {
		t.Errorf("chain events: got %v, want %v", sink.statuses, want)
	}
}

func TestChain_SelectedFlowUnsetYieldsEmpty(t *testing.T) {
	f1 := staticFlow("F1", "v")
	store := newMemoryStore(f1)

	chain := domain.NewFlowChain("c", []string{"F1"})
	// SelectedFlowID не задан

	e := newChainExecutor(store)
	result, err := e.RunChain(context.Background(), chain, nil, Callbacks{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Results) != 0 {
		t.Errorf("unset selected flow must yield empty results, got %v", result.Results)
	}
}

func TestChain_Empty(t *testing.T) {
	chain := domain.NewFlowChain("c", nil)

	e := newChainExecutor(newMemoryStore())
	if _, err := e.RunChain(context.Background(), chain, nil, Callbacks{}); !errors.Is(err, ErrEmptyChain) {
		t.Errorf("expected ErrEmptyChain, got %v", err)
	}
}
