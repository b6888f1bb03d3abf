package nodes

import (
	"context"
	"reflect"
	"testing"

	"github.com/shaiso/Nodeflow/internal/domain"
	"github.com/shaiso/Nodeflow/internal/engine"
)

func mergerRequest(t *testing.T, run *engine.ExecutionContext, config map[string]any, inputs ...any) *Request {
	t.Helper()
	node := &domain.Node{ID: "M", Type: NodeTypeMerger, Data: config}
	return NewRequest(node, run, inputs)
}

func TestMerger_ConcatFlatten(t *testing.T) {
	run := engine.NewExecutionContext()
	m := NewMergerNode()

	// Последовательные доставки ["a"], затем ["b","c"]
	resp, err := m.Execute(context.Background(),
		mergerRequest(t, run, map[string]any{"mode": "concat", "arrayStrategy": "flatten"},
			[]any{"a"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(resp.Output, []any{"a"}) {
		t.Errorf("after first delivery: got %v", resp.Output)
	}

	resp, err = m.Execute(context.Background(),
		mergerRequest(t, run, map[string]any{"mode": "concat", "arrayStrategy": "flatten"},
			[]any{"b", "c"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(resp.Output, []any{"a", "b", "c"}) {
		t.Errorf("flatten: got %v, want [a b c]", resp.Output)
	}
}

func TestMerger_ConcatPreserve(t *testing.T) {
	run := engine.NewExecutionContext()
	m := NewMergerNode()
	cfg := map[string]any{"mode": "concat", "arrayStrategy": "preserve"}

	m.Execute(context.Background(), mergerRequest(t, run, cfg, []any{"a"}))
	resp, err := m.Execute(context.Background(), mergerRequest(t, run, cfg, []any{"b", "c"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []any{[]any{"a"}, []any{"b", "c"}}
	if !reflect.DeepEqual(resp.Output, want) {
		t.Errorf("preserve: got %v, want %v", resp.Output, want)
	}
}

func TestMerger_Join(t *testing.T) {
	run := engine.NewExecutionContext()
	m := NewMergerNode()
	cfg := map[string]any{"mode": "join", "separator": ","}

	resp, err := m.Execute(context.Background(), mergerRequest(t, run, cfg, 1, 2, 3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Output != "1,2,3" {
		t.Errorf("join: got %v, want 1,2,3", resp.Output)
	}
}

func TestMerger_Object(t *testing.T) {
	run := engine.NewExecutionContext()
	m := NewMergerNode()
	cfg := map[string]any{
		"mode":          "object",
		"propertyNames": []any{"x", "y"},
	}

	resp, err := m.Execute(context.Background(), mergerRequest(t, run, cfg, 10, 20, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := resp.Output.(map[string]any)
	if !ok {
		t.Fatalf("expected map output, got %T", resp.Output)
	}
	if got["x"] != 10 || got["y"] != 20 || got["input_3"] != 30 {
		t.Errorf("object: got %v", got)
	}
}

func TestMerger_ObjectSourceMeta(t *testing.T) {
	run := engine.NewExecutionContext()
	m := NewMergerNode()

	input := map[string]any{
		"value": 1,
		"_meta": map[string]any{"sourceId": "nodeA"},
	}
	resp, err := m.Execute(context.Background(),
		mergerRequest(t, run, map[string]any{"mode": "object"}, input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := resp.Output.(map[string]any)
	if _, ok := got["input_from_nodeA"]; !ok {
		t.Errorf("expected key input_from_nodeA, got %v", got)
	}
}

func TestMerger_StaleRunReset(t *testing.T) {
	m := NewMergerNode()
	cfg := map[string]any{"mode": "concat"}

	// Запуск E1 накапливает значение
	run1 := engine.NewExecutionContext()
	m.Execute(context.Background(), mergerRequest(t, run1, cfg, "old"))

	// Первый вызов запуска E2 не должен видеть данных E1, даже если
	// аккумулятор физически разделяет контекст
	run2 := engine.NewExecutionContext()
	run2.Accumulate("M", run1.ExecutionID(), []any{"leaked"})

	resp, err := m.Execute(context.Background(), mergerRequest(t, run2, cfg, "fresh"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(resp.Output, []any{"fresh"}) {
		t.Errorf("stale accumulator must reset, got %v", resp.Output)
	}
}

func TestMerger_WaitForAllNotReady(t *testing.T) {
	run := engine.NewExecutionContext()
	m := NewMergerNode()
	cfg := map[string]any{"mode": "concat", "waitForAll": true}

	// Доставка без единого ненулевого входа: узел ещё не готов
	resp, err := m.Execute(context.Background(), mergerRequest(t, run, cfg, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.NotReady {
		t.Error("expected NotReady response for empty accumulator")
	}
}

func TestMerger_StaticItems(t *testing.T) {
	run := engine.NewExecutionContext()
	m := NewMergerNode()
	cfg := map[string]any{"mode": "concat", "items": []any{"extra"}}

	resp, err := m.Execute(context.Background(), mergerRequest(t, run, cfg, "in"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(resp.Output, []any{"in", "extra"}) {
		t.Errorf("static items must be appended, got %v", resp.Output)
	}
}

func TestMerger_UnknownModeFallsBackToConcat(t *testing.T) {
	run := engine.NewExecutionContext()
	m := NewMergerNode()

	resp, err := m.Execute(context.Background(),
		mergerRequest(t, run, map[string]any{"mode": "bogus"}, "a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(resp.Output, []any{"a"}) {
		t.Errorf("unknown mode must behave as concat, got %v", resp.Output)
	}
}
