package engine

import (
	"sync"
	"testing"

	"github.com/shaiso/Nodeflow/internal/domain"
)

func TestExecutionContext_Lifecycle(t *testing.T) {
	ec := NewExecutionContext()

	if ec.ExecutionID() == "" {
		t.Fatal("execution id must not be empty")
	}

	// Неизвестный узел считается idle
	if st := ec.Status("A"); st != domain.NodeStatusIdle {
		t.Errorf("expected idle, got %s", st)
	}

	ec.MarkRunning("A")
	if st := ec.Status("A"); st != domain.NodeStatusRunning {
		t.Errorf("expected running, got %s", st)
	}

	ec.MarkSuccess("A", []any{"hello"})
	if st := ec.Status("A"); st != domain.NodeStatusSuccess {
		t.Errorf("expected success, got %s", st)
	}

	outputs, ok := ec.Output("A")
	if !ok || len(outputs) != 1 || outputs[0] != "hello" {
		t.Errorf("expected outputs [hello], got %v (ok=%v)", outputs, ok)
	}
}

func TestExecutionContext_Error(t *testing.T) {
	ec := NewExecutionContext()

	ec.MarkRunning("B")
	ec.MarkError("B", "boom")

	if st := ec.Status("B"); st != domain.NodeStatusError {
		t.Errorf("expected error, got %s", st)
	}
	if msg := ec.NodeError("B"); msg != "boom" {
		t.Errorf("expected error message, got %q", msg)
	}
	if !ec.HasErrors() {
		t.Error("HasErrors should report true")
	}

	// Выходов у упавшего узла нет
	if _, ok := ec.Output("B"); ok {
		t.Error("failed node must not expose outputs")
	}
}

func TestExecutionContext_FreshIDs(t *testing.T) {
	a := NewExecutionContext()
	b := NewExecutionContext()
	if a.ExecutionID() == b.ExecutionID() {
		t.Error("each context must get a fresh execution id")
	}
}

func TestAccumulate_StaleReset(t *testing.T) {
	ec := NewExecutionContext()

	// Накопление под старым executionId
	ec.Accumulate("M", "run-old", []any{"a", "b"})

	// Обращение с новым executionId молча сбрасывает аккумулятор
	got := ec.Accumulate("M", "run-new", []any{"c"})
	if len(got) != 1 || got[0] != "c" {
		t.Errorf("stale accumulator must be reset, got %v", got)
	}

	// Чтение под чужим executionId видит пустоту
	if items := ec.Accumulated("M", "run-old"); items != nil {
		t.Errorf("stale read must return nil, got %v", items)
	}
	if items := ec.Accumulated("M", "run-new"); len(items) != 1 {
		t.Errorf("expected 1 item, got %v", items)
	}
}

func TestAccumulate_ConcurrentNoLoss(t *testing.T) {
	ec := NewExecutionContext()
	execID := ec.ExecutionID()

	// Конкурентные доставки в один узел не теряют элементы
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ec.Accumulate("M", execID, []any{"x"})
		}()
	}
	wg.Wait()

	items := ec.Accumulated("M", execID)
	if len(items) != n {
		t.Errorf("expected %d accumulated items, got %d", n, len(items))
	}
}

func TestAccumulate_SnapshotIsolation(t *testing.T) {
	ec := NewExecutionContext()
	execID := ec.ExecutionID()

	snap := ec.Accumulate("M", execID, []any{"a"})
	snap[0] = "mutated"

	items := ec.Accumulated("M", execID)
	if items[0] != "a" {
		t.Error("mutating a returned snapshot must not affect the accumulator")
	}
}

func TestTeardown(t *testing.T) {
	ec := NewExecutionContext()

	ec.MarkRunning("A")
	ec.MarkSuccess("B", []any{1})
	ec.Accumulate("A", ec.ExecutionID(), []any{"partial"})

	ec.Teardown()

	// Застрявший running сброшен в idle, аккумулятор очищен
	if st := ec.Status("A"); st != domain.NodeStatusIdle {
		t.Errorf("running node must be reset to idle, got %s", st)
	}
	if items := ec.Accumulated("A", ec.ExecutionID()); items != nil {
		t.Errorf("accumulator of reset node must be cleared, got %v", items)
	}

	// Завершённые узлы не трогаются
	if st := ec.Status("B"); st != domain.NodeStatusSuccess {
		t.Errorf("finished node must keep its status, got %s", st)
	}
}
