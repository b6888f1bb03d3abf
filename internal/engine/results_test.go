package engine

import (
	"testing"

	"github.com/shaiso/Nodeflow/internal/domain"
)

func buildTestGraph(t *testing.T, nodes []domain.Node, edges []domain.Edge) *Graph {
	t.Helper()
	g, err := Build(nodes, edges)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestCollectResults_Leaves(t *testing.T) {
	g := buildTestGraph(t,
		[]domain.Node{
			{ID: "A", Type: "input"},
			{ID: "B", Type: "output", Name: "Report"},
		},
		[]domain.Edge{{ID: "e1", Source: "A", Target: "B"}},
	)

	ec := NewExecutionContext()
	ec.MarkSuccess("A", []any{"raw"})
	ec.MarkSuccess("B", []any{"final"})

	results := CollectResults(g, ec)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	r := results[0]
	if r.NodeID != "B" || r.NodeName != "Report" || r.NodeType != "output" {
		t.Errorf("unexpected result identity: %+v", r)
	}
	if r.Result != "final" {
		t.Errorf("expected single output collapsed to Result, got %v", r.Result)
	}
}

func TestCollectResults_GroupFallback(t *testing.T) {
	// Единственный терминальный узел состоит в группе: листьев нет,
	// срабатывает второй уровень (исходящие рёбра без учёта групп).
	g := buildTestGraph(t,
		[]domain.Node{
			{ID: "A", Type: "input"},
			{ID: "B", Type: "output", GroupMember: true},
		},
		[]domain.Edge{{ID: "e1", Source: "A", Target: "B"}},
	)

	ec := NewExecutionContext()
	ec.MarkSuccess("A", []any{"raw"})
	ec.MarkSuccess("B", []any{"grouped"})

	results := CollectResults(g, ec)
	if len(results) != 1 || results[0].NodeID != "B" {
		t.Fatalf("expected fallback to pick B, got %+v", results)
	}
}

func TestCollectResults_Failsafe(t *testing.T) {
	// Выходы есть только у нетерминального узла: первые два уровня пусты,
	// failsafe собирает всё, что дало хоть какой-то выход.
	g := buildTestGraph(t,
		[]domain.Node{
			{ID: "A", Type: "http"},
			{ID: "B", Type: "output"},
		},
		[]domain.Edge{{ID: "e1", Source: "A", Target: "B"}},
	)

	ec := NewExecutionContext()
	ec.MarkSuccess("A", []any{"one", "two"})
	// B не выполнился

	results := CollectResults(g, ec)
	if len(results) != 2 {
		t.Fatalf("expected one result per output, got %d", len(results))
	}
	if results[0].Result != "one" || results[1].Result != "two" {
		t.Errorf("unexpected failsafe results: %+v", results)
	}
}

func TestCollectResults_FailsafeCollapsesFiles(t *testing.T) {
	g := buildTestGraph(t,
		[]domain.Node{
			{ID: "A", Type: "http"},
			{ID: "B", Type: "output"},
		},
		[]domain.Edge{{ID: "e1", Source: "A", Target: "B"}},
	)

	ec := NewExecutionContext()
	ec.MarkSuccess("A", []any{
		map[string]any{"originalName": "report.pdf", "path": "/files/report.pdf", "size": 1024},
	})

	results := CollectResults(g, ec)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Result != "report.pdf (/files/report.pdf)" {
		t.Errorf("file-like output must collapse to name (path), got %v", results[0].Result)
	}
}

func TestCollectResults_SkipsFailedLeaves(t *testing.T) {
	g := buildTestGraph(t,
		[]domain.Node{
			{ID: "A", Type: "input"},
			{ID: "B", Type: "output"},
			{ID: "C", Type: "output"},
		},
		[]domain.Edge{
			{ID: "e1", Source: "A", Target: "B"},
			{ID: "e2", Source: "A", Target: "C"},
		},
	)

	ec := NewExecutionContext()
	ec.MarkSuccess("A", []any{"raw"})
	ec.MarkSuccess("B", []any{"ok"})
	ec.MarkError("C", "boom")

	results := CollectResults(g, ec)
	if len(results) != 1 || results[0].NodeID != "B" {
		t.Fatalf("failed leaf must be skipped, got %+v", results)
	}
}

func TestCollapseFileLike(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  any
	}{
		{
			name:  "name and path",
			input: map[string]any{"name": "a.txt", "path": "/tmp/a.txt"},
			want:  "a.txt (/tmp/a.txt)",
		},
		{
			name:  "originalName and url",
			input: map[string]any{"originalName": "b.png", "url": "http://x/b.png"},
			want:  "b.png (http://x/b.png)",
		},
		{
			name:  "missing path stays as is",
			input: map[string]any{"name": "c.txt"},
			want:  map[string]any{"name": "c.txt"},
		},
		{
			name:  "plain string untouched",
			input: "hello",
			want:  "hello",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := collapseFileLike(tc.input)
			switch want := tc.want.(type) {
			case string:
				if got != want {
					t.Errorf("got %v, want %v", got, want)
				}
			default:
				if _, ok := got.(map[string]any); !ok {
					t.Errorf("expected map to pass through, got %T", got)
				}
			}
		})
	}
}
