package engine

import (
	"reflect"
	"testing"
)

func TestHasRefs(t *testing.T) {
	cases := []struct {
		name  string
		value any
		want  bool
	}{
		{"plain string", "hello", false},
		{"exact ref", "${flow-1.result}", true},
		{"embedded ref", "prefix ${flow-1.result} suffix", true},
		{"nested map", map[string]any{"prompt": "${f.result}"}, true},
		{"nested slice", []any{1, "x", "${f.result}"}, true},
		{"non-string", 42, false},
		{"wrong suffix", "${flow-1.output}", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasRefs(tc.value); got != tc.want {
				t.Errorf("HasRefs(%v) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestResolveRefs_ExactMatchPreservesType(t *testing.T) {
	results := map[string]any{
		"flow-1": map[string]any{"answer": float64(42)},
	}

	// Строка из одного плейсхолдера заменяется сырым результатом
	got := ResolveRefs("${flow-1.result}", results)
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("exact match must preserve the result type, got %T", got)
	}
	if m["answer"] != float64(42) {
		t.Errorf("unexpected resolved value: %v", m)
	}
}

func TestResolveRefs_EmbeddedStringifies(t *testing.T) {
	results := map[string]any{
		"f1": "world",
		"f2": map[string]any{"k": "v"},
	}

	// Плейсхолдер внутри строки подставляется JSON-текстом
	got := ResolveRefs("hello ${f1.result}!", results)
	if got != `hello "world"!` {
		t.Errorf("embedded string ref: got %q", got)
	}

	got = ResolveRefs("data: ${f2.result}", results)
	if got != `data: {"k":"v"}` {
		t.Errorf("embedded object ref: got %q", got)
	}
}

func TestResolveRefs_UnresolvedLeftVerbatim(t *testing.T) {
	results := map[string]any{}

	got := ResolveRefs("${missing.result}", results)
	if got != "${missing.result}" {
		t.Errorf("unresolved ref must stay verbatim, got %v", got)
	}

	got = ResolveRefs("before ${missing.result} after", results)
	if got != "before ${missing.result} after" {
		t.Errorf("unresolved embedded ref must stay verbatim, got %v", got)
	}
}

func TestResolveRefs_Recursive(t *testing.T) {
	results := map[string]any{"f": "ok"}

	input := map[string]any{
		"direct": "${f.result}",
		"nested": []any{"${f.result}", map[string]any{"deep": "x ${f.result}"}},
		"plain":  123,
	}

	got := ResolveRefs(input, results).(map[string]any)

	if got["direct"] != "ok" {
		t.Errorf("direct: got %v", got["direct"])
	}
	nested := got["nested"].([]any)
	if nested[0] != "ok" {
		t.Errorf("nested[0]: got %v", nested[0])
	}
	deep := nested[1].(map[string]any)
	if deep["deep"] != `x "ok"` {
		t.Errorf("deep: got %v", deep["deep"])
	}
	if got["plain"] != 123 {
		t.Errorf("plain values must pass through, got %v", got["plain"])
	}

	// Исходная структура не мутируется
	if !reflect.DeepEqual(input["direct"], "${f.result}") {
		t.Error("ResolveRefs must not mutate its input")
	}
}
