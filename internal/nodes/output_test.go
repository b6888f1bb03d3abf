package nodes

import (
	"context"
	"strings"
	"testing"

	"github.com/shaiso/Nodeflow/internal/domain"
	"github.com/shaiso/Nodeflow/internal/engine"
)

// capturePublisher запоминает опубликованный контент.
type capturePublisher struct {
	nodeID  string
	content string
}

func (p *capturePublisher) PublishContent(nodeID, content string) {
	p.nodeID = nodeID
	p.content = content
}

func outputRequest(config map[string]any, input any) *Request {
	node := &domain.Node{ID: "out-1", Type: NodeTypeOutput, Data: config}
	return NewRequest(node, engine.NewExecutionContext(), []any{input})
}

func TestOutput_Fallbacks(t *testing.T) {
	n := NewOutputNode(nil)

	cases := []struct {
		name  string
		input any
		want  string
	}{
		{"nil input", nil, "[No input provided]"},
		{"empty string", "", "[Empty string received]"},
		{"whitespace string", "   \n\t", "[Empty string received]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := outputRequest(nil, tc.input)
			// NewRequest берёт первый вход; для nil-случая входов нет вовсе
			if tc.input == nil {
				req.Input = nil
			}
			resp, err := n.Execute(context.Background(), req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Output != tc.want {
				t.Errorf("got %q, want %q", resp.Output, tc.want)
			}
		})
	}
}

func TestOutput_JSONFormat(t *testing.T) {
	n := NewOutputNode(nil)

	resp, err := n.Execute(context.Background(),
		outputRequest(map[string]any{"format": "json"}, map[string]any{"a": float64(1)}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok := resp.Output.(string)
	if !ok {
		t.Fatalf("expected string output, got %T", resp.Output)
	}
	// Pretty JSON с отступом в два пробела
	if !strings.Contains(got, "{\n  \"a\": 1\n}") {
		t.Errorf("expected 2-space indented JSON, got %q", got)
	}

	// Строка в json-режиме проходит без изменений
	resp, _ = n.Execute(context.Background(),
		outputRequest(map[string]any{"format": "json"}, `{"already":"json"}`))
	if resp.Output != `{"already":"json"}` {
		t.Errorf("string input must pass through, got %q", resp.Output)
	}
}

func TestOutput_TextFormat(t *testing.T) {
	n := NewOutputNode(nil)

	// Извлечение поля content из объекта
	resp, err := n.Execute(context.Background(),
		outputRequest(map[string]any{"format": "text"},
			map[string]any{"content": "hello", "extra": 1}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Output != "hello" {
		t.Errorf("expected content field, got %q", resp.Output)
	}

	// Поле text как запасной вариант
	resp, _ = n.Execute(context.Background(),
		outputRequest(nil, map[string]any{"text": "world"}))
	if resp.Output != "world" {
		t.Errorf("expected text field, got %q", resp.Output)
	}

	// Примитив приводится к строке
	resp, _ = n.Execute(context.Background(), outputRequest(nil, 42))
	if resp.Output != "42" {
		t.Errorf("expected string coercion, got %q", resp.Output)
	}
}

func TestOutput_Publishes(t *testing.T) {
	pub := &capturePublisher{}
	n := NewOutputNode(pub)

	_, err := n.Execute(context.Background(), outputRequest(nil, "payload"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Публикация идёт независимо от возвращаемого значения
	if pub.nodeID != "out-1" || pub.content != "payload" {
		t.Errorf("expected published content, got %q for node %q", pub.content, pub.nodeID)
	}
}
