package cli

import (
	"bytes"
	"strings"
	"testing"
)

func newTestOutput(jsonMode bool) (*Output, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Output{jsonMode: jsonMode, w: &buf, errW: &buf}, &buf
}

func TestNodeResultsTable(t *testing.T) {
	out, buf := newTestOutput(false)

	results := []map[string]any{
		{
			"node_id":   "n1",
			"node_name": "generate",
			"node_type": "text_model",
			"result":    "line one\nline two",
		},
		{
			"node_id":   "n2",
			"node_name": "collect",
			"node_type": "output",
			"result":    map[string]any{"x": 1},
		},
	}
	out.NodeResults(results, results)

	got := buf.String()
	if !strings.Contains(got, "NODE") || !strings.Contains(got, "RESULT") {
		t.Errorf("missing headers:\n%s", got)
	}
	// Переводы строк сжимаются до пробелов
	if !strings.Contains(got, "line one line two") {
		t.Errorf("multiline result must collapse:\n%s", got)
	}
	// Не-строки сериализуются в JSON
	if !strings.Contains(got, `{"x":1}`) {
		t.Errorf("object result must render as JSON:\n%s", got)
	}
}

func TestNodeResultsTruncatesLongValues(t *testing.T) {
	out, buf := newTestOutput(false)

	long := strings.Repeat("a", 200)
	out.NodeResults([]map[string]any{
		{"node_id": "n1", "node_name": "n1", "node_type": "input", "result": long},
	}, nil)

	if strings.Contains(buf.String(), long) {
		t.Error("long result must be truncated in table mode")
	}
	if !strings.Contains(buf.String(), "...") {
		t.Error("truncated result must carry an ellipsis")
	}
}

func TestNodeResultsJSONMode(t *testing.T) {
	out, buf := newTestOutput(true)

	payload := map[string]any{"status": "success"}
	out.NodeResults(nil, payload)

	if !strings.Contains(buf.String(), `"status": "success"`) {
		t.Errorf("json mode must print the full payload:\n%s", buf.String())
	}
}
