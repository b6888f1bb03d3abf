package nodes

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shaiso/Nodeflow/internal/domain"
	"github.com/shaiso/Nodeflow/internal/engine"
)

func crawlerRequest(config map[string]any, input any) *Request {
	node := &domain.Node{ID: "c1", Type: NodeTypeCrawler, Data: config}
	var inputs []any
	if input != nil {
		inputs = []any{input}
	}
	return NewRequest(node, engine.NewExecutionContext(), inputs)
}

const testPage = `<html><body>
<h1>Заголовок</h1>
<div class="article">  Первый   абзац.
Второй абзац.  </div>
<a href="/one">one</a>
<a href="/two">two</a>
</body></html>`

func TestCrawler_ExtractSelector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	n := NewCrawlerNode(nil)
	resp, err := n.Execute(context.Background(),
		crawlerRequest(map[string]any{"url": srv.URL, "extractSelector": ".article"}, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Пробельные последовательности схлопнуты
	if resp.Output != "Первый абзац. Второй абзац." {
		t.Errorf("got %q", resp.Output)
	}
}

func TestCrawler_ExtractRules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	n := NewCrawlerNode(nil)
	config := map[string]any{
		"url": srv.URL,
		"extractRules": []any{
			map[string]any{"name": "title", "selector": "h1", "target": "text"},
			map[string]any{"name": "links", "selector": "a", "target": "attribute",
				"attribute": "href", "multiple": true},
			map[string]any{"name": "missing", "selector": ".nope", "target": "text"},
		},
	}

	resp, err := n.Execute(context.Background(), crawlerRequest(config, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := resp.Output.(map[string]any)
	if out["title"] != "Заголовок" {
		t.Errorf("title: got %v", out["title"])
	}
	links := out["links"].([]any)
	if len(links) != 2 || links[0] != "/one" || links[1] != "/two" {
		t.Errorf("links: got %v", links)
	}
	if out["missing"] != nil {
		t.Errorf("missing selector must yield nil, got %v", out["missing"])
	}
}

func TestCrawler_URLFromInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>from input</body></html>`))
	}))
	defer srv.Close()

	n := NewCrawlerNode(nil)
	resp, err := n.Execute(context.Background(), crawlerRequest(nil, srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Output != "from input" {
		t.Errorf("got %q", resp.Output)
	}
}

func TestCrawler_InvalidURL(t *testing.T) {
	n := NewCrawlerNode(nil)

	_, err := n.Execute(context.Background(), crawlerRequest(map[string]any{"url": "ftp://x"}, nil))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	_, err = n.Execute(context.Background(), crawlerRequest(nil, nil))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("missing url: expected ErrInvalidConfig, got %v", err)
	}
}

func TestCrawler_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewCrawlerNode(nil)
	_, err := n.Execute(context.Background(), crawlerRequest(map[string]any{"url": srv.URL}, nil))
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}
}

func TestSanitizeContent(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  a  b  ", "a b"},
		{"line1\n\nline2", "line1 line2"},
		{"tab\tseparated", "tab separated"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := sanitizeContent(tc.in); got != tc.want {
			t.Errorf("sanitizeContent(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
