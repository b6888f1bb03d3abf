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

func httpRequest(config map[string]any, input any) *Request {
	node := &domain.Node{ID: "h1", Type: NodeTypeHTTP, Data: config}
	var inputs []any
	if input != nil {
		inputs = []any{input}
	}
	return NewRequest(node, engine.NewExecutionContext(), inputs)
}

func TestHTTP_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewHTTPNode(nil)
	resp, err := n.Execute(context.Background(), httpRequest(map[string]any{"url": srv.URL}, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := resp.Output.(map[string]any)
	if out["status_code"] != 200 {
		t.Errorf("status_code: got %v", out["status_code"])
	}
	body := out["body"].(map[string]any)
	if body["ok"] != true {
		t.Errorf("body: got %v", body)
	}
}

func TestHTTP_PostBodyAndHeaders(t *testing.T) {
	var gotAuth, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	n := NewHTTPNode(nil)
	config := map[string]any{
		"url":     srv.URL,
		"method":  "post",
		"headers": map[string]any{"Authorization": "Bearer token"},
		"body":    map[string]any{"k": "v"},
	}
	resp, err := n.Execute(context.Background(), httpRequest(config, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer token" {
		t.Errorf("Authorization: got %q", gotAuth)
	}
	// Content-Type выставляется автоматически для JSON body
	if gotContentType != "application/json" {
		t.Errorf("Content-Type: got %q", gotContentType)
	}
	out := resp.Output.(map[string]any)
	if out["status_code"] != 201 {
		t.Errorf("status_code: got %v", out["status_code"])
	}
}

func TestHTTP_InputAsBody(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 256)
		n, _ := r.Body.Read(buf)
		gotBody = string(buf[:n])
	}))
	defer srv.Close()

	n := NewHTTPNode(nil)
	config := map[string]any{
		"url":            srv.URL,
		"method":         "POST",
		"useInputAsBody": true,
	}
	_, err := n.Execute(context.Background(), httpRequest(config, "upstream output"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody != "upstream output" {
		t.Errorf("body: got %q", gotBody)
	}
}

func TestHTTP_InvalidURL(t *testing.T) {
	n := NewHTTPNode(nil)

	for _, badURL := range []string{"", "not a url", "ftp://example.com/x", "http://"} {
		_, err := n.Execute(context.Background(), httpRequest(map[string]any{"url": badURL}, nil))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("url %q: expected ErrInvalidConfig, got %v", badURL, err)
		}
	}
}
