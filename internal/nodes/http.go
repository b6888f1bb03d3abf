package nodes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// NodeTypeHTTP — тип http-узла.
	NodeTypeHTTP = "http"

	// Значения по умолчанию.
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBody    = 10 * 1024 * 1024 // 10 MB
)

// Ключи конфигурации http-узла.
const (
	configMethod     = "method"
	configURL        = "url"
	configHeaders    = "headers"
	configBody       = "body"
	configTimeoutMs  = "timeout"
	configUseInput   = "useInputAsBody"
)

// HTTPNode — узел HTTP-запроса.
//
// Выполняет запрос к внешнему API и возвращает результат.
//
// Конфигурация:
//
//	{
//	    "method": "POST",
//	    "url": "https://api.example.com/data",
//	    "headers": {"Authorization": "Bearer ..."},
//	    "body": {...},
//	    "useInputAsBody": true,
//	    "timeout": 30000
//	}
//
// Выход:
//
//	{
//	    "status_code": 200,
//	    "headers": {...},
//	    "body": {...}  // parsed JSON или строка
//	}
type HTTPNode struct {
	client *http.Client
}

// NewHTTPNode создаёт новый HTTPNode.
func NewHTTPNode(client *http.Client) *HTTPNode {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPNode{client: client}
}

// Type возвращает тип узла.
func (n *HTTPNode) Type() string {
	return NodeTypeHTTP
}

// Execute выполняет HTTP-запрос.
func (n *HTTPNode) Execute(ctx context.Context, req *Request) (*Response, error) {
	// Парсим и валидируем конфигурацию до любого сетевого вызова
	cfg, err := n.parseConfig(req)
	if err != nil {
		return nil, err
	}

	// Таймаут узла ограничивает запрос через контекст
	timeout := defaultHTTPTimeout
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := n.buildRequest(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := n.client.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %s", ErrNodeTimeout, cfg.URL)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrNodeCancelled, ctx.Err())
		}
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	return n.parseResponse(resp)
}

// httpNodeConfig — распарсенная конфигурация http-узла.
type httpNodeConfig struct {
	Method    string
	URL       string
	Headers   map[string]string
	Body      any
	TimeoutMs int
}

// parseConfig парсит конфигурацию и валидирует URL.
func (n *HTTPNode) parseConfig(req *Request) (*httpNodeConfig, error) {
	config := req.Config

	cfg := &httpNodeConfig{
		Method:    GetConfigString(config, configMethod),
		URL:       GetConfigString(config, configURL),
		Headers:   GetConfigMapString(config, configHeaders),
		Body:      config[configBody],
		TimeoutMs: GetConfigInt(config, configTimeoutMs),
	}

	if GetConfigBool(config, configUseInput, false) && req.Input != nil {
		cfg.Body = req.Input
	}

	// URL обязателен и должен быть синтаксически валиден:
	// ошибка валидации до попытки вызова
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: %s: url is required", ErrInvalidConfig, NodeTypeHTTP)
	}
	parsed, err := url.Parse(cfg.URL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("%w: %s: invalid url %q", ErrInvalidConfig, NodeTypeHTTP, cfg.URL)
	}

	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	cfg.Method = strings.ToUpper(cfg.Method)

	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}

	return cfg, nil
}

// buildRequest создаёт HTTP-запрос.
func (n *HTTPNode) buildRequest(ctx context.Context, cfg *httpNodeConfig) (*http.Request, error) {
	var bodyReader io.Reader

	if cfg.Body != nil {
		bodyBytes, err := serializeBody(cfg.Body)
		if err != nil {
			return nil, fmt.Errorf("serialize body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)

		if _, hasContentType := cfg.Headers["Content-Type"]; !hasContentType {
			cfg.Headers["Content-Type"] = "application/json"
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.URL, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range cfg.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

// serializeBody сериализует body в bytes.
func serializeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// parseResponse разбирает HTTP-ответ в выход узла.
func (n *HTTPNode) parseResponse(resp *http.Response) (*Response, error) {
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var body any
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.Unmarshal(bodyBytes, &body); err != nil {
			// Не удалось распарсить JSON — возвращаем как строку
			body = string(bodyBytes)
		}
	} else {
		body = string(bodyBytes)
	}

	headers := make(map[string]string)
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	return NewResponse(map[string]any{
		"status_code": resp.StatusCode,
		"headers":     headers,
		"body":        body,
	}), nil
}
