package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Ошибки провайдеров.
var (
	// ErrUnknownProvider — провайдер не сконфигурирован в фабрике.
	ErrUnknownProvider = errors.New("unknown llm provider")

	// ErrEmptyResponse — провайдер вернул пустой ответ.
	ErrEmptyResponse = errors.New("empty llm response")

	// ErrMissingModel — не указана модель.
	ErrMissingModel = errors.New("model is required")
)

// GenerateRequest — запрос генерации к LLM-провайдеру.
type GenerateRequest struct {
	// Model — имя модели у провайдера.
	Model string

	// Prompt — текст запроса (уже со встроенным входом узла).
	Prompt string

	// System — системный промпт (может быть пустым).
	System string

	// Temperature — температура сэмплирования.
	Temperature float64

	// MaxTokens — ограничение длины ответа (0 — без ограничения).
	MaxTokens int

	// Images — base64-изображения для vision-моделей.
	Images []string
}

// Client — интерфейс LLM-провайдера.
type Client interface {
	// Name возвращает имя провайдера (ollama, openai).
	Name() string

	// Generate выполняет один запрос генерации и возвращает текст ответа.
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
}

// Config — настройки фабрики провайдеров.
type Config struct {
	// OllamaURL — базовый URL ollama-сервера (http://localhost:11434).
	OllamaURL string

	// OpenAIKey — API-ключ OpenAI. Пустой ключ отключает провайдер.
	OpenAIKey string

	// OpenAIBaseURL — альтернативный endpoint OpenAI-совместимого API.
	OpenAIBaseURL string

	// HTTPClient — общий HTTP-клиент (nil — клиент по умолчанию).
	HTTPClient *http.Client
}

// Factory раздаёт LLM-клиентов по имени провайдера.
//
// Клиенты создаются лениво и переиспользуются. Потокобезопасна.
type Factory struct {
	cfg Config

	mu      sync.Mutex
	clients map[string]Client
}

// NewFactory создаёт фабрику провайдеров.
func NewFactory(cfg Config) *Factory {
	return &Factory{
		cfg:     cfg,
		clients: make(map[string]Client),
	}
}

// Client возвращает клиента по имени провайдера.
func (f *Factory) Client(provider string) (Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.clients[provider]; ok {
		return c, nil
	}

	var c Client
	switch provider {
	case "ollama", "":
		c = NewOllamaClient(f.cfg.OllamaURL, f.cfg.HTTPClient)
	case "openai":
		if f.cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("%w: openai key not configured", ErrUnknownProvider)
		}
		c = NewOpenAIClient(f.cfg.OpenAIKey, f.cfg.OpenAIBaseURL, f.cfg.HTTPClient)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	f.clients[provider] = c
	return c, nil
}
