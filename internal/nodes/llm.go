package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shaiso/Nodeflow/internal/providers"
)

// NodeTypeLLM — тип llm-узла.
const NodeTypeLLM = "llm"

// Ключи конфигурации llm-узла.
const (
	configProvider    = "provider"
	configModel       = "model"
	configPrompt      = "prompt"
	configSystem      = "system"
	configTemperature = "temperature"
	configMaxTokens   = "maxTokens"
)

// inputPlaceholder — место подстановки входа в prompt.
const inputPlaceholder = "{input}"

// LLMNode — узел генерации текста через LLM-провайдера.
//
// Конфигурация:
//
//	{
//	    "provider": "ollama" | "openai",
//	    "model": "llama3",
//	    "prompt": "Суммируй: {input}",
//	    "system": "Ты — ассистент.",
//	    "temperature": 0.7,
//	    "maxTokens": 1024
//	}
//
// Если prompt содержит {input}, вход подставляется на его место,
// иначе дописывается после prompt. Входы-изображения (base64 в поле
// image/images) уходят провайдеру как vision-вложения.
type LLMNode struct {
	factory *providers.Factory
}

// NewLLMNode создаёт новый LLMNode.
func NewLLMNode(factory *providers.Factory) *LLMNode {
	return &LLMNode{factory: factory}
}

// Type возвращает тип узла.
func (n *LLMNode) Type() string {
	return NodeTypeLLM
}

// Execute выполняет запрос генерации.
func (n *LLMNode) Execute(ctx context.Context, req *Request) (*Response, error) {
	if n.factory == nil {
		return nil, fmt.Errorf("%w: llm providers are not configured", ErrInvalidConfig)
	}

	model := GetConfigString(req.Config, configModel)
	if model == "" {
		return nil, fmt.Errorf("%w: %s: model is required", ErrInvalidConfig, NodeTypeLLM)
	}

	client, err := n.factory.Client(GetConfigString(req.Config, configProvider))
	if err != nil {
		return nil, err
	}

	text, err := client.Generate(ctx, &providers.GenerateRequest{
		Model:       model,
		Prompt:      buildPrompt(GetConfigString(req.Config, configPrompt), req.Input),
		System:      GetConfigString(req.Config, configSystem),
		Temperature: GetConfigFloat(req.Config, configTemperature),
		MaxTokens:   GetConfigInt(req.Config, configMaxTokens),
		Images:      extractImages(req.Inputs),
	})
	if err != nil {
		return nil, fmt.Errorf("llm %s/%s: %w", client.Name(), model, err)
	}

	return NewResponse(text), nil
}

// buildPrompt собирает итоговый prompt из шаблона и входа узла.
func buildPrompt(prompt string, input any) string {
	inputText := inputToText(input)

	if strings.Contains(prompt, inputPlaceholder) {
		return strings.ReplaceAll(prompt, inputPlaceholder, inputText)
	}
	if prompt == "" {
		return inputText
	}
	if inputText == "" {
		return prompt
	}
	return prompt + "\n\n" + inputText
}

// inputToText приводит вход узла к тексту для prompt.
func inputToText(input any) string {
	switch v := input.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// extractImages вынимает base64-изображения из входов (поля image/images).
func extractImages(inputs []any) []string {
	var images []string

	for _, input := range inputs {
		m, ok := input.(map[string]any)
		if !ok {
			continue
		}
		if img, ok := m["image"].(string); ok && img != "" {
			images = append(images, img)
		}
		if list, ok := m["images"].([]any); ok {
			for _, item := range list {
				if img, ok := item.(string); ok && img != "" {
					images = append(images, img)
				}
			}
		}
	}

	return images
}
