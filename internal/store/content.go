// Package store содержит in-process хранилище контента узлов.
package store

import (
	"sync"
)

// ContentStore — key-value хранилище контента по nodeId.
//
// Узлы читают из него конфигурацию, output-узлы публикуют в него
// текст для отображения. Потокобезопасно; живёт в памяти процесса.
type ContentStore struct {
	mu        sync.RWMutex
	content   map[string]map[string]any
	published map[string]string
}

// NewContentStore создаёт пустое хранилище.
func NewContentStore() *ContentStore {
	return &ContentStore{
		content:   make(map[string]map[string]any),
		published: make(map[string]string),
	}
}

// Content возвращает конфигурацию узла (nil, если её нет).
func (s *ContentStore) Content(nodeID string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content[nodeID]
}

// SetContent сохраняет конфигурацию узла.
func (s *ContentStore) SetContent(nodeID string, config map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content[nodeID] = config
}

// PublishContent сохраняет отображаемый текст output-узла.
// Реализует nodes.ContentPublisher.
func (s *ContentStore) PublishContent(nodeID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published[nodeID] = content
}

// DisplayText возвращает опубликованный текст узла.
func (s *ContentStore) DisplayText(nodeID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.published[nodeID]
	return text, ok
}

// Clear удаляет весь опубликованный контент (между запусками).
func (s *ContentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = make(map[string]string)
}
