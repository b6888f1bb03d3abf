package nodes

import (
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/shaiso/Nodeflow/internal/providers"
)

// Registry — реестр типов узлов.
//
// Позволяет регистрировать и получать реализации Executor по типу.
// Потокобезопасен.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]Executor
}

// Options — зависимости стандартных узлов.
type Options struct {
	// HTTPClient используется http- и crawler-узлами.
	// Если nil, каждый узел создаёт клиент со своим таймаутом.
	HTTPClient *http.Client

	// Providers — фабрика LLM-провайдеров для llm-узлов.
	Providers *providers.Factory

	// Publisher принимает контент output-узлов (side effect).
	// Может быть nil — тогда публикация пропускается.
	Publisher ContentPublisher
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		nodes: make(map[string]Executor),
	}
}

// DefaultRegistry создаёт реестр со всеми стандартными узлами.
func DefaultRegistry(opts Options) *Registry {
	r := NewRegistry()

	// Регистрируем все стандартные узлы
	r.Register(NewInputNode())
	r.Register(NewOutputNode(opts.Publisher))
	r.Register(NewHTTPNode(opts.HTTPClient))
	r.Register(NewCrawlerNode(opts.HTTPClient))
	r.Register(NewMergerNode())
	r.Register(NewLLMNode(opts.Providers))

	return r
}

// Register регистрирует узел в реестре.
// Если узел с таким типом уже существует, он будет перезаписан.
func (r *Registry) Register(node Executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[node.Type()] = node
}

// Get возвращает узел по типу.
// Возвращает ErrNodeNotFound, если тип не зарегистрирован.
func (r *Registry) Get(nodeType string) (Executor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	node, exists := r.nodes[nodeType]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeType)
	}

	return node, nil
}

// Has проверяет, зарегистрирован ли тип узла.
func (r *Registry) Has(nodeType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.nodes[nodeType]
	return exists
}

// Types возвращает список всех зарегистрированных типов узлов.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.nodes))
	for t := range r.nodes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Count возвращает количество зарегистрированных узлов.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}
