package ai

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// Factory builds a configured provider. The model may be empty, in which case
// the factory fills in its hardcoded default.
type Factory func(apiKey, model string) (Provider, error)

type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(name string, f Factory) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Get constructs a provider instance. When apiKey is empty the process
// environment is consulted under {PROVIDER}_API_KEY, e.g. OPENAI_API_KEY.
func (r *Registry) Get(name, apiKey, model string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown ai provider: %s", name)
	}
	if strings.TrimSpace(apiKey) == "" {
		apiKey = os.Getenv(strings.ToUpper(name) + "_API_KEY")
	}
	return f(apiKey, model)
}
