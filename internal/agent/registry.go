package agent

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/imamik/deployctl/internal/config"
)

// Constructor builds an agent.
type Constructor func() (Agent, error)

// Registry maps infrastructure names to agent constructors.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds or replaces the constructor for name.
func (r *Registry) Register(name string, c Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[name] = c
}

// Names lists the registered infrastructures, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the agent registered under name. Unknown names return a
// configuration error listing the valid ones.
func (r *Registry) New(name string) (Agent, error) {
	r.mu.RLock()
	c, ok := r.constructors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, config.Invalid("infrastructure",
			fmt.Sprintf("unknown infrastructure %q", name),
			"valid values: "+strings.Join(r.Names(), ", "))
	}
	a, err := c()
	if err != nil {
		return nil, fmt.Errorf("failed to create %s agent: %w", name, err)
	}
	return a, nil
}
