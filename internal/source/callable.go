package source

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Callable is a registered Go function a FunctionCall source or an API
// transform can invoke by id.
type Callable func(ctx context.Context, args map[string]any) (any, error)

// Callables is a name-to-function table for FunctionCall sources and API
// response transforms. Registration is last-write-wins so a callable can
// be swapped during development without restarting.
type Callables struct {
	mu  sync.RWMutex
	all map[string]Callable
}

// NewCallables creates an empty callable table.
func NewCallables() *Callables {
	return &Callables{all: make(map[string]Callable)}
}

// Register installs fn under id, replacing any previous registration.
func (c *Callables) Register(id string, fn Callable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all[id] = fn
}

// Lookup returns the callable registered under id. A miss reports the
// currently registered ids.
func (c *Callables) Lookup(id string) (Callable, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn, ok := c.all[id]
	if !ok {
		ids := make([]string, 0, len(c.all))
		for name := range c.all {
			ids = append(ids, name)
		}
		sort.Strings(ids)
		return nil, fmt.Errorf("no callable registered as %q (registered: %v)", id, ids)
	}
	return fn, nil
}
