// Package reference implements the reference loader of spec.md §4.6: each
// alias names a connector whose Fetch result is cached for the loader's
// lifetime when the underlying resource is not variable.
package reference

import (
	"context"
	"sync"

	"github.com/jmfiaschi/chewgo/internal/connector"
	"github.com/jmfiaschi/chewgo/internal/record"
)

// Loader runs conn.Fetch() once per alias and caches the result when conn
// is not variable. Concurrency: readers-writers discipline (spec.md §5) —
// only one loader call per alias runs the underlying fetch; concurrent
// callers block on the same in-flight load rather than issuing their own.
type Loader struct {
	mu      sync.RWMutex
	cache   map[string][]record.Envelope
	loading map[string]*sync.WaitGroup
}

func NewLoader() *Loader {
	return &Loader{
		cache:   make(map[string][]record.Envelope),
		loading: make(map[string]*sync.WaitGroup),
	}
}

// Load returns the dataset for alias, running conn.Fetch() at most once
// for a non-variable connector across the loader's lifetime.
func (l *Loader) Load(ctx context.Context, alias string, conn connector.Connector) ([]record.Envelope, error) {
	if conn.IsVariable() {
		return conn.Fetch(ctx)
	}

	l.mu.RLock()
	if cached, ok := l.cache[alias]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	if cached, ok := l.cache[alias]; ok {
		l.mu.Unlock()
		return cached, nil
	}
	if wg, inFlight := l.loading[alias]; inFlight {
		l.mu.Unlock()
		wg.Wait()
		l.mu.RLock()
		cached := l.cache[alias]
		l.mu.RUnlock()
		return cached, nil
	}
	wg := &sync.WaitGroup{}
	wg.Add(1)
	l.loading[alias] = wg
	l.mu.Unlock()

	envs, err := conn.Fetch(ctx)

	l.mu.Lock()
	if err == nil {
		l.cache[alias] = envs
	}
	delete(l.loading, alias)
	l.mu.Unlock()
	wg.Done()

	return envs, err
}
