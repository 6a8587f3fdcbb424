package storage

import "github.com/mbuchner/linkhaven/internal/model"

// demoGuard wraps an Adapter for demo mode: loads and saves pass through to
// the real device-local store, but Clear is suppressed so a demo dataset can
// coexist with a real cached dataset on shared devices without wiping it.
type demoGuard struct {
	inner Adapter
}

// WithDemoGuard wraps the adapter so Clear becomes a no-op.
func WithDemoGuard(inner Adapter) Adapter {
	return &demoGuard{inner: inner}
}

func (g *demoGuard) Load(key string) (*model.State, bool, error) {
	return g.inner.Load(key)
}

func (g *demoGuard) Save(key string, state *model.State) error {
	return g.inner.Save(key, state)
}

func (g *demoGuard) Clear(string) error {
	return nil
}
