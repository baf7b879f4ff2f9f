package session

import (
	"context"
	"sync"
	"time"
)

// Registry holds one Gate per issued access token, keyed by the token's
// jti. A token presented after a restart gets its gate rebuilt through
// HandleSignIn, which re-checks verification and the profile.
type Registry struct {
	newGate func() *Gate
	now     func() time.Time

	mu    sync.Mutex
	gates map[string]*entry
}

type entry struct {
	gate    *Gate
	expires time.Time
}

// NewRegistry returns a registry that builds gates with newGate.
func NewRegistry(newGate func() *Gate) *Registry {
	return &Registry{newGate: newGate, now: time.Now, gates: map[string]*entry{}}
}

// NewGate returns a fresh, unregistered gate.
func (r *Registry) NewGate() *Gate { return r.newGate() }

// Put registers g for the token jti until expires.
func (r *Registry) Put(jti string, g *Gate, expires time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gates[jti] = &entry{gate: g, expires: expires}
}

// Resolve returns the signed-in gate for jti, rebuilding it for uid when
// the registry has none. It fails with ErrNotSignedIn if the rebuilt gate
// does not reach SignedInVerifiedWithProfile.
func (r *Registry) Resolve(ctx context.Context, jti, uid string, expires time.Time) (*Gate, error) {
	r.mu.Lock()
	e, ok := r.gates[jti]
	r.mu.Unlock()
	if ok && r.now().Before(e.expires) {
		if e.gate.State() != SignedInVerifiedWithProfile {
			return nil, ErrNotSignedIn
		}
		return e.gate, nil
	}

	g := r.newGate()
	if err := g.HandleSignIn(ctx, uid); err != nil {
		return nil, err
	}
	if g.State() != SignedInVerifiedWithProfile {
		return nil, ErrNotSignedIn
	}
	r.Put(jti, g, expires)
	return g, nil
}

// Drop forgets the gate for jti.
func (r *Registry) Drop(jti string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.gates, jti)
}

// Len is the number of registered gates.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gates)
}

// Sweep drops gates whose token has expired and signs each of them out.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	now := r.now()
	var expired []*Gate
	for jti, e := range r.gates {
		if !now.Before(e.expires) {
			delete(r.gates, jti)
			expired = append(expired, e.gate)
		}
	}
	r.mu.Unlock()

	for _, g := range expired {
		g.HandleSignOut()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
