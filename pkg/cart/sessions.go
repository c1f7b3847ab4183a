package cart

import (
	"context"
	"sync"
)

// Sessions is the process-wide registry handing out one Store per session id.
// Unknown sessions are restored from the snapshot cache on first access.
type Sessions struct {
	mu     sync.Mutex
	stores map[string]*Store
	snap   Snapshotter
}

func NewSessions(snap Snapshotter) *Sessions {
	return &Sessions{
		stores: make(map[string]*Store),
		snap:   snap,
	}
}

// Get returns the store for sessionID, restoring it from the durable cache
// the first time the session is seen by this process.
func (r *Sessions) Get(ctx context.Context, sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if store, ok := r.stores[sessionID]; ok {
		return store
	}
	store := Restore(ctx, sessionID, r.snap)
	r.stores[sessionID] = store
	return store
}

// Drop forgets the in-memory store for a session. The durable snapshot is
// left alone so the cart can still be restored later.
func (r *Sessions) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, sessionID)
}
