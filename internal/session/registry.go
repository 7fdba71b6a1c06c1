package session

import (
	"sync"
	"time"
)

// closeWait bounds how long shutdown waits for sessions to finish their
// close sequence.
const closeWait = 5 * time.Second

// Registry tracks live coordinators so shutdown can close them.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Coordinator
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Coordinator),
	}
}

// Add registers a coordinator.
func (r *Registry) Add(c *Coordinator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[c.ID()] = c
}

// Remove deregisters a coordinator.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Get returns the coordinator for the session, or nil.
func (r *Registry) Get(id string) *Coordinator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close closes every live session's client transport, which drives each
// coordinator through its close sequence, then waits for the coordinators
// to finish so their final records land before shared resources shut down.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := make([]*Coordinator, 0, len(r.sessions))
	for _, c := range r.sessions {
		sessions = append(sessions, c)
	}
	r.sessions = make(map[string]*Coordinator)
	r.mu.Unlock()

	for _, c := range sessions {
		c.client.Close()
	}

	deadline := time.After(closeWait)
	for _, c := range sessions {
		select {
		case <-c.Done():
		case <-deadline:
			return
		}
	}
}
