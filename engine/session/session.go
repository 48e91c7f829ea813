// Package session isolates engines per player session for multi-session
// hosts. One engine, one lock, no cross-session sharing; a single-player
// host can skip this entirely and own its Engine directly.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tessera-games/lingoquest/engine"
)

// Session pairs one engine with its lock.
type Session struct {
	ID string

	mu  sync.Mutex
	eng *engine.Engine
}

// New wraps an engine in a standalone session outside any registry.
// Single-player hosts use this to serialize engine access when they
// run engine work off their main loop.
func New(eng *engine.Engine) *Session {
	return &Session{ID: uuid.NewString(), eng: eng}
}

// Do runs fn with exclusive access to the session's engine.
func (s *Session) Do(fn func(*engine.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.eng)
}

// Registry tracks live sessions by id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: map[string]*Session{}}
}

// Create registers a new session around the given engine and returns it.
func (r *Registry) Create(eng *engine.Engine) *Session {
	s := New(eng)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get looks up a session by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session %q", id)
	}
	return s, nil
}

// Remove drops a session from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
