// Package auth mirrors the identity provider's session into the terminal
// storefront. A Store subscribes once to a Provider and republishes every
// session change to its own subscribers until it is closed.
package auth

import (
	"context"
	"sync"

	"github.com/atinyakov/GreenCart/internal/models"
	"go.uber.org/zap"
)

// Provider is the identity provider as seen by the Store.
type Provider interface {
	// Init determines the initial session. A non-nil error means the
	// provider could not be reached or is misconfigured.
	Init(ctx context.Context) error
	// Current returns the signed-in session, or nil.
	Current() *models.AuthSession
	// Subscribe registers fn for session changes and returns its cancel func.
	Subscribe(fn func(*models.AuthSession)) (unsubscribe func())
}

// State is what Store subscribers observe.
type State struct {
	// Session is nil when signed out or not yet resolved.
	Session *models.AuthSession
	// Resolved is false only while the initial session is being determined.
	Resolved bool
}

// Store is the read-only projection of the provider session.
type Store struct {
	mu          sync.Mutex
	state       State
	subs        map[int]func(State)
	nextID      int
	closed      bool
	unsubscribe func()
	log         *zap.Logger
}

// NewStore subscribes to p and runs its initialization. If Init fails the
// store resolves to signed out instead of returning the error.
func NewStore(ctx context.Context, p Provider, log *zap.Logger) *Store {
	s := &Store{subs: make(map[int]func(State)), log: log}
	s.unsubscribe = p.Subscribe(s.apply)

	if err := p.Init(ctx); err != nil {
		log.Warn("identity provider unavailable, continuing signed out", zap.Error(err))
		s.set(State{Resolved: true})
		return s
	}
	s.set(State{Session: p.Current(), Resolved: true})
	return s
}

func (s *Store) apply(sess *models.AuthSession) {
	s.set(State{Session: sess, Resolved: true})
}

func (s *Store) set(st State) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = st
	ids := make([]int, 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if _, ok := s.subs[id]; ok {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	for _, id := range ids {
		if fn := s.subscriber(id); fn != nil {
			fn(st)
		}
	}
}

// subscriber returns the callback registered under id, or nil once it was
// removed or the store was closed.
func (s *Store) subscriber(id int) func(State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.subs[id]
}

// Current returns the session (nil when signed out) and whether it is resolved.
func (s *Store) Current() (*models.AuthSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Session, s.state.Resolved
}

// Subscribe registers fn for every state change until the returned func is
// called or the store is closed.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Close detaches the store from its provider. A callback already running when
// Close is called may finish, but none starts after Close returns.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.subs = map[int]func(State){}
	unsubscribe := s.unsubscribe
	s.mu.Unlock()

	unsubscribe()
}
