package services

import (
	"context"
	"sync"

	"github.com/comitanigiacomo/twelve-week-sync/internal/core/domain"
)

// SessionManager keeps one CycleStore per user, loaded on first use.
type SessionManager struct {
	gateway domain.Gateway

	mu         sync.Mutex
	sessions   map[string]*CycleStore
	selections map[string]string
}

func NewSessionManager(gateway domain.Gateway) *SessionManager {
	return &SessionManager{
		gateway:    gateway,
		sessions:   make(map[string]*CycleStore),
		selections: make(map[string]string),
	}
}

// Session returns the user's store, running the initial full fetch when it is new.
// A failed first fetch is returned and nothing is cached.
func (m *SessionManager) Session(ctx context.Context, userID string) (*CycleStore, error) {
	m.mu.Lock()
	store, ok := m.sessions[userID]
	selected := m.selections[userID]
	m.mu.Unlock()
	if ok {
		return store, nil
	}

	store = NewCycleStore(m.gateway, userID)
	store.current = selected
	if err := store.FetchAll(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[userID]; ok {
		return existing, nil
	}
	m.sessions[userID] = store
	return store, nil
}

// Invalidate drops the user's store so the next request reloads it. The selected
// cycle survives the reload when it still exists.
func (m *SessionManager) Invalidate(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.sessions[userID]; ok {
		m.selections[userID] = store.CurrentCycleID()
		delete(m.sessions, userID)
	}
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
