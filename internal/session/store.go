// Package session owns per-conversation state: the append-only transcript
// and the running chaos directives.
package session

import (
	"context"
	"sync"

	"financeflip-backend/internal/models"
)

// State is the persistable snapshot of one session.
type State struct {
	Messages []models.Message  `json:"messages"`
	Chaos    models.ChaosState `json:"chaos"`
}

// NewState returns the state a fresh session starts from.
func NewState() *State {
	return &State{
		Messages: []models.Message{},
		Chaos:    models.DefaultChaos(),
	}
}

// Store persists session state between requests.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, state *State) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory. The default when Redis is
// not configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*State)}
}

func (m *MemoryStore) Load(ctx context.Context, id string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	// Copy so callers cannot mutate the stored state in place.
	copied := *state
	copied.Messages = append([]models.Message(nil), state.Messages...)
	return &copied, nil
}

func (m *MemoryStore) Save(ctx context.Context, id string, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *state
	copied.Messages = append([]models.Message(nil), state.Messages...)
	m.sessions[id] = &copied
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
