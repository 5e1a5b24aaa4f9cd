package repo

import (
	"context"
	"sync"
	"time"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
)

// MemoryConversationRepository keeps conversation state in-process. Expiry is
// lazy: a state older than the idle window is discarded on access. Useful for
// tests and for running without Redis.
type MemoryConversationRepository struct {
	mu     sync.Mutex
	ttl    time.Duration
	states map[string]*model.ConversationState
	now    func() time.Time
}

func NewMemoryConversationRepository(ttl time.Duration) *MemoryConversationRepository {
	return &MemoryConversationRepository{
		ttl:    ttl,
		states: make(map[string]*model.ConversationState),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryConversationRepository) Load(_ context.Context, conversationID string) (*model.ConversationState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[conversationID]
	if !ok {
		return nil, nil
	}
	if r.ttl > 0 && r.now().Sub(state.LastActiveAt) > r.ttl {
		delete(r.states, conversationID)
		return nil, nil
	}
	return cloneState(state), nil
}

func (r *MemoryConversationRepository) Save(_ context.Context, state *model.ConversationState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.ConversationID] = cloneState(state)
	return nil
}

func (r *MemoryConversationRepository) Delete(_ context.Context, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.states, conversationID)
	return nil
}

func cloneState(s *model.ConversationState) *model.ConversationState {
	out := *s
	out.Fields = s.Fields.Clone()
	return &out
}

var _ model.ConversationRepository = (*MemoryConversationRepository)(nil)
