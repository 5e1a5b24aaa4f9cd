package conversations

import (
	"context"
	"sync"
	"time"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
	errx "github.com/codexcapeusman-ui/Devia-Backend/internal/core/error"
	logx "github.com/codexcapeusman-ui/Devia-Backend/pkg/logger"
)

// Store mediates all access to conversation state. Turns for the same
// conversation are serialized through a per-conversation mutex, so concurrent
// requests cannot interleave a read-modify-write. Different conversations do
// not contend.
type Store struct {
	repo model.ConversationRepository

	mu    sync.Mutex
	locks map[string]*lockEntry

	now func() time.Time
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func NewStore(repo model.ConversationRepository) *Store {
	return &Store{
		repo:  repo,
		locks: make(map[string]*lockEntry),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Lock acquires the mutex for one conversation and returns its release
// function. Entries are refcounted so the lock table does not grow with every
// conversation ever seen.
func (s *Store) Lock(conversationID string) func() {
	s.mu.Lock()
	entry, ok := s.locks[conversationID]
	if !ok {
		entry = &lockEntry{}
		s.locks[conversationID] = entry
	}
	entry.refs++
	s.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		s.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(s.locks, conversationID)
		}
		s.mu.Unlock()
	}
}

// GetOrCreate loads the live state for a conversation, creating a fresh one
// when none exists. A conversation id belonging to a different user is
// rejected rather than resumed.
func (s *Store) GetOrCreate(ctx context.Context, conversationID, userID string) (*model.ConversationState, error) {
	state, err := s.repo.Load(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		logx.Debug().Str("conversationID", conversationID).Str("userID", userID).Msg("starting new conversation")
		return model.NewConversationState(conversationID, userID), nil
	}
	if state.UserID != userID {
		logx.Warn().
			Str("conversationID", conversationID).
			Str("userID", userID).
			Msg("conversation belongs to another user")
		return nil, errx.CrossUserAccess(conversationID, userID)
	}
	return state, nil
}

// Save touches the idle clock and persists the state.
func (s *Store) Save(ctx context.Context, state *model.ConversationState) error {
	state.LastActiveAt = s.now()
	return s.repo.Save(ctx, state)
}

// Delete discards the state for a conversation. Used on reset and after a
// successful dispatch.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	return s.repo.Delete(ctx, conversationID)
}

// Status returns a read-only snapshot of a conversation. An unknown or expired
// conversation reports Active=false instead of an error.
func (s *Store) Status(ctx context.Context, conversationID, userID string) (model.ConversationStatus, error) {
	state, err := s.repo.Load(ctx, conversationID)
	if err != nil {
		return model.ConversationStatus{}, err
	}
	if state == nil {
		return model.ConversationStatus{ConversationID: conversationID}, nil
	}
	if state.UserID != userID {
		return model.ConversationStatus{}, errx.CrossUserAccess(conversationID, userID)
	}
	return model.ConversationStatus{
		Active:         true,
		ConversationID: state.ConversationID,
		Phase:          state.Phase,
		Intent:         state.Intent,
		Confidence:     state.Confidence,
		HasData:        len(state.Fields) > 0,
		TurnCount:      state.TurnCount,
		CreatedAt:      state.CreatedAt.Format(time.RFC3339),
		LastActiveAt:   state.LastActiveAt.Format(time.RFC3339),
	}, nil
}
