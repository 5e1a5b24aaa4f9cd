package model

import (
	"context"
	"time"
)

// Phase is the position of a conversation in the slot-filling flow.
type Phase string

const (
	// PhaseAwaitingIntent means no intent has been fixed yet.
	PhaseAwaitingIntent Phase = "awaiting_intent"
	// PhaseCollectingFields means an intent is fixed and required fields are
	// still being gathered.
	PhaseCollectingFields Phase = "collecting_fields"
	// PhaseReadyToDispatch means all required fields are present; the next
	// turn (or the current one) dispatches the business operation.
	PhaseReadyToDispatch Phase = "ready_to_dispatch"
)

// ConversationState is the accumulated per-conversation data. It only ever
// holds fields belonging to the single active intent; switching intents
// discards it.
type ConversationState struct {
	ConversationID  string    `json:"conversation_id"`
	UserID          string    `json:"user_id"`
	Phase           Phase     `json:"phase"`
	Intent          Intent    `json:"intent"`
	Operation       Operation `json:"operation"`
	Confidence      float64   `json:"confidence"`
	Fields          Fields    `json:"fields"`
	MissingAttempts int       `json:"missing_attempts"`
	TurnCount       int       `json:"turn_count"`
	CreatedAt       time.Time `json:"created_at"`
	LastActiveAt    time.Time `json:"last_active_at"`
}

// NewConversationState returns a fresh state in the awaiting-intent phase.
func NewConversationState(conversationID, userID string) *ConversationState {
	now := time.Now().UTC()
	return &ConversationState{
		ConversationID: conversationID,
		UserID:         userID,
		Phase:          PhaseAwaitingIntent,
		Intent:         IntentUnknown,
		Operation:      OperationUnknown,
		Fields:         Fields{},
		CreatedAt:      now,
		LastActiveAt:   now,
	}
}

// ConversationRepository persists conversation state keyed by conversation id.
type ConversationRepository interface {
	// Load retrieves the state for a conversation. It returns (nil, nil) when
	// no live state exists, including after idle expiry.
	Load(ctx context.Context, conversationID string) (*ConversationState, error)

	// Save stores the state and refreshes its idle deadline.
	Save(ctx context.Context, state *ConversationState) error

	// Delete removes the state for a conversation.
	Delete(ctx context.Context, conversationID string) error
}
