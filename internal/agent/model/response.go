package model

// Status is the outcome class of a processed turn.
type Status string

const (
	StatusSuccess     Status = "success"
	StatusMissingData Status = "missing_data"
	StatusError       Status = "error"
)

// Request is a single conversation turn. ConversationID may be empty, in
// which case the orchestrator assigns one and returns it in the response.
type Request struct {
	Prompt         string `json:"prompt"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// Actions describing what the caller should do next.
const (
	ActionClarifyIntent      = "clarify_intent"
	ActionProvideMissingData = "provide_missing_data"
	ActionReset              = "reset"
	ActionCompleted          = "completed"
	ActionError              = "error"
)

// AgentResponse is the structured result of one turn. Every non-success path
// still produces one of these with a human-readable message.
type AgentResponse struct {
	ConversationID string    `json:"conversation_id"`
	Intent         Intent    `json:"intent"`
	Operation      Operation `json:"operation"`
	Confidence     float64   `json:"confidence"`
	Status         Status    `json:"status"`
	Action         string    `json:"action"`
	Message        string    `json:"message"`
	Data           any       `json:"data,omitempty"`
	MissingFields  []string  `json:"missing_fields,omitempty"`
	Context        Fields    `json:"context,omitempty"`
}

// ConversationStatus is a read-only snapshot returned by the status operation.
type ConversationStatus struct {
	Active         bool      `json:"active"`
	ConversationID string    `json:"conversation_id"`
	Phase          Phase     `json:"phase,omitempty"`
	Intent         Intent    `json:"intent,omitempty"`
	Confidence     float64   `json:"confidence,omitempty"`
	HasData        bool      `json:"has_data"`
	TurnCount      int       `json:"turn_count"`
	CreatedAt      string    `json:"created_at,omitempty"`
	LastActiveAt   string    `json:"last_active_at,omitempty"`
}
