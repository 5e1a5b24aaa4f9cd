package model

// ================ Config ================
type ConversationConfig struct {
	// TTL is the idle window after which a conversation is abandoned.
	TTL string `envconfig:"CONVERSATION_TTL" default:"30m"`
}

type ClassifierConfig struct {
	// HighConfidence is the threshold above which a mid-conversation intent
	// change restarts the flow.
	HighConfidence float64 `envconfig:"CLASSIFIER_HIGH_CONFIDENCE" default:"0.8"`
	// MinConfidence is the floor below which no extraction or dispatch happens.
	MinConfidence float64 `envconfig:"CLASSIFIER_MIN_CONFIDENCE" default:"0.6"`
}

type ExtractorModelConfig struct {
	Model       string  `envconfig:"EXTRACTOR_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"EXTRACTOR_MAX_TOKENS" default:"1500"`
	Temperature float32 `envconfig:"EXTRACTOR_TEMPERATURE" default:"0.1"`
}

type DispatchConfig struct {
	// Timeout bounds a single business operation call. Expiry surfaces as a
	// turn with status=error; retries belong to the backend, not this layer.
	Timeout string `envconfig:"DISPATCH_TIMEOUT" default:"10s"`
}
