package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/business"
	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/conversations"
	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/extract"
	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/orchestrator"
	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/repo"
	"github.com/codexcapeusman-ui/Devia-Backend/internal/core"
	logx "github.com/codexcapeusman-ui/Devia-Backend/pkg/logger"
	pkgredis "github.com/codexcapeusman-ui/Devia-Backend/pkg/redis"
)

// AppConfig defines all configurable parameters for the agent example,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure. Leave REDIS_URL empty to run on the in-process store.
	Redis pkgredis.Config

	// LLM provider. Leave GEMINI_API_KEY empty to run on heuristic
	// extraction only.
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Classifier   model.ClassifierConfig
	Extractor    model.ExtractorModelConfig
	Conversation model.ConversationConfig
	Dispatch     model.DispatchConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}
	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		log.Fatalf("Invalid CONVERSATION_TTL '%s': %v", envCfg.Conversation.TTL, err)
	}
	dispatchTimeout, err := time.ParseDuration(envCfg.Dispatch.Timeout)
	if err != nil {
		log.Fatalf("Invalid DISPATCH_TIMEOUT '%s': %v", envCfg.Dispatch.Timeout, err)
	}

	var conversationRepo model.ConversationRepository
	if envCfg.Redis.URL != "" {
		rdb, err := envCfg.Redis.New()
		if err != nil {
			log.Fatalf("Failed to initialise Redis client: %v", err)
		}
		defer rdb.Close()
		fmt.Println("Connected to Redis successfully")
		conversationRepo = repo.NewRedisConversationRepository(rdb, ttl)
	} else {
		fmt.Println("REDIS_URL not set, using in-process conversation store")
		conversationRepo = repo.NewMemoryConversationRepository(ttl)
	}

	var extractor extract.TextExtractor = extract.NewHeuristicExtractor()
	if envCfg.APIKey != "" {
		chatModel, err := extract.NewExtractorChatModel(ctx, extract.ExtractorModelConfig{
			APIKey:  envCfg.APIKey,
			BaseURL: envCfg.BaseURL,
			Model:   envCfg.Extractor,
		})
		if err != nil {
			log.Fatalf("Failed to initialise extraction model: %v", err)
		}
		extractor = extract.NewLLMExtractor(chatModel, envCfg.Extractor.Model)
	} else {
		fmt.Println("GEMINI_API_KEY not set, using heuristic extraction only")
	}

	agent := orchestrator.New(
		conversations.NewStore(conversationRepo),
		extractor,
		business.NewMemoryBackend(),
		orchestrator.Config{
			HighConfidence:  envCfg.Classifier.HighConfidence,
			MinConfidence:   envCfg.Classifier.MinConfidence,
			DispatchTimeout: dispatchTimeout,
		},
	)

	testPrompts := []struct {
		description string
		prompt      string
	}{
		{
			description: "Complete invoice in one turn",
			prompt:      "Create invoice for John Doe at ABC Corp, email john@abc.com, for website development 40 hours at €60/hour",
		},
		{
			description: "Invoice with everything missing",
			prompt:      "I need to create an invoice",
		},
		{
			description: "Follow-up supplying the missing data",
			prompt:      "It's for Jane Smith, email jane@smith.io, consulting work for €800",
		},
		{
			description: "List expenses",
			prompt:      "Show me my expenses",
		},
		{
			description: "Reset mid-flow",
			prompt:      "never mind",
		},
	}

	userID := "demo-user-1"
	conversationID := ""

	for i, test := range testPrompts {
		fmt.Printf("\nTurn %d: %s\n", i+1, test.description)
		fmt.Printf("Prompt: %q\n", test.prompt)

		response, err := agent.ProcessRequest(ctx, model.Request{
			Prompt:         test.prompt,
			UserID:         userID,
			ConversationID: conversationID,
		})
		if err != nil {
			log.Fatalf("Turn %d failed: %v", i+1, err)
		}
		conversationID = response.ConversationID

		out, _ := json.MarshalIndent(response, "", "  ")
		fmt.Println(string(out))
		fmt.Println("────────────────────────────────────────────")
	}

	fmt.Println("All turns completed")
}
