package extract

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
	logx "github.com/codexcapeusman-ui/Devia-Backend/pkg/logger"
)

// ExtractorModelConfig holds what is needed to build the Gemini-backed
// extraction model.
type ExtractorModelConfig struct {
	APIKey  string
	BaseURL string
	Model   model.ExtractorModelConfig
}

// NewExtractorChatModel creates the Gemini chat model used for LLM-assisted
// field extraction.
func NewExtractorChatModel(ctx context.Context, config ExtractorModelConfig) (*gemini.ChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Model.Model,
		Temperature: &config.Model.Temperature,
		MaxTokens:   &config.Model.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating extraction model")
		return nil, fmt.Errorf("error creating extraction model: %w", err)
	}

	return chatModel, nil
}
