package extract

import (
	"context"
	_ "embed"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/codexcapeusman-ui/Devia-Backend/internal/agent/model"
	logx "github.com/codexcapeusman-ui/Devia-Backend/pkg/logger"
)

//go:embed template/extract_prompt.txt
var extractSystemPrompt string

// LLMExtractor layers a language-model extraction pass over the heuristic
// rules. Model output overrides heuristic values where both found something;
// any model failure degrades to the heuristic result, so the turn never
// depends on the network.
type LLMExtractor struct {
	heuristic *HeuristicExtractor
	chatModel einomodel.BaseChatModel
	modelName string
}

func NewLLMExtractor(chatModel einomodel.BaseChatModel, modelName string) *LLMExtractor {
	return &LLMExtractor{
		heuristic: NewHeuristicExtractor(),
		chatModel: chatModel,
		modelName: modelName,
	}
}

var _ TextExtractor = (*LLMExtractor)(nil)

func (e *LLMExtractor) Extract(ctx context.Context, text string, intent model.Intent) (Extraction, error) {
	base, _ := e.heuristic.Extract(ctx, text, intent)

	messages := []*schema.Message{
		schema.SystemMessage(renderExtractPrompt(intent)),
		schema.UserMessage(text),
	}

	out, err := e.chatModel.Generate(ctx, messages)
	if err != nil {
		logx.Warn().Err(err).Str("intent", intent.String()).Msg("LLM extraction failed, using heuristic result")
		return base, nil
	}
	logUsageCost(out, e.modelName)

	fields, err := ParseLLMFields(out.Content, intent)
	if err != nil {
		logx.Warn().Err(err).Str("intent", intent.String()).Msg("LLM extraction unparseable, using heuristic result")
		return base, nil
	}

	base.Fields.Merge(fields)
	return base, nil
}

// renderExtractPrompt fills the embedded template for one intent. Known
// tokens only, so literal braces in the template survive.
func renderExtractPrompt(intent model.Intent) string {
	spec := model.SpecFor(intent)
	return strings.NewReplacer(
		"{intent}", intent.String(),
		"{required_fields}", strings.Join(spec.Required, ", "),
		"{optional_fields}", strings.Join(spec.Optional, ", "),
	).Replace(extractSystemPrompt)
}

func logUsageCost(out *schema.Message, modelName string) {
	if out == nil || out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	pricing := model.ResolvePricing(modelName)
	inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
	logx.Debug().
		Str("model", modelName).
		Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
		Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
		Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")
}
