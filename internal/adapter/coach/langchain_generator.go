package coach

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
)

// LangChainGenerator drives any langchaingo model. The schema is described
// in the prompt and the model is put in JSON mode.
type LangChainGenerator struct {
	model llms.Model
}

func NewLangChainGenerator(model llms.Model) *LangChainGenerator {
	return &LangChainGenerator{model: model}
}

// NewGoogleAIGenerator builds a Gemini generator through langchaingo.
func NewGoogleAIGenerator(ctx context.Context, apiKey, model string) (*LangChainGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable not set")
	}
	llm, err := googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(model))
	if err != nil {
		return nil, fmt.Errorf("failed to create googleai client: %w", err)
	}
	return NewLangChainGenerator(llm), nil
}

// NewOllamaGenerator builds a generator for a local ollama server.
func NewOllamaGenerator(serverURL, model string) (*LangChainGenerator, error) {
	llm, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(serverURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama client: %w", err)
	}
	return NewLangChainGenerator(llm), nil
}

func (g *LangChainGenerator) GenerateJSON(ctx context.Context, req Request) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, g.model, req.Prompt+req.Schema.PromptHint(),
		llms.WithTemperature(req.Temperature),
		llms.WithJSONMode(),
	)
}
