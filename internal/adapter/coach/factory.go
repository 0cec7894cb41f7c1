package coach

import (
	"context"
	"fmt"
	"io"

	"interview-coach/internal/config"
)

// NewGenerator builds the Generator for llm.provider. The returned closer is
// never nil.
func NewGenerator(ctx context.Context, cfg config.LLMConfig) (Generator, io.Closer, error) {
	switch cfg.Provider {
	case "genai":
		if cfg.APIKey == "" {
			return nil, nil, fmt.Errorf("llm.api_key is required for the genai provider")
		}
		g, err := NewGenAIGenerator(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		return g, g, nil
	case "googleai":
		if cfg.APIKey == "" {
			return nil, nil, fmt.Errorf("llm.api_key is required for the googleai provider")
		}
		g, err := NewGoogleAIGenerator(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		return g, io.NopCloser(nil), nil
	case "ollama":
		g, err := NewOllamaGenerator(cfg.ServerURL, cfg.Model)
		if err != nil {
			return nil, nil, err
		}
		return g, io.NopCloser(nil), nil
	default:
		return nil, nil, fmt.Errorf("unsupported llm.provider %q", cfg.Provider)
	}
}
