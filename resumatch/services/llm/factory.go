package llm

import (
	"fmt"

	"resumatch/resumatch/config"
)

// New picks a completion client from configuration.
func New(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaClient(cfg.BaseURL), nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires LLM_API_KEY")
		}
		return NewOpenAIClient(cfg.BaseURL, cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
