package factory

import (
	"fmt"

	"docpilot-be/pkg/llm"
	"docpilot-be/pkg/llm/gemini"
	"docpilot-be/pkg/llm/ollama"
)

// NewProvider selects an LLM backend by name.
func NewProvider(providerName, modelName, ollamaBaseURL, geminiApiKey string) (llm.Provider, error) {
	switch providerName {
	case "ollama", "":
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	case "gemini":
		if geminiApiKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(geminiApiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", providerName)
	}
}
