package generative

import (
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/api"
	botServ "github.com/DenisKhanov/GramGPT/internal/gram_gpt/service"
	"sort"
	"strings"
)

// generativeCreator defines a function to create GenerativeModel
type generativeCreator func(apiKey, modelName string, maxTokens int, temperature float32) (botServ.GenerativeModel, error)

// generativeRegistry stores registered implementations
var generativeRegistry = map[string]generativeCreator{
	"gemini": func(apiKey, modelName string, maxTokens int, temperature float32) (botServ.GenerativeModel, error) {
		return api.NewGeminiAPI(apiKey, modelName, maxTokens, temperature)
	},
	"deepseek": func(apiKey, modelName string, maxTokens int, temperature float32) (botServ.GenerativeModel, error) {
		return api.NewDeepSeekAPI(apiKey, modelName, maxTokens, temperature)
	},
	"openrouter": func(apiKey, modelName string, maxTokens int, temperature float32) (botServ.GenerativeModel, error) {
		return api.NewOpenRouterAPI(apiKey, modelName, maxTokens, temperature)
	},
}

// Names returns the registered provider names.
func Names() []string {
	names := make([]string, 0, len(generativeRegistry))
	for name := range generativeRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ModelFactory creates a GenerativeModel implementation based on an environment variable
func ModelFactory(generativeName, apiKey, modelName string, maxTokens int, temperature float32) (botServ.GenerativeModel, error) {
	creator, exists := generativeRegistry[strings.ToLower(strings.TrimSpace(generativeName))]
	if !exists {
		return nil, fmt.Errorf("unsupported GENERATIVE_NAME: %s (expected one of %s)", generativeName, strings.Join(Names(), ", "))
	}
	return creator(apiKey, modelName, maxTokens, temperature)
}
