package generative

import (
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/api"
	"testing"
)

func TestModelFactory(t *testing.T) {
	model, err := ModelFactory(" OpenRouter ", "key", "deepseek/deepseek-chat", 0, 0.7)
	if err != nil {
		t.Fatalf("ModelFactory returned error: %v", err)
	}
	if _, ok := model.(*api.OpenRouterAPI); !ok {
		t.Errorf("Expected *api.OpenRouterAPI, got %T", model)
	}

	if _, err = ModelFactory("llama", "key", "m", 0, 0); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	want := []string{"deepseek", "gemini", "openrouter"}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, names)
		}
	}
}
