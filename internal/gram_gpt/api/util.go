// Package api contains the generative provider adapters.
package api

import (
	"encoding/base64"
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"strings"
)

func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// textOnlyPrompt checks that a request can be served by a text-only chat provider and
// returns its prompt text.
func textOnlyPrompt(provider string, req models.GenerationRequest) (string, error) {
	if req.HasInlineData() {
		return "", fmt.Errorf("%w: %s does not accept image input", models.ErrUnsupportedModality, provider)
	}
	if req.WantsModality(models.ModalityImage) {
		return "", fmt.Errorf("%w: %s does not generate images", models.ErrUnsupportedModality, provider)
	}
	prompt := req.PromptText()
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: empty prompt", models.ErrInvalidRequest)
	}
	return prompt, nil
}

// classifyChatError maps a failure of a chat-completions style provider. These clients
// return plain errors, so the HTTP status is recognised from the message.
func classifyChatError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key") {
		return fmt.Errorf("%w: %w", models.ErrAuthentication, err)
	}
	return fmt.Errorf("%w: %w", models.ErrTransport, err)
}

// textResponse wraps the text of a chat completion into the common response shape.
func textResponse(text, finishReason, model string) *models.GenerateContentResponse {
	resp := &models.GenerateContentResponse{Text: text, ModelVersion: model}
	if text != "" {
		resp.Candidates = []models.Candidate{{
			Content:      models.Content{Role: string(models.RoleModel), Parts: []models.Part{{Text: text}}},
			FinishReason: finishReason,
		}}
	}
	return resp
}
