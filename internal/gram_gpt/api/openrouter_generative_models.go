package api

import (
	"context"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"github.com/sirupsen/logrus"
	"github.com/wojtess/openrouter-api-go"
)

// DefaultOpenRouterModel lets OpenRouter pick the model when none is configured.
const DefaultOpenRouterModel = "openrouter/auto"

// OpenRouterAPI is a text-only provider: image input, image output and tools are not available.
type OpenRouterAPI struct {
	client    *openrouterapigo.OpenRouterClient // Клиент для взаимодействия с API
	modelName string                            // Версия генеративной модели
}

// NewOpenRouterAPI создает новый экземпляр OpenRouterAPI
func NewOpenRouterAPI(apiKey string, modelName string, _ int, _ float32) (*OpenRouterAPI, error) {
	if modelName == "" {
		modelName = DefaultOpenRouterModel
	}
	return &OpenRouterAPI{
		client:    openrouterapigo.NewOpenRouterClient(apiKey),
		modelName: modelName,
	}, nil
}

// GenerateContent генерирует текст на основе переданного запроса.
// The client has no context support, so cancellation is checked before the call only.
func (o *OpenRouterAPI) GenerateContent(ctx context.Context, req models.GenerationRequest) (*models.GenerateContentResponse, error) {
	prompt, err := textOnlyPrompt("openrouter", req)
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, classifyChatError(err)
	}

	// Персона передается в начале сообщения пользователя
	if req.SystemInstruction != "" {
		prompt = req.SystemInstruction + "\n\n" + prompt
	}
	chatReq := openrouterapigo.Request{
		Model: o.modelName,
		Messages: []openrouterapigo.MessageRequest{
			{Role: openrouterapigo.RoleUser, Content: prompt},
		},
	}

	// Отправляем запрос
	resp, err := o.client.FetchChatCompletions(chatReq)
	if err != nil {
		err = classifyChatError(err)
		logrus.WithError(err).Errorf("Error creating %s request", o.modelName)
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return textResponse("", "", o.modelName), nil
	}
	return textResponse(resp.Choices[0].Message.Content, "STOP", o.modelName), nil
}
