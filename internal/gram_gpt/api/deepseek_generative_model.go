package api

import (
	"context"
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"github.com/go-deepseek/deepseek"
	"github.com/go-deepseek/deepseek/request"
	"github.com/sirupsen/logrus"
)

// DefaultDeepSeekModel is used when no model name is configured.
const DefaultDeepSeekModel = "deepseek-chat"

// DeepSeekAPI is a text-only provider: image input, image output and tools are not available.
type DeepSeekAPI struct {
	client      deepseek.Client // Клиент для взаимодействия с API
	modelName   string          // Версия генеративной модели
	maxTokens   int             // Максимальное количество токенов (опционально)
	temperature float32         // Температура для управления креативностью (опционально)
}

// NewDeepSeekAPI создает новый экземпляр DeepSeekAPI
func NewDeepSeekAPI(apiKey string, modelName string, maxTokens int, temperature float32) (*DeepSeekAPI, error) {
	// Инициализируем клиент
	client, err := deepseek.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create DeepSeek client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultDeepSeekModel
	}

	return &DeepSeekAPI{
		client:      client,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

// GenerateContent генерирует текст на основе переданного запроса
func (d *DeepSeekAPI) GenerateContent(ctx context.Context, req models.GenerationRequest) (*models.GenerateContentResponse, error) {
	prompt, err := textOnlyPrompt("deepseek", req)
	if err != nil {
		return nil, err
	}

	messages := make([]*request.Message, 0, 2)
	if req.SystemInstruction != "" {
		messages = append(messages, &request.Message{Role: "system", Content: req.SystemInstruction})
	}
	messages = append(messages, &request.Message{Role: "user", Content: prompt})

	// Формируем запрос к DeepSeek API; модели Gemini из запроса здесь неприменимы
	temperature := d.temperature
	chatReq := &request.ChatCompletionsRequest{
		Model:       d.modelName,
		Stream:      false,
		Messages:    messages,
		MaxTokens:   d.maxTokens,
		Temperature: &temperature,
	}

	// Отправляем запрос
	resp, err := d.client.CallChatCompletionsChat(ctx, chatReq)
	if err != nil {
		err = classifyChatError(err)
		logrus.WithError(err).Error("Error calling DeepSeek")
		return nil, err
	}

	// Пустой список вариантов не ошибка транспорта, нормализатор вернет ErrEmptyResponse
	if len(resp.Choices) == 0 {
		return textResponse("", "", d.modelName), nil
	}
	return textResponse(resp.Choices[0].Message.Content, "STOP", d.modelName), nil
}
