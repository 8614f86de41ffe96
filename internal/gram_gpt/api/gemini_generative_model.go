package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
	"net/http"
	"strings"
)

// DefaultGeminiModel is used when a request does not name its model.
const DefaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the part of genai.Models used by GeminiAPI.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiAPI представляет структуру для работы с Gemini API
type GeminiAPI struct {
	generator   contentGenerator // Клиент для генерации контента
	modelName   string           // Модель по умолчанию, если запрос её не указал
	maxTokens   int              // Максимальное количество токенов (опционально)
	temperature float32          // Температура для управления креативностью (опционально)
}

// NewGeminiAPI создает новый экземпляр GeminiAPI
func NewGeminiAPI(apiKey string, modelName string, maxTokens int, temperature float32) (*GeminiAPI, error) {
	// Создаем контекст
	ctx := context.Background()

	// Инициализируем клиент
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return newGeminiAPI(client.Models, modelName, maxTokens, temperature), nil
}

func newGeminiAPI(gen contentGenerator, modelName string, maxTokens int, temperature float32) *GeminiAPI {
	return &GeminiAPI{
		generator:   gen,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// GenerateContent sends one request to Gemini and converts the reply to the common response shape.
func (g *GeminiAPI) GenerateContent(ctx context.Context, req models.GenerationRequest) (*models.GenerateContentResponse, error) {
	contents, err := geminiContents(req)
	if err != nil {
		return nil, err
	}
	model := req.Model
	if model == "" {
		model = g.modelName
	}

	resp, err := g.generator.GenerateContent(ctx, model, contents, g.config(req))
	if err != nil {
		err = classifyGeminiError(err)
		logrus.WithError(err).WithField("model", model).Error("Error calling Gemini")
		return nil, err
	}
	return fromGeminiResponse(resp), nil
}

func (g *GeminiAPI) config(req models.GenerationRequest) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	// Настраиваем параметры модели (опционально)
	if g.maxTokens > 0 {
		cfg.MaxOutputTokens = int32(g.maxTokens)
	}
	if g.temperature >= 0 && g.temperature <= 1 {
		temperature := g.temperature
		cfg.Temperature = &temperature
	}
	for _, m := range req.Modalities {
		cfg.ResponseModalities = append(cfg.ResponseModalities, string(m))
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, d := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  toGeminiSchema(d.Parameters),
			})
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return cfg
}

// geminiContents builds the conversation sent to the model: the user parts, and on the
// tool follow-up round the model's function call and the function response.
func geminiContents(req models.GenerationRequest) ([]*genai.Content, error) {
	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		if data, ok := p.InlineData(); ok {
			raw, err := data.Bytes()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", models.ErrEncoding, err)
			}
			parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: data.MimeType, Data: raw}})
			continue
		}
		parts = append(parts, genai.NewPartFromText(p.Text()))
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: request without parts", models.ErrInvalidRequest)
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	if req.ToolCall != nil && req.ToolResponse != nil {
		contents = append(contents,
			genai.NewContentFromParts([]*genai.Part{{FunctionCall: &genai.FunctionCall{
				Name: req.ToolCall.Name,
				Args: req.ToolCall.Args,
			}}}, genai.RoleModel),
			genai.NewContentFromParts([]*genai.Part{{FunctionResponse: &genai.FunctionResponse{
				Name:     req.ToolResponse.Name,
				Response: req.ToolResponse.Response,
			}}}, genai.RoleUser),
		)
	}
	return contents, nil
}

func toGeminiSchema(s *models.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genai.Type(s.Type),
		Description: s.Description,
		Required:    s.Required,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGeminiSchema(prop)
		}
	}
	return out
}

// fromGeminiResponse copies the SDK response into the provider-agnostic shape.
func fromGeminiResponse(resp *genai.GenerateContentResponse) *models.GenerateContentResponse {
	out := &models.GenerateContentResponse{}
	if resp == nil {
		return out
	}
	out.ModelVersion = resp.ModelVersion

	if resp.PromptFeedback != nil {
		out.PromptFeedback = &models.PromptFeedback{
			BlockReason:        blockReason(string(resp.PromptFeedback.BlockReason)),
			BlockReasonMessage: resp.PromptFeedback.BlockReasonMessage,
			SafetyRatings:      fromGeminiRatings(resp.PromptFeedback.SafetyRatings),
		}
	}
	if resp.UsageMetadata != nil {
		out.UsageMetadata = models.UsageMetadata{
			PromptTokenCount:     resp.UsageMetadata.PromptTokenCount,
			CandidatesTokenCount: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokenCount:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	var texts []string
	for i, c := range resp.Candidates {
		if c == nil {
			continue
		}
		candidate := models.Candidate{
			FinishReason:  string(c.FinishReason),
			SafetyRatings: fromGeminiRatings(c.SafetyRatings),
		}
		if c.Content != nil {
			candidate.Content.Role = c.Content.Role
			for _, p := range c.Content.Parts {
				part, ok := fromGeminiPart(p)
				if !ok {
					continue
				}
				candidate.Content.Parts = append(candidate.Content.Parts, part)
				// Агрегируем только первого кандидата, как это делает SDK
				if i == 0 && part.Text != "" {
					texts = append(texts, part.Text)
				}
				if i == 0 && part.FunctionCall != nil {
					out.FunctionCalls = append(out.FunctionCalls, *part.FunctionCall)
				}
			}
		}
		out.Candidates = append(out.Candidates, candidate)
	}
	out.Text = strings.Join(texts, "")
	return out
}

func fromGeminiPart(p *genai.Part) (models.Part, bool) {
	switch {
	case p == nil:
		return models.Part{}, false
	case p.Thought:
		return models.Part{}, false
	case p.InlineData != nil:
		return models.Part{InlineData: &models.InlineData{
			Data:     encodeBase64(p.InlineData.Data),
			MimeType: p.InlineData.MIMEType,
		}}, true
	case p.FunctionCall != nil:
		return models.Part{FunctionCall: &models.FunctionCall{
			Name: p.FunctionCall.Name,
			Args: p.FunctionCall.Args,
		}}, true
	case p.Text != "":
		return models.Part{Text: p.Text}, true
	}
	return models.Part{}, false
}

func fromGeminiRatings(ratings []*genai.SafetyRating) []models.SafetyRating {
	out := make([]models.SafetyRating, 0, len(ratings))
	for _, r := range ratings {
		if r == nil {
			continue
		}
		out = append(out, models.SafetyRating{
			Category:    string(r.Category),
			Probability: string(r.Probability),
			Blocked:     r.Blocked,
		})
	}
	return out
}

// blockReason drops the "unspecified" value, which the API sends when nothing was blocked.
func blockReason(reason string) string {
	if reason == "BLOCKED_REASON_UNSPECIFIED" {
		return ""
	}
	return reason
}

// classifyGeminiError maps SDK failures onto the turn-level error classes.
func classifyGeminiError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", models.ErrTransport, err)
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		return fmt.Errorf("%w: %w", models.ErrTransport, err)
	}

	if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden ||
		apiErr.Status == "UNAUTHENTICATED" || apiErr.Status == "PERMISSION_DENIED" ||
		strings.Contains(apiErr.Message, "API key not valid") {
		return fmt.Errorf("%w: %w", models.ErrAuthentication, err)
	}
	return fmt.Errorf("%w: %w", models.ErrTransport, err)
}
