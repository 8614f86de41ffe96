// Package request shapes one user turn into a GenerationRequest.
package request

import (
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/constant"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"strings"
)

const (
	DefaultChatModel  = "gemini-2.5-flash"       // General-purpose conversational model
	DefaultImageModel = "gemini-2.5-flash-image" // Image-capable model
)

// Builder selects the model and modality configuration for a turn.
type Builder struct {
	chatModel  string
	imageModel string
	persona    string
	tools      []models.FunctionDeclaration
}

// Option configures a Builder.
type Option func(*Builder)

// WithModels overrides the two model identifiers; blank values keep the defaults.
func WithModels(chatModel, imageModel string) Option {
	return func(b *Builder) {
		if strings.TrimSpace(chatModel) != "" {
			b.chatModel = strings.TrimSpace(chatModel)
		}
		if strings.TrimSpace(imageModel) != "" {
			b.imageModel = strings.TrimSpace(imageModel)
		}
	}
}

// WithTools enables the tool-augmented variant of conversational requests.
func WithTools(decls ...models.FunctionDeclaration) Option {
	return func(b *Builder) {
		b.tools = append(b.tools, decls...)
	}
}

// NewBuilder creates a Builder with the default models and the GramGPT persona.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		chatModel:  DefaultChatModel,
		imageModel: DefaultImageModel,
		persona:    constant.Persona,
	}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.tools) > 0 {
		b.persona = constant.Persona + "\n" + constant.PersonaToolHint
	}
	return b
}

// Build assembles the request for a turn. The attachment part goes first, then the text part.
// A pure drawing request (image intent, no attachment) targets the image model with IMAGE
// output and no system instruction; everything else is a conversational request.
func (b *Builder) Build(attachment *models.InlineData, text string, wantsImage bool) (models.GenerationRequest, error) {
	hasText := strings.TrimSpace(text) != ""
	if attachment == nil && !hasText {
		return models.GenerationRequest{}, fmt.Errorf("%w: neither text nor attachment", models.ErrInvalidRequest)
	}

	parts := make([]models.ContentPart, 0, 2)
	if attachment != nil {
		if attachment.MimeType == "" {
			return models.GenerationRequest{}, fmt.Errorf("%w: attachment without media type", models.ErrInvalidRequest)
		}
		parts = append(parts, models.NewInlinePart(*attachment))
	}
	if hasText {
		parts = append(parts, models.NewTextPart(text))
	}

	if wantsImage && attachment == nil {
		return models.GenerationRequest{
			Model:      b.imageModel,
			Parts:      parts,
			Modalities: []models.Modality{models.ModalityImage},
		}, nil
	}

	req := models.GenerationRequest{
		Model:             b.chatModel,
		Parts:             parts,
		Modalities:        []models.Modality{models.ModalityText},
		SystemInstruction: b.persona,
	}
	if len(b.tools) > 0 {
		req.Tools = append([]models.FunctionDeclaration(nil), b.tools...)
	}
	return req, nil
}

// BuildToolFollowUp builds the second round of the tool protocol: the original parts, the
// model's tool call and the tool result, asking the image model for a picture plus a summary.
func (b *Builder) BuildToolFollowUp(first models.GenerationRequest, call models.FunctionCall, result models.FunctionResponse) (models.GenerationRequest, error) {
	if len(first.Parts) == 0 {
		return models.GenerationRequest{}, fmt.Errorf("%w: follow-up without original parts", models.ErrInvalidRequest)
	}
	parts := make([]models.ContentPart, len(first.Parts))
	copy(parts, first.Parts)

	return models.GenerationRequest{
		Model:        b.imageModel,
		Parts:        parts,
		Modalities:   []models.Modality{models.ModalityText, models.ModalityImage},
		ToolCall:     &call,
		ToolResponse: &result,
	}, nil
}

// Models returns the conversational and image model identifiers.
func (b *Builder) Models() (chatModel, imageModel string) {
	return b.chatModel, b.imageModel
}
