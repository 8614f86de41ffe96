// Package normalizer turns a raw provider response into display-ready content parts.
package normalizer

import (
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"github.com/sirupsen/logrus"
	"strings"
)

// Shape is the decoded kind of a raw response.
type Shape int

const (
	ShapeEmpty      Shape = iota // Nothing usable
	ShapeBlocked                 // Prompt or candidate blocked by the provider
	ShapeCandidates              // First candidate carries parts
	ShapeText                    // Only the aggregated text is present
)

func (s Shape) String() string {
	switch s {
	case ShapeBlocked:
		return "blocked"
	case ShapeCandidates:
		return "candidates"
	case ShapeText:
		return "text"
	default:
		return "empty"
	}
}

// ImagePolicy decides how many inline images of one response reach the user.
type ImagePolicy int

const (
	KeepFirstImage ImagePolicy = iota
	KeepAllImages
)

// ParseImagePolicy reads the IMAGE_POLICY setting: "first" (or empty) and "all".
func ParseImagePolicy(s string) (ImagePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return KeepFirstImage, nil
	case "all":
		return KeepAllImages, nil
	}
	return KeepFirstImage, fmt.Errorf("unknown image policy %q (expected 'first' or 'all')", s)
}

// Normalizer flattens responses according to its image policy.
type Normalizer struct {
	policy ImagePolicy
}

// NewNormalizer creates a Normalizer with the given image policy.
func NewNormalizer(policy ImagePolicy) *Normalizer {
	return &Normalizer{policy: policy}
}

// Classify decodes the response shape. Order matters: a block wins over candidates,
// candidates win over the aggregated text.
func Classify(resp *models.GenerateContentResponse) Shape {
	if resp == nil {
		return ShapeEmpty
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return ShapeBlocked
	}
	if len(resp.Candidates) > 0 {
		first := resp.Candidates[0]
		if len(first.Content.Parts) > 0 {
			return ShapeCandidates
		}
		if first.FinishReason == models.BlockReasonSafety {
			return ShapeBlocked
		}
	}
	if resp.Text != "" {
		return ShapeText
	}
	return ShapeEmpty
}

// Normalize returns the display parts of the response or the error that explains why
// there are none.
func (n *Normalizer) Normalize(resp *models.GenerateContentResponse) (models.GenerationResult, error) {
	switch Classify(resp) {
	case ShapeBlocked:
		return models.GenerationResult{}, blockError(resp)
	case ShapeCandidates:
		parts := n.flatten(resp.Candidates[0].Content.Parts)
		if len(parts) == 0 && resp.Text != "" {
			// Нечего показать из частей, используем агрегированный текст
			return models.GenerationResult{Parts: []models.ContentPart{models.NewTextPart(resp.Text)}}, nil
		}
		if len(parts) == 0 {
			return models.GenerationResult{}, fmt.Errorf("%w: candidate has no displayable parts", models.ErrEmptyResponse)
		}
		return models.GenerationResult{Parts: parts}, nil
	case ShapeText:
		return models.GenerationResult{Parts: []models.ContentPart{models.NewTextPart(resp.Text)}}, nil
	default:
		return models.GenerationResult{}, models.ErrEmptyResponse
	}
}

func (n *Normalizer) flatten(raw []models.Part) []models.ContentPart {
	parts := make([]models.ContentPart, 0, len(raw))
	seenImage := false
	for _, p := range raw {
		switch {
		case p.InlineData != nil:
			if seenImage && n.policy == KeepFirstImage {
				logrus.Debug("Extra inline image dropped by image policy")
				continue
			}
			if p.InlineData.MimeType == "" {
				logrus.Warn("Inline part without media type skipped")
				continue
			}
			seenImage = true
			parts = append(parts, models.NewInlinePart(*p.InlineData))
		case p.FunctionCall != nil:
			logrus.WithField("function", p.FunctionCall.Name).Warn("Function call part is not displayable, skipped")
		case p.Text != "":
			parts = append(parts, models.NewTextPart(p.Text))
		}
	}
	return parts
}

func blockError(resp *models.GenerateContentResponse) error {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return &models.SafetyBlockedError{
			Reason:  resp.PromptFeedback.BlockReason,
			Message: resp.PromptFeedback.BlockReasonMessage,
		}
	}
	return &models.SafetyBlockedError{Reason: resp.Candidates[0].FinishReason}
}
