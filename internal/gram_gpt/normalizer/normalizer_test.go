package normalizer

import (
	"errors"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"testing"
)

func image(mime string) models.Part {
	return models.Part{InlineData: &models.InlineData{Data: "AAEC", MimeType: mime}}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		resp *models.GenerateContentResponse
		want Shape
	}{
		{"nil", nil, ShapeEmpty},
		{"empty", &models.GenerateContentResponse{}, ShapeEmpty},
		{"text only", &models.GenerateContentResponse{Text: "hi"}, ShapeText},
		{"candidates", &models.GenerateContentResponse{
			Candidates: []models.Candidate{{Content: models.Content{Parts: []models.Part{{Text: "a"}}}}},
			Text:       "a",
		}, ShapeCandidates},
		{"block beats candidates", &models.GenerateContentResponse{
			PromptFeedback: &models.PromptFeedback{BlockReason: "SAFETY"},
			Candidates:     []models.Candidate{{Content: models.Content{Parts: []models.Part{{Text: "a"}}}}},
		}, ShapeBlocked},
		{"safety finish without parts", &models.GenerateContentResponse{
			Candidates: []models.Candidate{{FinishReason: "SAFETY"}},
		}, ShapeBlocked},
		{"empty candidate falls back to text", &models.GenerateContentResponse{
			Candidates: []models.Candidate{{FinishReason: "STOP"}},
			Text:       "fallback",
		}, ShapeText},
		{"feedback without reason", &models.GenerateContentResponse{
			PromptFeedback: &models.PromptFeedback{},
			Text:           "ok",
		}, ShapeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.resp); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize_PartsInOrder(t *testing.T) {
	resp := &models.GenerateContentResponse{
		Candidates: []models.Candidate{{Content: models.Content{Parts: []models.Part{
			{Text: "ঢাকায় আজ বৃষ্টি"},
			image("image/png"),
			{Text: "ছাতা নিয়ে বের হবেন"},
		}}}},
	}

	res, err := NewNormalizer(KeepFirstImage).Normalize(resp)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(res.Parts) != 3 {
		t.Fatalf("Expected 3 parts, got %d", len(res.Parts))
	}
	if res.Parts[0].Text() != "ঢাকায় আজ বৃষ্টি" || !res.Parts[1].IsInline() || res.Parts[2].Text() != "ছাতা নিয়ে বের হবেন" {
		t.Errorf("Parts are out of order: %+v", res.Parts)
	}
}

func TestNormalize_ImagePolicy(t *testing.T) {
	resp := &models.GenerateContentResponse{
		Candidates: []models.Candidate{{Content: models.Content{Parts: []models.Part{
			image("image/png"), {Text: "two pictures"}, image("image/jpeg"),
		}}}},
	}

	first, err := NewNormalizer(KeepFirstImage).Normalize(resp)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Parts) != 2 {
		t.Errorf("KeepFirstImage: expected 2 parts, got %d", len(first.Parts))
	}

	all, err := NewNormalizer(KeepAllImages).Normalize(resp)
	if err != nil {
		t.Fatal(err)
	}
	if len(all.Parts) != 3 {
		t.Errorf("KeepAllImages: expected 3 parts, got %d", len(all.Parts))
	}
}

func TestNormalize_Blocked(t *testing.T) {
	resp := &models.GenerateContentResponse{
		PromptFeedback: &models.PromptFeedback{BlockReason: "SAFETY", BlockReasonMessage: "unsafe"},
		Candidates:     []models.Candidate{{Content: models.Content{Parts: []models.Part{{Text: "ignored"}}}}},
	}

	_, err := NewNormalizer(KeepFirstImage).Normalize(resp)
	if !errors.Is(err, models.ErrSafetyBlocked) {
		t.Fatalf("Expected ErrSafetyBlocked, got %v", err)
	}
	var blocked *models.SafetyBlockedError
	if !errors.As(err, &blocked) || !blocked.IsSafety() || blocked.Message != "unsafe" {
		t.Errorf("Unexpected block error %+v", blocked)
	}

	_, err = NewNormalizer(KeepFirstImage).Normalize(&models.GenerateContentResponse{
		PromptFeedback: &models.PromptFeedback{BlockReason: "OTHER"},
	})
	if !errors.As(err, &blocked) || blocked.IsSafety() {
		t.Errorf("Expected non-safety block, got %v", err)
	}
}

func TestNormalize_TextFallbackAndEmpty(t *testing.T) {
	n := NewNormalizer(KeepFirstImage)

	res, err := n.Normalize(&models.GenerateContentResponse{Text: "শুধু লেখা"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Parts) != 1 || res.Parts[0].Text() != "শুধু লেখা" {
		t.Errorf("Unexpected text fallback %+v", res.Parts)
	}

	if _, err = n.Normalize(&models.GenerateContentResponse{}); !errors.Is(err, models.ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}

	onlyCall := &models.GenerateContentResponse{
		Candidates: []models.Candidate{{Content: models.Content{Parts: []models.Part{
			{FunctionCall: &models.FunctionCall{Name: "getWeather"}},
		}}}},
	}
	if _, err = n.Normalize(onlyCall); !errors.Is(err, models.ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse for function call only, got %v", err)
	}
}

func TestNormalize_EmptyCandidatePartsUseAggregatedText(t *testing.T) {
	resp := &models.GenerateContentResponse{
		Text: "উত্তর",
		Candidates: []models.Candidate{{Content: models.Content{Parts: []models.Part{
			{Text: ""},
		}}}},
	}
	if shape := Classify(resp); shape != ShapeCandidates {
		t.Fatalf("Expected candidates shape, got %v", shape)
	}

	res, err := NewNormalizer(KeepFirstImage).Normalize(resp)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(res.Parts) != 1 || res.Parts[0].Text() != "উত্তর" {
		t.Errorf("Expected aggregated text, got %+v", res.Parts)
	}
}

func TestParseImagePolicy(t *testing.T) {
	for in, want := range map[string]ImagePolicy{"": KeepFirstImage, "first": KeepFirstImage, " ALL ": KeepAllImages} {
		got, err := ParseImagePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseImagePolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseImagePolicy("some"); err == nil {
		t.Error("Expected error for unknown policy")
	}
}
