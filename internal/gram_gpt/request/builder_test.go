package request

import (
	"errors"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/constant"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/intent"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"strings"
	"testing"
)

var weatherDecl = models.FunctionDeclaration{
	Name: "getWeather",
	Parameters: &models.Schema{
		Type:       models.TypeObject,
		Properties: map[string]*models.Schema{"location": {Type: models.TypeString}},
		Required:   []string{"location"},
	},
}

func TestBuild_ConversationalScenario(t *testing.T) {
	prompt := "আজকের আবহাওয়া কেমন?"
	wants := intent.NewClassifier(nil, false).WantsImageGeneration(prompt)
	if wants {
		t.Fatal("Expected no image intent for a weather question")
	}

	req, err := NewBuilder().Build(nil, prompt, wants)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if req.Model != DefaultChatModel {
		t.Errorf("Expected chat model %q, got %q", DefaultChatModel, req.Model)
	}
	if req.SystemInstruction != constant.Persona {
		t.Errorf("Expected persona system instruction, got %q", req.SystemInstruction)
	}
	if !req.WantsModality(models.ModalityText) || req.WantsModality(models.ModalityImage) {
		t.Errorf("Expected TEXT modality only, got %v", req.Modalities)
	}
	if len(req.Tools) != 0 {
		t.Errorf("Expected no tools without the tool variant, got %v", req.Tools)
	}
}

func TestBuild_ImageScenario(t *testing.T) {
	prompt := "একটি ছবি আঁকো"
	wants := intent.NewClassifier(nil, false).WantsImageGeneration(prompt)
	if !wants {
		t.Fatal("Expected image intent for a drawing request")
	}

	req, err := NewBuilder(WithTools(weatherDecl)).Build(nil, prompt, wants)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if req.Model != DefaultImageModel {
		t.Errorf("Expected image model %q, got %q", DefaultImageModel, req.Model)
	}
	if len(req.Modalities) != 1 || req.Modalities[0] != models.ModalityImage {
		t.Errorf("Expected IMAGE modality only, got %v", req.Modalities)
	}
	if req.SystemInstruction != "" {
		t.Errorf("Expected no system instruction, got %q", req.SystemInstruction)
	}
	if len(req.Tools) != 0 {
		t.Error("Pure drawing requests must not carry tools")
	}
}

func TestBuild_AttachmentWithDrawWordIsConversational(t *testing.T) {
	att := &models.InlineData{Data: "AAEC", MimeType: "image/png"}

	req, err := NewBuilder().Build(att, "এই ছবিতে কী রোগ?", true)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if req.Model != DefaultChatModel {
		t.Errorf("Expected chat model for attachment turns, got %q", req.Model)
	}
	if len(req.Parts) != 2 {
		t.Fatalf("Expected 2 parts, got %d", len(req.Parts))
	}
	if !req.Parts[0].IsInline() || !req.Parts[1].IsText() {
		t.Error("Expected attachment part first and text part second")
	}
}

func TestBuild_PartsAndModelInvariant(t *testing.T) {
	att := &models.InlineData{Data: "AAEC", MimeType: "image/jpeg"}
	b := NewBuilder(WithModels("chat-x", "image-x"))
	chat, image := b.Models()

	inputs := []struct {
		att   *models.InlineData
		text  string
		wants bool
	}{
		{nil, "hello", false},
		{nil, "draw", true},
		{att, "", false},
		{att, "", true},
		{att, "text", false},
		{att, "text", true},
	}
	for _, in := range inputs {
		req, err := b.Build(in.att, in.text, in.wants)
		if err != nil {
			t.Fatalf("Build(%v, %q, %v) returned error: %v", in.att != nil, in.text, in.wants, err)
		}
		if len(req.Parts) < 1 {
			t.Errorf("Build(%v, %q, %v) produced no parts", in.att != nil, in.text, in.wants)
		}
		if req.Model != chat && req.Model != image {
			t.Errorf("Unexpected model %q", req.Model)
		}
	}
}

func TestBuild_EmptyTurnRejected(t *testing.T) {
	for _, text := range []string{"", "   \n"} {
		if _, err := NewBuilder().Build(nil, text, false); !errors.Is(err, models.ErrInvalidRequest) {
			t.Errorf("Expected ErrInvalidRequest for %q, got %v", text, err)
		}
	}
	if _, err := NewBuilder().Build(&models.InlineData{Data: "AA=="}, "", false); !errors.Is(err, models.ErrInvalidRequest) {
		t.Errorf("Expected ErrInvalidRequest for attachment without media type, got %v", err)
	}
}

func TestBuild_ToolVariant(t *testing.T) {
	req, err := NewBuilder(WithTools(weatherDecl)).Build(nil, "ঢাকার আবহাওয়া কেমন?", false)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(req.Tools) != 1 || req.Tools[0].Name != "getWeather" {
		t.Fatalf("Expected getWeather declaration, got %v", req.Tools)
	}
	if !strings.HasPrefix(req.SystemInstruction, constant.Persona) || !strings.Contains(req.SystemInstruction, "getWeather") {
		t.Errorf("Expected persona with tool hint, got %q", req.SystemInstruction)
	}
}

func TestBuildToolFollowUp(t *testing.T) {
	b := NewBuilder(WithTools(weatherDecl))
	first, err := b.Build(nil, "ঢাকার আবহাওয়া কেমন?", false)
	if err != nil {
		t.Fatal(err)
	}
	call := models.FunctionCall{Name: "getWeather", Args: map[string]any{"location": "ঢাকা"}}
	result := models.FunctionResponse{Name: "getWeather", Response: map[string]any{"result": "ok"}}

	next, err := b.BuildToolFollowUp(first, call, result)
	if err != nil {
		t.Fatalf("BuildToolFollowUp returned error: %v", err)
	}
	if next.Model != DefaultImageModel {
		t.Errorf("Expected image model on follow-up, got %q", next.Model)
	}
	if !next.WantsModality(models.ModalityImage) {
		t.Error("Expected follow-up to request image output")
	}
	if next.ToolResponse == nil || next.ToolResponse.Name != "getWeather" || next.ToolCall == nil {
		t.Error("Expected tool call and response on follow-up")
	}
	if len(next.Tools) != 0 {
		t.Error("Follow-up must not declare tools again")
	}
	if next.PromptText() != first.PromptText() {
		t.Errorf("Expected original prompt to be kept, got %q", next.PromptText())
	}
}
