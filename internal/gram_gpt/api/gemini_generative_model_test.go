package api

import (
	"context"
	"errors"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"google.golang.org/genai"
	"testing"
)

type fakeGenerator struct {
	calls    int
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	resp     *genai.GenerateContentResponse
	err      error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func TestGeminiAPI_RequestConversion(t *testing.T) {
	fake := &fakeGenerator{resp: &genai.GenerateContentResponse{}}
	g := newGeminiAPI(fake, "fallback-model", 256, 0.5)

	req := models.GenerationRequest{
		Model: "gemini-2.5-flash",
		Parts: []models.ContentPart{
			models.NewInlinePart(models.InlineData{Data: "AAEC", MimeType: "image/png"}),
			models.NewTextPart("এটা কী?"),
		},
		Modalities:        []models.Modality{models.ModalityText},
		SystemInstruction: "persona",
		Tools: []models.FunctionDeclaration{{
			Name: "getWeather",
			Parameters: &models.Schema{
				Type:       models.TypeObject,
				Properties: map[string]*models.Schema{"location": {Type: models.TypeString}},
				Required:   []string{"location"},
			},
		}},
	}
	if _, err := g.GenerateContent(context.Background(), req); err != nil {
		t.Fatalf("GenerateContent returned error: %v", err)
	}

	if fake.calls != 1 || fake.model != "gemini-2.5-flash" {
		t.Errorf("Unexpected call: calls=%d model=%q", fake.calls, fake.model)
	}
	if len(fake.contents) != 1 || len(fake.contents[0].Parts) != 2 {
		t.Fatalf("Expected one user content with 2 parts, got %+v", fake.contents)
	}
	img := fake.contents[0].Parts[0].InlineData
	if img == nil || img.MIMEType != "image/png" || string(img.Data) != "\x00\x01\x02" {
		t.Errorf("Inline data not decoded: %+v", img)
	}
	if fake.contents[0].Parts[1].Text != "এটা কী?" {
		t.Errorf("Unexpected text part %q", fake.contents[0].Parts[1].Text)
	}

	cfg := fake.config
	if cfg.MaxOutputTokens != 256 || cfg.Temperature == nil || *cfg.Temperature != 0.5 {
		t.Errorf("Generation options not applied: %+v", cfg)
	}
	if len(cfg.ResponseModalities) != 1 || cfg.ResponseModalities[0] != "TEXT" {
		t.Errorf("Unexpected modalities %v", cfg.ResponseModalities)
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "persona" {
		t.Error("System instruction not forwarded")
	}
	if len(cfg.Tools) != 1 || cfg.Tools[0].FunctionDeclarations[0].Parameters.Properties["location"].Type != genai.TypeString {
		t.Error("Tool declaration not forwarded")
	}
}

func TestGeminiAPI_ToolFollowUpContents(t *testing.T) {
	fake := &fakeGenerator{resp: &genai.GenerateContentResponse{}}
	g := newGeminiAPI(fake, "", 0, -1)

	_, err := g.GenerateContent(context.Background(), models.GenerationRequest{
		Parts:        []models.ContentPart{models.NewTextPart("ঢাকার আবহাওয়া")},
		ToolCall:     &models.FunctionCall{Name: "getWeather", Args: map[string]any{"location": "ঢাকা"}},
		ToolResponse: &models.FunctionResponse{Name: "getWeather", Response: map[string]any{"result": "ok"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(fake.contents) != 3 {
		t.Fatalf("Expected user, model and function response contents, got %d", len(fake.contents))
	}
	if fake.contents[1].Role != string(genai.RoleModel) || fake.contents[1].Parts[0].FunctionCall == nil {
		t.Error("Second content must be the model function call")
	}
	if fake.contents[2].Parts[0].FunctionResponse == nil || fake.contents[2].Parts[0].FunctionResponse.Name != "getWeather" {
		t.Error("Third content must carry the function response")
	}
	if fake.config.Temperature != nil {
		t.Error("Out of range temperature must not be sent")
	}
}

func TestGeminiAPI_ResponseConversion(t *testing.T) {
	fake := &fakeGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{
				{Text: "reasoning", Thought: true},
				{Text: "বৃষ্টি হবে"},
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{0, 1, 2}}},
				{FunctionCall: &genai.FunctionCall{Name: "getWeather", Args: map[string]any{"location": "ঢাকা"}}},
			}},
			FinishReason: genai.FinishReasonStop,
		}},
		PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: "BLOCKED_REASON_UNSPECIFIED"},
		ModelVersion:   "gemini-2.5-flash-image",
	}}

	resp, err := newGeminiAPI(fake, "", 0, 0).GenerateContent(context.Background(), models.GenerationRequest{
		Parts: []models.ContentPart{models.NewTextPart("x")},
	})
	if err != nil {
		t.Fatal(err)
	}

	parts := resp.Candidates[0].Content.Parts
	if len(parts) != 3 {
		t.Fatalf("Expected thought part to be dropped, got %d parts", len(parts))
	}
	if parts[1].InlineData == nil || parts[1].InlineData.Data != "AAEC" {
		t.Errorf("Inline data not re-encoded: %+v", parts[1].InlineData)
	}
	if resp.Text != "বৃষ্টি হবে" {
		t.Errorf("Unexpected aggregated text %q", resp.Text)
	}
	if call, ok := resp.FirstFunctionCall(); !ok || call.Name != "getWeather" {
		t.Error("Function call not exposed")
	}
	if resp.PromptFeedback == nil || resp.PromptFeedback.BlockReason != "" {
		t.Error("Unspecified block reason must not be reported as a block")
	}
}

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"invalid key", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}, models.ErrAuthentication},
		{"unauthenticated", genai.APIError{Code: 401, Status: "UNAUTHENTICATED"}, models.ErrAuthentication},
		{"forbidden pointer", &genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, models.ErrAuthentication},
		{"server error", genai.APIError{Code: 500, Status: "INTERNAL"}, models.ErrTransport},
		{"network", errors.New("dial tcp: connection refused"), models.ErrTransport},
		{"deadline", context.DeadlineExceeded, models.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeGenerator{err: tt.err}
			_, err := newGeminiAPI(fake, "m", 0, 0).GenerateContent(context.Background(), models.GenerationRequest{
				Parts: []models.ContentPart{models.NewTextPart("x")},
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestTextOnlyProviders_RejectImages(t *testing.T) {
	req := models.GenerationRequest{
		Parts:      []models.ContentPart{models.NewTextPart("একটি ছবি আঁকো")},
		Modalities: []models.Modality{models.ModalityImage},
	}
	if _, err := textOnlyPrompt("deepseek", req); !errors.Is(err, models.ErrUnsupportedModality) {
		t.Errorf("Expected ErrUnsupportedModality for image output, got %v", err)
	}

	req = models.GenerationRequest{
		Parts: []models.ContentPart{models.NewInlinePart(models.InlineData{Data: "AA==", MimeType: "image/png"})},
	}
	if _, err := textOnlyPrompt("openrouter", req); !errors.Is(err, models.ErrUnsupportedModality) {
		t.Errorf("Expected ErrUnsupportedModality for image input, got %v", err)
	}

	if !errors.Is(classifyChatError(errors.New("status 401 Unauthorized")), models.ErrAuthentication) {
		t.Error("Expected 401 to map to ErrAuthentication")
	}
	if !errors.Is(classifyChatError(errors.New("timeout")), models.ErrTransport) {
		t.Error("Expected generic failure to map to ErrTransport")
	}
}
