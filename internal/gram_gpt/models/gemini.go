package models

// GenerateContentResponse представляет ответ генеративного API, приведённый к общему виду.
// Each provider fills the fields it has; the normalizer decides which shape it is.
type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	Text           string          `json:"text,omitempty"`          // Aggregated text, if the provider exposes it
	FunctionCalls  []FunctionCall  `json:"functionCalls,omitempty"` // Tool calls requested by the model
	UsageMetadata  UsageMetadata   `json:"usageMetadata"`
	ModelVersion   string          `json:"modelVersion"`
}

// Candidate представляет сгенерированный контент
type Candidate struct {
	Content       Content        `json:"content"`
	FinishReason  string         `json:"finishReason"`
	SafetyRatings []SafetyRating `json:"safetyRatings"`
}

// Content содержит части сгенерированного контента
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is one raw response part: text, inline data or a function call.
type Part struct {
	Text         string        `json:"text,omitempty"`
	InlineData   *InlineData   `json:"inlineData,omitempty"`
	FunctionCall *FunctionCall `json:"functionCall,omitempty"`
}

// SafetyRating представляет оценку безопасности
type SafetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
	Blocked     bool   `json:"blocked,omitempty"`
}

// PromptFeedback содержит обратную связь по запросу
type PromptFeedback struct {
	BlockReason        string         `json:"blockReason,omitempty"`
	BlockReasonMessage string         `json:"blockReasonMessage,omitempty"`
	SafetyRatings      []SafetyRating `json:"safetyRatings"`
}

// UsageMetadata содержит статистику использования
type UsageMetadata struct {
	PromptTokenCount     int32 `json:"promptTokenCount"`
	CandidatesTokenCount int32 `json:"candidatesTokenCount"`
	TotalTokenCount      int32 `json:"totalTokenCount"`
}

// FirstFunctionCall returns the first tool call of the response, looking at the
// aggregated list first and at the first candidate's parts second.
func (r *GenerateContentResponse) FirstFunctionCall() (FunctionCall, bool) {
	if r == nil {
		return FunctionCall{}, false
	}
	if len(r.FunctionCalls) > 0 {
		return r.FunctionCalls[0], true
	}
	if len(r.Candidates) == 0 {
		return FunctionCall{}, false
	}
	for _, part := range r.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			return *part.FunctionCall, true
		}
	}
	return FunctionCall{}, false
}
