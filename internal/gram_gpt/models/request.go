package models

import (
	"fmt"
	"strings"
)

// Modality is the output kind requested from the generation provider.
type Modality string

const (
	ModalityText  Modality = "TEXT"
	ModalityImage Modality = "IMAGE"
)

// SchemaType enumerates the parameter types usable in function declarations.
type SchemaType string

const (
	TypeObject SchemaType = "OBJECT"
	TypeString SchemaType = "STRING"
)

// Schema describes a function parameter tree.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// FunctionDeclaration describes a callable the model may request before finalizing its answer.
type FunctionDeclaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// FunctionCall is a tool invocation requested by the model.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// StringArg returns a string argument or an empty string when it is absent or not a string.
func (c FunctionCall) StringArg(name string) string {
	v, ok := c.Args[name]
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return ""
	}
}

// FunctionResponse carries a tool result back to the model.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// GenerationRequest is the closed set of options recognised for one provider call.
// It is built fresh per turn and never persisted.
type GenerationRequest struct {
	Model             string                `json:"model"`
	Parts             []ContentPart         `json:"parts"`
	Modalities        []Modality            `json:"modalities,omitempty"`
	SystemInstruction string                `json:"systemInstruction,omitempty"`
	Tools             []FunctionDeclaration `json:"tools,omitempty"`
	ToolCall          *FunctionCall         `json:"toolCall,omitempty"`     // set only on the tool follow-up round
	ToolResponse      *FunctionResponse     `json:"toolResponse,omitempty"` // set only on the tool follow-up round
}

// WantsModality reports whether the request asks for the given output modality.
func (r GenerationRequest) WantsModality(m Modality) bool {
	for _, v := range r.Modalities {
		if v == m {
			return true
		}
	}
	return false
}

// HasInlineData reports whether any request part carries an attachment.
func (r GenerationRequest) HasInlineData() bool {
	for _, p := range r.Parts {
		if p.IsInline() {
			return true
		}
	}
	return false
}

// PromptText joins the text parts of the request.
func (r GenerationRequest) PromptText() string {
	var texts []string
	for _, p := range r.Parts {
		if p.IsText() && p.Text() != "" {
			texts = append(texts, p.Text())
		}
	}
	return strings.Join(texts, "\n")
}

// GenerationResult is the display-ready outcome of a normalized provider response.
type GenerationResult struct {
	Parts []ContentPart `json:"parts"`
}
