package models

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// InlineData is a base64 payload embedded directly into a message together with its media type.
type InlineData struct {
	Data     string `json:"data"`     // Base64 (std encoding) payload
	MimeType string `json:"mimeType"` // Media type, e.g. image/png
}

// Bytes decodes the base64 payload back into raw bytes.
func (d InlineData) Bytes() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(d.Data)
	if err != nil {
		return nil, fmt.Errorf("decode inline data: %w", err)
	}
	return raw, nil
}

// ContentPart is the minimal unit of message content: either text or inline data, never both.
// The zero value is an empty text part; use NewTextPart / NewInlinePart to build parts.
type ContentPart struct {
	text       string
	inlineData *InlineData
}

// NewTextPart returns a text variant.
func NewTextPart(text string) ContentPart {
	return ContentPart{text: text}
}

// NewInlinePart returns an inline-data variant. The payload is copied so the part stays immutable.
func NewInlinePart(data InlineData) ContentPart {
	d := data
	return ContentPart{inlineData: &d}
}

// IsText reports whether the part is the text variant.
func (p ContentPart) IsText() bool {
	return p.inlineData == nil
}

// IsInline reports whether the part carries inline binary data.
func (p ContentPart) IsInline() bool {
	return p.inlineData != nil
}

// Text returns the text of a text part and an empty string for inline parts.
func (p ContentPart) Text() string {
	return p.text
}

// InlineData returns a copy of the inline payload; ok is false for text parts.
func (p ContentPart) InlineData() (InlineData, bool) {
	if p.inlineData == nil {
		return InlineData{}, false
	}
	return *p.inlineData, true
}

// contentPartWire is the JSON shape shared with the generative API: {text} or {inlineData}.
type contentPartWire struct {
	Text       *string     `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

func (p ContentPart) MarshalJSON() ([]byte, error) {
	if p.inlineData != nil {
		return json.Marshal(contentPartWire{InlineData: p.inlineData})
	}
	text := p.text
	return json.Marshal(contentPartWire{Text: &text})
}

func (p *ContentPart) UnmarshalJSON(data []byte) error {
	var wire contentPartWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch {
	case wire.Text != nil && wire.InlineData != nil:
		return errors.New("content part must hold either text or inlineData, not both")
	case wire.InlineData != nil:
		if wire.InlineData.MimeType == "" {
			return errors.New("inlineData without mimeType")
		}
		*p = NewInlinePart(*wire.InlineData)
	case wire.Text != nil:
		*p = NewTextPart(*wire.Text)
	default:
		return errors.New("content part is empty")
	}
	return nil
}

// Turn is one log entry of a conversation: a user submission or a model reply.
type Turn struct {
	Role  Role          `json:"role"`
	Parts []ContentPart `json:"parts"`
}

// NewTurn builds a turn owning its own copy of parts. A turn without parts is rejected.
func NewTurn(role Role, parts ...ContentPart) (Turn, error) {
	if len(parts) == 0 {
		return Turn{}, fmt.Errorf("%w: turn for %s has no parts", ErrInvalidRequest, role)
	}
	owned := make([]ContentPart, len(parts))
	copy(owned, parts)
	return Turn{Role: role, Parts: owned}, nil
}

// PlainText joins all text parts of the turn with new lines.
func (t Turn) PlainText() string {
	var texts []string
	for _, part := range t.Parts {
		if part.IsText() && part.Text() != "" {
			texts = append(texts, part.Text())
		}
	}
	return strings.Join(texts, "\n")
}

// FirstImage returns the first inline part of the turn.
func (t Turn) FirstImage() (InlineData, bool) {
	for _, part := range t.Parts {
		if data, ok := part.InlineData(); ok {
			return data, true
		}
	}
	return InlineData{}, false
}

// Exchange is a history item: one user turn and the model reply that answered it.
type Exchange struct {
	Index  int  `json:"index"`
	Prompt Turn `json:"prompt"`
	Answer Turn `json:"answer"`
}
