// Package intent decides whether a prompt asks for a drawing or for a conversation.
package intent

import "strings"

// DefaultTriggers are the words meaning "draw" or "picture" that switch a turn to image generation.
var DefaultTriggers = []string{"আঁকো", "ছবি", "draw", "picture"}

// Classifier is a keyword heuristic: any trigger substring anywhere in the prompt means
// image generation. Negations ("don't draw") are not understood.
type Classifier struct {
	triggers      []string
	caseSensitive bool
}

// NewClassifier creates a Classifier. Blank triggers are dropped and an empty list falls
// back to DefaultTriggers.
func NewClassifier(triggers []string, caseSensitive bool) *Classifier {
	c := &Classifier{caseSensitive: caseSensitive}
	for _, t := range triggers {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		c.triggers = append(c.triggers, c.fold(t))
	}
	if len(c.triggers) == 0 {
		for _, t := range DefaultTriggers {
			c.triggers = append(c.triggers, c.fold(t))
		}
	}
	return c
}

// WantsImageGeneration reports whether the prompt contains any trigger word.
func (c *Classifier) WantsImageGeneration(prompt string) bool {
	if prompt == "" {
		return false
	}
	prompt = c.fold(prompt)
	for _, t := range c.triggers {
		if strings.Contains(prompt, t) {
			return true
		}
	}
	return false
}

// Triggers returns the active trigger words.
func (c *Classifier) Triggers() []string {
	out := make([]string, len(c.triggers))
	copy(out, c.triggers)
	return out
}

func (c *Classifier) fold(s string) string {
	if c.caseSensitive {
		return s
	}
	return strings.ToLower(s)
}
