// Package tools holds the local functions the model may call before it finalizes an answer.
package tools

import (
	"context"
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"sort"
)

// Tool is a local, synchronous and side-effect-free function exposed to the model.
type Tool interface {
	Name() string
	Declaration() models.FunctionDeclaration
	Call(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Registry dispatches model tool calls by name.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a Registry; a later tool with the same name replaces an earlier one.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Declarations returns the declarations of all registered tools sorted by name.
func (r *Registry) Declarations() []models.FunctionDeclaration {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	decls := make([]models.FunctionDeclaration, 0, len(names))
	for _, name := range names {
		decls = append(decls, r.tools[name].Declaration())
	}
	return decls
}

// Call executes the tool named by the call and wraps its output into a FunctionResponse.
func (r *Registry) Call(ctx context.Context, call models.FunctionCall) (models.FunctionResponse, error) {
	t, ok := r.tools[call.Name]
	if !ok {
		return models.FunctionResponse{}, fmt.Errorf("%w: %q", models.ErrUnknownTool, call.Name)
	}
	out, err := t.Call(ctx, call.Args)
	if err != nil {
		return models.FunctionResponse{}, fmt.Errorf("tool %s: %w", call.Name, err)
	}
	return models.FunctionResponse{Name: call.Name, Response: out}, nil
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}
