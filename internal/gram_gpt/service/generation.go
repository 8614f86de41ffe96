package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/request"
	"github.com/sirupsen/logrus"
	"strings"
)

// GenerativeModel is a generation provider: one request in, one raw response out.
type GenerativeModel interface {
	GenerateContent(ctx context.Context, req models.GenerationRequest) (*models.GenerateContentResponse, error)
}

// ToolExecutor runs a tool call requested by the model.
type ToolExecutor interface {
	Call(ctx context.Context, call models.FunctionCall) (models.FunctionResponse, error)
}

// toolState is the position in the tool protocol of one turn.
type toolState int

const (
	awaitingModel toolState = iota
	awaitingToolResult
)

// toolRound allows the awaitingModel -> awaitingToolResult transition exactly once.
type toolRound struct {
	state toolState
}

func (r *toolRound) next() bool {
	if r.state == awaitingToolResult {
		return false
	}
	r.state = awaitingToolResult
	return true
}

// GenerationClient performs the provider calls of one turn. It checks the credential,
// runs at most one tool round and classifies failures. It never retries.
type GenerationClient struct {
	provider GenerativeModel  // Генеративная модель
	apiKey   string           // API-ключ провайдера
	builder  *request.Builder // Собирает второй запрос после вызова инструмента
	tools    ToolExecutor     // nil, если инструменты выключены
}

// NewGenerationClient creates a GenerationClient. provider may be nil when apiKey is empty:
// every call then fails with ErrMissingCredential before reaching it.
func NewGenerationClient(provider GenerativeModel, apiKey string, builder *request.Builder, tools ToolExecutor) *GenerationClient {
	return &GenerationClient{
		provider: provider,
		apiKey:   apiKey,
		builder:  builder,
		tools:    tools,
	}
}

// Generate returns the final raw response of the turn. When the first response asks for a
// tool, the tool is executed locally and a second request carries its result; tool calls
// in the second response are ignored.
func (c *GenerationClient) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerateContentResponse, error) {
	if strings.TrimSpace(c.apiKey) == "" || c.provider == nil {
		return nil, models.ErrMissingCredential
	}

	resp, err := c.call(ctx, req)
	if err != nil {
		return nil, err
	}

	var round toolRound
	call, ok := resp.FirstFunctionCall()
	if !ok || c.tools == nil || len(req.Tools) == 0 || !round.next() {
		return resp, nil
	}

	logrus.WithFields(logrus.Fields{"tool": call.Name, "args": call.Args}).Info("Model requested a tool call")
	result, err := c.tools.Call(ctx, call)
	if err != nil {
		err = fmt.Errorf("%w: %w", models.ErrTransport, err)
		logrus.WithError(err).Error("Tool call failed")
		return nil, err
	}

	followUp, err := c.builder.BuildToolFollowUp(req, call, result)
	if err != nil {
		return nil, err
	}
	resp, err = c.call(ctx, followUp)
	if err != nil {
		return nil, err
	}

	if extra, ok := resp.FirstFunctionCall(); ok && !round.next() {
		logrus.WithField("tool", extra.Name).Warn("Second tool call ignored, one tool round per turn")
	}
	return resp, nil
}

// call performs exactly one provider call and keeps the error within the known classes.
func (c *GenerationClient) call(ctx context.Context, req models.GenerationRequest) (*models.GenerateContentResponse, error) {
	resp, err := c.provider.GenerateContent(ctx, req)
	if err != nil {
		if isClassified(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", models.ErrTransport, err)
	}
	if resp == nil {
		resp = &models.GenerateContentResponse{}
	}
	return resp, nil
}

func isClassified(err error) bool {
	for _, target := range []error{
		models.ErrAuthentication,
		models.ErrTransport,
		models.ErrSafetyBlocked,
		models.ErrUnsupportedModality,
		models.ErrInvalidRequest,
		models.ErrEncoding,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
