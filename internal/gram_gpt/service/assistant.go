// Package service provides the turn pipeline of the assistant and its Telegram front-end.
package service

import (
	"context"
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/attachment"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/intent"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/normalizer"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/request"
	"github.com/sirupsen/logrus"
	"io"
	"strings"
	"sync"
	"time"
)

// DefaultTurnTimeout bounds all provider calls of one turn.
const DefaultTurnTimeout = 60 * time.Second

// ConversationRepository stores the history of every session.
type ConversationRepository interface {
	AppendTurns(key string, turns ...models.Turn) error
	History(key string) []models.Turn
	Exchanges(key string) []models.Exchange
	ClearHistory(key string)
}

// Attachment is a user supplied image as it arrives from a front-end.
type Attachment struct {
	Reader   io.Reader
	MimeType string
}

// Assistant runs one user turn from raw input to the stored model reply.
type Assistant struct {
	encoder    *attachment.Encoder
	classifier *intent.Classifier
	builder    *request.Builder
	client     *GenerationClient
	normalizer *normalizer.Normalizer
	history    ConversationRepository
	timeout    time.Duration

	inFlight map[string]struct{} // Сессии, для которых сейчас выполняется запрос
	mu       sync.Mutex          // Protects inFlight
}

// NewAssistant wires the pipeline stages. A non-positive timeout falls back to DefaultTurnTimeout.
func NewAssistant(
	encoder *attachment.Encoder,
	classifier *intent.Classifier,
	builder *request.Builder,
	client *GenerationClient,
	norm *normalizer.Normalizer,
	history ConversationRepository,
	timeout time.Duration,
) *Assistant {
	if timeout <= 0 {
		timeout = DefaultTurnTimeout
	}
	return &Assistant{
		encoder:    encoder,
		classifier: classifier,
		builder:    builder,
		client:     client,
		normalizer: norm,
		history:    history,
		timeout:    timeout,
		inFlight:   make(map[string]struct{}),
	}
}

// Submit runs one turn for the session and returns the model turn.
//
// Only one turn per session runs at a time; a concurrent call fails with ErrTurnInFlight.
// The user turn and the model turn are stored together and only on success, so a failed
// turn leaves the history untouched and a retry does not duplicate the prompt.
func (a *Assistant) Submit(ctx context.Context, sessionKey, text string, att *Attachment) (models.Turn, error) {
	if strings.TrimSpace(text) == "" && att == nil {
		return models.Turn{}, fmt.Errorf("%w: empty turn", models.ErrInvalidRequest)
	}
	if !a.acquire(sessionKey) {
		return models.Turn{}, models.ErrTurnInFlight
	}
	defer a.release(sessionKey)

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	log := logrus.WithField("session", sessionKey)

	var inline *models.InlineData
	if att != nil {
		data, err := a.encoder.Encode(att.Reader, att.MimeType)
		if err != nil {
			log.WithError(err).Warn("Attachment rejected")
			return models.Turn{}, err
		}
		inline = &data
	}

	wantsImage := a.classifier.WantsImageGeneration(text)
	req, err := a.builder.Build(inline, text, wantsImage)
	if err != nil {
		return models.Turn{}, err
	}
	log = log.WithFields(logrus.Fields{"model": req.Model, "image": wantsImage, "attachment": inline != nil})

	resp, err := a.client.Generate(ctx, req)
	if err != nil {
		log.WithError(err).Error("Generation failed")
		return models.Turn{}, err
	}

	result, err := a.normalizer.Normalize(resp)
	if err != nil {
		log.WithError(err).Warn("Response has no displayable content")
		return models.Turn{}, err
	}

	userTurn, err := models.NewTurn(models.RoleUser, req.Parts...)
	if err != nil {
		return models.Turn{}, err
	}
	modelTurn, err := models.NewTurn(models.RoleModel, result.Parts...)
	if err != nil {
		return models.Turn{}, err
	}
	if err = a.history.AppendTurns(sessionKey, userTurn, modelTurn); err != nil {
		return models.Turn{}, err
	}

	log.WithFields(logrus.Fields{"parts": len(modelTurn.Parts), "elapsed": time.Since(start)}).Info("Turn completed")
	return modelTurn, nil
}

// History returns the stored turns of the session.
func (a *Assistant) History(sessionKey string) []models.Turn {
	return a.history.History(sessionKey)
}

// Exchanges returns the numbered history items of the session.
func (a *Assistant) Exchanges(sessionKey string) []models.Exchange {
	return a.history.Exchanges(sessionKey)
}

// Exchange returns the history item with the given 1-based index.
func (a *Assistant) Exchange(sessionKey string, index int) (models.Exchange, bool) {
	items := a.history.Exchanges(sessionKey)
	if index < 1 || index > len(items) {
		return models.Exchange{}, false
	}
	return items[index-1], true
}

// ClearHistory drops the history of the session.
func (a *Assistant) ClearHistory(sessionKey string) {
	a.history.ClearHistory(sessionKey)
	logrus.WithField("session", sessionKey).Info("History cleared")
}

func (a *Assistant) acquire(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, busy := a.inFlight[key]; busy {
		return false
	}
	a.inFlight[key] = struct{}{}
	return true
}

func (a *Assistant) release(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.inFlight, key)
}
