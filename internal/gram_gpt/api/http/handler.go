// Package http exposes the assistant as a JSON API: chat, history, export, theme and auth.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/auth"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/constant"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/export"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	botServ "github.com/DenisKhanov/GramGPT/internal/gram_gpt/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// SessionHeader carries the session token issued on login.
const SessionHeader = "X-Session-Token"

// localSession is the session key used when authentication is not configured.
const localSession = "local"

const maxFormMemory = 8 << 20

type ctxKey struct{}

// Assistant runs turns and serves the history of a session.
type Assistant interface {
	Submit(ctx context.Context, sessionKey, text string, att *botServ.Attachment) (models.Turn, error)
	Exchanges(sessionKey string) []models.Exchange
	Exchange(sessionKey string, index int) (models.Exchange, bool)
	ClearHistory(sessionKey string)
}

// Authenticator checks email and password credentials.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (models.Principal, error)
	SignIn(ctx context.Context, email, password string) (models.Principal, error)
}

// SessionStore issues and resolves session tokens.
type SessionStore interface {
	Create(p models.Principal) models.Principal
	Lookup(token string) (models.Principal, bool)
	Revoke(token string)
}

// Preferences is the theme slot.
type Preferences interface {
	Theme() models.Theme
	SetTheme(theme models.Theme) error
	Toggle() (models.Theme, error)
}

// HistoryExporter renders a history item as a document.
type HistoryExporter interface {
	HistoryPDF(item models.Exchange) ([]byte, error)
}

// Handler serves the JSON API.
type Handler struct {
	assistant Assistant
	auth      Authenticator // nil - вход не требуется
	sessions  SessionStore
	prefs     Preferences
	exporter  HistoryExporter
}

// NewHandler creates a Handler. When authenticator is nil every request uses one local session.
func NewHandler(assistant Assistant, authenticator Authenticator, sessions SessionStore, prefs Preferences, exporter HistoryExporter) *Handler {
	return &Handler{
		assistant: assistant,
		auth:      authenticator,
		sessions:  sessions,
		prefs:     prefs,
		exporter:  exporter,
	}
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(LogrusLog)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api", func(r chi.Router) {
		if h.auth != nil {
			r.Post("/auth/signup", h.SignUp)
			r.Post("/auth/login", h.Login)
			r.Post("/auth/logout", h.Logout)
		}

		r.Get("/theme", h.GetTheme)
		r.Put("/theme", h.PutTheme)
		r.Post("/theme/toggle", h.ToggleTheme)

		r.Group(func(r chi.Router) {
			r.Use(h.requireSession)
			r.Post("/chat", h.Chat)
			r.Get("/history", h.History)
			r.Delete("/history", h.ClearHistory)
			r.Get("/history/{item}/pdf", h.HistoryPDF)
			r.Get("/history/{item}/image", h.HistoryImage)
		})
	})
	return router
}

// LogrusLog logs every request with its status and duration.
func LogrusLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logrus.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start),
		}).Info("HTTP request")
	})
}

func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := localSession
		if h.auth != nil {
			p, ok := h.sessions.Lookup(r.Header.Get(SessionHeader))
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			key = p.UserID
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, key)))
	})
}

func sessionKey(r *http.Request) string {
	if key, ok := r.Context().Value(ctxKey{}).(string); ok {
		return key
	}
	return localSession
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers an account and opens a session.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.auth.SignUp)
}

// Login opens a session for existing credentials.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, h.auth.SignIn)
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request, do func(context.Context, string, string) (models.Principal, error)) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, auth.Message(auth.ErrEmptyCredentials))
		return
	}
	p, err := do(r.Context(), c.Email, c.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, auth.ErrAuthFailed) {
			status = http.StatusBadGateway
		} else if !errors.Is(err, auth.ErrWrongCredentials) {
			status = http.StatusBadRequest
		}
		writeError(w, status, auth.Message(err))
		return
	}
	writeJSON(w, http.StatusOK, h.sessions.Create(p))
}

// Logout revokes the session token of the request.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Revoke(r.Header.Get(SessionHeader))
	w.WriteHeader(http.StatusNoContent)
}

type turnResponse struct {
	Role  models.Role          `json:"role"`
	Text  string               `json:"text"`
	Parts []models.ContentPart `json:"parts"`
}

func newTurnResponse(turn models.Turn) turnResponse {
	return turnResponse{Role: turn.Role, Text: turn.PlainText(), Parts: turn.Parts}
}

// Chat runs one turn. The form carries "prompt" and an optional "image" file.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, botServ.UserMessage(models.ErrInvalidRequest))
		return
	}

	var att *botServ.Attachment
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		att = &botServ.Attachment{Reader: file, MimeType: header.Header.Get("Content-Type")}
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		writeError(w, http.StatusBadRequest, botServ.UserMessage(models.ErrEncoding))
		return
	}

	// Отключение клиента не прерывает ход, его ограничивает только таймаут ассистента
	turn, err := h.assistant.Submit(context.WithoutCancel(r.Context()), sessionKey(r), r.FormValue("prompt"), att)
	if err != nil {
		writeError(w, statusFor(err), botServ.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, newTurnResponse(turn))
}

type exchangeResponse struct {
	Index  int          `json:"index"`
	Prompt turnResponse `json:"prompt"`
	Answer turnResponse `json:"answer"`
}

// History lists the history items of the session.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	items := h.assistant.Exchanges(sessionKey(r))
	out := make([]exchangeResponse, 0, len(items))
	for _, item := range items {
		out = append(out, exchangeResponse{Index: item.Index, Prompt: newTurnResponse(item.Prompt), Answer: newTurnResponse(item.Answer)})
	}
	writeJSON(w, http.StatusOK, out)
}

// ClearHistory drops the history of the session.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	h.assistant.ClearHistory(sessionKey(r))
	w.WriteHeader(http.StatusNoContent)
}

// HistoryPDF downloads one history item as PDF.
func (h *Handler) HistoryPDF(w http.ResponseWriter, r *http.Request) {
	item, ok := h.exchange(w, r)
	if !ok {
		return
	}
	doc, err := h.exporter.HistoryPDF(item)
	if err != nil {
		logrus.WithError(err).Error("Failed to export history item")
		writeError(w, http.StatusInternalServerError, constant.MSG_EXPORT_FAILED)
		return
	}
	writeFile(w, "application/pdf", export.HistoryFileName(item.Index), doc)
}

// HistoryImage downloads the generated image of one history item.
func (h *Handler) HistoryImage(w http.ResponseWriter, r *http.Request) {
	item, ok := h.exchange(w, r)
	if !ok {
		return
	}
	raw, mimeType, err := export.ImageBytes(item.Answer)
	if err != nil {
		writeError(w, http.StatusNotFound, "no image")
		return
	}
	writeFile(w, mimeType, export.ImageFileName(mimeType, strconv.Itoa(item.Index)), raw)
}

func (h *Handler) exchange(w http.ResponseWriter, r *http.Request) (models.Exchange, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "item"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad history item")
		return models.Exchange{}, false
	}
	item, ok := h.assistant.Exchange(sessionKey(r), index)
	if !ok {
		writeError(w, http.StatusNotFound, "history item not found")
		return models.Exchange{}, false
	}
	return item, true
}

type themeBody struct {
	Theme models.Theme `json:"theme"`
}

// GetTheme returns the stored theme.
func (h *Handler) GetTheme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, themeBody{Theme: h.prefs.Theme()})
}

// PutTheme stores a theme.
func (h *Handler) PutTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad theme")
		return
	}
	if err := h.prefs.SetTheme(body.Theme); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: h.prefs.Theme()})
}

// ToggleTheme switches between light and dark.
func (h *Handler) ToggleTheme(w http.ResponseWriter, _ *http.Request) {
	theme, err := h.prefs.Toggle()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, themeBody{Theme: theme})
}

// statusFor maps a turn error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidRequest), errors.Is(err, models.ErrEncoding):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrTurnInFlight):
		return http.StatusConflict
	case errors.Is(err, models.ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrSafetyBlocked), errors.Is(err, models.ErrUnsupportedModality):
		return http.StatusUnprocessableEntity
	default:
		// ErrAuthentication, ErrTransport, ErrEmptyResponse
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeFile(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logrus.WithError(err).Error("Failed to write file")
	}
}
