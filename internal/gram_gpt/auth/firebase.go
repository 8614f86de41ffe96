// Package auth signs users in through Firebase Identity Toolkit and keeps local sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/constant"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultEndpoint is the Identity Toolkit REST base URL.
const DefaultEndpoint = "https://identitytoolkit.googleapis.com/v1"

// MinPasswordLength is the shortest password accepted on sign-up.
const MinPasswordLength = 6

// Authentication failures, one per user-facing message.
var (
	ErrEmptyCredentials = errors.New("email and password are required")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrWrongCredentials = errors.New("wrong email or password")
	ErrEmailExists      = errors.New("email already registered")
	ErrWeakPassword     = errors.New("weak password")
	ErrAuthFailed       = errors.New("authentication failed")
)

// credentialsRequest is the body of accounts:signUp and accounts:signInWithPassword.
type credentialsRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// credentialsResponse holds the fields of a successful reply used by the bot.
type credentialsResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

// errorResponse is the Identity Toolkit error envelope.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FirebaseAuth is the email and password client of Firebase Authentication.
type FirebaseAuth struct {
	client *resty.Client // HTTP-клиент Identity Toolkit
	apiKey string        // Web API key проекта Firebase
}

// NewFirebaseAuth creates a client; an empty endpoint means DefaultEndpoint.
func NewFirebaseAuth(apiKey, endpoint string) *FirebaseAuth {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(endpoint, "/")).
		SetTimeout(15*time.Second).
		SetHeader("Content-Type", "application/json")
	return &FirebaseAuth{client: client, apiKey: apiKey}
}

// SignUp registers a new account and returns its principal.
func (f *FirebaseAuth) SignUp(ctx context.Context, email, password string) (models.Principal, error) {
	if err := validate(email, password); err != nil {
		return models.Principal{}, err
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return models.Principal{}, ErrWeakPassword
	}
	return f.post(ctx, "/accounts:signUp", email, password)
}

// SignIn checks the credentials and returns the principal.
func (f *FirebaseAuth) SignIn(ctx context.Context, email, password string) (models.Principal, error) {
	if err := validate(email, password); err != nil {
		return models.Principal{}, err
	}
	return f.post(ctx, "/accounts:signInWithPassword", email, password)
}

func (f *FirebaseAuth) post(ctx context.Context, path, email, password string) (models.Principal, error) {
	var result credentialsResponse
	var failure errorResponse

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParam("key", f.apiKey).
		SetBody(credentialsRequest{Email: strings.TrimSpace(email), Password: password, ReturnSecureToken: true}).
		SetResult(&result).
		SetError(&failure).
		Post(path)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrAuthFailed, err)
		logrus.WithError(err).Error("Error calling Firebase Authentication")
		return models.Principal{}, err
	}
	if resp.IsError() {
		err = classifyCode(failure.Error.Message)
		logrus.WithFields(logrus.Fields{"status": resp.StatusCode(), "code": failure.Error.Message}).Warn("Firebase rejected credentials")
		return models.Principal{}, err
	}

	return models.Principal{UserID: result.LocalID, Email: result.Email, IDToken: result.IDToken}, nil
}

func validate(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrEmptyCredentials
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// classifyCode maps an Identity Toolkit error code. Codes may carry a suffix, for example
// "WEAK_PASSWORD : Password should be at least 6 characters".
func classifyCode(message string) error {
	code := strings.TrimSpace(message)
	if i := strings.IndexAny(code, " :"); i >= 0 {
		code = code[:i]
	}
	switch code {
	case "INVALID_EMAIL":
		return ErrInvalidEmail
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return ErrWrongCredentials
	case "EMAIL_EXISTS":
		return ErrEmailExists
	case "WEAK_PASSWORD":
		return ErrWeakPassword
	}
	return fmt.Errorf("%w: %s", ErrAuthFailed, message)
}

// Message returns the Bengali text for an authentication failure.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyCredentials):
		return constant.MSG_AUTH_EMPTY
	case errors.Is(err, ErrInvalidEmail):
		return constant.MSG_AUTH_INVALID_EMAIL
	case errors.Is(err, ErrWrongCredentials):
		return constant.MSG_AUTH_WRONG
	case errors.Is(err, ErrEmailExists):
		return constant.MSG_AUTH_EMAIL_EXISTS
	case errors.Is(err, ErrWeakPassword):
		return constant.MSG_AUTH_WEAK_PASSWORD
	default:
		return constant.MSG_AUTH_FAILED
	}
}
