package models

import (
	"errors"
	"fmt"
)

// Turn-level failures. Every one of them is local to a single turn and is never retried.
var (
	ErrEncoding            = errors.New("attachment cannot be encoded")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrMissingCredential   = errors.New("generative API credential is not configured")
	ErrAuthentication      = errors.New("generative API rejected the credential")
	ErrTransport           = errors.New("generative API call failed")
	ErrSafetyBlocked       = errors.New("blocked by content-safety policy")
	ErrEmptyResponse       = errors.New("no content returned")
	ErrUnsupportedModality = errors.New("modality is not supported by the provider")
	ErrUnknownTool         = errors.New("unknown tool")
	ErrTurnInFlight        = errors.New("another turn is in flight for this conversation")
)

// BlockReasonSafety is the provider block reason for content-safety blocks.
const BlockReasonSafety = "SAFETY"

// SafetyBlockedError reports a provider block together with its reason.
type SafetyBlockedError struct {
	Reason  string // Provider block reason, e.g. SAFETY, OTHER, PROHIBITED_CONTENT
	Message string // Optional provider explanation
}

func (e *SafetyBlockedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (%s)", ErrSafetyBlocked, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s", ErrSafetyBlocked, e.Reason)
}

// Is makes errors.Is(err, ErrSafetyBlocked) hold for every block reason.
func (e *SafetyBlockedError) Is(target error) bool {
	return target == ErrSafetyBlocked
}

// IsSafety distinguishes a safety block from other block reasons.
func (e *SafetyBlockedError) IsSafety() bool {
	return e.Reason == BlockReasonSafety
}
