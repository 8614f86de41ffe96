package service

import (
	"errors"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/constant"
	"github.com/DenisKhanov/GramGPT/internal/gram_gpt/models"
)

// UserMessage returns the Bengali text shown to the user for a failed turn.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var blocked *models.SafetyBlockedError
	switch {
	case errors.As(err, &blocked):
		if blocked.IsSafety() {
			return constant.MSG_SAFETY_BLOCKED
		}
		return constant.MSG_BLOCKED
	case errors.Is(err, models.ErrMissingCredential):
		return constant.MSG_MISSING_API_KEY
	case errors.Is(err, models.ErrEmptyResponse):
		return constant.MSG_NO_ANSWER
	case errors.Is(err, models.ErrEncoding):
		return constant.MSG_ATTACHMENT_ERROR
	case errors.Is(err, models.ErrUnsupportedModality):
		return constant.MSG_UNSUPPORTED
	case errors.Is(err, models.ErrTurnInFlight):
		return constant.MSG_TURN_IN_FLIGHT
	case errors.Is(err, models.ErrInvalidRequest):
		return constant.MSG_EMPTY_PROMPT
	default:
		// ErrAuthentication, ErrTransport и все остальное
		return constant.MSG_GENERIC_ERROR
	}
}
