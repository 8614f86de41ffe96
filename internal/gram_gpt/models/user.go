package models

import "fmt"

// Principal is the signed-in user returned by the authentication provider.
type Principal struct {
	UserID  string `json:"userId"`            // Provider user id (localId)
	Email   string `json:"email"`             // Email the user signed in with
	IDToken string `json:"-"`                 // Provider ID token. Не отдаётся клиенту
	Session string `json:"session,omitempty"` // Local session token
}

// Theme is the UI theme preference kept in the local key-value slot.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates a stored or user supplied theme value.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Toggled returns the opposite theme.
func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
