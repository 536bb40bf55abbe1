package provider

import (
	"context"

	"ditroboticstw/internal/auth"

	"golang.org/x/oauth2"
)

// OAuthProvider defines the contract of the external identity provider.
// Implementations return identity facts only and must not touch the
// session or make role decisions.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "facebook").
	Name() string

	// AuthCodeURL returns the authorization URL for the given state.
	AuthCodeURL(state string) string

	// ExchangeCode exchanges the authorization grant for an access token.
	// Errors reported by the provider itself are returned as *Error.
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)

	// Me fetches the profile of the token's owner.
	Me(ctx context.Context, token *oauth2.Token) (*auth.Identity, error)
}

// Error is a failure reported by the provider in its response body, as
// opposed to a transport or decoding failure.
type Error struct {
	Provider string
	Type     string
	Code     int
	Message  string
}

func (e *Error) Error() string {
	return e.Provider + ": " + e.Message
}
