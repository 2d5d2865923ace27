package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

// certsTimeout bounds fetching Google's signing certificates.
const certsTimeout = 10 * time.Second

var (
	// ErrEmptyAssertion is returned when no ID token was supplied.
	ErrEmptyAssertion = errors.New("empty identity assertion")
	// ErrAssertionRejected wraps every reason a token itself is not accepted.
	ErrAssertionRejected = errors.New("identity assertion rejected")
	// ErrProviderUnavailable means the signing keys could not be fetched.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	// ErrNoClientID is returned when no audience is configured.
	ErrNoClientID = errors.New("google client id not configured")
)

// GoogleIdentity holds the verified claims of a Google ID token.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// IdentityVerifier verifies an identity provider assertion.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*GoogleIdentity, error)
}

// payloadValidator is the part of idtoken.Validator the verifier needs.
type payloadValidator interface {
	Validate(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

// GoogleVerifier checks ID tokens against Google's published signing keys.
type GoogleVerifier struct {
	clientID  string
	validator payloadValidator
}

// NewGoogleVerifier creates a verifier that requires clientID as audience.
// Only the public certificates are fetched, so no Google credentials are needed.
func NewGoogleVerifier(ctx context.Context, clientID string) (*GoogleVerifier, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, ErrNoClientID
	}
	v, err := idtoken.NewValidator(ctx, option.WithHTTPClient(&http.Client{Timeout: certsTimeout}))
	if err != nil {
		return nil, fmt.Errorf("failed to create id token validator: %w", err)
	}
	return &GoogleVerifier{clientID: clientID, validator: v}, nil
}

// Verify validates the token signature, issuer, expiry and audience
// and returns the identity claims.
func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*GoogleIdentity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrEmptyAssertion
	}
	// The validator skips the audience check for an empty audience.
	if g.clientID == "" {
		return nil, ErrNoClientID
	}

	payload, err := g.validator.Validate(ctx, token, g.clientID)
	if err != nil {
		if providerFailure(err) {
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrAssertionRejected, err)
	}

	return identityFromPayload(payload), nil
}

// providerFailure reports whether err came from fetching Google's certificates
// rather than from the token.
func providerFailure(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return true
	}
	return strings.Contains(err.Error(), "unable to retrieve cert")
}

func identityFromPayload(payload *idtoken.Payload) *GoogleIdentity {
	identity := &GoogleIdentity{Subject: payload.Subject}
	identity.Email, _ = payload.Claims["email"].(string)
	identity.Name, _ = payload.Claims["name"].(string)
	identity.Picture, _ = payload.Claims["picture"].(string)

	switch v := payload.Claims["email_verified"].(type) {
	case bool:
		identity.EmailVerified = v
	case string:
		identity.EmailVerified = v == "true"
	}
	return identity
}
