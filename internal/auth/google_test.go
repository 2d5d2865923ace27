package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

type fakeValidator struct {
	payload  *idtoken.Payload
	err      error
	audience string
}

func (f *fakeValidator) Validate(_ context.Context, _ string, audience string) (*idtoken.Payload, error) {
	f.audience = audience
	return f.payload, f.err
}

func TestGoogleVerifier_Verify(t *testing.T) {
	fake := &fakeValidator{payload: &idtoken.Payload{
		Subject: "1098",
		Claims: map[string]interface{}{
			"email":          "ada@example.com",
			"email_verified": true,
			"name":           "Ada Lovelace",
			"picture":        "https://lh3.googleusercontent.com/a/pic",
		},
	}}
	verifier := &GoogleVerifier{clientID: "client-123", validator: fake}

	identity, err := verifier.Verify(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "client-123", fake.audience)
	assert.Equal(t, &GoogleIdentity{
		Subject:       "1098",
		Email:         "ada@example.com",
		EmailVerified: true,
		Name:          "Ada Lovelace",
		Picture:       "https://lh3.googleusercontent.com/a/pic",
	}, identity)
}

func TestGoogleVerifier_MissingClaims(t *testing.T) {
	fake := &fakeValidator{payload: &idtoken.Payload{
		Claims: map[string]interface{}{"email_verified": "true"},
	}}
	verifier := &GoogleVerifier{clientID: "c", validator: fake}

	identity, err := verifier.Verify(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Empty(t, identity.Email)
	assert.Empty(t, identity.Name)
	assert.True(t, identity.EmailVerified)
}

func TestGoogleVerifier_Errors(t *testing.T) {
	verifier := &GoogleVerifier{clientID: "c", validator: &fakeValidator{err: errors.New("idtoken: audience provided does not match aud claim in the JWT")}}

	_, err := verifier.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyAssertion)

	_, err = verifier.Verify(context.Background(), "id-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAssertionRejected)
	assert.NotErrorIs(t, err, ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "audience provided does not match")
}

func TestGoogleVerifier_ProviderFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"transport error", &url.Error{Op: "Get", URL: "https://www.googleapis.com/oauth2/v3/certs", Err: errors.New("connection refused")}},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded)},
		{"bad status", errors.New("idtoken: unable to retrieve cert, got status code 503")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &GoogleVerifier{clientID: "c", validator: &fakeValidator{err: tt.err}}
			_, err := verifier.Verify(context.Background(), "id-token")
			assert.ErrorIs(t, err, ErrProviderUnavailable)
			assert.NotErrorIs(t, err, ErrAssertionRejected)
		})
	}
}

func TestGoogleVerifier_RequiresClientID(t *testing.T) {
	_, err := NewGoogleVerifier(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoClientID)

	fake := &fakeValidator{
		payload:  &idtoken.Payload{Claims: map[string]interface{}{"email": "ada@example.com"}},
		audience: "not-called",
	}
	verifier := &GoogleVerifier{validator: fake}

	identity, err := verifier.Verify(context.Background(), "id-token")
	assert.ErrorIs(t, err, ErrNoClientID)
	assert.Nil(t, identity)
	assert.Equal(t, "not-called", fake.audience)
}
