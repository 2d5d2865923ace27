package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinevault/cinevault-api/internal/auth"
	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/models"
	"github.com/cinevault/cinevault-api/internal/utils"
)

func newAuthService(repo *MockUserRepository, verifier auth.IdentityVerifier, mailer Mailer) *AuthService {
	return NewAuthService(repo, MockTokenIssuer{}, plainHasher{}, verifier, mailer)
}

func waitForMail(t *testing.T, m *MockMailer) {
	t.Helper()
	select {
	case <-m.Sent:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an email to be sent")
	}
}

func TestAuthService_Register(t *testing.T) {
	repo := NewMockUserRepository()
	mailer := NewMockMailer()
	svc := newAuthService(repo, nil, mailer)

	resp, err := svc.Register(context.Background(), &models.SignupRequest{
		Username: "  Ada  ",
		Email:    " Ada@Example.com ",
		Password: "secret1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada", resp.Username)
	assert.Equal(t, "ada@example.com", resp.Email)
	assert.Equal(t, "token-for-"+resp.ID, resp.Token)

	stored := repo.stored(resp.ID)
	require.NotNil(t, stored)
	assert.True(t, stored.HasPassword())
	assert.Equal(t, "h:secret1", *stored.PasswordHash)
	assert.Equal(t, constants.DefaultLanguage, stored.PreferredLanguage)

	waitForMail(t, mailer)
	assert.True(t, svc.Wait(time.Second))
	assert.Equal(t, []sentMail{{Kind: "welcome", To: "ada@example.com", Username: "Ada"}}, mailer.Messages())
}

func TestAuthService_Register_Failures(t *testing.T) {
	existing := localUser("u1", "ada@example.com", "secret1")

	tests := []struct {
		name       string
		req        *models.SignupRequest
		createErr  error
		wantStatus int
		wantErr    error
	}{
		{
			name:       "duplicate email",
			req:        &models.SignupRequest{Username: "ada", Email: "ADA@example.com", Password: "secret1"},
			wantStatus: http.StatusBadRequest,
			wantErr:    utils.ErrDuplicate,
		},
		{
			name:       "short password",
			req:        &models.SignupRequest{Username: "bob", Email: "bob@example.com", Password: "123"},
			wantStatus: http.StatusBadRequest,
			wantErr:    utils.ErrValidation,
		},
		{
			name:       "blank username",
			req:        &models.SignupRequest{Username: "   ", Email: "bob@example.com", Password: "secret1"},
			wantStatus: http.StatusBadRequest,
			wantErr:    utils.ErrValidation,
		},
		{
			name:       "invalid email",
			req:        &models.SignupRequest{Username: "bob", Email: "not-an-email", Password: "secret1"},
			wantStatus: http.StatusBadRequest,
			wantErr:    utils.ErrValidation,
		},
		{
			name:       "insert race lost",
			req:        &models.SignupRequest{Username: "bob", Email: "bob@example.com", Password: "secret1"},
			createErr:  utils.NewDuplicateError("User", "email", "bob@example.com"),
			wantStatus: http.StatusBadRequest,
			wantErr:    utils.ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository(existing)
			repo.CreateErr = tt.createErr
			mailer := NewMockMailer()
			svc := newAuthService(repo, nil, mailer)

			resp, err := svc.Register(context.Background(), tt.req)
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, tt.wantStatus, utils.StatusCode(err))
			assert.Empty(t, mailer.Messages())
		})
	}
}

func TestAuthService_Register_WelcomeFailureIgnored(t *testing.T) {
	repo := NewMockUserRepository()
	mailer := NewMockMailer()
	mailer.Err = errors.New("smtp down")
	svc := newAuthService(repo, nil, mailer)

	resp, err := svc.Register(context.Background(), &models.SignupRequest{Username: "ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	waitForMail(t, mailer)
	assert.True(t, svc.Wait(time.Second))
	assert.NotNil(t, repo.stored(resp.ID))
}

func TestAuthService_Login(t *testing.T) {
	local := localUser("u1", "ada@example.com", "secret1")
	local.PhotoURL = "http://localhost:5000/uploads/profilePhotos/u1_1.png"
	federated := models.NewFederatedUser("Grace", "grace@example.com", "https://lh3.example/pic")
	federated.ID = "u2"
	federatedWithPassword := models.NewFederatedUser("Linus", "linus@example.com", "")
	federatedWithPassword.ID = "u3"
	federatedWithPassword.SetPassword("h:newpass1", "salt")

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
		wantMsg    string
	}{
		{"success", "ADA@example.com", "secret1", http.StatusOK, ""},
		{"unknown user", "nobody@example.com", "secret1", http.StatusNotFound, constants.MsgUserNotFound},
		{"wrong password", "ada@example.com", "secret2", http.StatusUnauthorized, constants.MsgInvalidPassword},
		{"federated account", "grace@example.com", "whatever", http.StatusBadRequest, constants.MsgUseGoogleLogin},
		{"federated account with a password", "linus@example.com", "newpass1", http.StatusBadRequest, constants.MsgUseGoogleLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAuthService(NewMockUserRepository(local, federated, federatedWithPassword), nil, NewMockMailer())

			resp, err := svc.Login(context.Background(), &models.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantStatus == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, &models.AuthResponse{
					ID:       "u1",
					Username: local.Username,
					Email:    "ada@example.com",
					PhotoURL: local.PhotoURL,
					Token:    "token-for-u1",
				}, resp)
				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, utils.StatusCode(err))
			assert.Equal(t, tt.wantMsg, utils.ParseError(err).Message)
		})
	}
}

func TestAuthService_Login_StoreError(t *testing.T) {
	repo := NewMockUserRepository()
	repo.GetByEmailErr = errStore
	svc := newAuthService(repo, nil, NewMockMailer())

	_, err := svc.Login(context.Background(), &models.LoginRequest{Email: "ada@example.com", Password: "x"})
	assert.ErrorIs(t, err, errStore)
}

func TestAuthService_GoogleLogin(t *testing.T) {
	verifier := &MockVerifier{VerifyFunc: func(_ context.Context, token string) (*auth.GoogleIdentity, error) {
		switch token {
		case "named":
			return &auth.GoogleIdentity{Email: "Grace@Example.com", Name: "Grace Hopper", Picture: "https://lh3.example/pic"}, nil
		case "anonymous":
			return &auth.GoogleIdentity{Email: "linus@example.com"}, nil
		case "no-email":
			return &auth.GoogleIdentity{Name: "Ghost"}, nil
		case "existing":
			return &auth.GoogleIdentity{Email: "ada@example.com", Name: "Someone Else"}, nil
		case "certs-down":
			return nil, fmt.Errorf("%w: connection refused", auth.ErrProviderUnavailable)
		default:
			return nil, fmt.Errorf("%w: token expired", auth.ErrAssertionRejected)
		}
	}}

	t.Run("creates federated account", func(t *testing.T) {
		repo := NewMockUserRepository()
		mailer := NewMockMailer()
		svc := newAuthService(repo, verifier, mailer)

		resp, err := svc.GoogleLogin(context.Background(), "named")
		require.NoError(t, err)
		assert.Equal(t, "Grace Hopper", resp.Username)
		assert.Equal(t, "grace@example.com", resp.Email)
		assert.Equal(t, "https://lh3.example/pic", resp.PhotoURL)

		stored := repo.stored(resp.ID)
		assert.True(t, stored.IsFederated)
		assert.False(t, stored.HasPassword())

		waitForMail(t, mailer)
		assert.True(t, mailer.Messages()[0].Federated)
	})

	t.Run("username falls back to email local part", func(t *testing.T) {
		svc := newAuthService(NewMockUserRepository(), verifier, NewMockMailer())
		resp, err := svc.GoogleLogin(context.Background(), "anonymous")
		require.NoError(t, err)
		assert.Equal(t, "linus", resp.Username)
	})

	t.Run("existing account is reused", func(t *testing.T) {
		existing := localUser("u1", "ada@example.com", "secret1")
		repo := NewMockUserRepository(existing)
		mailer := NewMockMailer()
		svc := newAuthService(repo, verifier, mailer)

		resp, err := svc.GoogleLogin(context.Background(), "existing")
		require.NoError(t, err)
		assert.Equal(t, "u1", resp.ID)
		assert.Equal(t, existing.Username, resp.Username)
		assert.True(t, svc.Wait(time.Second))
		assert.Empty(t, mailer.Messages())
	})

	t.Run("lost creation race rereads", func(t *testing.T) {
		winner := models.NewFederatedUser("Grace", "grace@example.com", "")
		winner.ID = "winner"
		repo := NewMockUserRepository(winner)
		repo.CreateErr = utils.NewDuplicateError("User", "email", "grace@example.com")
		mailer := NewMockMailer()
		svc := newAuthService(repo, verifier, mailer)

		// The competing request committed between our lookup and insert.
		user, err := svc.createFederatedUser(context.Background(), &auth.GoogleIdentity{Email: "grace@example.com"}, "grace@example.com")
		require.NoError(t, err)
		assert.Equal(t, "winner", user.ID)
		assert.True(t, svc.Wait(time.Second))
		assert.Empty(t, mailer.Messages())
	})

	failures := []struct {
		name    string
		token   string
		wantErr error
		wantMsg string
	}{
		{"missing token", " ", utils.ErrValidation, constants.MsgGoogleTokenMissing},
		{"rejected token", "forged", utils.ErrInvalidAssertion, constants.MsgGoogleTokenInvalid},
		{"no email claim", "no-email", utils.ErrInvalidAssertion, constants.MsgGoogleEmailMissing},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAuthService(NewMockUserRepository(), verifier, NewMockMailer())
			_, err := svc.GoogleLogin(context.Background(), tt.token)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, http.StatusBadRequest, utils.StatusCode(err))
			assert.Equal(t, tt.wantMsg, utils.ParseError(err).Message)
		})
	}

	t.Run("provider outage is a server error", func(t *testing.T) {
		repo := NewMockUserRepository()
		svc := newAuthService(repo, verifier, NewMockMailer())
		_, err := svc.GoogleLogin(context.Background(), "certs-down")
		require.Error(t, err)
		assert.ErrorIs(t, err, utils.ErrInternalServer)
		assert.Equal(t, http.StatusInternalServerError, utils.StatusCode(err))
		assert.Equal(t, constants.MsgInternalServerError, utils.ParseError(err).Message)
	})

	t.Run("without a verifier", func(t *testing.T) {
		svc := newAuthService(NewMockUserRepository(), nil, NewMockMailer())
		_, err := svc.GoogleLogin(context.Background(), "named")
		assert.Equal(t, http.StatusInternalServerError, utils.StatusCode(err))
	})
}
