package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/models"
	"github.com/cinevault/cinevault-api/internal/utils"
)

func TestProfileService_GetProfile(t *testing.T) {
	user := localUser("u1", "ada@example.com", "secret1")
	svc := NewProfileService(NewMockUserRepository(user), plainHasher{})

	profile, err := svc.GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)
	assert.Equal(t, "ada@example.com", profile.Email)
	assert.NotNil(t, profile.Watchlist)

	_, err = svc.GetProfile(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, utils.StatusCode(err))
}

func TestProfileService_ChangePassword(t *testing.T) {
	federated := models.NewFederatedUser("Grace", "grace@example.com", "")
	federated.ID = "u2"
	federatedWithPassword := models.NewFederatedUser("Linus", "linus@example.com", "")
	federatedWithPassword.ID = "u3"
	federatedWithPassword.SetPassword("h:secret1", "salt")

	tests := []struct {
		name    string
		user    *models.User
		req     models.ChangePasswordRequest
		wantErr error
		wantMsg string
	}{
		{"success", localUser("u1", "ada@example.com", "secret1"), models.ChangePasswordRequest{Current: "secret1", New: "secret2"}, nil, ""},
		{"wrong current", localUser("u1", "ada@example.com", "secret1"), models.ChangePasswordRequest{Current: "nope", New: "secret2"}, utils.ErrInvalidCredentials, constants.MsgIncorrectPassword},
		{"reused", localUser("u1", "ada@example.com", "secret1"), models.ChangePasswordRequest{Current: "secret1", New: "secret1"}, utils.ErrPasswordReuse, constants.MsgPasswordReused},
		{"too short", localUser("u1", "ada@example.com", "secret1"), models.ChangePasswordRequest{Current: "secret1", New: "123"}, utils.ErrValidation, ""},
		{"federated sets first password", federated, models.ChangePasswordRequest{New: "secret2"}, nil, ""},
		{"federated current ignored", federatedWithPassword, models.ChangePasswordRequest{Current: "wrong", New: "secret2"}, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository(tt.user)
			svc := NewProfileService(repo, plainHasher{})

			err := svc.ChangePassword(context.Background(), tt.user, &tt.req)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "h:secret2", *repo.stored(tt.user.ID).PasswordHash)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, http.StatusBadRequest, utils.StatusCode(err))
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, utils.ParseError(err).Message)
			}
		})
	}
}

func TestProfileService_ChangeUsername(t *testing.T) {
	user := localUser("u1", "ada@example.com", "secret1")
	repo := NewMockUserRepository(user)
	svc := NewProfileService(repo, plainHasher{})

	resp, err := svc.ChangeUsername(context.Background(), user, "  Countess  ")
	require.NoError(t, err)
	assert.Equal(t, "Countess", resp.Username)
	assert.Equal(t, "Countess", repo.stored("u1").Username)

	_, err = svc.ChangeUsername(context.Background(), user, "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrInvalidArgument)
	assert.Equal(t, constants.MsgUsernameRequired, utils.ParseError(err).Message)

	gone := localUser("gone", "gone@example.com", "")
	_, err = svc.ChangeUsername(context.Background(), gone, "Ghost")
	assert.Equal(t, http.StatusNotFound, utils.StatusCode(err))
}

func TestProfileService_ChangeLanguage(t *testing.T) {
	ada := localUser("u1", "ada@example.com", "secret1")
	bob := localUser("u2", "bob@example.com", "secret1")

	tests := []struct {
		name       string
		req        models.ChangeLanguageRequest
		wantStatus int
		wantMsg    string
	}{
		{"success", models.ChangeLanguageRequest{Email: "ADA@example.com", Language: "pt-BR"}, http.StatusOK, ""},
		{"missing email", models.ChangeLanguageRequest{Language: "fr"}, http.StatusBadRequest, constants.MsgEmailLanguageRequired},
		{"missing language", models.ChangeLanguageRequest{Email: "ada@example.com"}, http.StatusBadRequest, constants.MsgEmailLanguageRequired},
		{"invalid language", models.ChangeLanguageRequest{Email: "ada@example.com", Language: "e1"}, http.StatusBadRequest, ""},
		{"unknown email", models.ChangeLanguageRequest{Email: "who@example.com", Language: "fr"}, http.StatusNotFound, constants.MsgUserNotFound},
		{"someone else's email", models.ChangeLanguageRequest{Email: "bob@example.com", Language: "fr"}, http.StatusNotFound, constants.MsgUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository(ada, bob)
			svc := NewProfileService(repo, plainHasher{})

			resp, err := svc.ChangeLanguage(context.Background(), ada, &tt.req)
			if tt.wantStatus == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, "pt-BR", resp.Language)
				assert.Equal(t, "pt-BR", repo.stored("u1").PreferredLanguage)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, utils.StatusCode(err))
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, utils.ParseError(err).Message)
			}
			assert.Equal(t, constants.DefaultLanguage, repo.stored("u2").PreferredLanguage)
		})
	}
}
