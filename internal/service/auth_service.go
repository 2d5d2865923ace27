package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cinevault/cinevault-api/internal/auth"
	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/models"
	"github.com/cinevault/cinevault-api/internal/repository"
	"github.com/cinevault/cinevault-api/internal/utils"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (hash, salt string, err error)
	Verify(password, hash, salt string) (bool, error)
}

// AuthService handles registration and the login flows.
type AuthService struct {
	userRepo   repository.UserRepository
	tokens     auth.TokenIssuer
	hasher     PasswordHasher
	verifier   auth.IdentityVerifier
	mailer     Mailer
	background sync.WaitGroup
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	tokens auth.TokenIssuer,
	hasher PasswordHasher,
	verifier auth.IdentityVerifier,
	mailer Mailer,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
		verifier: verifier,
		mailer:   mailer,
	}
}

// Register creates a local account and returns a session token.
func (s *AuthService) Register(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	username, err := utils.ValidateUsername(req.Username)
	if err != nil {
		return nil, err
	}
	email := utils.NormalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		utils.LogAuth("register_failed", "", email, false, "email taken")
		return nil, utils.NewDuplicateError("User", constants.ColumnEmail, email)
	}

	hash, salt, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.NewUser(username, email)
	user.SetPassword(hash, salt)

	// A concurrent signup that wins the race surfaces as a duplicate here.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	utils.LogAuth("register_success", user.ID, user.Email, true, "")
	s.sendWelcomeAsync(user.Email, user.Username, false)

	return authResponse(user, token), nil
}

// Login verifies email and password credentials.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	email := utils.NormalizeEmail(req.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if utils.IsNotFoundError(err) {
			utils.LogAuth("login_failed", "", email, false, "user not found")
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Federated accounts sign in through their provider only, even once a password was set.
	if user.IsFederated || !user.HasPassword() {
		utils.LogAuth("login_failed", user.ID, email, false, "federated account")
		return nil, utils.NewFederatedAccountError()
	}

	match, err := s.hasher.Verify(req.Password, *user.PasswordHash, *user.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		utils.LogAuth("login_failed", user.ID, email, false, "invalid password")
		return nil, utils.NewInvalidCredentialsError(constants.MsgInvalidPassword)
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	utils.LogAuth("login_success", user.ID, email, true, "")
	return authResponse(user, token), nil
}

// GoogleLogin signs in with a Google ID token, creating the account on first use.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*models.AuthResponse, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, utils.NewValidationError("token", constants.MsgGoogleTokenMissing)
	}

	if s.verifier == nil {
		return nil, utils.NewInternalServerError(auth.ErrNoClientID)
	}

	identity, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, auth.ErrAssertionRejected) || errors.Is(err, auth.ErrEmptyAssertion) {
			utils.LogAuth("google_login_failed", "", "", false, err.Error())
			return nil, utils.NewInvalidAssertionError(constants.MsgGoogleTokenInvalid)
		}
		return nil, utils.NewInternalServerError(fmt.Errorf("google token verification: %w", err))
	}
	if identity.Email == "" {
		return nil, utils.NewInvalidAssertionError(constants.MsgGoogleEmailMissing)
	}
	email := utils.NormalizeEmail(identity.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case utils.IsNotFoundError(err):
		user, err = s.createFederatedUser(ctx, identity, email)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	utils.LogAuth("google_login_success", user.ID, email, true, "")
	return authResponse(user, token), nil
}

func (s *AuthService) createFederatedUser(ctx context.Context, identity *auth.GoogleIdentity, email string) (*models.User, error) {
	username := strings.TrimSpace(identity.Name)
	if username == "" {
		username = utils.EmailLocalPart(email)
	}
	username = utils.TruncateString(username, constants.MaxUsernameLength)

	user := models.NewFederatedUser(username, email, identity.Picture)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if utils.IsDuplicateError(err) {
			// Lost a creation race with a concurrent login for the same email.
			return s.userRepo.GetByEmail(ctx, email)
		}
		return nil, err
	}

	utils.LogAuth("register_success", user.ID, email, true, "google")
	s.sendWelcomeAsync(user.Email, user.Username, true)
	return user, nil
}

// sendWelcomeAsync mails the greeting without holding up the request.
// Failures are logged only.
func (s *AuthService) sendWelcomeAsync(email, username string, federated bool) {
	if s.mailer == nil {
		return
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), constants.WelcomeEmailTimeout)
		defer cancel()

		if err := s.mailer.SendWelcome(ctx, email, username, federated); err != nil {
			log.Warn().Err(err).Str("email", utils.MaskEmail(email)).Msg("Welcome email not delivered")
		}
	}()
}

// Wait blocks until pending background emails finish or the timeout elapses.
func (s *AuthService) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func authResponse(user *models.User, token string) *models.AuthResponse {
	return &models.AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		PhotoURL: user.PhotoURL,
		Token:    token,
	}
}
