package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cinevault/cinevault-api/internal/auth"
	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/models"
	"github.com/cinevault/cinevault-api/internal/repository"
	"github.com/cinevault/cinevault-api/internal/utils"
)

// PasswordResetService issues one-time codes by email and redeems them.
type PasswordResetService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	mailer   Mailer
	codeTTL  time.Duration
	now      func() time.Time
	newCode  func() (string, error)
}

// NewPasswordResetService creates a new PasswordResetService
func NewPasswordResetService(userRepo repository.UserRepository, hasher PasswordHasher, mailer Mailer) *PasswordResetService {
	return &PasswordResetService{
		userRepo: userRepo,
		hasher:   hasher,
		mailer:   mailer,
		codeTTL:  constants.ResetCodeTTL,
		now:      time.Now,
		newCode:  auth.GenerateResetCode,
	}
}

// RequestReset stores a fresh code for the account and emails it.
// A new request replaces any earlier code.
func (s *PasswordResetService) RequestReset(ctx context.Context, req *models.ForgotPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	email := utils.NormalizeEmail(req.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := s.newCode()
	if err != nil {
		return utils.NewInternalServerError(err)
	}

	expiry := s.now().UTC().Add(s.codeTTL)
	if err := s.userRepo.SetResetCode(ctx, user.ID, auth.HashResetCode(code), expiry); err != nil {
		return err
	}

	if err := s.mailer.SendResetCode(ctx, user.Email, user.Username, code); err != nil {
		return utils.NewInternalServerError(fmt.Errorf("reset code email: %w", err))
	}

	utils.LogAuth("reset_code_sent", user.ID, email, true, "")
	return nil
}

// ResetPassword replaces the password when the code matches and has not expired.
// The code is consumed on success.
func (s *PasswordResetService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	email := utils.NormalizeEmail(req.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	storedHash := ""
	if user.ResetCodeHash != nil {
		storedHash = *user.ResetCodeHash
	}
	if !auth.VerifyResetCode(req.Code, storedHash, user.ResetCodeExpiry, s.now()) {
		utils.LogAuth("password_reset_failed", user.ID, email, false, "invalid or expired code")
		if storedHash != "" {
			if err := s.userRepo.RecordResetFailure(ctx, user.ID, constants.MaxResetAttempts); err != nil {
				return err
			}
		}
		return utils.NewInvalidOrExpiredCodeError()
	}

	if err := rejectReuse(s.hasher, user, req.NewPassword); err != nil {
		return err
	}

	hash, salt, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.ResetPassword(ctx, user.ID, hash, salt); err != nil {
		return err
	}

	utils.LogAuth("password_reset_success", user.ID, email, true, "")
	return nil
}

// rejectReuse fails when newPassword is the account's current password.
// Accounts without a password have nothing to compare against.
func rejectReuse(hasher PasswordHasher, user *models.User, newPassword string) error {
	if !user.HasPassword() {
		return nil
	}
	same, err := hasher.Verify(newPassword, *user.PasswordHash, *user.Salt)
	if err != nil {
		return fmt.Errorf("failed to compare passwords: %w", err)
	}
	if same {
		return utils.NewPasswordReuseError()
	}
	return nil
}
