package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/models"
	"github.com/cinevault/cinevault-api/internal/repository"
	"github.com/cinevault/cinevault-api/internal/utils"
)

// ProfileService manages the authenticated user's account attributes.
type ProfileService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo repository.UserRepository, hasher PasswordHasher) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// GetProfile returns the current public projection of the user.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// ChangePassword replaces the password of user. Accounts created through
// Google have no current password to confirm.
func (s *ProfileService) ChangePassword(ctx context.Context, user *models.User, req *models.ChangePasswordRequest) error {
	if err := utils.ValidatePassword("new", req.New); err != nil {
		return err
	}

	if !user.IsFederated && user.HasPassword() {
		match, err := s.hasher.Verify(req.Current, *user.PasswordHash, *user.Salt)
		if err != nil {
			return fmt.Errorf("failed to verify password: %w", err)
		}
		if !match {
			utils.LogAuth("password_change_failed", user.ID, user.Email, false, "incorrect current password")
			return utils.NewIncorrectPasswordError()
		}
	}

	if err := rejectReuse(s.hasher, user, req.New); err != nil {
		return err
	}

	hash, salt, err := s.hasher.Hash(req.New)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.ChangePassword(ctx, user.ID, hash, salt); err != nil {
		return err
	}

	utils.LogAuth("password_changed", user.ID, user.Email, true, "")
	return nil
}

// ChangeUsername renames user and returns the stored name.
func (s *ProfileService) ChangeUsername(ctx context.Context, user *models.User, username string) (*models.UsernameResponse, error) {
	trimmed, err := utils.ValidateUsername(username)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateUsername(ctx, user.ID, trimmed); err != nil {
		return nil, err
	}
	return &models.UsernameResponse{Username: trimmed}, nil
}

// ChangeLanguage stores the preferred language. The email must name the
// authenticated user; any other account is reported as not found.
func (s *ProfileService) ChangeLanguage(ctx context.Context, user *models.User, req *models.ChangeLanguageRequest) (*models.LanguageResponse, error) {
	email := utils.NormalizeEmail(req.Email)
	language := strings.TrimSpace(req.Language)
	if email == "" || language == "" {
		return nil, utils.NewInvalidArgumentError("language", constants.MsgEmailLanguageRequired)
	}
	if !utils.IsValidLanguage(language) {
		return nil, utils.NewValidationError("language", "Must be a language code such as en or pt-BR")
	}

	target, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if target.ID != user.ID {
		return nil, utils.NewNotFoundError("User", email)
	}

	if err := s.userRepo.UpdateLanguage(ctx, user.ID, language); err != nil {
		return nil, err
	}
	return &models.LanguageResponse{Language: language}, nil
}
