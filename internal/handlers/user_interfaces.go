package handlers

import (
	"context"
	"io"

	"github.com/cinevault/cinevault-api/internal/models"
)

// ProfileServiceInterface defines the account operations of an authenticated user.
type ProfileServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*models.UserResponse, error)
	ChangePassword(ctx context.Context, user *models.User, req *models.ChangePasswordRequest) error
	ChangeUsername(ctx context.Context, user *models.User, username string) (*models.UsernameResponse, error)
	ChangeLanguage(ctx context.Context, user *models.User, req *models.ChangeLanguageRequest) (*models.LanguageResponse, error)
}

// ListServiceInterface toggles movies in the user's lists.
type ListServiceInterface interface {
	Toggle(ctx context.Context, userID string, req *models.UpdateListRequest) (*models.ListsResponse, error)
}

// PhotoServiceInterface manages the stored profile photo.
type PhotoServiceInterface interface {
	ReplacePhoto(ctx context.Context, userID, baseURL, ext string, content io.Reader) (*models.PhotoResponse, error)
	DeletePhoto(ctx context.Context, userID, baseURL string) (*models.PhotoResponse, error)
}
