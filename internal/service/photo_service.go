package service

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/cinevault/cinevault-api/internal/models"
	"github.com/cinevault/cinevault-api/internal/repository"
	"github.com/cinevault/cinevault-api/internal/storage"
)

// PhotoStore persists uploaded profile photos.
type PhotoStore interface {
	SavePhoto(ctx context.Context, userID, ext, prev string, content io.Reader) (string, error)
	Delete(ctx context.Context, rel string) error
}

// PhotoService keeps at most one stored profile photo per user.
type PhotoService struct {
	userRepo repository.UserRepository
	store    PhotoStore
}

// NewPhotoService creates a new PhotoService
func NewPhotoService(userRepo repository.UserRepository, store PhotoStore) *PhotoService {
	return &PhotoService{
		userRepo: userRepo,
		store:    store,
	}
}

// ReplacePhoto stores content as the user's new photo and returns its public URL.
// baseURL is the public origin the stored files are served from.
func (s *PhotoService) ReplacePhoto(ctx context.Context, userID, baseURL, ext string, content io.Reader) (*models.PhotoResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	prev := s.removeLocal(ctx, user.ID, baseURL, user.PhotoURL)

	rel, err := s.store.SavePhoto(ctx, user.ID, ext, prev, content)
	if err != nil {
		return nil, err
	}
	url := storage.PublicURL(baseURL, rel)

	if err := s.userRepo.UpdatePhotoURL(ctx, user.ID, url); err != nil {
		if delErr := s.store.Delete(ctx, rel); delErr != nil {
			log.Warn().Err(delErr).Str("path", rel).Msg("Failed to remove unreferenced photo")
		}
		return nil, err
	}

	log.Info().Str("user_id", user.ID).Str("path", rel).Msg("Profile photo replaced")
	return &models.PhotoResponse{PhotoURL: url}, nil
}

// DeletePhoto clears the user's photo. Clearing an empty photo succeeds.
func (s *PhotoService) DeletePhoto(ctx context.Context, userID, baseURL string) (*models.PhotoResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.removeLocal(ctx, user.ID, baseURL, user.PhotoURL)

	if err := s.userRepo.UpdatePhotoURL(ctx, user.ID, ""); err != nil {
		return nil, err
	}
	return &models.PhotoResponse{PhotoURL: ""}, nil
}

// removeLocal deletes the file behind photoURL when this deployment issued it
// and returns its stored path. Provider avatars and other external URLs are
// left alone. Errors are logged only.
func (s *PhotoService) removeLocal(ctx context.Context, userID, baseURL, photoURL string) string {
	if photoURL == "" {
		return ""
	}
	rel, ok := storage.RelativePath(baseURL, photoURL)
	if !ok {
		return ""
	}
	if err := s.store.Delete(ctx, rel); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Str("path", rel).Msg("Failed to delete previous photo")
	}
	return rel
}
