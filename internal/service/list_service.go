package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/cinevault/cinevault-api/internal/models"
	"github.com/cinevault/cinevault-api/internal/repository"
	"github.com/cinevault/cinevault-api/internal/utils"
)

// ListService toggles movies in the watchlist and favourites.
type ListService struct {
	userRepo repository.UserRepository
}

// NewListService creates a new ListService
func NewListService(userRepo repository.UserRepository) *ListService {
	return &ListService{userRepo: userRepo}
}

// Toggle removes the movie from the list when present and appends it
// otherwise, returning both lists as stored afterwards.
func (s *ListService) Toggle(ctx context.Context, userID string, req *models.UpdateListRequest) (*models.ListsResponse, error) {
	kind, err := models.ParseListKind(req.ListKind)
	if err != nil {
		return nil, err
	}
	if req.MovieReference == nil {
		return nil, utils.NewValidationError("movieReference", "This field is required")
	}
	if err := utils.ValidateStruct(req.MovieReference); err != nil {
		return nil, err
	}

	lists, err := s.userRepo.ToggleListItem(ctx, userID, kind, req.MovieReference.ForList(kind))
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("user_id", userID).
		Str("list", kind.String()).
		Int64("movie_id", req.MovieReference.MovieID).
		Msg("List toggled")
	return lists, nil
}
