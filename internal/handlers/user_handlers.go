package handlers

import (
	"net/http"

	"github.com/cinevault/cinevault-api/internal/auth"
	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/models"
	"github.com/cinevault/cinevault-api/internal/utils"
)

// UserHandler handles the authenticated account routes
type UserHandler struct {
	profileService ProfileServiceInterface
	listService    ListServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profileService ProfileServiceInterface, listService ListServiceInterface) *UserHandler {
	return &UserHandler{
		profileService: profileService,
		listService:    listService,
	}
}

// GetProfile returns the current user's profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), user.ID)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSONMessage(w, http.StatusOK, constants.MsgProfileLoaded, profile)
}

// UpdateList toggles a movie in the watchlist or favourites
func (h *UserHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var req models.UpdateListRequest
	if err := utils.DecodeJSONLenient(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	lists, err := h.listService.Toggle(r.Context(), user.ID, &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSONMessage(w, http.StatusOK, constants.MsgListUpdated, lists)
}

// ChangeUsername renames the current user
func (h *UserHandler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var req models.ChangeUsernameRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	resp, err := h.profileService.ChangeUsername(r.Context(), user, req.Username)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSONMessage(w, http.StatusOK, constants.MsgUsernameUpdated, resp)
}

// ChangeLanguage stores the current user's preferred language
func (h *UserHandler) ChangeLanguage(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var req models.ChangeLanguageRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	resp, err := h.profileService.ChangeLanguage(r.Context(), user, &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSONMessage(w, http.StatusOK, constants.MsgLanguageUpdated, resp)
}

// ChangePassword replaces the current user's password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var req models.ChangePasswordRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	if err := h.profileService.ChangePassword(r.Context(), user, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSONMessage(w, http.StatusOK, constants.MsgPasswordChanged, nil)
}
