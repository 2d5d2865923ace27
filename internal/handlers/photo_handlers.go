package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"github.com/cinevault/cinevault-api/internal/auth"
	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/storage"
	"github.com/cinevault/cinevault-api/internal/utils"
)

// PhotoHandler serves the profile photo routes
type PhotoHandler struct {
	photoService  PhotoServiceInterface
	publicBaseURL string
	maxBytes      int64
}

// NewPhotoHandler creates a new PhotoHandler. An empty publicBaseURL derives
// the base from each request.
func NewPhotoHandler(photoService PhotoServiceInterface, publicBaseURL string, maxBytes int64) *PhotoHandler {
	if maxBytes <= 0 {
		maxBytes = constants.MaxPhotoSize
	}
	return &PhotoHandler{
		photoService:  photoService,
		publicBaseURL: publicBaseURL,
		maxBytes:      maxBytes,
	}
}

// ChangePhoto replaces the profile photo with the uploaded image
func (h *PhotoHandler) ChangePhoto(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	file, header, err := h.readPhoto(w, r)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}
	defer file.Close()

	detected, err := mimetype.DetectReader(file)
	if err != nil {
		utils.ErrorFromAppError(w, utils.NewInternalServerError(err))
		return
	}
	if !strings.HasPrefix(detected.String(), "image/") {
		utils.ErrorFromAppError(w, utils.NewInvalidArgumentError(constants.PhotoFormField, constants.MsgPhotoNotImage))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		utils.ErrorFromAppError(w, utils.NewInternalServerError(err))
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = detected.Extension()
	}

	resp, err := h.photoService.ReplacePhoto(r.Context(), user.ID, storage.BaseURL(h.publicBaseURL, r), ext, file)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	log.Debug().Str("user_id", user.ID).Str("mime", detected.String()).Int64("size", header.Size).Msg("Photo uploaded")
	utils.JSONMessage(w, http.StatusOK, constants.MsgPhotoUpdated, resp)
}

// DeletePhoto clears the profile photo
func (h *PhotoHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	resp, err := h.photoService.DeletePhoto(r.Context(), user.ID, storage.BaseURL(h.publicBaseURL, r))
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSONMessage(w, http.StatusOK, constants.MsgPhotoDeleted, resp)
}

// readPhoto parses the multipart body and returns its single photo part.
func (h *PhotoHandler) readPhoto(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+constants.MultipartOverhead)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr), strings.Contains(err.Error(), "request body too large"):
			return nil, nil, utils.NewPayloadTooLargeError(constants.MsgPhotoTooLarge)
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return nil, nil, utils.NewMissingFileError(constants.PhotoFormField)
		default:
			return nil, nil, utils.NewBadRequestError("Invalid file upload")
		}
	}

	files := 0
	for _, headers := range r.MultipartForm.File {
		files += len(headers)
	}
	photos := r.MultipartForm.File[constants.PhotoFormField]
	if len(photos) == 0 {
		return nil, nil, utils.NewMissingFileError(constants.PhotoFormField)
	}
	if files > 1 {
		return nil, nil, utils.NewInvalidArgumentError(constants.PhotoFormField, constants.MsgSinglePhotoOnly)
	}

	header := photos[0]
	if header.Size > h.maxBytes {
		return nil, nil, utils.NewPayloadTooLargeError(constants.MsgPhotoTooLarge)
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, utils.NewInternalServerError(err)
	}
	return file, header, nil
}
