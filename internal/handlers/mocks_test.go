package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/cinevault/cinevault-api/internal/auth"
	"github.com/cinevault/cinevault-api/internal/models"
)

// MockAuthService implements AuthServiceInterface
type MockAuthService struct {
	RegisterFunc    func(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error)
	LoginFunc       func(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	GoogleLoginFunc func(ctx context.Context, idToken string) (*models.AuthResponse, error)
}

func (m *MockAuthService) Register(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	return m.RegisterFunc(ctx, req)
}

func (m *MockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	return m.LoginFunc(ctx, req)
}

func (m *MockAuthService) GoogleLogin(ctx context.Context, idToken string) (*models.AuthResponse, error) {
	return m.GoogleLoginFunc(ctx, idToken)
}

// MockPasswordResetService implements PasswordResetServiceInterface
type MockPasswordResetService struct {
	RequestResetFunc  func(ctx context.Context, req *models.ForgotPasswordRequest) error
	ResetPasswordFunc func(ctx context.Context, req *models.ResetPasswordRequest) error
}

func (m *MockPasswordResetService) RequestReset(ctx context.Context, req *models.ForgotPasswordRequest) error {
	return m.RequestResetFunc(ctx, req)
}

func (m *MockPasswordResetService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	return m.ResetPasswordFunc(ctx, req)
}

// MockProfileService implements ProfileServiceInterface
type MockProfileService struct {
	GetProfileFunc     func(ctx context.Context, userID string) (*models.UserResponse, error)
	ChangePasswordFunc func(ctx context.Context, user *models.User, req *models.ChangePasswordRequest) error
	ChangeUsernameFunc func(ctx context.Context, user *models.User, username string) (*models.UsernameResponse, error)
	ChangeLanguageFunc func(ctx context.Context, user *models.User, req *models.ChangeLanguageRequest) (*models.LanguageResponse, error)
}

func (m *MockProfileService) GetProfile(ctx context.Context, userID string) (*models.UserResponse, error) {
	return m.GetProfileFunc(ctx, userID)
}

func (m *MockProfileService) ChangePassword(ctx context.Context, user *models.User, req *models.ChangePasswordRequest) error {
	return m.ChangePasswordFunc(ctx, user, req)
}

func (m *MockProfileService) ChangeUsername(ctx context.Context, user *models.User, username string) (*models.UsernameResponse, error) {
	return m.ChangeUsernameFunc(ctx, user, username)
}

func (m *MockProfileService) ChangeLanguage(ctx context.Context, user *models.User, req *models.ChangeLanguageRequest) (*models.LanguageResponse, error) {
	return m.ChangeLanguageFunc(ctx, user, req)
}

// MockListService implements ListServiceInterface
type MockListService struct {
	ToggleFunc func(ctx context.Context, userID string, req *models.UpdateListRequest) (*models.ListsResponse, error)
}

func (m *MockListService) Toggle(ctx context.Context, userID string, req *models.UpdateListRequest) (*models.ListsResponse, error) {
	return m.ToggleFunc(ctx, userID, req)
}

// MockPhotoService implements PhotoServiceInterface
type MockPhotoService struct {
	ReplacePhotoFunc func(ctx context.Context, userID, baseURL, ext string, content io.Reader) (*models.PhotoResponse, error)
	DeletePhotoFunc  func(ctx context.Context, userID, baseURL string) (*models.PhotoResponse, error)
}

func (m *MockPhotoService) ReplacePhoto(ctx context.Context, userID, baseURL, ext string, content io.Reader) (*models.PhotoResponse, error) {
	return m.ReplacePhotoFunc(ctx, userID, baseURL, ext, content)
}

func (m *MockPhotoService) DeletePhoto(ctx context.Context, userID, baseURL string) (*models.PhotoResponse, error) {
	return m.DeletePhotoFunc(ctx, userID, baseURL)
}

var testUser = &models.User{ID: "user-1", Username: "ada", Email: "ada@example.com"}

// authed attaches testUser to the request context the way the auth middleware does.
func authed(r *http.Request) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), testUser))
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}
