// Package handlers provides HTTP request handlers for the CineVault API.
package handlers

import (
	"context"

	"github.com/cinevault/cinevault-api/internal/models"
)

// AuthServiceInterface defines the methods required from the authentication service.
type AuthServiceInterface interface {
	// Register creates a local account and returns the user with a session token.
	Register(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error)

	// Login verifies an email and password.
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)

	// GoogleLogin verifies a Google ID token, creating the account on first use.
	GoogleLogin(ctx context.Context, idToken string) (*models.AuthResponse, error)
}

// PasswordResetServiceInterface defines the reset-code flow.
type PasswordResetServiceInterface interface {
	RequestReset(ctx context.Context, req *models.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
}
