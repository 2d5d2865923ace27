// Package auth provides authentication for the CineVault API: session tokens,
// password hashing, reset codes, Google ID token verification and the
// middleware that resolves the bearer of a request.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/models"
	"github.com/cinevault/cinevault-api/internal/utils"
)

// ContextKey is a custom type for context keys to prevent collisions.
type ContextKey string

// Context keys for storing authenticated user information and request metadata.
const (
	UserContextKey      ContextKey = constants.UserContextKey
	RequestIDContextKey ContextKey = constants.RequestIDContextKey
)

// UserLoader resolves the user named by a token.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(constants.HeaderAuthorization)
	if !strings.HasPrefix(header, constants.BearerTokenPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerTokenPrefix))
	return token, token != ""
}

// RequireAuth returns middleware that rejects requests without a valid bearer
// token whose user still exists. The loaded user is stored in the context.
func RequireAuth(validator TokenValidator, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, requestID := ensureRequestID(r)

			token, ok := BearerToken(r)
			if !ok {
				log.Info().
					Str("request_id", requestID).
					Str("path", r.URL.Path).
					Msg("Authentication failed: no bearer token")
				utils.Unauthorized(w, constants.MsgAuthRequired)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				log.Info().
					Err(err).
					Str("request_id", requestID).
					Str("path", r.URL.Path).
					Msg("Authentication failed: token rejected")
				utils.Unauthorized(w, constants.MsgInvalidToken)
				return
			}

			user, err := users.GetByID(ctx, claims.UserID)
			if err != nil {
				if !utils.IsNotFoundError(err) {
					log.Error().Err(err).Str("request_id", requestID).Msg("Failed to load token subject")
				}
				utils.Unauthorized(w, constants.MsgInvalidToken)
				return
			}

			log.Debug().
				Str("user_id", user.ID).
				Str("request_id", requestID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("User authenticated")

			next.ServeHTTP(w, r.WithContext(WithUser(ctx, user)))
		})
	}
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}

// GetRequestID extracts the request ID from the request context.
func GetRequestID(r *http.Request) (string, bool) {
	requestID, ok := r.Context().Value(RequestIDContextKey).(string)
	return requestID, ok
}

func ensureRequestID(r *http.Request) (context.Context, string) {
	if id, ok := GetRequestID(r); ok && id != "" {
		return r.Context(), id
	}
	requestID := r.Header.Get(constants.HeaderXRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return context.WithValue(r.Context(), RequestIDContextKey, requestID), requestID
}
