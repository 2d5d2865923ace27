package middleware

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/cinevault/cinevault-api/internal/auth"
	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/utils"
	"github.com/cinevault/cinevault-api/internal/utils/ratelimit"
)

// JWTAuth is a middleware that requires a valid bearer token for an existing user
func JWTAuth(validator auth.TokenValidator, users auth.UserLoader) func(http.Handler) http.Handler {
	return auth.RequireAuth(validator, users)
}

// RateLimit limits requests per client IP within a category.
// The client IP comes from proxies; a nil proxy list keys on the socket address.
// A nil or failing backend lets the request through.
func RateLimit(backend ratelimit.Backend, category string, proxies *TrustedProxies) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(constants.RateLimitWindow.Seconds()))

	return func(next http.Handler) http.Handler {
		if backend == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := proxies.ClientIP(r)

			allowed, err := backend.Allow(r.Context(), category, clientIP)
			if err != nil {
				log.Warn().Err(err).Str("category", category).Msg("Rate limit backend unavailable")
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				log.Warn().
					Str("client_ip", clientIP).
					Str("path", r.URL.Path).
					Str("category", category).
					Msg("Rate limit exceeded")

				w.Header().Set(constants.HeaderRetryAfter, retryAfter)
				utils.TooManyRequests(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds security-related HTTP headers to responses
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(constants.HeaderXContentTypeOptions, constants.ContentTypeOptionsNoSniff)
			w.Header().Set(constants.HeaderXFrameOptions, constants.FrameOptionsDeny)
			w.Header().Set(constants.HeaderReferrerPolicy, constants.ReferrerPolicyStrictOrigin)
			w.Header().Set(constants.HeaderContentSecurityPolicy, constants.CSPAPIOnly)

			next.ServeHTTP(w, r)
		})
	}
}

// NoStore marks responses as uncacheable
func NoStore() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(constants.HeaderCacheControl, constants.CacheControlNoStore)
			next.ServeHTTP(w, r)
		})
	}
}
