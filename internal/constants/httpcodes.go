// Package constants provides shared constant values used throughout the application.
//
// The httpcodes.go file defines the machine-readable error codes carried in the
// response envelope, plus header names and values used by the middleware.
package constants

// Response Codes are stable identifiers that clients and tests can match on.
const (
	ResponseSuccess = true
	ResponseFailure = false

	CodeBadRequest           = "bad_request"
	CodeUnauthorized         = "unauthorized"
	CodeNotFound             = "not_found"
	CodeMethodNotAllowed     = "method_not_allowed"
	CodeConflict             = "conflict"
	CodeInternalError        = "internal_error"
	CodeValidationError      = "validation_error"
	CodeInvalidArgument      = "invalid_argument"
	CodeInvalidCredentials   = "invalid_credentials"
	CodeInvalidAssertion     = "invalid_assertion"
	CodeTokenExpired         = "token_expired"
	CodeTokenInvalid         = "token_invalid"
	CodePayloadTooLarge      = "payload_too_large"
	CodeMissingFile          = "missing_file"
	CodeInvalidOrExpiredCode = "invalid_or_expired_code"
	CodePasswordReuse        = "password_reuse"
	CodeRateLimited          = "rate_limited"
)

// HTTP Header Names
const (
	HeaderContentType           = "Content-Type"
	HeaderCacheControl          = "Cache-Control"
	HeaderAuthorization         = "Authorization"
	HeaderXRequestID            = "X-Request-ID"
	HeaderXForwardedFor         = "X-Forwarded-For"
	HeaderXForwardedProto       = "X-Forwarded-Proto"
	HeaderXRealIP               = "X-Real-IP"
	HeaderRetryAfter            = "Retry-After"
	HeaderXContentTypeOptions   = "X-Content-Type-Options"
	HeaderXFrameOptions         = "X-Frame-Options"
	HeaderReferrerPolicy        = "Referrer-Policy"
	HeaderContentSecurityPolicy = "Content-Security-Policy"
)

// HTTP Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Security Header Values
const (
	FrameOptionsDeny           = "DENY"
	ContentTypeOptionsNoSniff  = "nosniff"
	ReferrerPolicyStrictOrigin = "strict-origin-when-cross-origin"
	CSPAPIOnly                 = "default-src 'none'; img-src 'self'; frame-ancestors 'none'"
	CacheControlNoStore        = "no-cache, no-store, must-revalidate"
)
