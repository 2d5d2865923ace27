// Package constants provides shared constant values used throughout the application.
//
// The errorcodes.go file defines constants related to error handling, categorization,
// and messaging. User-facing messages are short sentences that the web client shows
// as-is; internal details never appear in them.
package constants

// Error Types define the categories of errors that can occur in the application.
const (
	ErrorNotFound             = "resource not found"
	ErrorUnauthorized         = "unauthorized access"
	ErrorBadRequest           = "invalid request"
	ErrorInternalServer       = "internal server error"
	ErrorInvalidArgument      = "invalid argument"
	ErrorValidation           = "validation error"
	ErrorDuplicate            = "duplicate resource"
	ErrorInvalidCredentials   = "invalid credentials"
	ErrorInvalidAssertion     = "invalid identity assertion"
	ErrorExpiredToken         = "expired token"
	ErrorInvalidToken         = "invalid token"
	ErrorPayloadTooLarge      = "payload too large"
	ErrorMissingFile          = "missing file"
	ErrorInvalidOrExpiredCode = "invalid or expired code"
	ErrorPasswordReuse        = "password reuse"
	ErrorRateLimited          = "rate limited"
)

// User-Facing Error Messages.
const (
	MsgAuthRequired          = "Not authorized, no token"
	MsgInvalidToken          = "Not authorized, token failed"
	MsgTokenExpired          = "Not authorized, token expired"
	MsgUserExists            = "User already exists"
	MsgUserNotFound          = "User not found"
	MsgUseGoogleLogin        = "Please use Google login"
	MsgInvalidPassword       = "Invalid Password"
	MsgGoogleTokenMissing    = "Google token missing"
	MsgGoogleTokenInvalid    = "Google login failed"
	MsgGoogleEmailMissing    = "Email not found"
	MsgUsernameRequired      = "Username required"
	MsgEmailLanguageRequired = "Email and language required"
	MsgInvalidListType       = "Invalid list type"
	MsgNoPhotoUploaded       = "No photo uploaded"
	MsgSinglePhotoOnly       = "Only one photo can be uploaded"
	MsgPhotoNotImage         = "Uploaded file must be an image"
	MsgPhotoTooLarge         = "Photo must be 5 MB or smaller"
	MsgIncorrectPassword     = "Incorrect current password"
	MsgPasswordReused        = "You recently used this password Please try new one"
	MsgInvalidOrExpiredCode  = "Invalid or expired code"
	MsgInternalServerError   = "Server error"
	MsgRequestBodyTooLarge   = "Request body too large"
	MsgEmptyRequestBody      = "Request body must not be empty"
	MsgMalformedJSON         = "Request body contains malformed JSON"
	MsgResourceNotFound      = "The requested resource could not be found"
	MsgMethodNotAllowed      = "This method is not allowed for this resource"
	MsgTooManyRequests       = "Too many requests, please try again later"
)

// Success Messages.
const (
	MsgRegistered      = "User registered successfully"
	MsgLoggedIn        = "Login successful"
	MsgProfileLoaded   = "Profile loaded"
	MsgListUpdated     = "List updated successfully"
	MsgResetCodeSent   = "Code sent to your email successfully."
	MsgPasswordUpdated = "Password updated successfully"
	MsgPasswordChanged = "Password changed successfully"
	MsgLanguageUpdated = "Language updated successfully"
	MsgUsernameUpdated = "Username updated successfully"
	MsgPhotoUpdated    = "Profile photo updated successfully"
	MsgPhotoDeleted    = "Profile photo deleted successfully"
	MsgServiceBanner   = "CineVault API Running"
)

// Database Error Types define constants for recognizing store-specific errors.
const (
	// PGErrorDuplicateConstraint is the PostgreSQL error code for unique constraint violations.
	PGErrorDuplicateConstraint = "23505"
)

// Logger Constants define values used for structured logging.
const (
	LogCategoryAuth = "auth"

	LogEventLogin          = "login"
	LogEventGoogleLogin    = "google_login"
	LogEventRegister       = "register"
	LogEventPasswordReset  = "password_reset"
	LogEventPasswordChange = "password_change"
	LogEventUserUpdate     = "user_update"

	// LogRedactedValue is used to replace sensitive values in logs.
	LogRedactedValue = "[REDACTED]"
)
