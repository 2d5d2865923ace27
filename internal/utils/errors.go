package utils

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"

	"github.com/cinevault/cinevault-api/internal/constants"
)

// Custom error types for the application
var (
	ErrNotFound             = errors.New(constants.ErrorNotFound)
	ErrUnauthorized         = errors.New(constants.ErrorUnauthorized)
	ErrBadRequest           = errors.New(constants.ErrorBadRequest)
	ErrInternalServer       = errors.New(constants.ErrorInternalServer)
	ErrValidation           = errors.New(constants.ErrorValidation)
	ErrInvalidArgument      = errors.New(constants.ErrorInvalidArgument)
	ErrDuplicate            = errors.New(constants.ErrorDuplicate)
	ErrInvalidCredentials   = errors.New(constants.ErrorInvalidCredentials)
	ErrInvalidAssertion     = errors.New(constants.ErrorInvalidAssertion)
	ErrExpiredToken         = errors.New(constants.ErrorExpiredToken)
	ErrInvalidToken         = errors.New(constants.ErrorInvalidToken)
	ErrPayloadTooLarge      = errors.New(constants.ErrorPayloadTooLarge)
	ErrMissingFile          = errors.New(constants.ErrorMissingFile)
	ErrInvalidOrExpiredCode = errors.New(constants.ErrorInvalidOrExpiredCode)
	ErrPasswordReuse        = errors.New(constants.ErrorPasswordReuse)
	ErrRateLimited          = errors.New(constants.ErrorRateLimited)
)

// AppError represents an application error with additional context
type AppError struct {
	Err        error  // The underlying error
	StatusCode int    // HTTP status code
	Message    string // User-friendly error message
	DevInfo    string // Additional information for developers, never sent to clients
	Field      string // Field related to the error (for validation errors)
	Details    map[string]any
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the given error and status code
func New(err error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewValidationError creates a new validation error for a specific field
func NewValidationError(field, message string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Field:      field,
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		StatusCode: http.StatusBadRequest,
		Message:    message,
	}
}

// NewInvalidArgumentError reports a well-formed request carrying a value outside the accepted set.
func NewInvalidArgumentError(field, message string) *AppError {
	return &AppError{
		Err:        ErrInvalidArgument,
		StatusCode: http.StatusBadRequest,
		Message:    message,
		Field:      field,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resourceType string, identifier interface{}) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		StatusCode: http.StatusNotFound,
		Message:    fmt.Sprintf("%s not found", resourceType),
		DevInfo:    fmt.Sprintf("%s with identifier '%v' not found", resourceType, identifier),
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = constants.MsgAuthRequired
	}
	return &AppError{
		Err:        ErrUnauthorized,
		StatusCode: http.StatusUnauthorized,
		Message:    message,
	}
}

// NewInternalServerError creates a new internal server error
func NewInternalServerError(err error) *AppError {
	devInfo := ""
	if err != nil {
		devInfo = err.Error()
	}
	return &AppError{
		Err:        ErrInternalServer,
		StatusCode: http.StatusInternalServerError,
		Message:    constants.MsgInternalServerError,
		DevInfo:    devInfo,
	}
}

// NewDuplicateError creates a new duplicate resource error.
// Clients treat a taken email as a bad request, so the status is 400.
func NewDuplicateError(resourceType, field string, value interface{}) *AppError {
	return &AppError{
		Err:        ErrDuplicate,
		StatusCode: http.StatusBadRequest,
		Message:    fmt.Sprintf("%s already exists", resourceType),
		DevInfo:    fmt.Sprintf("%s with %s '%v' already exists", resourceType, field, value),
		Field:      field,
	}
}

// NewInvalidCredentialsError creates a new invalid credentials error
func NewInvalidCredentialsError(message string) *AppError {
	if message == "" {
		message = constants.MsgInvalidPassword
	}
	return &AppError{
		Err:        ErrInvalidCredentials,
		StatusCode: http.StatusUnauthorized,
		Message:    message,
	}
}

// NewFederatedAccountError rejects a password check against an account that has no password.
func NewFederatedAccountError() *AppError {
	return &AppError{
		Err:        ErrInvalidCredentials,
		StatusCode: http.StatusBadRequest,
		Message:    constants.MsgUseGoogleLogin,
	}
}

// NewIncorrectPasswordError rejects a wrong current password on an authenticated change.
func NewIncorrectPasswordError() *AppError {
	return &AppError{
		Err:        ErrInvalidCredentials,
		StatusCode: http.StatusBadRequest,
		Message:    constants.MsgIncorrectPassword,
		Field:      "current",
	}
}

// NewInvalidAssertionError reports an identity provider token that failed verification.
func NewInvalidAssertionError(message string) *AppError {
	if message == "" {
		message = constants.MsgGoogleTokenInvalid
	}
	return &AppError{
		Err:        ErrInvalidAssertion,
		StatusCode: http.StatusBadRequest,
		Message:    message,
	}
}

// NewExpiredTokenError creates a new expired token error
func NewExpiredTokenError() *AppError {
	return &AppError{
		Err:        ErrExpiredToken,
		StatusCode: http.StatusUnauthorized,
		Message:    constants.MsgTokenExpired,
	}
}

// NewInvalidTokenError creates a new invalid token error
func NewInvalidTokenError() *AppError {
	return &AppError{
		Err:        ErrInvalidToken,
		StatusCode: http.StatusUnauthorized,
		Message:    constants.MsgInvalidToken,
	}
}

// NewPayloadTooLargeError creates a 413 error
func NewPayloadTooLargeError(message string) *AppError {
	if message == "" {
		message = constants.MsgRequestBodyTooLarge
	}
	return &AppError{
		Err:        ErrPayloadTooLarge,
		StatusCode: http.StatusRequestEntityTooLarge,
		Message:    message,
	}
}

// NewMissingFileError reports a multipart request without the expected file part.
func NewMissingFileError(field string) *AppError {
	return &AppError{
		Err:        ErrMissingFile,
		StatusCode: http.StatusBadRequest,
		Message:    constants.MsgNoPhotoUploaded,
		Field:      field,
	}
}

// NewInvalidOrExpiredCodeError rejects a reset code that does not match or has expired.
// Both cases share one message so callers cannot tell them apart.
func NewInvalidOrExpiredCodeError() *AppError {
	return &AppError{
		Err:        ErrInvalidOrExpiredCode,
		StatusCode: http.StatusBadRequest,
		Message:    constants.MsgInvalidOrExpiredCode,
	}
}

// NewPasswordReuseError rejects a new password equal to the current one.
func NewPasswordReuseError() *AppError {
	return &AppError{
		Err:        ErrPasswordReuse,
		StatusCode: http.StatusBadRequest,
		Message:    constants.MsgPasswordReused,
	}
}

// NewRateLimitedError creates a 429 error
func NewRateLimitedError() *AppError {
	return &AppError{
		Err:        ErrRateLimited,
		StatusCode: http.StatusTooManyRequests,
		Message:    constants.MsgTooManyRequests,
	}
}

// ParseError attempts to parse various types of errors into an AppError
func ParseError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return NewNotFoundError("Resource", "")
	case errors.Is(err, ErrUnauthorized):
		return NewUnauthorizedError("")
	case errors.Is(err, ErrBadRequest):
		return NewBadRequestError(err.Error())
	case errors.Is(err, ErrValidation):
		return NewValidationError("", err.Error())
	case errors.Is(err, ErrInvalidArgument):
		return NewInvalidArgumentError("", err.Error())
	case errors.Is(err, ErrMissingFile):
		return NewMissingFileError("")
	case errors.Is(err, ErrDuplicate):
		return NewDuplicateError("Resource", "", "")
	case errors.Is(err, ErrInvalidCredentials):
		return NewInvalidCredentialsError("")
	case errors.Is(err, ErrInvalidAssertion):
		return NewInvalidAssertionError("")
	case errors.Is(err, ErrExpiredToken):
		return NewExpiredTokenError()
	case errors.Is(err, ErrInvalidToken):
		return NewInvalidTokenError()
	case errors.Is(err, ErrPayloadTooLarge):
		return NewPayloadTooLargeError("")
	case errors.Is(err, ErrInvalidOrExpiredCode):
		return NewInvalidOrExpiredCodeError()
	case errors.Is(err, ErrPasswordReuse):
		return NewPasswordReuseError()
	case errors.Is(err, ErrRateLimited):
		return NewRateLimitedError()
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == constants.PGErrorDuplicateConstraint {
		return &AppError{
			Err:        ErrDuplicate,
			StatusCode: http.StatusBadRequest,
			Message:    "Resource already exists",
			DevInfo:    pqErr.Error(),
			Field:      pqErr.Column,
		}
	}

	return NewInternalServerError(err)
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if an error is a duplicate resource error
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == constants.PGErrorDuplicateConstraint
	}
	return false
}

// StatusCode returns the HTTP status code for an error
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// ErrorCode returns the machine-readable code for an error.
func ErrorCode(err *AppError) string {
	switch {
	case errors.Is(err.Err, ErrNotFound):
		return constants.CodeNotFound
	case errors.Is(err.Err, ErrBadRequest):
		return constants.CodeBadRequest
	case errors.Is(err.Err, ErrUnauthorized):
		return constants.CodeUnauthorized
	case errors.Is(err.Err, ErrValidation):
		return constants.CodeValidationError
	case errors.Is(err.Err, ErrInvalidArgument):
		return constants.CodeInvalidArgument
	case errors.Is(err.Err, ErrDuplicate):
		return constants.CodeConflict
	case errors.Is(err.Err, ErrInvalidCredentials):
		return constants.CodeInvalidCredentials
	case errors.Is(err.Err, ErrInvalidAssertion):
		return constants.CodeInvalidAssertion
	case errors.Is(err.Err, ErrExpiredToken):
		return constants.CodeTokenExpired
	case errors.Is(err.Err, ErrInvalidToken):
		return constants.CodeTokenInvalid
	case errors.Is(err.Err, ErrPayloadTooLarge):
		return constants.CodePayloadTooLarge
	case errors.Is(err.Err, ErrMissingFile):
		return constants.CodeMissingFile
	case errors.Is(err.Err, ErrInvalidOrExpiredCode):
		return constants.CodeInvalidOrExpiredCode
	case errors.Is(err.Err, ErrPasswordReuse):
		return constants.CodePasswordReuse
	case errors.Is(err.Err, ErrRateLimited):
		return constants.CodeRateLimited
	}
	return constants.CodeInternalError
}
