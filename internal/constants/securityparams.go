package constants

// Context Key Names
const (
	UserIDContextKey    = "user_id"
	UserContextKey      = "user"
	RequestIDContextKey = "request_id"
)

// Credential Validation
const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
	MaxUsernameLength = 50
	MaxEmailLength    = 255
	MinLanguageLength = 2
	MaxLanguageLength = 10
)

// One-time reset code
const (
	ResetCodeMin    = 100000
	ResetCodeMax    = 999999
	ResetCodeDigits = 6

	// MaxResetAttempts wrong codes discard the stored code.
	MaxResetAttempts = 5
)

// Rate limit categories
const (
	RateLimitCategoryAuth  = "auth"
	RateLimitCategoryReset = "reset"
)
