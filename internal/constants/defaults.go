// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used when the configuration
// leaves a setting empty. Changing these values changes the behavior of every
// deployment that relies on the defaults.
package constants

// Default Configuration Values define fallback settings when not specified in configuration.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 5000

	// DefaultDBMaxConnections is the default maximum number of database connections.
	DefaultDBMaxConnections = 20

	// DefaultDBMinConnections is the default number of idle database connections kept open.
	DefaultDBMinConnections = 5

	// DefaultDBPort is the default PostgreSQL port.
	DefaultDBPort = 5432

	// DefaultMongoDatabase is the database name used when the Mongo store is selected.
	DefaultMongoDatabase = "cinevault"

	// DefaultRedisAddr is the default Redis address for the shared rate limiter.
	DefaultRedisAddr = "localhost:6379"

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"

	// DefaultLanguage is the preferred language of a freshly created user.
	DefaultLanguage = "en"
)

// Database drivers accepted by the database.driver setting.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Environment Types define the recognized application running environments.
const (
	// EnvDevelopment identifies a development environment with debugging features enabled.
	EnvDevelopment = "development"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment with optimized settings.
	EnvProduction = "production"
)

// File Size Limits define the maximum allowed sizes for request bodies and uploads.
const (
	// MaxRequestBodySize is the maximum size in bytes for JSON request bodies.
	MaxRequestBodySize = 1 << 20

	// MaxPhotoSize is the largest accepted profile photo.
	MaxPhotoSize = 5 << 20

	// MultipartOverhead is the slack allowed on top of MaxPhotoSize for multipart framing.
	MultipartOverhead = 1 << 20
)

// Default Password Hash Settings define the parameters for Argon2id password hashing.
const (
	// DefaultPasswordHashMemory is the memory cost parameter for Argon2id hashing.
	DefaultPasswordHashMemory = 64 * 1024

	// DefaultPasswordHashIterations is the number of iterations for Argon2id hashing.
	DefaultPasswordHashIterations = 3

	// DefaultPasswordHashParallelism is the parallelism parameter for Argon2id hashing.
	DefaultPasswordHashParallelism = 2

	// DefaultPasswordHashSaltLength is the length in bytes of the random salt.
	DefaultPasswordHashSaltLength = 16

	// DefaultPasswordHashKeyLength is the length in bytes of the generated hash.
	DefaultPasswordHashKeyLength = 32

	// DevPasswordHashMemory is a reduced memory setting for development environments.
	DevPasswordHashMemory = 16 * 1024

	// DevPasswordHashIterations is a reduced iteration count for development environments.
	DevPasswordHashIterations = 1
)

// Auth Constants define values related to token issuance.
const (
	// DefaultJWTIssuer is the issuer claim value for JWT tokens.
	DefaultJWTIssuer = "cinevault-api"

	// BearerTokenPrefix is the prefix for Authorization header bearer tokens.
	BearerTokenPrefix = "Bearer "
)

// Rate limit defaults for the unauthenticated auth endpoints, per client IP.
const (
	DefaultAuthRequestsPerMinute = 10
	DefaultAuthBurst             = 5
)

// Logging rotation defaults used when logging.file_path is set.
const (
	DefaultLogRotationHours = 24
	DefaultLogMaxAgeDays    = 14
)
