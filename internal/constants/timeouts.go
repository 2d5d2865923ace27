package constants

import "time"

// Server Timeouts
const (
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
)

// Database Timeouts
const (
	DBConnectionTimeout  = 30 * time.Second
	DBQueryTimeout       = 15 * time.Second
	DBHealthCheckTimeout = 5 * time.Second
	DBConnMaxLifetime    = 1 * time.Hour
	DBConnMaxIdleTime    = 30 * time.Minute
)

// Authentication Timeouts
const (
	DefaultJWTExpiry = 7 * 24 * time.Hour
	ResetCodeTTL     = 10 * time.Minute
)

// Background work
const (
	WelcomeEmailTimeout     = 30 * time.Second
	RateLimitWindow         = time.Minute
	RateLimitCleanupPeriod  = 5 * time.Minute
	RateLimitIdleExpiration = 10 * time.Minute
	StoreHealthInterval     = time.Minute
	CACHEControlMaxAge      = 86400 // in seconds, static uploads
)
