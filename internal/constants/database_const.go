// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file defines table, column and collection names so that the
// migrations and both store implementations refer to the same schema.
package constants

// Table and collection names.
const (
	// TableUsers is the name of the table storing user accounts.
	TableUsers = "users"

	// CollectionUsers is the Mongo collection storing user documents.
	CollectionUsers = "users"

	// TableMigrations tracks applied schema migrations.
	TableMigrations = "schema_migrations"
)

// Column Names of the users table.
const (
	ColumnUserID            = "user_id"
	ColumnUsername          = "username"
	ColumnEmail             = "email"
	ColumnPasswordHash      = "password_hash"
	ColumnSalt              = "salt"
	ColumnIsFederated       = "is_federated"
	ColumnPhotoURL          = "photo_url"
	ColumnPreferredLanguage = "preferred_language"
	ColumnWatchlist         = "watchlist"
	ColumnFavourites        = "favourites"
	ColumnResetCodeHash     = "reset_code_hash"
	ColumnResetCodeExpiry   = "reset_code_expiry"
	ColumnCreatedAt         = "created_at"
	ColumnUpdatedAt         = "updated_at"
)

// Index Names define database index names.
const (
	IndexUsersEmail = "idx_users_email"
)

// PostgreSQL connection string parameters
const (
	PostgresSSLDisable = "sslmode=disable connect_timeout=15"
	PostgresSSLRequire = "sslmode=require connect_timeout=15"
)
