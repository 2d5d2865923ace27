package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/database"
	"github.com/cinevault/cinevault-api/internal/models"
	"github.com/cinevault/cinevault-api/internal/utils"
)

// UserRepository defines methods for interacting with user data
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateUsername(ctx context.Context, id, username string) error
	UpdateLanguage(ctx context.Context, id, language string) error
	UpdatePhotoURL(ctx context.Context, id, photoURL string) error
	ChangePassword(ctx context.Context, id, passwordHash, salt string) error
	SetResetCode(ctx context.Context, id, codeHash string, expiry time.Time) error
	ResetPassword(ctx context.Context, id, passwordHash, salt string) error
	RecordResetFailure(ctx context.Context, id string, maxAttempts int) error
	ToggleListItem(ctx context.Context, id string, kind models.ListKind, ref models.MovieReference) (*models.ListsResponse, error)
}

const userColumns = `user_id, username, email, password_hash, salt, is_federated, photo_url,
	preferred_language, watchlist, favourites, reset_code_hash, reset_code_expiry, created_at, updated_at`

// PostgresUserRepository is a PostgreSQL implementation of UserRepository
type PostgresUserRepository struct {
	db *database.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *database.Pool) UserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

// Create adds a new user to the database
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	startTime := time.Now()

	query := `
        INSERT INTO users (user_id, username, email, password_hash, salt, is_federated, photo_url,
            preferred_language, watchlist, favourites, created_at, updated_at)
        VALUES (:user_id, :username, :email, :password_hash, :salt, :is_federated, :photo_url,
            :preferred_language, :watchlist, :favourites, :created_at, :updated_at)
    `

	_, err := r.db.NamedExecContext(ctx, query, user)

	utils.LogDBQuery(
		query,
		[]interface{}{user.ID, user.Username, user.Email, user.IsFederated},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if utils.IsUniqueViolation(err) {
			return utils.NewDuplicateError("User", constants.ColumnEmail, user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Bool("federated", user.IsFederated).
		Msg("User created")

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	startTime := time.Now()

	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user := &models.User{}
	err := r.db.GetContext(ctx, user, query, id)

	utils.LogDBQuery(query, []interface{}{id}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by normalized email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	startTime := time.Now()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user := &models.User{}
	err := r.db.GetContext(ctx, user, query, email)

	utils.LogDBQuery(query, []interface{}{email}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", fmt.Sprintf("email=%s", email))
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// ExistsByEmail checks if a user with the given email exists
func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	startTime := time.Now()

	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)

	utils.LogDBQuery(query, []interface{}{email}, time.Since(startTime), err)

	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// UpdateUsername renames a user
func (r *PostgresUserRepository) UpdateUsername(ctx context.Context, id, username string) error {
	query := `UPDATE users SET username = $1, updated_at = $2 WHERE user_id = $3`
	return r.execUpdate(ctx, "update username", query, id, username, time.Now().UTC(), id)
}

// UpdateLanguage stores the preferred language of a user
func (r *PostgresUserRepository) UpdateLanguage(ctx context.Context, id, language string) error {
	query := `UPDATE users SET preferred_language = $1, updated_at = $2 WHERE user_id = $3`
	return r.execUpdate(ctx, "update language", query, id, language, time.Now().UTC(), id)
}

// UpdatePhotoURL stores the profile photo URL; an empty URL means no photo
func (r *PostgresUserRepository) UpdatePhotoURL(ctx context.Context, id, photoURL string) error {
	query := `UPDATE users SET photo_url = $1, updated_at = $2 WHERE user_id = $3`
	return r.execUpdate(ctx, "update photo", query, id, photoURL, time.Now().UTC(), id)
}

// ChangePassword replaces the password hash and salt
func (r *PostgresUserRepository) ChangePassword(ctx context.Context, id, passwordHash, salt string) error {
	query := `UPDATE users SET password_hash = $1, salt = $2, updated_at = $3 WHERE user_id = $4`
	return r.execUpdate(ctx, "change password", query, id, passwordHash, salt, time.Now().UTC(), id)
}

// SetResetCode stores the hash of a one-time reset code and its expiry
func (r *PostgresUserRepository) SetResetCode(ctx context.Context, id, codeHash string, expiry time.Time) error {
	query := `UPDATE users SET reset_code_hash = $1, reset_code_expiry = $2, reset_attempts = 0, updated_at = $3 WHERE user_id = $4`
	return r.execUpdate(ctx, "set reset code", query, id, codeHash, expiry, time.Now().UTC(), id)
}

// ResetPassword replaces the password and clears the reset code in one statement
func (r *PostgresUserRepository) ResetPassword(ctx context.Context, id, passwordHash, salt string) error {
	query := `
        UPDATE users
        SET password_hash = $1, salt = $2, reset_code_hash = NULL, reset_code_expiry = NULL,
            reset_attempts = 0, updated_at = $3
        WHERE user_id = $4
    `
	return r.execUpdate(ctx, "reset password", query, id, passwordHash, salt, time.Now().UTC(), id)
}

// RecordResetFailure counts a wrong reset code. The stored code is cleared
// once maxAttempts failures have been recorded against it.
func (r *PostgresUserRepository) RecordResetFailure(ctx context.Context, id string, maxAttempts int) error {
	query := `
        UPDATE users
        SET reset_attempts = reset_attempts + 1,
            reset_code_hash = CASE WHEN reset_attempts + 1 >= $1 THEN NULL ELSE reset_code_hash END,
            reset_code_expiry = CASE WHEN reset_attempts + 1 >= $1 THEN NULL ELSE reset_code_expiry END,
            updated_at = $2
        WHERE user_id = $3
    `
	return r.execUpdate(ctx, "record reset failure", query, id, maxAttempts, time.Now().UTC(), id)
}

// ToggleListItem removes the movie from the list if present, otherwise appends it.
// Membership test and write happen in a single statement, so concurrent toggles
// on the same user cannot lose updates.
func (r *PostgresUserRepository) ToggleListItem(ctx context.Context, id string, kind models.ListKind, ref models.MovieReference) (*models.ListsResponse, error) {
	startTime := time.Now()

	column, err := listColumn(kind)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(ref.ForList(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to encode movie reference: %w", err)
	}

	query := fmt.Sprintf(`
        UPDATE users SET %[1]s = CASE
            WHEN EXISTS (SELECT 1 FROM jsonb_array_elements(%[1]s) e WHERE (e->>'movieId')::bigint = $2)
            THEN COALESCE(
                (SELECT jsonb_agg(e ORDER BY ord)
                 FROM jsonb_array_elements(%[1]s) WITH ORDINALITY AS t(e, ord)
                 WHERE (e->>'movieId')::bigint <> $2),
                '[]'::jsonb)
            ELSE %[1]s || jsonb_build_array($3::jsonb)
        END, updated_at = $4
        WHERE user_id = $1
        RETURNING watchlist, favourites
    `, column)

	lists := &models.ListsResponse{}
	err = r.db.QueryRowxContext(ctx, query, id, ref.MovieID, string(payload), time.Now().UTC()).StructScan(lists)

	utils.LogDBQuery(query, []interface{}{id, ref.MovieID, kind.String()}, time.Since(startTime), err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("failed to toggle %s item: %w", kind, err)
	}

	log.Info().
		Str("user_id", id).
		Str("list", kind.String()).
		Int64("movie_id", ref.MovieID).
		Msg("List toggled")

	return lists, nil
}

// execUpdate runs a single-row update and maps a missing row to NotFound.
func (r *PostgresUserRepository) execUpdate(ctx context.Context, operation, query, id string, args ...interface{}) error {
	startTime := time.Now()

	result, err := r.db.ExecContext(ctx, query, args...)

	utils.LogDBQuery(query, args, time.Since(startTime), err)

	if err != nil {
		return fmt.Errorf("failed to %s: %w", operation, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return utils.NewNotFoundError("User", id)
	}

	log.Debug().Str("user_id", id).Str("operation", operation).Msg("User updated")
	return nil
}

// listColumn maps a list kind to its column. The column name never comes from input.
func listColumn(kind models.ListKind) (string, error) {
	switch kind {
	case models.ListWatchlist:
		return constants.ColumnWatchlist, nil
	case models.ListFavourites:
		return constants.ColumnFavourites, nil
	}
	return "", utils.NewInvalidArgumentError("listKind", constants.MsgInvalidListType)
}
