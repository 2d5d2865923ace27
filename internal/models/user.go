package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cinevault/cinevault-api/internal/constants"
)

// User represents a registered CineVault account.
// It contains credentials, profile attributes and both movie lists.
type User struct {
	ID                string     `json:"id" db:"user_id" bson:"_id"`
	Username          string     `json:"username" db:"username" bson:"username"`
	Email             string     `json:"email" db:"email" bson:"email"`
	PasswordHash      *string    `json:"-" db:"password_hash" bson:"passwordHash,omitempty"`
	Salt              *string    `json:"-" db:"salt" bson:"salt,omitempty"`
	IsFederated       bool       `json:"isFederated" db:"is_federated" bson:"isFederated"`
	PhotoURL          string     `json:"photoUrl" db:"photo_url" bson:"photoUrl"`
	PreferredLanguage string     `json:"preferredLanguage" db:"preferred_language" bson:"preferredLanguage"`
	Watchlist         MovieList  `json:"watchlist" db:"watchlist" bson:"watchlist"`
	Favourites        MovieList  `json:"favourites" db:"favourites" bson:"favourites"`
	ResetCodeHash     *string    `json:"-" db:"reset_code_hash" bson:"resetCodeHash,omitempty"`
	ResetCodeExpiry   *time.Time `json:"-" db:"reset_code_expiry" bson:"resetCodeExpiry,omitempty"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// NewUser creates a local account with a fresh id and empty lists.
// Credentials are attached by the caller.
func NewUser(username, email string) *User {
	now := time.Now().UTC()
	return &User{
		ID:                uuid.NewString(),
		Username:          username,
		Email:             email,
		PreferredLanguage: constants.DefaultLanguage,
		Watchlist:         MovieList{},
		Favourites:        MovieList{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// NewFederatedUser creates an account backed by an external identity provider.
func NewFederatedUser(username, email, photoURL string) *User {
	user := NewUser(username, email)
	user.IsFederated = true
	user.PhotoURL = photoURL
	return user
}

// TableName returns the database table name for the User model.
func (u *User) TableName() string {
	return constants.TableUsers
}

// HasPassword reports whether the account can log in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != "" && u.Salt != nil
}

// SetPassword stores an encoded hash and salt.
func (u *User) SetPassword(hash, salt string) {
	u.PasswordHash = &hash
	u.Salt = &salt
}

// ToResponse returns the public projection of the user.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		IsFederated:       u.IsFederated,
		PhotoURL:          u.PhotoURL,
		PreferredLanguage: u.PreferredLanguage,
		Watchlist:         u.Watchlist.orEmpty(),
		Favourites:        u.Favourites.orEmpty(),
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

// UserResponse is the user as returned to clients. It never carries secrets.
type UserResponse struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	IsFederated       bool      `json:"isFederated"`
	PhotoURL          string    `json:"photoUrl"`
	PreferredLanguage string    `json:"preferredLanguage"`
	Watchlist         MovieList `json:"watchlist"`
	Favourites        MovieList `json:"favourites"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
