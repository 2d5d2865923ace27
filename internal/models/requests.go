package models

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	Username string `json:"username" validate:"required,notblank,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleLoginRequest carries a Google ID token.
type GoogleLoginRequest struct {
	Token string `json:"token"`
}

// UpdateListRequest toggles a movie in one of the user's lists.
type UpdateListRequest struct {
	ListKind       string          `json:"listKind"`
	MovieReference *MovieReference `json:"movieReference" validate:"required"`
}

// ForgotPasswordRequest asks for a reset code by email.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest sets a new password using a reset code.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,numeric,len=6"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=128"`
}

// ChangePasswordRequest replaces the password of the authenticated user.
type ChangePasswordRequest struct {
	Current string `json:"current"`
	New     string `json:"new" validate:"required,min=6,max=128"`
}

// ChangeUsernameRequest renames the authenticated user.
type ChangeUsernameRequest struct {
	Username string `json:"username"`
}

// ChangeLanguageRequest stores the preferred interface language.
type ChangeLanguageRequest struct {
	Email    string `json:"email"`
	Language string `json:"language"`
}

// AuthResponse is returned by signup and the login endpoints.
type AuthResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoUrl,omitempty"`
	Token    string `json:"token"`
}

// ListsResponse holds both movie lists after a toggle.
type ListsResponse struct {
	Watchlist  MovieList `json:"watchlist" db:"watchlist" bson:"watchlist"`
	Favourites MovieList `json:"favourites" db:"favourites" bson:"favourites"`
}

// UsernameResponse is returned after a rename.
type UsernameResponse struct {
	Username string `json:"username"`
}

// LanguageResponse is returned after a language change.
type LanguageResponse struct {
	Language string `json:"language"`
}

// PhotoResponse is returned after the profile photo changes.
type PhotoResponse struct {
	PhotoURL string `json:"photoUrl"`
}
