// Package constants provides shared constant values used throughout the application.
//
// The general_const.go file defines route paths and form field names so that the
// router, the handlers and the tests agree on the public URL structure.
package constants

// Base Routes define the root URL paths of the API.
const (
	// RootPath answers with a plain banner.
	RootPath = "/"

	// HealthPath is the endpoint for health checks and system status.
	HealthPath = "/health"

	// UsersBasePath is the prefix of every account endpoint.
	UsersBasePath = "/api/users"

	// UploadsPath is the public mount of stored user assets.
	UploadsPath = "/uploads"
)

// Account Routes are relative to UsersBasePath.
const (
	RouteSignup         = "/signup"
	RouteGoogleLogin    = "/google-login"
	RouteLogin          = "/login"
	RouteProfile        = "/profile"
	RouteUpdateList     = "/update-list"
	RouteForgotPassword = "/forgotpassword"
	RouteResetPassword  = "/resetpassword"
	RouteChangeLanguage = "/change-language"
	RouteChangeUsername = "/change-username"
	RouteChangePhoto    = "/change-photo"
	RouteDeletePhoto    = "/delete-photo"
	RouteChangePassword = "/change-password"
)

// Asset layout
const (
	// UploadsDir is the top-level directory served under UploadsPath.
	UploadsDir = "uploads"

	// ProfilePhotosDir holds profile photos, relative to the storage root.
	ProfilePhotosDir = "uploads/profilePhotos"

	// PhotoFormField is the multipart field carrying the photo.
	PhotoFormField = "photo"
)

// List kinds
const (
	ListWatchlist  = "watchlist"
	ListFavourites = "favourites"
)
