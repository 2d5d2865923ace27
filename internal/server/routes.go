package server

import (
	"io/fs"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/middleware"
	"github.com/cinevault/cinevault-api/internal/utils"
)

// Rate limit categories of the public account routes.
const (
	limitSignup        = "signup"
	limitLogin         = "login"
	limitGoogleLogin   = "google-login"
	limitPasswordReset = "password-reset"
)

// SetupRoutes configures the routes for the application.
//
// Public routes: the banner, the health check, the uploads mount and
// signup, login, google-login (when configured), forgotpassword and resetpassword.
// Everything else under /api/users requires a bearer token.
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.CORS(s.Config.CORS.AllowedOrigins, s.Config.CORS.AllowCredentials))
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery())
	if s.Config.Logging.RequestLog {
		r.Use(middleware.RequestLogger(s.proxies))
	}
	r.Use(middleware.SecurityHeaders())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.NotFound(w, "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.MethodNotAllowed(w)
	})

	r.Get(constants.RootPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeText)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(constants.MsgServiceBanner)); err != nil {
			log.Error().Err(err).Msg("Failed to write banner")
		}
	})
	r.Get(constants.HealthPath, s.health)

	if s.uploadsDir != "" {
		r.Handle(constants.UploadsPath+"/*", s.uploadsHandler())
	}

	r.Route(constants.UsersBasePath, func(r chi.Router) {
		r.Use(middleware.NoStore())

		// Public account endpoints
		r.Group(func(r chi.Router) {
			r.With(middleware.RateLimit(s.limiter, limitSignup, s.proxies)).
				Post(constants.RouteSignup, s.Handlers.AuthHandler.Signup)
			r.With(middleware.RateLimit(s.limiter, limitLogin, s.proxies)).
				Post(constants.RouteLogin, s.Handlers.AuthHandler.Login)
			if s.googleLogin {
				r.With(middleware.RateLimit(s.limiter, limitGoogleLogin, s.proxies)).
					Post(constants.RouteGoogleLogin, s.Handlers.AuthHandler.GoogleLogin)
			}

			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(s.limiter, limitPasswordReset, s.proxies))
				r.Post(constants.RouteForgotPassword, s.Handlers.PasswordResetHandler.ForgotPassword)
				r.Post(constants.RouteResetPassword, s.Handlers.PasswordResetHandler.ResetPassword)
			})
		})

		// Protected account endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(s.tokens, s.users))

			r.Get(constants.RouteProfile, s.Handlers.UserHandler.GetProfile)
			r.Post(constants.RouteUpdateList, s.Handlers.UserHandler.UpdateList)
			r.Put(constants.RouteChangeLanguage, s.Handlers.UserHandler.ChangeLanguage)
			r.Put(constants.RouteChangeUsername, s.Handlers.UserHandler.ChangeUsername)
			r.Put(constants.RouteChangePassword, s.Handlers.UserHandler.ChangePassword)
			r.Put(constants.RouteChangePhoto, s.Handlers.PhotoHandler.ChangePhoto)
			r.Put(constants.RouteDeletePhoto, s.Handlers.PhotoHandler.DeletePhoto)
		})
	})

	s.router = r
}

// GetRouter returns the configured router.
func (s *Server) GetRouter() chi.Router {
	return s.router
}

// health reports whether the user store answers.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.HealthCheck(r.Context()); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		utils.Error(w, http.StatusServiceUnavailable, "service_unavailable", "Service is not healthy", nil)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.Config.App.Version,
	})
}

// uploadsHandler serves stored assets without directory listings.
func (s *Server) uploadsHandler() http.Handler {
	files := http.StripPrefix(constants.UploadsPath, http.FileServer(noListing{http.Dir(s.uploadsDir)}))
	maxAge := "public, max-age=" + strconv.Itoa(constants.CACHEControlMaxAge)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.HeaderCacheControl, maxAge)
		w.Header().Set(constants.HeaderContentSecurityPolicy, "default-src 'none'")
		files.ServeHTTP(w, r)
	})
}

// noListing hides directories from http.FileServer.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
