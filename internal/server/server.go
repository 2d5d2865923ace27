// Package server provides the HTTP server of the CineVault API.
// It wires the user store, the services and the handlers, and manages
// the server lifecycle including graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/cinevault/cinevault-api/internal/auth"
	"github.com/cinevault/cinevault-api/internal/cache"
	"github.com/cinevault/cinevault-api/internal/config"
	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/database"
	"github.com/cinevault/cinevault-api/internal/handlers"
	"github.com/cinevault/cinevault-api/internal/middleware"
	"github.com/cinevault/cinevault-api/internal/repository"
	"github.com/cinevault/cinevault-api/internal/service"
	"github.com/cinevault/cinevault-api/internal/storage"
	"github.com/cinevault/cinevault-api/internal/utils/ratelimit"
	"github.com/cinevault/cinevault-api/migrations"
)

// Handlers contains all HTTP handlers for the application.
type Handlers struct {
	AuthHandler          *handlers.AuthHandler
	PasswordResetHandler *handlers.PasswordResetHandler
	UserHandler          *handlers.UserHandler
	PhotoHandler         *handlers.PhotoHandler
}

// Server represents the API server.
type Server struct {
	Config *config.AppConfig

	// Store is the user store connection, used for health checks and shutdown
	Store database.Store

	// Handlers contains all HTTP request handlers
	Handlers *Handlers

	tokens      auth.TokenValidator
	users       auth.UserLoader
	limiter     ratelimit.Backend
	proxies     *middleware.TrustedProxies
	uploadsDir  string
	authService *service.AuthService
	googleLogin bool

	router     chi.Router
	httpServer *http.Server
	stop       chan struct{}
}

// NewServer creates a new server instance with all required components.
// Components are built in order: store, repositories, auth, services, handlers, routes.
func NewServer(ctx context.Context, cfg *config.AppConfig) (*Server, error) {
	proxies, err := middleware.NewTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}

	s := &Server{
		Config:  cfg,
		proxies: proxies,
		stop:    make(chan struct{}),
	}

	userRepo, err := s.setupStore(ctx)
	if err != nil {
		s.closeStore()
		return nil, fmt.Errorf("failed to set up user store: %w", err)
	}

	if err := s.setupRateLimiter(ctx); err != nil {
		s.closeStore()
		return nil, fmt.Errorf("failed to set up rate limiter: %w", err)
	}

	if err := s.setupServices(ctx, userRepo); err != nil {
		s.closeLimiter()
		s.closeStore()
		return nil, fmt.Errorf("failed to set up services: %w", err)
	}

	s.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupStore connects the configured backend and prepares its schema.
// On a schema error s.Store is already set so the caller can close it.
func (s *Server) setupStore(ctx context.Context) (repository.UserRepository, error) {
	switch s.Config.Database.Driver {
	case constants.DriverMongo:
		store, err := database.ConnectMongo(ctx, &s.Config.Mongo)
		if err != nil {
			return nil, err
		}
		s.Store = store

		if err := migrations.EnsureMongoIndexes(ctx, store); err != nil {
			return nil, fmt.Errorf("failed to create mongo indexes: %w", err)
		}
		return repository.NewMongoUserRepository(store), nil

	default:
		pool, err := database.Connect(ctx, s.Config)
		if err != nil {
			return nil, err
		}
		s.Store = pool

		if err := migrations.NewMigrator(pool).RunMigrations(ctx); err != nil {
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		return repository.NewUserRepository(pool), nil
	}
}

// setupRateLimiter picks the redis backed limiter when redis is enabled,
// otherwise an in-memory one local to this process.
func (s *Server) setupRateLimiter(ctx context.Context) error {
	if s.Config.RateLimit.Disabled {
		log.Warn().Msg("Rate limiting of the account endpoints is disabled")
		return nil
	}

	rate := ratelimit.PerMinute(s.Config.RateLimit.RequestsPerMinute, s.Config.RateLimit.Burst)

	if s.Config.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, &s.Config.Redis)
		if err != nil {
			return err
		}
		s.limiter = ratelimit.NewRedisStore(client, rate, constants.RateLimitWindow)
		return nil
	}

	s.limiter = ratelimit.NewStore(rate, constants.RateLimitCleanupPeriod, constants.RateLimitIdleExpiration)
	return nil
}

// serviceDeps are the collaborators shared by the services.
type serviceDeps struct {
	users    repository.UserRepository
	tokens   *auth.JWTService
	hasher   service.PasswordHasher
	verifier auth.IdentityVerifier
	mailer   service.Mailer
	photos   *storage.LocalStore
}

// setupServices builds the auth providers, the services and their handlers.
// Google sign-in is only offered when a client id is configured.
func (s *Server) setupServices(ctx context.Context, userRepo repository.UserRepository) error {
	deps := serviceDeps{
		users:  userRepo,
		tokens: auth.NewJWTService(&s.Config.JWT),
		hasher: auth.NewPasswordHasher(auth.ConfigFromAppConfig(s.Config)),
	}

	if s.Config.Google.ClientID != "" {
		verifier, err := auth.NewGoogleVerifier(ctx, s.Config.Google.ClientID)
		if err != nil {
			return err
		}
		deps.verifier = verifier
	} else {
		log.Warn().Msg("GOOGLE_CLIENT_ID not set, google-login is disabled")
	}

	photos, err := storage.NewLocalStore(s.Config.Storage.RootDir)
	if err != nil {
		return err
	}
	deps.photos = photos

	mailer, err := service.NewMailer(s.Config)
	if err != nil {
		return err
	}
	deps.mailer = mailer

	s.setupHandlers(deps)
	return nil
}

func (s *Server) setupHandlers(deps serviceDeps) {
	s.tokens = deps.tokens
	s.users = deps.users
	s.uploadsDir = deps.photos.UploadsDir()
	s.googleLogin = deps.verifier != nil
	s.authService = service.NewAuthService(deps.users, deps.tokens, deps.hasher, deps.verifier, deps.mailer)

	s.Handlers = &Handlers{
		AuthHandler:          handlers.NewAuthHandler(s.authService),
		PasswordResetHandler: handlers.NewPasswordResetHandler(service.NewPasswordResetService(deps.users, deps.hasher, deps.mailer)),
		UserHandler: handlers.NewUserHandler(
			service.NewProfileService(deps.users, deps.hasher),
			service.NewListService(deps.users),
		),
		PhotoHandler: handlers.NewPhotoHandler(
			service.NewPhotoService(deps.users, deps.photos),
			s.Config.Storage.PublicBaseURL,
			s.Config.Storage.MaxPhotoBytes,
		),
	}
}

// Start starts the HTTP server and blocks until it fails or a shutdown signal arrives.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Msg("Starting server")

		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	s.SetupMaintenanceTasks()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), s.Config.Server.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, waits for queued welcome emails
// and releases the limiter and the store.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.stop != nil {
		select {
		case <-s.stop:
		default:
			close(s.stop)
		}
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		log.Info().Msg("Server stopped gracefully")
	}

	if s.authService != nil {
		wait := constants.WelcomeEmailTimeout
		if deadline, ok := ctx.Deadline(); ok {
			wait = time.Until(deadline)
		}
		if !s.authService.Wait(wait) {
			log.Warn().Msg("Shutdown continued before all welcome emails were sent")
		}
	}

	s.closeLimiter()
	s.closeStore()
	return nil
}

func (s *Server) closeLimiter() {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close rate limiter")
	}
}

func (s *Server) closeStore() {
	if s.Store == nil {
		return
	}
	if err := s.Store.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close user store")
		return
	}
	log.Info().Msg("User store connection closed")
}

// SetupMaintenanceTasks starts a background health check of the user store.
// It stops when the server shuts down.
func (s *Server) SetupMaintenanceTasks() {
	if s.stop == nil {
		s.stop = make(chan struct{})
	}
	ticker := time.NewTicker(constants.StoreHealthInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.checkStore()
			case <-s.stop:
				return
			}
		}
	}()
}

// checkStore logs a warning when the store stops answering.
func (s *Server) checkStore() bool {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DBHealthCheckTimeout)
	defer cancel()

	if err := s.Store.HealthCheck(ctx); err != nil {
		log.Warn().Err(err).Msg("User store health check failed")
		return false
	}
	return true
}
