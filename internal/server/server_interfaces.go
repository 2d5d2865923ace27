package server

import (
	"context"

	"github.com/go-chi/chi/v5"
)

// Lifecycle is the surface cmd/api drives.
type Lifecycle interface {
	SetupRoutes()
	GetRouter() chi.Router
	Start() error
	Shutdown(ctx context.Context) error
	SetupMaintenanceTasks()
}

var _ Lifecycle = (*Server)(nil)
