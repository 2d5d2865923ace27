// Package database connects the API to its user store.
// PostgreSQL is the default backend; MongoDB can be selected instead.
package database

import "context"

// Store is the part of a backend connection the server manages directly.
type Store interface {
	HealthCheck(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*Pool)(nil)
	_ Store = (*MongoStore)(nil)
)
