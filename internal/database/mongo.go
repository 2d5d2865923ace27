package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/cinevault/cinevault-api/internal/config"
	"github.com/cinevault/cinevault-api/internal/constants"
)

// MongoStore holds a MongoDB client and the application database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// ConnectMongo opens a MongoDB client and verifies the primary is reachable.
func ConnectMongo(ctx context.Context, cfg *config.MongoSettings) (*MongoStore, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DBConnectionTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dbName := cfg.Database
	if dbName == "" {
		dbName = constants.DefaultMongoDatabase
	}

	log.Info().Str("database", dbName).Msg("Connecting to MongoDB")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Info().Msg("Successfully connected to MongoDB")

	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

// Collection returns a collection of the application database.
func (m *MongoStore) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

// Database returns the application database.
func (m *MongoStore) Database() *mongo.Database {
	return m.db
}

// HealthCheck pings the primary.
func (m *MongoStore) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DBHealthCheckTimeout)
	defer cancel()

	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb health check failed: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (m *MongoStore) Close() error {
	if m == nil || m.client == nil {
		return nil
	}
	log.Info().Msg("Closing MongoDB connection")

	ctx, cancel := context.WithTimeout(context.Background(), constants.DBHealthCheckTimeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}
