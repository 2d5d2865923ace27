package migrations

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/database"
)

// UserIndexes returns the indexes of the users collection.
func UserIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(constants.IndexUsersEmail).SetUnique(true),
		},
	}
}

// EnsureMongoIndexes creates missing indexes. Existing ones are left alone.
func EnsureMongoIndexes(ctx context.Context, store *database.MongoStore) error {
	names, err := store.Collection(constants.CollectionUsers).Indexes().CreateMany(ctx, UserIndexes())
	if err != nil {
		return fmt.Errorf("failed to create mongodb indexes: %w", err)
	}

	log.Info().Strs("indexes", names).Msg("MongoDB indexes ensured")
	return nil
}
