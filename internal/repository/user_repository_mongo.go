package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cinevault/cinevault-api/internal/constants"
	"github.com/cinevault/cinevault-api/internal/database"
	"github.com/cinevault/cinevault-api/internal/models"
	"github.com/cinevault/cinevault-api/internal/utils"
)

// Document field names of the users collection.
const (
	fieldID                = "_id"
	fieldUsername          = "username"
	fieldEmail             = "email"
	fieldPasswordHash      = "passwordHash"
	fieldSalt              = "salt"
	fieldPhotoURL          = "photoUrl"
	fieldPreferredLanguage = "preferredLanguage"
	fieldWatchlist         = "watchlist"
	fieldFavourites        = "favourites"
	fieldResetCodeHash     = "resetCodeHash"
	fieldResetCodeExpiry   = "resetCodeExpiry"
	fieldResetAttempts     = "resetAttempts"
	fieldUpdatedAt         = "updatedAt"
)

// MongoUserRepository is a MongoDB implementation of UserRepository
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a UserRepository backed by the users collection
func NewMongoUserRepository(store *database.MongoStore) UserRepository {
	return newMongoUserRepository(store.Collection(constants.CollectionUsers))
}

func newMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

// Create inserts a user document
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	_, err := r.col.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
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
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{fieldID: id}, id)
}

// GetByEmail retrieves a user by normalized email
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{fieldEmail: email}, fmt.Sprintf("email=%s", email))
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M, identifier string) (*models.User, error) {
	var user models.User
	err := r.col.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NewNotFoundError("User", identifier)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Watchlist == nil {
		user.Watchlist = models.MovieList{}
	}
	if user.Favourites == nil {
		user.Favourites = models.MovieList{}
	}
	return &user, nil
}

// ExistsByEmail checks if a user with the given email exists
func (r *MongoUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{fieldEmail: email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

// UpdateUsername renames a user
func (r *MongoUserRepository) UpdateUsername(ctx context.Context, id, username string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{fieldUsername: username, fieldUpdatedAt: time.Now().UTC()}})
}

// UpdateLanguage stores the preferred language of a user
func (r *MongoUserRepository) UpdateLanguage(ctx context.Context, id, language string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{fieldPreferredLanguage: language, fieldUpdatedAt: time.Now().UTC()}})
}

// UpdatePhotoURL stores the profile photo URL
func (r *MongoUserRepository) UpdatePhotoURL(ctx context.Context, id, photoURL string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{fieldPhotoURL: photoURL, fieldUpdatedAt: time.Now().UTC()}})
}

// ChangePassword replaces the password hash and salt
func (r *MongoUserRepository) ChangePassword(ctx context.Context, id, passwordHash, salt string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		fieldPasswordHash: passwordHash,
		fieldSalt:         salt,
		fieldUpdatedAt:    time.Now().UTC(),
	}})
}

// SetResetCode stores the hash of a one-time reset code and its expiry
func (r *MongoUserRepository) SetResetCode(ctx context.Context, id, codeHash string, expiry time.Time) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		fieldResetCodeHash:   codeHash,
		fieldResetCodeExpiry: expiry,
		fieldResetAttempts:   0,
		fieldUpdatedAt:       time.Now().UTC(),
	}})
}

// ResetPassword replaces the password and clears the reset code
func (r *MongoUserRepository) ResetPassword(ctx context.Context, id, passwordHash, salt string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			fieldPasswordHash: passwordHash,
			fieldSalt:         salt,
			fieldUpdatedAt:    time.Now().UTC(),
		},
		"$unset": bson.M{fieldResetCodeHash: "", fieldResetCodeExpiry: "", fieldResetAttempts: ""},
	})
}

// RecordResetFailure counts a wrong reset code and drops the code after maxAttempts.
func (r *MongoUserRepository) RecordResetFailure(ctx context.Context, id string, maxAttempts int) error {
	return r.updateByID(ctx, id, resetFailurePipeline(maxAttempts, time.Now().UTC()))
}

// resetFailurePipeline increments the attempt counter, then removes the code
// fields in a second stage once the new count reaches maxAttempts.
func resetFailurePipeline(maxAttempts int, now time.Time) mongo.Pipeline {
	exhausted := bson.M{"$gte": bson.A{"$" + fieldResetAttempts, maxAttempts}}
	keepOrRemove := func(field string) bson.M {
		return bson.M{"$cond": bson.A{exhausted, "$$REMOVE", "$" + field}}
	}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: fieldResetAttempts, Value: bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$" + fieldResetAttempts, 0}}, 1}}},
			{Key: fieldUpdatedAt, Value: now},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: fieldResetCodeHash, Value: keepOrRemove(fieldResetCodeHash)},
			{Key: fieldResetCodeExpiry, Value: keepOrRemove(fieldResetCodeExpiry)},
		}}},
	}
}

// ToggleListItem toggles membership with a single pipeline update evaluated by the server.
func (r *MongoUserRepository) ToggleListItem(ctx context.Context, id string, kind models.ListKind, ref models.MovieReference) (*models.ListsResponse, error) {
	field, err := listField(kind)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{fieldWatchlist: 1, fieldFavourites: 1})

	var lists models.ListsResponse
	err = r.col.FindOneAndUpdate(ctx, bson.M{fieldID: id}, togglePipeline(field, ref.ForList(kind), time.Now().UTC()), opts).Decode(&lists)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, utils.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("failed to toggle %s item: %w", kind, err)
	}

	if lists.Watchlist == nil {
		lists.Watchlist = models.MovieList{}
	}
	if lists.Favourites == nil {
		lists.Favourites = models.MovieList{}
	}

	log.Info().
		Str("user_id", id).
		Str("list", kind.String()).
		Int64("movie_id", ref.MovieID).
		Msg("List toggled")

	return &lists, nil
}

// togglePipeline builds an update pipeline that filters the movie out when its id is
// already present and appends the reference otherwise.
func togglePipeline(field string, ref models.MovieReference, now time.Time) mongo.Pipeline {
	path := "$" + field
	current := bson.M{"$ifNull": bson.A{path, bson.A{}}}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: field, Value: bson.M{"$cond": bson.M{
				"if": bson.M{"$in": bson.A{ref.MovieID, bson.M{"$ifNull": bson.A{path + ".movieId", bson.A{}}}}},
				"then": bson.M{"$filter": bson.M{
					"input": current,
					"as":    "m",
					"cond":  bson.M{"$ne": bson.A{"$$m.movieId", ref.MovieID}},
				}},
				"else": bson.M{"$concatArrays": bson.A{current, bson.M{"$literal": bson.A{ref}}}},
			}}},
			{Key: fieldUpdatedAt, Value: now},
		}}},
	}
}

func (r *MongoUserRepository) updateByID(ctx context.Context, id string, update interface{}) error {
	res, err := r.col.UpdateOne(ctx, bson.M{fieldID: id}, update)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return utils.NewNotFoundError("User", id)
	}
	return nil
}

// listField maps a list kind to its document field.
func listField(kind models.ListKind) (string, error) {
	switch kind {
	case models.ListWatchlist:
		return fieldWatchlist, nil
	case models.ListFavourites:
		return fieldFavourites, nil
	}
	return "", utils.NewInvalidArgumentError("listKind", constants.MsgInvalidListType)
}
