package mongodb

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/codequest/codequest-api/internal/domain"
	"github.com/codequest/codequest-api/internal/store"
)

// MongoUserStore implements the store.UserStore interface using a MongoDB
// collection as the storage backend.
type MongoUserStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoUserStore creates a new MongoDB implementation of the UserStore
// interface.
func NewMongoUserStore(db *mongo.Database, logger *slog.Logger) *MongoUserStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &MongoUserStore{
		coll:   db.Collection(usersCollection),
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure MongoUserStore implements store.UserStore interface
var _ store.UserStore = (*MongoUserStore)(nil)

// Create implements store.UserStore.Create
func (s *MongoUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", store.ErrUsernameExists, err)
		}
		return MapError(err)
	}

	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *MongoUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %v", store.ErrUserNotFound, err)
		}
		return nil, MapError(err)
	}
	return &user, nil
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *MongoUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %v", store.ErrUserNotFound, err)
		}
		return nil, MapError(err)
	}
	return &user, nil
}
