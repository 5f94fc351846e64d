package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/codequest/codequest-api/internal/domain"
	"github.com/codequest/codequest-api/internal/store"
)

// MongoTaskStore implements the store.TaskStore interface using a MongoDB
// collection as the storage backend.
type MongoTaskStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoTaskStore creates a new MongoDB implementation of the TaskStore
// interface. It accepts a database handle that should be initialized and
// managed by the caller. If logger is nil, a default logger will be used.
func NewMongoTaskStore(db *mongo.Database, logger *slog.Logger) *MongoTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &MongoTaskStore{
		coll:   db.Collection(tasksCollection),
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure MongoTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*MongoTaskStore)(nil)

// Create implements store.TaskStore.Create
// It inserts the task document. The unique index on title turns a
// duplicate title into store.ErrTitleExists.
func (s *MongoTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.coll.InsertOne(ctx, task)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", store.ErrTitleExists, err)
		}
		return MapError(err)
	}

	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *MongoTaskStore) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Task, error) {
	var task domain.Task
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %v", store.ErrTaskNotFound, err)
		}
		return nil, MapError(err)
	}
	return &task, nil
}

// GetByTitle implements store.TaskStore.GetByTitle
func (s *MongoTaskStore) GetByTitle(ctx context.Context, title string) (*domain.Task, error) {
	var task domain.Task
	err := s.coll.FindOne(ctx, bson.M{"title": title}).Decode(&task)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %v", store.ErrTaskNotFound, err)
		}
		return nil, MapError(err)
	}
	return &task, nil
}

// List implements store.TaskStore.List
func (s *MongoTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	offset, limit int64,
	view store.TaskView,
) ([]*domain.Task, error) {
	opts := options.Find().SetSkip(offset).SetLimit(limit)
	if view == store.ViewFeed {
		opts = opts.SetProjection(bson.M{
			"comments":      0,
			"solution_code": 0,
			"status":        0,
			"draft":         0,
		})
	}

	cursor, err := s.coll.Find(ctx, filterToBSON(filter), opts)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			s.logger.Warn("failed to close cursor", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, MapError(err)
	}

	return tasks, nil
}

// Count implements store.TaskStore.Count
func (s *MongoTaskStore) Count(ctx context.Context, filter store.TaskFilter) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, filterToBSON(filter))
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// UpdateFields implements store.TaskStore.UpdateFields
// It applies the non-nil patch fields in one atomic update and returns the
// updated document.
func (s *MongoTaskStore) UpdateFields(
	ctx context.Context,
	id primitive.ObjectID,
	patch store.TaskPatch,
) (*domain.Task, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Files != nil {
		set["files"] = *patch.Files
	}
	if patch.Testcases != nil {
		set["testcases"] = *patch.Testcases
	}
	if patch.Level != nil {
		set["level"] = *patch.Level
	}
	if patch.SolutionCode != nil {
		set["solution_code"] = *patch.SolutionCode
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Draft != nil {
		set["draft"] = *patch.Draft
	}

	return s.findOneAndUpdate(ctx, id, bson.M{"$set": set}, nil)
}

// PushComment implements store.TaskStore.PushComment
func (s *MongoTaskStore) PushComment(
	ctx context.Context,
	id primitive.ObjectID,
	comment domain.Comment,
) (*domain.Task, error) {
	return s.findOneAndUpdate(ctx, id, bson.M{"$push": bson.M{"comments": comment}}, nil)
}

// PullComment implements store.TaskStore.PullComment
func (s *MongoTaskStore) PullComment(
	ctx context.Context,
	id primitive.ObjectID,
	commentID string,
) (*domain.Task, error) {
	return s.findOneAndUpdate(ctx, id, bson.M{
		"$pull": bson.M{"comments": bson.M{"id": commentID}},
	}, nil)
}

// SetCommentFields implements store.TaskStore.SetCommentFields
// The array filter limits the $set to the single comment whose id matches,
// leaving every other element untouched.
func (s *MongoTaskStore) SetCommentFields(
	ctx context.Context,
	id primitive.ObjectID,
	commentID, message string,
) (*domain.Task, error) {
	update := bson.M{
		"$set": bson.M{
			"comments.$[c].message":   message,
			"comments.$[c].updatedAt": time.Now().UTC(),
		},
	}
	arrayFilters := &options.ArrayFilters{
		Filters: []interface{}{bson.M{"c.id": commentID}},
	}
	return s.findOneAndUpdate(ctx, id, update, arrayFilters)
}

// Delete implements store.TaskStore.Delete
func (s *MongoTaskStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return MapError(err)
	}
	if result.DeletedCount == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// findOneAndUpdate runs a single atomic update against the task document
// and decodes the post-update state. A vanished document surfaces as
// store.ErrTaskNotFound.
func (s *MongoTaskStore) findOneAndUpdate(
	ctx context.Context,
	id primitive.ObjectID,
	update bson.M,
	arrayFilters *options.ArrayFilters,
) (*domain.Task, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if arrayFilters != nil {
		opts = opts.SetArrayFilters(*arrayFilters)
	}

	var task domain.Task
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&task)
	if err != nil {
		if IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %v", store.ErrTaskNotFound, err)
		}
		return nil, MapError(err)
	}

	return &task, nil
}

// filterToBSON converts a store.TaskFilter into a MongoDB filter document.
func filterToBSON(filter store.TaskFilter) bson.M {
	query := bson.M{}
	if filter.Draft != nil {
		query["draft"] = *filter.Draft
	}
	return query
}
