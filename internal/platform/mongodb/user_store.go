package mongodb

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/phrazzld/natours-api/internal/domain"
	"github.com/phrazzld/natours-api/internal/query"
	"github.com/phrazzld/natours-api/internal/store"
)

// userVisible hides deactivated accounts from every read.
var userVisible = bson.E{Key: "active", Value: bson.D{{Key: "$ne", Value: false}}}

// MongoUserStore implements store.UserStore on a MongoDB collection.
type MongoUserStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewMongoUserStore creates a user store on the users collection of db.
func NewMongoUserStore(db *mongo.Database, logger *slog.Logger) *MongoUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoUserStore{
		coll:   db.Collection(UsersCollection),
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure MongoUserStore implements store.UserStore interface
var _ store.UserStore = (*MongoUserStore)(nil)

// Find implements store.UserStore.Find
func (s *MongoUserStore) Find(ctx context.Context, q query.Shaped) ([]store.Record, error) {
	filter, err := renderFilter(domain.UserSchema, userVisible, q.Filter)
	if err != nil {
		return nil, err
	}
	return findRecords(ctx, s.coll, filter, renderFindOptions(domain.UserSchema, q))
}

// Create implements store.UserStore.Create
func (s *MongoUserStore) Create(ctx context.Context, user *domain.User) error {
	if _, err := s.coll.InsertOne(ctx, newUserDocument(user)); err != nil {
		return MapError(err, store.ErrUserNotFound)
	}
	s.logger.DebugContext(ctx, "user inserted", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *MongoUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, bson.E{Key: idKey, Value: id.String()})
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *MongoUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, bson.E{Key: "email", Value: email})
}

// GetByResetToken implements store.UserStore.GetByResetToken
func (s *MongoUserStore) GetByResetToken(
	ctx context.Context,
	hashedToken string,
	now time.Time,
) (*domain.User, error) {
	return s.getOne(ctx,
		bson.E{Key: "passwordResetToken", Value: hashedToken},
		bson.E{Key: "passwordResetExpires", Value: bson.D{{Key: "$gt", Value: now.UTC()}}},
	)
}

// Update implements store.UserStore.Update. Deactivated accounts can still
// be written, which is how they are deactivated.
func (s *MongoUserStore) Update(ctx context.Context, user *domain.User) error {
	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: idKey, Value: user.ID.String()}}, newUserDocument(user))
	if err != nil {
		return MapError(err, store.ErrUserNotFound)
	}
	if res.MatchedCount == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// Delete implements store.UserStore.Delete
func (s *MongoUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: idKey, Value: id.String()}})
	if err != nil {
		return MapError(err, store.ErrUserNotFound)
	}
	if res.DeletedCount == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

func (s *MongoUserStore) getOne(ctx context.Context, where ...bson.E) (*domain.User, error) {
	filter := append(bson.D{}, where...)
	filter = append(filter, userVisible)

	var doc userDocument
	if err := s.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, MapError(err, store.ErrUserNotFound)
	}
	return doc.user()
}
