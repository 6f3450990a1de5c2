package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kevlar-dev/blog-api/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// MongoStore handles post CRUD in MongoDB.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("posts")}
}

func (s *MongoStore) Insert(ctx context.Context, post *models.Post) (string, error) {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now
	res, err := s.col.InsertOne(ctx, post)
	if err != nil {
		return "", fmt.Errorf("mongo insert: %w", err)
	}
	oid := res.InsertedID.(primitive.ObjectID)
	return oid.Hex(), nil
}

// pageWindow turns the filter's 1-based page/limit hints into a
// skip/limit window: page defaults to 1, limit defaults to
// defaultPageSize and is capped at maxPageSize.
func pageWindow(f models.PostFilter) (skip, limit int64) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit = f.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return (page - 1) * limit, limit
}

// List returns posts newest first. The filter's page/limit hints are
// translated to skip/limit here; handlers never do page math.
func (s *MongoStore) List(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	query := bson.M{}
	if f.CategoryID != "" {
		query["category_id"] = f.CategoryID
	}

	skip, limit := pageWindow(f)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := s.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var post models.Post
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Update applies the non-empty fields of req to the post, but only when
// authorID matches the stored author. A miss is ErrNotFound either way,
// so callers cannot tell absent posts from someone else's posts.
func (s *MongoStore) Update(ctx context.Context, id, authorID string, req models.UpdatePostRequest) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set := bson.M{"updated_at": time.Now()}
	if req.Title != "" {
		set["title"] = req.Title
	}
	if req.Content != "" {
		set["content"] = req.Content
	}
	if req.CategoryID != "" {
		set["category_id"] = req.CategoryID
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "author_id": authorID},
		bson.M{"$set": set},
		opts,
	).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// SetCover records the object key of the post's cover image, owner-scoped
// like Update.
func (s *MongoStore) SetCover(ctx context.Context, id, authorID, key string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": oid, "author_id": authorID},
		bson.M{"$set": bson.M{"cover_key": key, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the post by id. Deleting an absent id is not an error.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	_, err = s.col.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
