package databases

// go generate: mockery --name StoryLikeDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/safevoice-app/safevoice-api/models"
)

const (
	storyLikeName      = "story_likes"
	storyLikeCountName = "story_like_counts"
)

// StoryLikeDatabase contains the methods to use with the story likes
// collection and its precomputed count view
type StoryLikeDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.StoryLike, error)
	InsertOne(context.Context, models.StoryLike, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	Delete(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
	CountFor(ctx context.Context, storyID string) (int64, error)
	AdjustCount(ctx context.Context, storyID string, delta int64) error
	RefreshCounts(ctx context.Context) error
}

type storyLikeDatabase struct {
	db DatabaseHelper
}

// NewStoryLikeDatabase initializes a new instance of story like database with the provided db connection
func NewStoryLikeDatabase(db DatabaseHelper) StoryLikeDatabase {
	return &storyLikeDatabase{
		db: db,
	}
}

func (c *storyLikeDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.StoryLike, error) {
	like := &models.StoryLike{}
	err := c.db.Collection(storyLikeName).FindOne(ctx, filter, opts...).Decode(&like)
	if err != nil {
		return nil, err
	}
	return like, nil
}

func (c *storyLikeDatabase) InsertOne(ctx context.Context, like models.StoryLike, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(storyLikeName).InsertOne(ctx, like, opts...)
}

// Delete removes matching like rows and reports how many were removed, so
// callers can tell an unlike of a never-liked story apart from a real one
func (c *storyLikeDatabase) Delete(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return c.db.Collection(storyLikeName).DeleteMany(ctx, filter, opts...)
}

func (c *storyLikeDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(storyLikeName).CountDocuments(ctx, filter, opts...)
}

// CountFor reads the precomputed like count for a story, falling back to a
// live count when no rollup row exists yet
func (c *storyLikeDatabase) CountFor(ctx context.Context, storyID string) (int64, error) {
	count := &models.StoryCount{}
	err := c.db.Collection(storyLikeCountName).FindOne(ctx, bson.M{"_id": storyID}).Decode(&count)
	if err == nil {
		return count.Count, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, err
	}
	return c.db.Collection(storyLikeName).CountDocuments(ctx, bson.M{"storyId": storyID})
}

// AdjustCount applies a delta to the precomputed count row, creating it on
// first use
func (c *storyLikeDatabase) AdjustCount(ctx context.Context, storyID string, delta int64) error {
	opts := options.Update().SetUpsert(true)
	_, err := c.db.Collection(storyLikeCountName).UpdateOne(ctx, bson.M{"_id": storyID}, bson.M{
		"$inc": bson.M{"count": delta},
		"$set": bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())},
	}, opts)
	return err
}

// RefreshCounts recomputes the count view from the likes collection in one
// server-side aggregation
func (c *storyLikeDatabase) RefreshCounts(ctx context.Context) error {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$storyId",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$set", Value: bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}}},
		{{Key: "$merge", Value: bson.M{
			"into":        storyLikeCountName,
			"whenMatched": "replace",
		}}},
	}
	cur, err := c.db.Collection(storyLikeName).Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	var discard []bson.M
	return cur.Decode(&discard)
}
