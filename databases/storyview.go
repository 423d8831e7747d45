package databases

// go generate: mockery --name StoryViewDatabase

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
	storyViewName      = "story_views"
	storyViewCountName = "story_view_counts"
)

// StoryViewDatabase contains the methods to use with the story views
// collection and its precomputed count view
type StoryViewDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.StoryView, error)
	InsertOne(context.Context, models.StoryView, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
	CountFor(ctx context.Context, storyID string) (int64, error)
	AdjustCount(ctx context.Context, storyID string, delta int64) error
	RefreshCounts(ctx context.Context) error
}

type storyViewDatabase struct {
	db DatabaseHelper
}

// NewStoryViewDatabase initializes a new instance of story view database with the provided db connection
func NewStoryViewDatabase(db DatabaseHelper) StoryViewDatabase {
	return &storyViewDatabase{
		db: db,
	}
}

func (c *storyViewDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.StoryView, error) {
	view := &models.StoryView{}
	err := c.db.Collection(storyViewName).FindOne(ctx, filter, opts...).Decode(&view)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (c *storyViewDatabase) InsertOne(ctx context.Context, view models.StoryView, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(storyViewName).InsertOne(ctx, view, opts...)
}

func (c *storyViewDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(storyViewName).CountDocuments(ctx, filter, opts...)
}

// CountFor reads the precomputed view count for a story, falling back to a
// live count when no rollup row exists yet
func (c *storyViewDatabase) CountFor(ctx context.Context, storyID string) (int64, error) {
	count := &models.StoryCount{}
	err := c.db.Collection(storyViewCountName).FindOne(ctx, bson.M{"_id": storyID}).Decode(&count)
	if err == nil {
		return count.Count, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, err
	}
	return c.db.Collection(storyViewName).CountDocuments(ctx, bson.M{"storyId": storyID})
}

// AdjustCount applies a delta to the precomputed count row, creating it on
// first use
func (c *storyViewDatabase) AdjustCount(ctx context.Context, storyID string, delta int64) error {
	opts := options.Update().SetUpsert(true)
	_, err := c.db.Collection(storyViewCountName).UpdateOne(ctx, bson.M{"_id": storyID}, bson.M{
		"$inc": bson.M{"count": delta},
		"$set": bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())},
	}, opts)
	return err
}

// RefreshCounts recomputes the count view from the views collection in one
// server-side aggregation
func (c *storyViewDatabase) RefreshCounts(ctx context.Context) error {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$storyId",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$set", Value: bson.M{"updatedAt": primitive.NewDateTimeFromTime(time.Now())}}},
		{{Key: "$merge", Value: bson.M{
			"into":        storyViewCountName,
			"whenMatched": "replace",
		}}},
	}
	cur, err := c.db.Collection(storyViewName).Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	var discard []bson.M
	return cur.Decode(&discard)
}
