package databases

// go generate: mockery --name ActivityDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/safevoice-app/safevoice-api/models"
)

const activityName = "recent_activity"

// ActivityDatabase contains the methods to use with the recent activity collection
type ActivityDatabase interface {
	FindRecent(ctx context.Context, limit, page int) ([]models.Activity, error)
	InsertOne(context.Context, models.Activity, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	DeleteMany(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
}

type activityDatabase struct {
	db DatabaseHelper
}

// NewActivityDatabase initializes a new instance of activity database with the provided db connection
func NewActivityDatabase(db DatabaseHelper) ActivityDatabase {
	return &activityDatabase{
		db: db,
	}
}

// FindRecent returns a page of activity entries, newest first
func (c *activityDatabase) FindRecent(ctx context.Context, limit, page int) ([]models.Activity, error) {
	opts := pageOpts(limit, page)
	opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var activities []models.Activity
	cur, err := c.db.Collection(activityName).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&activities)
	if err != nil {
		return nil, err
	}
	return activities, nil
}

func (c *activityDatabase) InsertOne(ctx context.Context, activity models.Activity, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(activityName).InsertOne(ctx, activity, opts...)
}

func (c *activityDatabase) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return c.db.Collection(activityName).DeleteMany(ctx, filter, opts...)
}
