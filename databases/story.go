package databases

// go generate: mockery --name StoryDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/safevoice-app/safevoice-api/models"
)

const storyName = "stories"

// StoryDatabase contains the methods to use with the stories collection
type StoryDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Story, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Story, error)
	InsertOne(context.Context, models.Story, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type storyDatabase struct {
	db DatabaseHelper
}

// NewStoryDatabase initializes a new instance of story database with the provided db connection
func NewStoryDatabase(db DatabaseHelper) StoryDatabase {
	return &storyDatabase{
		db: db,
	}
}

func (c *storyDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Story, error) {
	story := &models.Story{}
	err := c.db.Collection(storyName).FindOne(ctx, filter, opts...).Decode(&story)
	if err != nil {
		return nil, err
	}
	return story, nil
}

func (c *storyDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Story, error) {
	var stories []models.Story
	cur, err := c.db.Collection(storyName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&stories)
	if err != nil {
		return nil, err
	}
	return stories, nil
}

func (c *storyDatabase) InsertOne(ctx context.Context, story models.Story, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(storyName).InsertOne(ctx, story, opts...)
}

func (c *storyDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := c.db.Collection(storyName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (c *storyDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(storyName).DeleteOne(ctx, filter, opts...)
}

func (c *storyDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(storyName).CountDocuments(ctx, filter, opts...)
}
