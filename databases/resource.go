package databases

// go generate: mockery --name ResourceDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/safevoice-app/safevoice-api/models"
)

const resourceName = "resources"

// ResourceDatabase contains the methods to use with the resources collection
type ResourceDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.Resource, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.Resource, error)
	InsertOne(context.Context, models.Resource, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type resourceDatabase struct {
	db DatabaseHelper
}

// NewResourceDatabase initializes a new instance of resource database with the provided db connection
func NewResourceDatabase(db DatabaseHelper) ResourceDatabase {
	return &resourceDatabase{
		db: db,
	}
}

func (c *resourceDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Resource, error) {
	resource := &models.Resource{}
	err := c.db.Collection(resourceName).FindOne(ctx, filter, opts...).Decode(&resource)
	if err != nil {
		return nil, err
	}
	return resource, nil
}

func (c *resourceDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Resource, error) {
	var resources []models.Resource
	cur, err := c.db.Collection(resourceName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&resources)
	if err != nil {
		return nil, err
	}
	return resources, nil
}

func (c *resourceDatabase) InsertOne(ctx context.Context, resource models.Resource, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(resourceName).InsertOne(ctx, resource, opts...)
}

func (c *resourceDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := c.db.Collection(resourceName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (c *resourceDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(resourceName).DeleteOne(ctx, filter, opts...)
}

func (c *resourceDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(resourceName).CountDocuments(ctx, filter, opts...)
}
