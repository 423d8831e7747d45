package databases

// go generate: mockery --name SupportServiceDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/safevoice-app/safevoice-api/models"
)

const supportServiceName = "support_services"

// SupportServiceDatabase contains the methods to use with the support services collection
type SupportServiceDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.SupportService, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.SupportService, error)
	InsertOne(context.Context, models.SupportService, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type supportServiceDatabase struct {
	db DatabaseHelper
}

// NewSupportServiceDatabase initializes a new instance of support service database with the provided db connection
func NewSupportServiceDatabase(db DatabaseHelper) SupportServiceDatabase {
	return &supportServiceDatabase{
		db: db,
	}
}

func (c *supportServiceDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.SupportService, error) {
	service := &models.SupportService{}
	err := c.db.Collection(supportServiceName).FindOne(ctx, filter, opts...).Decode(&service)
	if err != nil {
		return nil, err
	}
	return service, nil
}

func (c *supportServiceDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.SupportService, error) {
	var services []models.SupportService
	cur, err := c.db.Collection(supportServiceName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&services)
	if err != nil {
		return nil, err
	}
	return services, nil
}

func (c *supportServiceDatabase) InsertOne(ctx context.Context, service models.SupportService, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(supportServiceName).InsertOne(ctx, service, opts...)
}

func (c *supportServiceDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := c.db.Collection(supportServiceName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (c *supportServiceDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) error {
	return c.db.Collection(supportServiceName).DeleteOne(ctx, filter, opts...)
}

func (c *supportServiceDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(supportServiceName).CountDocuments(ctx, filter, opts...)
}
