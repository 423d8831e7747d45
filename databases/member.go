package databases

// go generate: mockery --name MemberDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/safevoice-app/safevoice-api/models"
)

const memberName = "community_members"

// MemberDatabase contains the methods to use with the community members collection
type MemberDatabase interface {
	FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.CommunityMember, error)
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.CommunityMember, error)
	InsertOne(context.Context, models.CommunityMember, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) error
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type memberDatabase struct {
	db DatabaseHelper
}

// NewMemberDatabase initializes a new instance of member database with the provided db connection
func NewMemberDatabase(db DatabaseHelper) MemberDatabase {
	return &memberDatabase{
		db: db,
	}
}

func (c *memberDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CommunityMember, error) {
	member := &models.CommunityMember{}
	err := c.db.Collection(memberName).FindOne(ctx, filter, opts...).Decode(&member)
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (c *memberDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CommunityMember, error) {
	var members []models.CommunityMember
	cur, err := c.db.Collection(memberName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&members)
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (c *memberDatabase) InsertOne(ctx context.Context, member models.CommunityMember, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(memberName).InsertOne(ctx, member, opts...)
}

func (c *memberDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) error {
	_, err := c.db.Collection(memberName).UpdateOne(ctx, filter, update, opts...)
	return err
}

func (c *memberDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(memberName).CountDocuments(ctx, filter, opts...)
}
